package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	"github.com/dmurtari/mbu-online-sub002/internal/service"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
	"github.com/dmurtari/mbu-online-sub002/pkg/response"
)

type bindingService interface {
	BindAssignment(ctx context.Context, registrationID string, req service.AssignmentRequest) (*models.Assignment, error)
	ReplaceAssignments(ctx context.Context, registrationID string, reqs []service.AssignmentRequest) ([]models.Assignment, error)
	UpdateAssignmentPeriods(ctx context.Context, registrationID, offeringID string, req service.UpdatePeriodsRequest) (*models.Assignment, error)
	UpdateAssignmentCompletions(ctx context.Context, registrationID, offeringID string, req service.UpdateCompletionsRequest) (*models.Assignment, error)
	RemoveAssignment(ctx context.Context, registrationID, offeringID string) error
	ListAssignments(ctx context.Context, registrationID string) ([]models.Assignment, error)
	AppendPreference(ctx context.Context, registrationID string, req service.PreferenceRequest) (*models.Preference, error)
	ReplacePreferences(ctx context.Context, registrationID string, reqs []service.PreferenceRequest) ([]models.Preference, error)
	RemovePreference(ctx context.Context, registrationID, offeringID string) error
	ListPreferences(ctx context.Context, registrationID string) ([]models.Preference, error)
}

// RegistrationHandler exposes preference and assignment endpoints of a registration.
type RegistrationHandler struct {
	service bindingService
}

// NewRegistrationHandler builds a new handler.
func NewRegistrationHandler(service bindingService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// ListAssignments godoc
// @Summary List assignments of a registration
// @Tags Assignments
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{registrationId}/assignments [get]
func (h *RegistrationHandler) ListAssignments(c *gin.Context) {
	items, err := h.service.ListAssignments(c.Request.Context(), c.Param("registrationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// BindAssignment godoc
// @Summary Append one assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param payload body service.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{registrationId}/assignments [post]
func (h *RegistrationHandler) BindAssignment(c *gin.Context) {
	var req service.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	item, err := h.service.BindAssignment(c.Request.Context(), c.Param("registrationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ReplaceAssignments godoc
// @Summary Replace every assignment of a registration
// @Tags Assignments
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param payload body []service.AssignmentRequest true "Full assignment set"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /registrations/{registrationId}/assignments [put]
func (h *RegistrationHandler) ReplaceAssignments(c *gin.Context) {
	var reqs []service.AssignmentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment list"))
		return
	}
	items, err := h.service.ReplaceAssignments(c.Request.Context(), c.Param("registrationId"), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// UpdateAssignmentPeriods godoc
// @Summary Move an assignment to other periods
// @Tags Assignments
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param offeringId path string true "Offering ID"
// @Param payload body service.UpdatePeriodsRequest true "Periods payload"
// @Success 200 {object} response.Envelope
// @Router /registrations/{registrationId}/assignments/{offeringId} [patch]
func (h *RegistrationHandler) UpdateAssignmentPeriods(c *gin.Context) {
	var req service.UpdatePeriodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid periods payload"))
		return
	}
	item, err := h.service.UpdateAssignmentPeriods(c.Request.Context(), c.Param("registrationId"), c.Param("offeringId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateAssignmentCompletions godoc
// @Summary Mark requirements of an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param offeringId path string true "Offering ID"
// @Param payload body service.UpdateCompletionsRequest true "Completion flags"
// @Success 200 {object} response.Envelope
// @Router /registrations/{registrationId}/assignments/{offeringId}/completions [patch]
func (h *RegistrationHandler) UpdateAssignmentCompletions(c *gin.Context) {
	var req service.UpdateCompletionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completions payload"))
		return
	}
	item, err := h.service.UpdateAssignmentCompletions(c.Request.Context(), c.Param("registrationId"), c.Param("offeringId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// RemoveAssignment godoc
// @Summary Remove an assignment
// @Tags Assignments
// @Param registrationId path string true "Registration ID"
// @Param offeringId path string true "Offering ID"
// @Success 204
// @Router /registrations/{registrationId}/assignments/{offeringId} [delete]
func (h *RegistrationHandler) RemoveAssignment(c *gin.Context) {
	if err := h.service.RemoveAssignment(c.Request.Context(), c.Param("registrationId"), c.Param("offeringId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPreferences godoc
// @Summary List preferences of a registration
// @Tags Preferences
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{registrationId}/preferences [get]
func (h *RegistrationHandler) ListPreferences(c *gin.Context) {
	items, err := h.service.ListPreferences(c.Request.Context(), c.Param("registrationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// AppendPreference godoc
// @Summary Append one preference
// @Tags Preferences
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param payload body service.PreferenceRequest true "Preference payload"
// @Success 201 {object} response.Envelope
// @Router /registrations/{registrationId}/preferences [post]
func (h *RegistrationHandler) AppendPreference(c *gin.Context) {
	var req service.PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}
	item, err := h.service.AppendPreference(c.Request.Context(), c.Param("registrationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ReplacePreferences godoc
// @Summary Replace every preference of a registration
// @Tags Preferences
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param payload body []service.PreferenceRequest true "Full preference list"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /registrations/{registrationId}/preferences [put]
func (h *RegistrationHandler) ReplacePreferences(c *gin.Context) {
	var reqs []service.PreferenceRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference list"))
		return
	}
	items, err := h.service.ReplacePreferences(c.Request.Context(), c.Param("registrationId"), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// RemovePreference godoc
// @Summary Remove a preference
// @Tags Preferences
// @Param registrationId path string true "Registration ID"
// @Param offeringId path string true "Offering ID"
// @Success 204
// @Router /registrations/{registrationId}/preferences/{offeringId} [delete]
func (h *RegistrationHandler) RemovePreference(c *gin.Context) {
	if err := h.service.RemovePreference(c.Request.Context(), c.Param("registrationId"), c.Param("offeringId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
