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

type offeringService interface {
	ValidateShape(duration int, periods []int) error
	Get(ctx context.Context, id string) (*models.Offering, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error)
	Create(ctx context.Context, req service.CreateOfferingRequest) (*models.Offering, error)
	Update(ctx context.Context, id string, req service.UpdateOfferingRequest) (*service.OfferingUpdateResult, error)
	ReconcileRequirements(ctx context.Context, id string, req service.RequirementsRequest) (*service.OfferingUpdateResult, error)
	ListAssignees(ctx context.Context, id string) ([]models.AssignmentDetail, error)
	Occupancy(ctx context.Context, id string) (*models.Occupancy, error)
}

// ShapeRequest is the payload of the shape check endpoint.
type ShapeRequest struct {
	Duration int   `json:"duration"`
	Periods  []int `json:"periods"`
}

// OfferingHandler exposes offering management endpoints.
type OfferingHandler struct {
	service offeringService
}

// NewOfferingHandler builds a new handler.
func NewOfferingHandler(service offeringService) *OfferingHandler {
	return &OfferingHandler{service: service}
}

// ValidateShape godoc
// @Summary Check a duration and period set
// @Tags Offerings
// @Accept json
// @Produce json
// @Param payload body ShapeRequest true "Shape payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /offerings/validate-shape [post]
func (h *OfferingHandler) ValidateShape(c *gin.Context) {
	var req ShapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shape payload"))
		return
	}
	if err := h.service.ValidateShape(req.Duration, req.Periods); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"valid": true}, nil)
}

// List godoc
// @Summary List offerings of an event
// @Tags Offerings
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{eventId}/offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	items, err := h.service.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Get godoc
// @Summary Get an offering
// @Tags Offerings
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{offeringId} [get]
func (h *OfferingHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("offeringId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create an offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param payload body service.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /offerings [post]
func (h *OfferingHandler) Create(c *gin.Context) {
	var req service.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offering payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Patch an offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Param payload body service.UpdateOfferingRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /offerings/{offeringId} [patch]
func (h *OfferingHandler) Update(c *gin.Context) {
	var req service.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offering payload"))
		return
	}
	result, err := h.service.Update(c.Request.Context(), c.Param("offeringId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Offering, map[string]interface{}{"reconciled_assignments": result.Reconciled})
}

// ReplaceRequirements godoc
// @Summary Replace the requirement list of an offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Param payload body service.RequirementsRequest true "Requirement names"
// @Success 200 {object} response.Envelope
// @Router /offerings/{offeringId}/requirements [put]
func (h *OfferingHandler) ReplaceRequirements(c *gin.Context) {
	var req service.RequirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid requirements payload"))
		return
	}
	result, err := h.service.ReconcileRequirements(c.Request.Context(), c.Param("offeringId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Offering, map[string]interface{}{"reconciled_assignments": result.Reconciled})
}

// Assignees godoc
// @Summary Roster of an offering
// @Tags Offerings
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{offeringId}/assignees [get]
func (h *OfferingHandler) Assignees(c *gin.Context) {
	items, err := h.service.ListAssignees(c.Request.Context(), c.Param("offeringId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Occupancy godoc
// @Summary Per-period seat usage of an offering
// @Tags Offerings
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{offeringId}/occupancy [get]
func (h *OfferingHandler) Occupancy(c *gin.Context) {
	occ, err := h.service.Occupancy(c.Request.Context(), c.Param("offeringId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occ, nil)
}
