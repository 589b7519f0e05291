package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
	"github.com/dmurtari/mbu-online-sub002/pkg/response"
)

type costService interface {
	ProjectedCost(ctx context.Context, registrationID string) (string, error)
	ActualCost(ctx context.Context, registrationID string) (string, error)
	Summary(ctx context.Context, registrationID string) (*models.CostSummary, error)
}

// CostHandler exposes registration pricing.
type CostHandler struct {
	service costService
}

// NewCostHandler builds a new handler.
func NewCostHandler(service costService) *CostHandler {
	return &CostHandler{service: service}
}

// Get godoc
// @Summary Projected and actual cost of a registration
// @Tags Costs
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param basis query string false "projected or actual; both when omitted"
// @Success 200 {object} response.Envelope
// @Router /registrations/{registrationId}/cost [get]
func (h *CostHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	registrationID := c.Param("registrationId")

	switch basis := c.Query("basis"); basis {
	case "":
		summary, err := h.service.Summary(ctx, registrationID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summary, nil)
	case "projected", "actual":
		var (
			amount string
			err    error
		)
		if basis == "projected" {
			amount, err = h.service.ProjectedCost(ctx, registrationID)
		} else {
			amount, err = h.service.ActualCost(ctx, registrationID)
		}
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"registration_id": registrationID, "basis": basis, "cost": amount}, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "basis must be projected or actual"))
	}
}
