package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	"github.com/dmurtari/mbu-online-sub002/internal/service"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type offeringServiceMock struct {
	shapeErr    error
	offering    *models.Offering
	getErr      error
	lastCreate  service.CreateOfferingRequest
	lastUpdate  service.UpdateOfferingRequest
	lastReqs    service.RequirementsRequest
	reconciled  int
	occupancy   *models.Occupancy
	roster      []models.AssignmentDetail
	lastEventID string
}

func (m *offeringServiceMock) ValidateShape(duration int, periods []int) error {
	return m.shapeErr
}

func (m *offeringServiceMock) Get(ctx context.Context, id string) (*models.Offering, error) {
	return m.offering, m.getErr
}

func (m *offeringServiceMock) ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error) {
	m.lastEventID = eventID
	return []models.Offering{*m.offering}, nil
}

func (m *offeringServiceMock) Create(ctx context.Context, req service.CreateOfferingRequest) (*models.Offering, error) {
	m.lastCreate = req
	return m.offering, nil
}

func (m *offeringServiceMock) Update(ctx context.Context, id string, req service.UpdateOfferingRequest) (*service.OfferingUpdateResult, error) {
	m.lastUpdate = req
	return &service.OfferingUpdateResult{Offering: m.offering, Reconciled: m.reconciled}, nil
}

func (m *offeringServiceMock) ReconcileRequirements(ctx context.Context, id string, req service.RequirementsRequest) (*service.OfferingUpdateResult, error) {
	m.lastReqs = req
	return &service.OfferingUpdateResult{Offering: m.offering, Reconciled: m.reconciled}, nil
}

func (m *offeringServiceMock) ListAssignees(ctx context.Context, id string) ([]models.AssignmentDetail, error) {
	return m.roster, nil
}

func (m *offeringServiceMock) Occupancy(ctx context.Context, id string) (*models.Occupancy, error) {
	return m.occupancy, nil
}

func newOfferingRouter(svc offeringService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOfferingHandler(svc)
	r := gin.New()
	r.POST("/offerings/validate-shape", h.ValidateShape)
	r.POST("/offerings", h.Create)
	r.GET("/events/:eventId/offerings", h.List)
	r.GET("/offerings/:offeringId", h.Get)
	r.PATCH("/offerings/:offeringId", h.Update)
	r.PUT("/offerings/:offeringId/requirements", h.ReplaceRequirements)
	r.GET("/offerings/:offeringId/assignees", h.Assignees)
	r.GET("/offerings/:offeringId/occupancy", h.Occupancy)
	return r
}

func TestOfferingHandlerValidateShape(t *testing.T) {
	mockSvc := &offeringServiceMock{}
	r := newOfferingRouter(mockSvc)

	w := doJSON(r, http.MethodPost, "/offerings/validate-shape", map[string]interface{}{"duration": 2, "periods": []int{2, 3}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	mockSvc.shapeErr = appErrors.Clone(appErrors.ErrInvalidShape, "")
	w = doJSON(r, http.MethodPost, "/offerings/validate-shape", map[string]interface{}{"duration": 2, "periods": []int{1, 2}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OFFERING_SHAPE", decodeError(t, w).Code)
}

func TestOfferingHandlerCreateDecodesPrice(t *testing.T) {
	mockSvc := &offeringServiceMock{offering: &models.Offering{ID: "off-1"}}
	r := newOfferingRouter(mockSvc)

	w := doJSON(r, http.MethodPost, "/offerings", `{"event_id":"evt-1","badge_id":"camping","duration":1,"periods":[1],"price":"12.50","size_limit":0}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decimal.RequireFromString("12.50").Equal(mockSvc.lastCreate.Price))
	require.NotNil(t, mockSvc.lastCreate.SizeLimit)
	assert.Equal(t, 0, *mockSvc.lastCreate.SizeLimit)
}

func TestOfferingHandlerUpdateAndRequirements(t *testing.T) {
	mockSvc := &offeringServiceMock{offering: &models.Offering{ID: "off-1"}, reconciled: 3}
	r := newOfferingRouter(mockSvc)

	w := doJSON(r, http.MethodPatch, "/offerings/off-1", `{"size_limit":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastUpdate.SizeLimit)
	assert.Nil(t, mockSvc.lastUpdate.Requirements)

	w = doJSON(r, http.MethodPut, "/offerings/off-1/requirements", map[string]interface{}{"requirements": []string{"1", "3"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "3"}, mockSvc.lastReqs.Requirements)
	assert.Contains(t, w.Body.String(), `"reconciled_assignments":3`)
}

func TestOfferingHandlerReads(t *testing.T) {
	mockSvc := &offeringServiceMock{
		offering:  &models.Offering{ID: "off-1"},
		occupancy: &models.Occupancy{OfferingID: "off-1", Periods: map[int]int{1: 2}, SizeLimit: 20},
		roster:    []models.AssignmentDetail{{ScoutID: "scout-1"}},
	}
	r := newOfferingRouter(mockSvc)

	w := doJSON(r, http.MethodGet, "/events/evt-1/offerings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "evt-1", mockSvc.lastEventID)

	w = doJSON(r, http.MethodGet, "/offerings/off-1/occupancy", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"periods":{"1":2}`)

	w = doJSON(r, http.MethodGet, "/offerings/off-1/assignees", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scout-1")

	mockSvc.getErr = appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	w = doJSON(r, http.MethodGet, "/offerings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
