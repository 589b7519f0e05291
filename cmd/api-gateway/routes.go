package main

import (
	"github.com/gin-gonic/gin"

	"github.com/dmurtari/mbu-online-sub002/internal/handler"
)

type routeHandlers struct {
	metrics      *handler.MetricsHandler
	offerings    *handler.OfferingHandler
	registration *handler.RegistrationHandler
	costs        *handler.CostHandler
}

func registerRoutes(r *gin.Engine, prefix string, h routeHandlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	api := r.Group(prefix)

	api.GET("/events/:eventId/offerings", h.offerings.List)
	api.POST("/offerings", h.offerings.Create)
	api.POST("/offerings/validate-shape", h.offerings.ValidateShape)
	api.GET("/offerings/:offeringId", h.offerings.Get)
	api.PATCH("/offerings/:offeringId", h.offerings.Update)
	api.PUT("/offerings/:offeringId/requirements", h.offerings.ReplaceRequirements)
	api.GET("/offerings/:offeringId/assignees", h.offerings.Assignees)
	api.GET("/offerings/:offeringId/occupancy", h.offerings.Occupancy)

	reg := api.Group("/registrations/:registrationId")
	reg.GET("/preferences", h.registration.ListPreferences)
	reg.POST("/preferences", h.registration.AppendPreference)
	reg.PUT("/preferences", h.registration.ReplacePreferences)
	reg.DELETE("/preferences/:offeringId", h.registration.RemovePreference)
	reg.GET("/assignments", h.registration.ListAssignments)
	reg.POST("/assignments", h.registration.BindAssignment)
	reg.PUT("/assignments", h.registration.ReplaceAssignments)
	reg.PATCH("/assignments/:offeringId", h.registration.UpdateAssignmentPeriods)
	reg.PATCH("/assignments/:offeringId/completions", h.registration.UpdateAssignmentCompletions)
	reg.DELETE("/assignments/:offeringId", h.registration.RemoveAssignment)
	reg.GET("/cost", h.costs.Get)
}
