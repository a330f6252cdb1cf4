package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
	"github.com/nurpe/fleet-rental/internal/service"
)

type createLocationRequest struct {
	VehicleID         string                 `json:"vehiculeId" binding:"required"`
	StartDate         string                 `json:"startDate" binding:"required"`
	EndDate           string                 `json:"endDate" binding:"required"`
	Client            service.ClientIdentity `json:"client"`
	InitialOdometer   *int64                 `json:"kilometrageDebut"`
	Guarantee         float64                `json:"guarantee"`
	OverrideBlacklist bool                   `json:"overrideBlacklist"`
}

type terminateLocationRequest struct {
	FinalOdometer *int64 `json:"kilometrageFinal" binding:"required"`
}

func (h *Handler) createLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		badRequest(c, "invalid vehiculeId")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid startDate")
		return
	}

	end, err := parseDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid endDate")
		return
	}

	location, err := h.rentals.CreateLocation(c.Request.Context(), service.CreateLocationInput{
		VehicleID:         vehicleID,
		StartDate:         start,
		EndDate:           end,
		Client:            req.Client,
		InitialOdometer:   req.InitialOdometer,
		Guarantee:         req.Guarantee,
		OverrideBlacklist: req.OverrideBlacklist,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func (h *Handler) terminateLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req terminateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.rentals.TerminateLocation(c.Request.Context(), service.TerminateLocationInput{
		LocationID:    id,
		FinalOdometer: req.FinalOdometer,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	location, err := h.rentals.GetLocation(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func (h *Handler) listLocations(c *gin.Context) {
	var filter repository.LocationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.LocationStatus(strings.ToLower(raw))
		if status != model.LocationStatusActive && status != model.LocationStatusCompleted {
			badRequest(c, "invalid status")
			return
		}
		filter.Status = &status
	}
	var ok bool
	if filter.VehicleID, ok = queryID(c, "vehiculeId"); !ok {
		return
	}
	if filter.ClientID, ok = queryID(c, "clientId"); !ok {
		return
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid from")
			return
		}
		filter.EndsAfter = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid to")
			return
		}
		filter.StartsBefore = &to
	}

	rows, err := h.rentals.ListLocations(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}

func (h *Handler) listDocuments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.documents.ListByLocation(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}

func (h *Handler) registerDocument(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.RegisterDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	doc, err := h.documents.Register(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) deleteDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
