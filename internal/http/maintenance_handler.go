package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/service"
)

type scheduleMaintenanceRequest struct {
	VehicleID   string  `json:"vehiculeId" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	ScheduledAt string  `json:"scheduledAt" binding:"required"`
	Cost        float64 `json:"cost"`
	Notes       string  `json:"notes"`
}

type completeMaintenanceRequest struct {
	CompletedAt *string  `json:"completedAt"`
	Odometer    *int64   `json:"odometer"`
	Cost        *float64 `json:"cost"`
}

func (h *Handler) listMaintenance(c *gin.Context) {
	vehicleID, ok := queryID(c, "vehiculeId")
	if !ok {
		return
	}
	rows, err := h.maintenance.List(c.Request.Context(), vehicleID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}

func (h *Handler) scheduleMaintenance(c *gin.Context) {
	var req scheduleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		badRequest(c, "invalid vehiculeId")
		return
	}

	scheduledAt, err := parseDate(req.ScheduledAt)
	if err != nil {
		badRequest(c, "invalid scheduledAt")
		return
	}

	record, err := h.maintenance.Schedule(c.Request.Context(), service.ScheduleMaintenanceInput{
		VehicleID:   vehicleID,
		Type:        model.MaintenanceType(strings.ToUpper(strings.TrimSpace(req.Type))),
		ScheduledAt: scheduledAt,
		Cost:        req.Cost,
		Notes:       req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) getMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	record, err := h.maintenance.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) completeMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req completeMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	completedAt, err := parseOptionalDate(req.CompletedAt)
	if err != nil {
		badRequest(c, "invalid completedAt")
		return
	}

	record, err := h.maintenance.Complete(c.Request.Context(), id, service.CompleteMaintenanceInput{
		CompletedAt: completedAt,
		Odometer:    req.Odometer,
		Cost:        req.Cost,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) deleteMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.maintenance.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
