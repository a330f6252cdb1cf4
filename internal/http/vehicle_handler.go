package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
	"github.com/nurpe/fleet-rental/internal/service"
)

type vehicleRequest struct {
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	LicensePlate       string  `json:"licensePlate"`
	Year               int     `json:"year"`
	Odometer           int64   `json:"odometer"`
	LastOilChangeKm    int64   `json:"lastOilChangeKm"`
	Status             string  `json:"status"`
	FuelType           string  `json:"fuelType"`
	InsuranceExpiresAt string  `json:"insuranceExpiresAt" binding:"required"`
	DailyPrice         float64 `json:"dailyPrice"`
	FaultReason        *string `json:"faultReason"`
	RepairDate         *string `json:"repairDate"`
}

func (r vehicleRequest) toInput(c *gin.Context) (service.VehicleInput, bool) {
	insurance, err := parseDate(r.InsuranceExpiresAt)
	if err != nil {
		badRequest(c, "invalid insuranceExpiresAt")
		return service.VehicleInput{}, false
	}
	repairDate, err := parseOptionalDate(r.RepairDate)
	if err != nil {
		badRequest(c, "invalid repairDate")
		return service.VehicleInput{}, false
	}
	return service.VehicleInput{
		Make:               r.Make,
		Model:              r.Model,
		LicensePlate:       r.LicensePlate,
		Year:               r.Year,
		Odometer:           r.Odometer,
		LastOilChangeKm:    r.LastOilChangeKm,
		Status:             model.VehicleStatus(strings.ToUpper(strings.TrimSpace(r.Status))),
		FuelType:           model.FuelType(strings.ToUpper(strings.TrimSpace(r.FuelType))),
		InsuranceExpiresAt: insurance,
		DailyPrice:         r.DailyPrice,
		FaultReason:        r.FaultReason,
		RepairDate:         repairDate,
	}, true
}

func (h *Handler) listVehicles(c *gin.Context) {
	filter := repository.VehicleFilter{Search: strings.TrimSpace(c.Query("q"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.VehicleStatus(strings.ToUpper(raw))
		if !status.Valid() {
			badRequest(c, "invalid status")
			return
		}
		filter.Status = &status
	}

	rows, err := h.vehicles.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicles.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	vehicle, err := h.vehicles.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *Handler) updateVehicle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicles.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listVehicleLocations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.vehicles.ListLocations(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows))
}
