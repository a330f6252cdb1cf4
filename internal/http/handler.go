package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-rental/internal/http/middleware"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/service"
)

type Services struct {
	Vehicles      *service.VehicleService
	Clients       *service.ClientService
	Rentals       *service.RentalService
	Maintenance   *service.MaintenanceService
	Calendar      *service.CalendarService
	Notifications *service.NotificationService
	Documents     *service.DocumentService
	Users         *service.UserService
}

type Handler struct {
	vehicles      *service.VehicleService
	clients       *service.ClientService
	rentals       *service.RentalService
	maintenance   *service.MaintenanceService
	calendar      *service.CalendarService
	notifications *service.NotificationService
	documents     *service.DocumentService
	users         *service.UserService
	log           zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		vehicles:      services.Vehicles,
		clients:       services.Clients,
		rentals:       services.Rentals,
		maintenance:   services.Maintenance,
		calendar:      services.Calendar,
		notifications: services.Notifications,
		documents:     services.Documents,
		users:         services.Users,
		log:           log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	protected.GET("/vehicles", h.listVehicles)
	protected.POST("/vehicles", h.createVehicle)
	protected.GET("/vehicles/:id", h.getVehicle)
	protected.PUT("/vehicles/:id", h.updateVehicle)
	protected.DELETE("/vehicles/:id", adminOnly, h.deleteVehicle)
	protected.GET("/vehicles/:id/locations", h.listVehicleLocations)

	protected.GET("/clients", h.listClients)
	protected.POST("/clients", h.createClient)
	protected.GET("/clients/cin/:cin", h.getClientByCIN)
	protected.GET("/clients/:id", h.getClient)
	protected.PUT("/clients/:id", h.updateClient)
	protected.PUT("/clients/:id/blacklist", h.blacklistClient)
	protected.DELETE("/clients/:id", adminOnly, h.deleteClient)

	protected.GET("/locations", h.listLocations)
	protected.POST("/locations", h.createLocation)
	protected.GET("/locations/:id", h.getLocation)
	protected.PUT("/locations/:id/terminer", h.terminateLocation)
	protected.GET("/locations/:id/documents", h.listDocuments)
	protected.POST("/locations/:id/documents", h.registerDocument)
	protected.DELETE("/documents/:id", h.deleteDocument)

	protected.GET("/maintenances", h.listMaintenance)
	protected.POST("/maintenances", h.scheduleMaintenance)
	protected.GET("/maintenances/:id", h.getMaintenance)
	protected.PUT("/maintenances/:id/complete", h.completeMaintenance)
	protected.DELETE("/maintenances/:id", h.deleteMaintenance)

	protected.GET("/calendar", h.listCalendar)

	protected.GET("/notifications", h.listNotifications)
	protected.PUT("/notifications/seen", h.markAllNotificationsSeen)
	protected.PUT("/notifications/:id/seen", h.markNotificationSeen)
	protected.DELETE("/notifications/:id", h.deleteNotification)

	protected.GET("/users/me", h.me)
	protected.GET("/users", adminOnly, h.listUsers)
	protected.PUT("/users/:id/role", adminOnly, h.updateUserRole)
	protected.DELETE("/users/:id", adminOnly, h.deleteUser)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR", "fields": validation.Fields})
	case errors.Is(err, service.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_DATE_RANGE"})
	case errors.Is(err, service.ErrInvalidOdometer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ODOMETER"})
	case errors.Is(err, service.ErrVehicleUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VEHICLE_UNAVAILABLE"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
	case errors.Is(err, service.ErrClientBlacklisted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "CLIENT_BLACKLISTED"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "PERMISSION_DENIED"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, service.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "LOCATION_ALREADY_COMPLETED"})
	case errors.Is(err, service.ErrVehicleBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "VEHICLE_BUSY"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL_ERROR"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION_ERROR"})
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal", "code": "UNAUTHORIZED"})
	}
	return principal, ok
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &id, true
}

// listBody keeps empty collections rendered as [] rather than null.
func listBody[T any](rows []T) gin.H {
	if rows == nil {
		rows = []T{}
	}
	return gin.H{"data": rows}
}

func parseDate(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
