package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/scheduling"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("", auth.RequireRole(model.RolePatient), h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id/reschedule", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.RescheduleAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.PUT("/:id/closeout", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.CloseOutAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondBadRequest(c, "not authenticated")
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	appointment, err := h.service.ClaimSlot(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusCreated, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid appointment ID")
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondBadRequest(c, "invalid doctor ID")
			return
		}
		filters.DoctorID = doctorID
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), actor, filters)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid appointment ID")
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	appointment, err := h.service.MoveSlot(c.Request.Context(), actor, id, &req)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid appointment ID")
		return
	}

	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondBadRequest(c, err.Error())
			return
		}
	}

	appointment, err := h.service.ReleaseSlot(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, appointment)
}

func (h *Handler) CloseOutAppointment(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid appointment ID")
		return
	}

	var req model.CloseOutAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	appointment, err := h.service.CloseOut(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, appointment)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid doctor ID")
		return
	}

	date := c.Query("date")
	if date == "" {
		httputil.RespondBadRequest(c, "date is required")
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, gin.H{"slots": slots})
}
