package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/billing"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service    *patient.Service
	billingSvc *billing.Service
}

func NewHandler(service *patient.Service, billingSvc *billing.Service) *Handler {
	return &Handler{service: service, billingSvc: billingSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	patients := r.Group("/patients")
	{
		patients.POST("", auth.RequireRole(model.RoleAdmin), h.CreatePatient)
		patients.GET("", auth.RequireRole(model.RoleAdmin, model.RoleDoctor), h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PUT("/:id/emergency-contact", h.UpdateEmergencyContact)
		patients.GET("/:id/bills", h.ListBills)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusCreated, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid patient ID")
		return
	}

	// Patients can only read their own profile.
	if actor.IsPatient() && actor.ID != id {
		c.JSON(http.StatusForbidden, httputil.Response{
			Status: "error", Message: "permission denied",
		})
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid patient ID")
		return
	}

	if actor.IsPatient() && actor.ID != id {
		c.JSON(http.StatusForbidden, httputil.Response{
			Status: "error", Message: "permission denied",
		})
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, p)
}

func (h *Handler) UpdateEmergencyContact(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid patient ID")
		return
	}

	if actor.IsPatient() && actor.ID != id {
		c.JSON(http.StatusForbidden, httputil.Response{
			Status: "error", Message: "permission denied",
		})
		return
	}

	var req model.UpdateEmergencyContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	p, err := h.service.UpdateEmergencyContact(c.Request.Context(), id, req.EmergencyContact)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, p)
}

func (h *Handler) ListBills(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid patient ID")
		return
	}

	bills, err := h.billingSvc.ListPatientBills(c.Request.Context(), actor, id)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, bills)
}
