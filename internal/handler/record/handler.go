package record

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/record"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	records := r.Group("/medical-records")
	{
		records.POST("", auth.RequireRole(model.RoleDoctor), h.AddRecord)
		records.GET("", h.ListRecords)
		records.DELETE("/:id", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.DeleteRecord)
	}
}

func (h *Handler) AddRecord(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBadRequest(c, err.Error())
		return
	}

	rec, err := h.service.AddRecord(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusCreated, rec)
}

func (h *Handler) ListRecords(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	filters := &model.MedicalRecordFilters{}
	if p := c.Query("patient_id"); p != "" {
		id, err := uuid.Parse(p)
		if err != nil {
			httputil.RespondBadRequest(c, "invalid patient ID")
			return
		}
		filters.PatientID = id
	}

	records, err := h.service.ListRecords(c.Request.Context(), actor, filters)
	if err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, records)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid record ID")
		return
	}

	if err := h.service.DeleteRecord(c.Request.Context(), actor, id); err != nil {
		httputil.RespondError(c, err)
		return
	}

	httputil.RespondSuccess(c, http.StatusOK, nil)
}
