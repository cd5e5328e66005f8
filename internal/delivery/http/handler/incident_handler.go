package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patroltrack/internal/middleware"
	"patroltrack/internal/usecase/incident"
	"patroltrack/pkg/utils"
)

type IncidentHandler struct {
	service *incident.Service
}

func NewIncidentHandler(service *incident.Service) *IncidentHandler {
	return &IncidentHandler{service: service}
}

func (h *IncidentHandler) RegisterRoutes(router *gin.RouterGroup) {
	incidents := router.Group("/incidents")
	{
		incidents.POST("", h.Report)
		incidents.GET("", h.List)
		incidents.GET("/updates", h.ListUpdates)
		incidents.GET("/:incident_id", h.Get)
		incidents.POST("/:incident_id/resolve", middleware.AdminOrTanod(), h.Resolve)
		incidents.POST("/:incident_id/assign", middleware.AdminOnly(), h.Assign)
	}
}

func (h *IncidentHandler) Report(c *gin.Context) {
	reporter, ok := currentUsername(c)
	if !ok {
		return
	}

	var req incident.ReportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Location = utils.SanitizeText(req.Location)

	resp, err := h.service.ReportIncident(c.Request.Context(), reporter, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Incident reported successfully", resp)
}

func (h *IncidentHandler) Get(c *gin.Context) {
	incidentID, ok := parseIncidentID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetIncident(c.Request.Context(), incidentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Incident retrieved successfully", resp)
}

func (h *IncidentHandler) List(c *gin.Context) {
	var req incident.ListIncidentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListIncidents(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Incidents retrieved successfully", resp)
}

// ListUpdates serves the polling feed. Clients pass the cursor they received
// on the previous poll in the "after" query parameter, 0 for a full sync.
func (h *IncidentHandler) ListUpdates(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil || after < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid after cursor")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
		return
	}

	resp, err := h.service.ListUpdates(c.Request.Context(), after, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Incident updates retrieved successfully", resp)
}

func (h *IncidentHandler) Assign(c *gin.Context) {
	incidentID, ok := parseIncidentID(c)
	if !ok {
		return
	}

	var req incident.AssignTanodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.AssignTanod(c.Request.Context(), incidentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tanod assigned successfully", resp)
}

func (h *IncidentHandler) Resolve(c *gin.Context) {
	incidentID, ok := parseIncidentID(c)
	if !ok {
		return
	}

	resolvedBy, ok := currentUsername(c)
	if !ok {
		return
	}

	resp, err := h.service.ResolveIncident(c.Request.Context(), incidentID, resolvedBy)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Incident resolved successfully", resp)
}

func parseIncidentID(c *gin.Context) (uuid.UUID, bool) {
	incidentID, err := uuid.Parse(c.Param("incident_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid incident ID")
		return uuid.Nil, false
	}
	return incidentID, true
}
