package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"patroltrack/internal/middleware"
	"patroltrack/internal/usecase/patrol"
	"patroltrack/pkg/utils"
)

type PatrolHandler struct {
	service *patrol.Service
}

func NewPatrolHandler(service *patrol.Service) *PatrolHandler {
	return &PatrolHandler{service: service}
}

func (h *PatrolHandler) RegisterRoutes(router *gin.RouterGroup) {
	patrolGroup := router.Group("/patrol")
	{
		patrolGroup.POST("/time-record", h.RecordTimeEvent)
		patrolGroup.GET("/time-status", h.GetTodayStatus)
		patrolGroup.GET("/time-status/:username", middleware.AdminOrTanod(), h.GetTodayStatusFor)
		patrolGroup.POST("/status", h.RecordStatusChange)
		patrolGroup.GET("/logs", h.RecentLogs)
		patrolGroup.GET("/available-tanods", middleware.AdminOrTanod(), h.ListAvailableTanods)
		patrolGroup.GET("/roster", middleware.AdminOrTanod(), h.Roster)
	}
}

func (h *PatrolHandler) RecordTimeEvent(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req patrol.TimeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Location = utils.SanitizeText(req.Location)

	resp, err := h.service.RecordTimeEvent(c.Request.Context(), username, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Time record saved successfully", resp)
}

func (h *PatrolHandler) GetTodayStatus(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	resp, err := h.service.GetTodayStatus(c.Request.Context(), username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Time status retrieved successfully", resp)
}

func (h *PatrolHandler) GetTodayStatusFor(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Username is required")
		return
	}

	resp, err := h.service.GetTodayStatus(c.Request.Context(), username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Time status retrieved successfully", resp)
}

func (h *PatrolHandler) RecordStatusChange(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req patrol.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Location = utils.SanitizeText(req.Location)
	req.Details = utils.SanitizeText(req.Details)

	resp, err := h.service.RecordStatusChange(c.Request.Context(), username, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Status change recorded successfully", resp)
}

func (h *PatrolHandler) ListAvailableTanods(c *gin.Context) {
	resp, err := h.service.ListAvailableTanods(c.Request.Context(), time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Available tanods retrieved successfully", resp)
}

func (h *PatrolHandler) Roster(c *gin.Context) {
	resp, err := h.service.Roster(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Duty roster retrieved successfully", resp)
}

func (h *PatrolHandler) RecentLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
		return
	}

	username := c.Query("username")

	resp, err := h.service.RecentLogs(c.Request.Context(), username, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Activity log retrieved successfully", resp)
}
