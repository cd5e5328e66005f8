package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patroltrack/internal/infrastructure/storage"
	"patroltrack/pkg/utils"
)

type UploadHandler struct {
	store *storage.EvidenceStore
}

func NewUploadHandler(store *storage.EvidenceStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	uploads := router.Group("/uploads")
	{
		uploads.POST("/presign", h.Presign)
		uploads.GET("/verify", h.Verify)
	}
}

type presignRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
}

// Presign hands the client a short-lived PUT URL for photo evidence. The
// client uploads directly to the bucket and references the returned key in
// its incident report.
func (h *UploadHandler) Presign(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.store.PresignUpload(c.Request.Context(), username, req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Upload URL generated successfully", resp)
}

// Verify reports whether a previously presigned object was actually uploaded,
// so clients can confirm the evidence landed before filing the report.
func (h *UploadHandler) Verify(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "key query parameter is required")
		return
	}

	exists := h.store.Exists(c.Request.Context(), key)
	utils.SuccessResponse(c, http.StatusOK, "Upload verification completed", gin.H{
		"key":    key,
		"exists": exists,
	})
}
