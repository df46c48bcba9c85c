package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/utils"
)

// CreateDesignRequest is the JSON form of a design upload, carrying a canvas export
type CreateDesignRequest struct {
	Name    string `json:"name" binding:"required"`
	DataURL string `json:"image_data" binding:"required"`
}

// CreateDesign handles POST /api/v1/designs
// Accepts either multipart/form-data (fields: name, image) or JSON with a PNG data URL
func (h *Handler) CreateDesign(c *gin.Context) {
	var name string
	var content []byte

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		name = c.PostForm("name")
		fileHeader, err := c.FormFile("image")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required", err.Error())
			return
		}
		content, err = utils.ReadImageFile(fileHeader)
		if err != nil {
			respondError(c, err, "Failed to read image")
			return
		}
	} else {
		var req CreateDesignRequest
		if !bindJSON(c, &req) {
			return
		}
		decoded, err := utils.DecodeImageDataURL(req.DataURL)
		if err != nil {
			respondError(c, err, "Failed to read image")
			return
		}
		name, content = req.Name, decoded
	}

	design, err := h.svc.Designs.Create(c.Request.Context(), name, content)
	if err != nil {
		respondError(c, err, "Failed to save design")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, design)
}

// ListDesigns handles GET /api/v1/designs
func (h *Handler) ListDesigns(c *gin.Context) {
	designs, err := h.svc.Designs.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve designs")
		return
	}
	utils.RespondWithData(c, http.StatusOK, designs)
}

// DeleteDesign handles DELETE /api/v1/designs/:id
func (h *Handler) DeleteDesign(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Designs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete design")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}
