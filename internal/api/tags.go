package api

import (
	"errors"
	"net/http"

	"atendechat/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TagHandler struct {
	DB *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{DB: db}
}

// tagWithCount carries the usage counter computed from tickets.
type tagWithCount struct {
	models.Tag
	Count int64 `json:"count"`
}

func (h *TagHandler) GetTags(c *gin.Context) {
	var tags []models.Tag
	if err := h.DB.Order("name ASC").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]tagWithCount, 0, len(tags))
	for _, tag := range tags {
		var count int64
		h.DB.Model(&models.Ticket{}).Where("tags LIKE ?", "%"+tag.Name+"%").Count(&count)
		out = append(out, tagWithCount{Tag: tag, Count: count})
	}
	c.JSON(http.StatusOK, out)
}

type CreateTagRequest struct {
	Name   string `json:"name" binding:"required"`
	Color  string `json:"color"`
	Kanban bool   `json:"kanban"`
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := models.Tag{Name: req.Name, Color: req.Color, Kanban: req.Kanban}
	if err := h.DB.Create(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}
	c.JSON(http.StatusCreated, tag)
}

type UpdateTagRequest struct {
	Name   *string `json:"name"`
	Color  *string `json:"color"`
	Kanban *bool   `json:"kanban"`
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tag models.Tag
	if err := h.DB.First(&tag, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Kanban != nil {
		updates["kanban"] = *req.Kanban
	}

	if err := h.DB.Model(&tag).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	result := h.DB.Delete(&models.Tag{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Tag deleted"})
}
