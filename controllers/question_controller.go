package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zafarani/feedback-server/config"
	"github.com/zafarani/feedback-server/models"
	"github.com/zafarani/feedback-server/utils"
)

func validQuestionType(t string) bool {
	switch t {
	case models.QuestionRating, models.QuestionText, models.QuestionYesNo:
		return true
	}
	return false
}

func validFormType(t string) bool {
	switch t {
	case models.FormDhow, models.FormVillage, models.FormRestaurant, models.FormGeneric:
		return true
	}
	return false
}

// GET /api/v1/questions/?form_type={type}
func ListQuestions(c *gin.Context) {
	formType := c.Query("form_type")
	if !validFormType(formType) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown or missing form_type"})
		return
	}

	var questions []models.Question
	err := config.DB.
		Where("form_type = ? AND parent_id IS NULL", formType).
		Order("position ASC, id ASC").
		Preload("SubQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": questions})
}

// GET /api/v1/questions/:slug/
func GetQuestion(c *gin.Context) {
	var q models.Question
	err := config.DB.
		Where("slug = ?", c.Param("slug")).
		Preload("SubQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Question not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load question"})
		return
	}
	c.JSON(http.StatusOK, q)
}

type createQuestionReq struct {
	FormType   string `json:"form_type" binding:"required"`
	Text       string `json:"text" binding:"required"`
	Type       string `json:"type" binding:"required"`
	IsRequired bool   `json:"is_required"`
	MaxRating  int    `json:"max_rating"`
	Parent     string `json:"parent"` // parent question slug, sub-questions only
}

// POST /api/v1/questions/ (admin)
func CreateQuestion(c *gin.Context) {
	var req createQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid payload", "error": err.Error()})
		return
	}

	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if !validQuestionType(req.Type) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Unknown question type"})
		return
	}
	if !validFormType(req.FormType) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Unknown form_type"})
		return
	}
	if req.Type == models.QuestionRating && req.MaxRating < 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "max_rating must be at least 1"})
		return
	}

	var parentID *uint
	if req.Parent != "" {
		var parent models.Question
		if err := config.DB.Where("slug = ?", req.Parent).First(&parent).Error; err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Parent question not found"})
			return
		}
		// one level of nesting only
		if parent.ParentID != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Sub-questions cannot have their own sub-questions"})
			return
		}
		parentID = &parent.ID
	}

	// next position = MAX(position)+1 within the same parent scope
	type nextRes struct{ Next int }
	var r nextRes
	scope := config.DB.Model(&models.Question{}).Where("form_type = ?", req.FormType)
	if parentID != nil {
		scope = scope.Where("parent_id = ?", *parentID)
	} else {
		scope = scope.Where("parent_id IS NULL")
	}
	_ = scope.Select("COALESCE(MAX(position), -1) + 1 AS next").Scan(&r).Error

	q := models.Question{
		Slug:       utils.Slugify(req.Text),
		FormType:   req.FormType,
		Text:       req.Text,
		Type:       req.Type,
		IsRequired: req.IsRequired,
		MaxRating:  req.MaxRating,
		Position:   r.Next,
		ParentID:   parentID,
	}

	if err := config.DB.Create(&q).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not create question"})
		return
	}
	c.JSON(http.StatusCreated, q)
}

type updateQuestionReq struct {
	Text       *string `json:"text"`
	IsRequired *bool   `json:"is_required"`
	MaxRating  *int    `json:"max_rating"`
	Position   *int    `json:"position"`
}

// PATCH /api/v1/questions/:slug/ (admin)
func UpdateQuestion(c *gin.Context) {
	var q models.Question
	if err := config.DB.Where("slug = ?", c.Param("slug")).First(&q).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Question not found"})
		return
	}

	var req updateQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.IsRequired != nil {
		updates["is_required"] = *req.IsRequired
	}
	if req.MaxRating != nil {
		if q.Type == models.QuestionRating && *req.MaxRating < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "max_rating must be at least 1"})
			return
		}
		updates["max_rating"] = *req.MaxRating
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Nothing to update"})
		return
	}

	if err := config.DB.Model(&q).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "updated"})
}

// DELETE /api/v1/questions/:slug/ (admin)
func DeleteQuestion(c *gin.Context) {
	var q models.Question
	if err := config.DB.Where("slug = ?", c.Param("slug")).First(&q).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Question not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", q.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&q).Error; err != nil {
			return err
		}
		// close the position gap left behind
		scope := tx.Model(&models.Question{}).Where("form_type = ? AND position > ?", q.FormType, q.Position)
		if q.ParentID != nil {
			scope = scope.Where("parent_id = ?", *q.ParentID)
		} else {
			scope = scope.Where("parent_id IS NULL")
		}
		return scope.Update("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "deleted"})
}
