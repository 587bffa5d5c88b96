package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zafarani/feedback-server/config"
	"github.com/zafarani/feedback-server/dashboard"
	"github.com/zafarani/feedback-server/models"
)

// GET /api/v1/analytics/?date_filter={date}&ride_type={type} (admin)
func Analytics(c *gin.Context) {
	crit := dashboard.Criteria{RideType: c.Query("ride_type")}
	if v := c.Query("date_filter"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid date_filter"})
			return
		}
		crit.Date = &t
	}

	var records []models.Feedback
	err := config.DB.
		Preload("Responses").
		Find(&records).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load feedback"})
		return
	}

	c.JSON(http.StatusOK, dashboard.Summarize(dashboard.Filter(records, crit)))
}
