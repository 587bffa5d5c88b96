package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/zafarani/feedback-server/config"
	"github.com/zafarani/feedback-server/models"
)

type exportRequest struct {
	Format    string  `json:"format"`
	FormType  string  `json:"form_type,omitempty"`
	RangeFrom *string `json:"range_from,omitempty"`
	RangeTo   *string `json:"range_to,omitempty"`
}

// POST /api/v1/feedback/export (admin)
func CreateExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid payload"})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	if req.Format != "csv" && req.Format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown format"})
		return
	}
	if req.FormType != "" && !validFormType(req.FormType) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown form_type"})
		return
	}

	var fromPtr, toPtr *time.Time
	if req.RangeFrom != nil {
		if t, err := time.Parse(time.RFC3339, *req.RangeFrom); err == nil {
			fromPtr = &t
		}
	}
	if req.RangeTo != nil {
		if t, err := time.Parse(time.RFC3339, *req.RangeTo); err == nil {
			toPtr = &t
		}
	}

	jobID := uuid.New().String()
	job := models.ExportJob{
		JobID:     jobID,
		FormType:  req.FormType,
		Format:    req.Format,
		RangeFrom: fromPtr,
		RangeTo:   toPtr,
		Status:    "queued",
	}
	config.DB.Create(&job)

	go processExportJob(jobID)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "queued",
	})
}

// GET /api/v1/exports/:job_id
func GetExport(c *gin.Context) {
	jobID := c.Param("job_id")
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "DB error"})
		return
	}

	if job.Status == "done" && job.FilePath != nil {
		c.FileAttachment(*job.FilePath, path.Base(*job.FilePath))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
		"error":  job.ErrorMsg,
	})
}

var exportHeader = []string{"reference", "form_type", "ride_type", "guest_name", "guest_email", "created_at", "answers"}

func exportRow(r models.Feedback) []string {
	var answers []string
	for _, a := range r.Responses {
		switch {
		case a.Rating != nil:
			answers = append(answers, fmt.Sprintf("%s=%d", a.QuestionSlug, *a.Rating))
		case a.YesNo != nil:
			answers = append(answers, fmt.Sprintf("%s=%t", a.QuestionSlug, *a.YesNo))
		case a.Text != nil:
			answers = append(answers, fmt.Sprintf("%s=%s", a.QuestionSlug, *a.Text))
		}
	}
	return []string{
		r.Reference,
		r.FormType,
		r.RideType,
		r.GuestName,
		r.GuestEmail,
		r.CreatedAt.Format(time.RFC3339),
		strings.Join(answers, "; "),
	}
}

func writeCSV(outPath string, records []models.Feedback) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(exportRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(outPath string, records []models.Feedback) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Feedback"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		row := exportRow(r)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.SaveAs(outPath)
}

func processExportJob(jobID string) {
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		return
	}
	config.DB.Model(&job).Update("status", "processing")

	fail := func(err error) {
		em := err.Error()
		config.DB.Model(&job).Updates(map[string]interface{}{"status": "failed", "error_msg": em})
	}

	var records []models.Feedback
	q := config.DB.Preload("Responses").Order("created_at ASC")
	if job.FormType != "" {
		q = q.Where("form_type = ?", job.FormType)
	}
	if job.RangeFrom != nil {
		q = q.Where("created_at >= ?", job.RangeFrom)
	}
	if job.RangeTo != nil {
		q = q.Where("created_at <= ?", job.RangeTo)
	}
	if err := q.Find(&records).Error; err != nil {
		fail(err)
		return
	}

	outDir := "./exports"
	os.MkdirAll(outDir, 0755)
	outPath := path.Join(outDir, fmt.Sprintf("feedback_%s.%s", job.JobID, job.Format))

	var err error
	if job.Format == "xlsx" {
		err = writeXLSX(outPath, records)
	} else {
		err = writeCSV(outPath, records)
	}
	if err != nil {
		fail(err)
		return
	}

	config.DB.Model(&job).Updates(map[string]interface{}{"status": "done", "file_path": outPath})
}
