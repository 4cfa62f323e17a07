package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/services/excel"
)

type ReportHandler struct {
	reportService *excel.Service
	exportsDir    string
}

func NewReportHandler(reportService *excel.Service, exportsDir string) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportsDir:    exportsDir,
	}
}

// BuildPresentationsReport godoc
// @Summary Build an XLSX report of the user's presentations
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/reports/presentations [post]
func (h *ReportHandler) BuildPresentationsReport(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	result, err := h.reportService.BuildPresentationsReport(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  result.Message,
		"filename": result.Filename,
	})
}

// DownloadReport godoc
// @Summary Download a previously built report
// @Tags reports
// @Produce application/octet-stream
// @Security BearerAuth
// @Param filename path string true "Report filename"
// @Success 200 "XLSX file"
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/reports/download/{filename} [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}
	c.FileAttachment(filepath.Join(h.exportsDir, filename), filename)
}
