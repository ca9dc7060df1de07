package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

// ReportGenerator builds a farm's weekly herd report.
type ReportGenerator interface {
	GenerateWeeklyReport(ctx context.Context, farmID uint, now time.Time) (models.HerdReport, error)
}

// ReportHandler serves on-demand herd reports.
type ReportHandler struct {
	reports ReportGenerator
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(reports ReportGenerator, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, logger: logger, now: time.Now}
}

// Weekly returns the actor's farm report for the last seven days.
func (h *ReportHandler) Weekly(c *gin.Context) {
	actor := actorOf(c)
	report, err := h.reports.GenerateWeeklyReport(c.Request.Context(), actor.FarmID, h.now())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "text": reporting.FormatReport(report)})
}
