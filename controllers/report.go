package controllers

import (
	"net/http"

	"birthday-backend/config"
	"birthday-backend/models"

	"github.com/gin-gonic/gin"
)

type ReportController struct{}

type DailyDeliveryCount struct {
	Date   string `json:"date"`
	Sent   int64  `json:"sent"`
	Failed int64  `json:"failed"`
}

type DeliveryReport struct {
	TotalMessages  int64                `json:"total_messages"`
	SentMessages   int64                `json:"sent_messages"`
	FailedMessages int64                `json:"failed_messages"`
	Last30Days     []DailyDeliveryCount `json:"last_30_days"`
}

// GetDeliveryReport summarizes message delivery outcomes from the send log
func (rc ReportController) GetDeliveryReport(c *gin.Context) {
	var report DeliveryReport
	report.Last30Days = []DailyDeliveryCount{}

	config.DB.Model(&models.MessageLog{}).Count(&report.TotalMessages)
	config.DB.Model(&models.MessageLog{}).Where("status = ?", "sent").Count(&report.SentMessages)
	config.DB.Model(&models.MessageLog{}).Where("status = ?", "failed").Count(&report.FailedMessages)

	rows, err := config.DB.Raw(`
        SELECT TO_CHAR(sent_at, 'YYYY-MM-DD') AS day,
               COUNT(*) FILTER (WHERE status = 'sent') AS sent,
               COUNT(*) FILTER (WHERE status = 'failed') AS failed
        FROM message_logs
        WHERE sent_at >= NOW() - INTERVAL '30 days'
        GROUP BY day
        ORDER BY day
    `).Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day DailyDeliveryCount
			if err := rows.Scan(&day.Date, &day.Sent, &day.Failed); err == nil {
				report.Last30Days = append(report.Last30Days, day)
			}
		}
	}

	c.JSON(http.StatusOK, report)
}
