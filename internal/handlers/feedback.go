package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/logging"
	"github.com/brewhollow/shop-backend/internal/mailer"
	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/mykafka"
	"github.com/brewhollow/shop-backend/internal/util"
)

const feedbackPageSize = 5

type FeedbackHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Mailer   *mailer.Mailer
}

func (h *FeedbackHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback_submit")

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Text  string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("feedback_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Text == "" {
		l.Warn("feedback_failed", "status", 400, "reason", "missing_fields")
		return echo.NewHTTPError(http.StatusBadRequest, "email and text are required")
	}

	fb := models.Feedback{
		Name:      req.Name,
		Email:     req.Email,
		Text:      req.Text,
		Resolved:  false,
		Timestamp: time.Now(),
	}
	if err := h.DB.WithContext(ctx).Create(&fb).Error; err != nil {
		l.Error("feedback_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Mailer.NotifyFeedback(fb.Name, fb.Email, fb.Text); err != nil {
		l.Warn("feedback_mail_failed", "error", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(pubCtx, "feedback_events", fb.Email, map[string]any{
		"type":  "feedback_submitted",
		"email": fb.Email,
	}); err != nil {
		l.Error("kafka_publish_failed", "error", err)
	}

	l.Info("feedback_submitted", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{"msg": "Feedback submitted"})
}

// List is the admin mailbox: feedback filtered by the resolved flag, five
// per page, newest first.
func (h *FeedbackHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback_list")

	resolved, _ := strconv.ParseBool(c.QueryParam("resolved"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	from, limit := util.Calculate(page, feedbackPageSize)

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Feedback{}).
		Where("resolved = ?", resolved).
		Count(&count).Error; err != nil {
		l.Error("feedback_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	feedbacks := make([]models.Feedback, 0, limit)
	if err := h.DB.WithContext(ctx).
		Where("resolved = ?", resolved).
		Order("timestamp DESC").
		Offset(from).Limit(limit).
		Find(&feedbacks).Error; err != nil {
		l.Error("feedback_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":         fmt.Sprintf("Feedback page %d retrieved", page),
		"total_pages": util.TotalPages(count, limit),
		"feedbacks":   feedbacks,
	})
}
