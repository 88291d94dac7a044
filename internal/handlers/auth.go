package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brewhollow/shop-backend/internal/logging"
	authmw "github.com/brewhollow/shop-backend/internal/middleware/auth"
	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/mykafka"
	"github.com/brewhollow/shop-backend/internal/service"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

type userResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func userToResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func (h *AuthHandler) publish(c echo.Context, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["email"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "topic", topic, "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailInUse) {
			l.Warn("register_failed", "status", 409, "reason", "email_in_use")
			return echo.NewHTTPError(http.StatusConflict, "Email address already in use")
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "user_events", map[string]any{
		"type":  "user_registered",
		"email": user.Email,
	})

	l.Info("register_success", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{
		"msg":  fmt.Sprintf("User %s created successfully", user.Email),
		"user": userToResponse(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			l.Warn("login_failed", "status", 404, "reason", "unknown_email")
			return echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("User %s doesn't exist", req.Email))
		case errors.Is(err, service.ErrPasswordIncorrect):
			l.Warn("login_failed", "status", 401, "reason", "wrong_password")
			return echo.NewHTTPError(http.StatusUnauthorized,
				fmt.Sprintf("Password for user %s incorrect", req.Email))
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	resp := userToResponse(user)
	resp.AccessToken = pair.AccessToken
	resp.RefreshToken = pair.RefreshToken

	h.publish(c, "user_events", map[string]any{
		"type":  "user_logged_in",
		"email": user.Email,
	})

	l.Info("login_success", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{
		"msg":  fmt.Sprintf("User %s logged in successfully", user.Email),
		"user": resp,
	})
}

func (h *AuthHandler) Account(c echo.Context) error {
	email, _ := c.Get(authmw.ContextEmail).(string)
	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Account data for User %s", email),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	email, _ := c.Get(authmw.ContextEmail).(string)
	access, err := h.Svc.IssueAccess(ctx, email)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("refresh_success", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{
		"msg":          fmt.Sprintf("Refresh successful for User %s", email),
		"access_token": access,
	})
}

func (h *AuthHandler) LogoutAccess(c echo.Context) error {
	return h.logout(c, "JWT access token revoked")
}

func (h *AuthHandler) LogoutRefresh(c echo.Context) error {
	return h.logout(c, "JWT refresh token revoked")
}

func (h *AuthHandler) logout(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	claims, ok := authmw.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if err := h.Svc.Revoke(ctx, claims.ID); err != nil {
		if errors.Is(err, tokenstore.ErrTokenNotFound) {
			// The store never saw this jti even though the signature checked
			// out. Forged or foreign token, refuse without crashing.
			l.Error("logout_failed", "status", 500, "reason", "unknown_jti", "jti", claims.ID)
			return echo.NewHTTPError(http.StatusInternalServerError, "Token not found")
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "user_events", map[string]any{
		"type":  "user_logged_out",
		"email": claims.Subject,
		"kind":  claims.Type,
	})

	l.Info("logout_success", "status", 200, "kind", claims.Type)
	return c.JSON(http.StatusOK, echo.Map{"msg": msg})
}
