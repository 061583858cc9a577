package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/engine"
	"github.com/cogitia/cogitia/automod/policy"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// seconds a rate-limited client is told to wait
const retryAfterSeconds = 60

type GenericStatus struct {
	Daemon     string `json:"daemon"`
	Status     string `json:"status"`
	Message    string `json:"msg,omitempty"`
	Classifier string `json:"classifier,omitempty"`
}

type GenericError struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

type AnalyzeRequest struct {
	engine.Message
	engine.Author
}

type ValidateRequest struct {
	LogID       string `json:"log_id"`
	ModeratorID string `json:"moderator_id"`
	// "approve" or "reject"
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("cogitia-http-internal-error", "err", err)
	}
	if !c.Response().Committed {
		c.JSON(code, GenericStatus{Status: "error", Daemon: "cogitia", Message: errorMessage})
	}
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	status := GenericStatus{Status: "ok", Daemon: "cogitia"}
	if named, ok := srv.Engine.Classifier.(interface{ Name() string }); ok {
		status.Classifier = named.Name()
	}
	return c.JSON(http.StatusOK, status)
}

func (srv *Server) HandleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		analyzeRequests.WithLabelValues("400").Inc()
		return err
	}
	if req.Text == "" || req.GuildID == "" || req.UserID == "" {
		analyzeRequests.WithLabelValues("400").Inc()
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRequest",
			Message: "message, guild_id and user_id are required",
		})
	}

	clientID := c.Request().Header.Get("X-Client-ID")
	if clientID == "" {
		clientID = c.RealIP()
	}

	dec, err := srv.Engine.Decide(c.Request().Context(), req.Message, req.Author, clientID)
	if errors.Is(err, engine.ErrClassifierUnavailable) {
		analyzeRequests.WithLabelValues("503").Inc()
		return c.JSON(http.StatusServiceUnavailable, GenericError{
			Error:   "ClassifierUnavailable",
			Message: "toxicity classifier unavailable, retry later",
		})
	} else if err != nil {
		analyzeRequests.WithLabelValues("500").Inc()
		return fmt.Errorf("analyzing message: %w", err)
	}

	if dec.Reason == engine.ReasonRateLimited {
		analyzeRequests.WithLabelValues("429").Inc()
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		return c.JSON(http.StatusTooManyRequests, GenericError{
			Error:      "RateLimitExceeded",
			RetryAfter: retryAfterSeconds,
		})
	}
	analyzeRequests.WithLabelValues("200").Inc()
	return c.JSON(http.StatusOK, dec)
}

func (srv *Server) HandleValidate(c echo.Context) error {
	adminRequests.WithLabelValues("validate").Inc()
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	var approve bool
	switch req.Decision {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRequest",
			Message: "decision must be 'approve' or 'reject'",
		})
	}
	if req.LogID == "" || req.ModeratorID == "" {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRequest",
			Message: "log_id and moderator_id are required",
		})
	}

	entry, err := srv.Engine.Validate(c.Request().Context(), req.LogID, req.ModeratorID, approve, req.Notes)
	if errors.Is(err, auditlog.ErrNotFound) {
		return c.JSON(http.StatusNotFound, GenericError{
			Error:   "LogEntryNotFound",
			Message: err.Error(),
		})
	} else if err != nil && entry == nil {
		return err
	} else if err != nil {
		// verdict is recorded; only the retraction failed
		srv.logger.Error("validation side effect failed", "logID", req.LogID, "err", err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (srv *Server) HandleGetGuildConfig(c echo.Context) error {
	adminRequests.WithLabelValues("get_config").Inc()
	return c.JSON(http.StatusOK, srv.Engine.GetPolicy(c.Request().Context(), c.Param("guild")))
}

func (srv *Server) HandleUpdateGuildConfig(c echo.Context) error {
	adminRequests.WithLabelValues("update_config").Inc()
	var upd policy.Update
	if err := c.Bind(&upd); err != nil {
		return err
	}
	p, err := srv.Engine.UpdatePolicy(c.Request().Context(), c.Param("guild"), upd)
	if errors.Is(err, policy.ErrInvalidPolicy) {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidPolicy",
			Message: err.Error(),
		})
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (srv *Server) HandleGuildStats(c echo.Context) error {
	adminRequests.WithLabelValues("stats").Inc()
	days, err := intQueryParam(c, "days", 30)
	if err != nil || days <= 0 {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRequest",
			Message: "days must be a positive integer",
		})
	}
	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	st, err := srv.Engine.Audit.Stats(c.Request().Context(), c.Param("guild"), since)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (srv *Server) HandleUserHistory(c echo.Context) error {
	adminRequests.WithLabelValues("history").Inc()
	limit, err := intQueryParam(c, "limit", auditlog.DefaultHistoryLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "InvalidRequest",
			Message: "limit must be an integer",
		})
	}
	entries, err := srv.Engine.Audit.History(c.Request().Context(), c.Param("user"), c.Param("guild"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user_id":  c.Param("user"),
		"guild_id": c.Param("guild"),
		"history":  entries,
	})
}

func intQueryParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// Bearer token check for configuration writes. With no admin token configured, writes are refused outright.
func (srv *Server) adminAuth() echo.MiddlewareFunc {
	keyAuth := middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(srv.adminToken)) == 1, nil
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withKey := keyAuth(next)
		return func(c echo.Context) error {
			if srv.adminToken == "" {
				srv.logger.Warn("guild config update refused, no admin token configured", "guild", c.Param("guild"))
				return echo.NewHTTPError(http.StatusForbidden, "configuration updates are disabled")
			}
			return withKey(c)
		}
	}
}
