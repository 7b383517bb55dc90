package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetgrid/internal/errors"
	"budgetgrid/internal/logger"
)

const flashCookie = "budgetgrid_flash"

// Flash is a one-shot notice rendered at the top of the next page.
type Flash struct {
	Kind    string // "error" or "info"
	Message string
}

// setFlash stores a notice in a short-lived cookie, consumed by the next
// page render.
func setFlash(c *gin.Context, kind, message string) {
	value := url.QueryEscape(kind + "|" + message)
	c.SetCookie(flashCookie, value, 60, "/", "", false, true)
}

// flashError surfaces err as a user-visible notice. AppErrors show their own
// message; anything else is logged and shown as a generic failure, so no
// failure path stays silent.
func flashError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		setFlash(c, "error", appErr.Message)
		return
	}
	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
	)
	setFlash(c, "error", apperrors.ErrInternalServer.Message)
}

// takeFlash reads and clears the pending notice, if any.
func takeFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message := "info", decoded
	for i := 0; i < len(decoded); i++ {
		if decoded[i] == '|' {
			kind, message = decoded[:i], decoded[i+1:]
			break
		}
	}
	return &Flash{Kind: kind, Message: message}
}

// parsePathID parses an int64 path parameter.
func parsePathID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// redirect issues a see-other redirect, the pattern every mutation ends with
// so the follow-up GET re-fetches server truth.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
