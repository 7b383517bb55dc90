// Package apiclient is the typed HTTP client for the budget backend. All
// business state lives behind this API; the application fetches, renders, and
// patches, and re-fetches wholesale after every mutation.
//
// There is no retry logic here. A failed call surfaces as an AppError naming
// the backend-provided description when one is available, and the caller
// resynchronizes by fetching again.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "budgetgrid/internal/errors"
	"budgetgrid/internal/logger"
)

// Client talks to the budget backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do issues one request and decodes a JSON response into out when out is
// non-nil. Error mapping: transport failures become ErrBackendUnavailable,
// 404s become notFound, other non-2xx statuses become ErrBackendRejected
// carrying the backend's description.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, notFound *apperrors.AppError) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if notFound == nil {
			notFound = apperrors.ErrNotFound
		}
		return notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := backendMessage(resp.Body)
		logger.Get().Warnw("backend rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", msg,
		)
		if msg == "" {
			msg = fmt.Sprintf("The budget service responded with status %d", resp.StatusCode)
		}
		return apperrors.WithMessage(apperrors.ErrBackendRejected, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrBadResponse, err)
	}
	return nil
}

// backendMessage extracts a human-readable description from an error body.
// The backend is not consistent about its envelope, so both a flat "message"
// field and a nested error object are accepted.
func backendMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 8<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Message != "" {
		return flat.Message
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return ""
}
