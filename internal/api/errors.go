// Package api implements the AgentCost backend REST client.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx HTTP response surfaced as an error. It carries the
// status code, status text, and the raw response body so callers can parse
// a user-facing message out of it.
type APIError struct {
	Status     int
	StatusText string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error %d %s: %s", e.Status, e.StatusText, e.Body)
	}
	return fmt.Sprintf("API error %d %s", e.Status, e.StatusText)
}

// validationErrors is the FastAPI-style 422 payload shape.
type validationErrors struct {
	Detail []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	} `json:"detail"`
}

// detailError is the single-detail payload shape.
type detailError struct {
	Detail string `json:"detail"`
}

// FriendlyMessage converts an error from the client into a sentence fit for
// an error banner. Known backend payload shapes and substrings get specific
// messages; everything else falls back to a cleaned raw message.
//
// The substring matching is a compatibility shim for an underspecified
// backend error contract.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := friendlyFromBody(apiErr); msg != "" {
			return msg
		}
		return cleanMessage(err.Error())
	}

	return cleanMessage(err.Error())
}

func friendlyFromBody(apiErr *APIError) string {
	body := strings.TrimSpace(apiErr.Body)

	// 422 validation arrays
	if apiErr.Status == 422 {
		var ve validationErrors
		if err := json.Unmarshal([]byte(body), &ve); err == nil && len(ve.Detail) > 0 {
			msgs := make([]string, 0, len(ve.Detail))
			for _, d := range ve.Detail {
				if d.Msg != "" {
					msgs = append(msgs, d.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	detail := ""
	var de detailError
	if err := json.Unmarshal([]byte(body), &de); err == nil && de.Detail != "" {
		detail = de.Detail
	}

	haystack := detail
	if haystack == "" {
		haystack = body
	}

	switch {
	case strings.Contains(haystack, "Invalid email or password"):
		return "Invalid email or password. Please try again."
	case strings.Contains(haystack, "Email not verified"):
		return "Please verify your email address before signing in."
	case strings.Contains(haystack, "Invalid or expired token"):
		return "Your session has expired. Please sign in again."
	case strings.Contains(haystack, "don't have access"):
		return "You don't have access to this resource."
	}

	if detail != "" {
		return detail
	}

	// A bare 401 with no parseable body means the session died.
	if apiErr.Status == 401 {
		return "Your session has expired. Please sign in again."
	}

	return ""
}

// cleanMessage strips wrapper noise from a raw error string and maps bare
// 401s to the session-expired message.
func cleanMessage(msg string) string {
	if strings.Contains(msg, "401") {
		return "Your session has expired. Please sign in again."
	}

	msg = strings.TrimPrefix(msg, "API error ")
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "Something went wrong. Please try again."
	}
	return msg
}
