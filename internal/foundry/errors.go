// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package foundry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error variables for common Azure AI Foundry failures. Callers use
// errors.Is against these to decide how to present a failure; the
// client itself never retries.
var (
	// ErrNotConfigured indicates the endpoint or API key is not set.
	ErrNotConfigured = errors.New("foundry endpoint not configured")

	// ErrAuthRejected indicates the service rejected the API key.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrDeploymentNotFound indicates the model deployment does not exist
	// at the configured endpoint.
	ErrDeploymentNotFound = errors.New("model deployment not found")

	// ErrTransient indicates a failure that may succeed on a later
	// request: rate limiting, server errors, timeouts, network faults.
	ErrTransient = errors.New("transient service error")
)

// APIError represents an error response from the Foundry API that does
// not map to one of the sentinel categories.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("foundry error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("foundry error (HTTP %d): %s", e.Status, e.Message)
}

// apiErrorResponse is the error envelope the service returns.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyStatus converts an HTTP error response into a Go error.
// 401/403 map to ErrAuthRejected, 404 to ErrDeploymentNotFound, and
// 408/429/5xx to ErrTransient. Anything else surfaces as an *APIError.
func classifyStatus(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	detail := ""
	code := ""
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		detail = apiErr.Error.Message
		code = apiErr.Error.Code
	}

	wrap := func(sentinel error) error {
		if detail == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, detail)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return wrap(ErrAuthRejected)
	case statusCode == http.StatusNotFound:
		return wrap(ErrDeploymentNotFound)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests:
		return wrap(ErrTransient)
	case statusCode >= 500:
		return wrap(ErrTransient)
	}

	if detail == "" {
		detail = string(body)
	}
	return &APIError{Code: code, Message: detail, Status: statusCode}
}

// UserMessage renders an error as a single readable line for the chat
// surfaces. Sentinel categories get a stable phrasing so the CLI and
// web UI describe failures the same way.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "The assistant is not configured. Set AZURE_AI_FOUNDRY_ENDPOINT and AZURE_AI_FOUNDRY_API_KEY."
	case errors.Is(err, ErrAuthRejected):
		return "The service rejected the API key. Check AZURE_AI_FOUNDRY_API_KEY."
	case errors.Is(err, ErrDeploymentNotFound):
		return "The model deployment was not found. Check AZURE_AI_FOUNDRY_MODEL."
	case errors.Is(err, ErrTransient):
		return "The service is temporarily unavailable. Try again in a moment."
	default:
		return fmt.Sprintf("The request failed: %v", err)
	}
}
