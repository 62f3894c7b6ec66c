package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompositionEmpty is returned when none of the source images could be decoded.
	ErrCompositionEmpty = errors.New("composition has no usable images")
	// ErrNoVariations marks a batch in which every variation failed.
	ErrNoVariations = errors.New("failed to generate images. Please check your API key and account balance")
)

// ConfigurationError reports a missing or invalid setting. It is fatal for a batch.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration: %s %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration: %s is not configured", e.Setting)
}

// ExternalKind classifies failures returned by a remote collaborator.
type ExternalKind string

const (
	ExternalUnauthorized   ExternalKind = "unauthorized"
	ExternalRateLimited    ExternalKind = "rate_limited"
	ExternalQuotaExhausted ExternalKind = "quota_exhausted"
	ExternalGeneric        ExternalKind = "generic"
)

// ExternalServiceError wraps a failed call to an external API.
type ExternalServiceError struct {
	Kind    ExternalKind
	Service string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Service, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, msg)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *ExternalServiceError) Retryable() bool {
	if e.Kind != ExternalGeneric {
		return false
	}
	return e.Status == 0 || e.Status >= 500
}

// ClassifyExternal maps an HTTP status plus provider error code/message onto an ExternalKind.
func ClassifyExternal(status int, code, message string) ExternalKind {
	lowerCode := strings.ToLower(code)
	lowerMsg := strings.ToLower(message)
	switch {
	case strings.Contains(lowerCode, "billing_hard_limit"),
		strings.Contains(lowerMsg, "billing hard limit"),
		strings.Contains(lowerCode, "insufficient_quota"),
		strings.Contains(lowerMsg, "insufficient quota"),
		strings.Contains(lowerMsg, "exceeded your current quota"):
		return ExternalQuotaExhausted
	case status == 401,
		strings.Contains(lowerCode, "invalid_api_key"),
		strings.Contains(lowerMsg, "invalid api key"),
		strings.Contains(lowerMsg, "incorrect api key"),
		strings.Contains(lowerMsg, "authentication"):
		return ExternalUnauthorized
	case status == 429,
		strings.Contains(lowerCode, "rate_limit_exceeded"),
		strings.Contains(lowerMsg, "rate limit"):
		return ExternalRateLimited
	case status == 402:
		return ExternalQuotaExhausted
	default:
		return ExternalGeneric
	}
}

// DecodeError reports an unreadable source image.
type DecodeError struct {
	Ref string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TracingError reports a failed raster to vector conversion.
type TracingError struct {
	Err error
}

func (e *TracingError) Error() string {
	return fmt.Sprintf("trace: %v", e.Err)
}

func (e *TracingError) Unwrap() error { return e.Err }
