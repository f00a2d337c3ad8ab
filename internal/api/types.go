package api

import (
	"fmt"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Error type constants
const (
	ErrTypeValidation   = "validation_error"
	ErrTypeRoomNotFound = "room_not_found"
	ErrTypeRoomAction   = "room_action_error"
	ErrTypeStorage      = "storage_error"
	ErrTypeTimeout      = "timeout"
	ErrTypeInternal     = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryRoom       ErrorCategory = "room"
	CategoryTimeout    ErrorCategory = "timeout"
	CategorySystem     ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation:
		return CategoryValidation
	case ErrTypeRoomNotFound, ErrTypeRoomAction:
		return CategoryRoom
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// ActionRequest is the body of POST /rooms/{roomID}/actions.
type ActionRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// MeasurementRequest is the body of POST /telemetry/measurements.
type MeasurementRequest struct {
	Room    string         `json:"room"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// InitResponse is returned after reseeding a room.
type InitResponse struct {
	Room         string   `json:"room"`
	Introduction string   `json:"introduction"`
	Instructions []string `json:"instructions"`
}

// ProgressResponse reports a room's step progress.
type ProgressResponse struct {
	Room     string  `json:"room"`
	Progress float64 `json:"progress"`
	Complete bool    `json:"complete"`
}
