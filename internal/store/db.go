package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DB is the persistence interface for gameplay telemetry. The room engines
// never call it; the API layer records outcomes after the core returns, and
// a failed write never affects a validation result.
type DB interface {
	Close() error

	SaveInteraction(ctx context.Context, in *Interaction) error
	ListInteractions(ctx context.Context, q InteractionsQuery) ([]Interaction, error)

	SaveCompletion(ctx context.Context, c *Completion) error
	ListCompletions(ctx context.Context) ([]Completion, error)

	SaveMeasurement(ctx context.Context, m *Measurement) error
	CountMeasurements(ctx context.Context, room string) (int64, error)
}

// Interaction is one validated player action and its outcome.
type Interaction struct {
	ID           uuid.UUID `json:"id"`
	Room         string    `json:"room"`
	Action       string    `json:"action"`
	Success      bool      `json:"success"`
	Concept      string    `json:"concept"`
	Feedback     string    `json:"feedback"`
	MistakeCount int       `json:"mistake_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Completion marks a room's terminal validation success.
type Completion struct {
	Room         string    `json:"room"`
	CompletedAt  time.Time `json:"completed_at"`
	MistakeCount int       `json:"mistake_count"`
	ConceptsJSON string    `json:"concepts_json"`
}

// Measurement is a raw telemetry event pushed by the UI layer (e.g. one
// simulated quantum measurement), stored as-is.
type Measurement struct {
	ID          uuid.UUID `json:"id"`
	Room        string    `json:"room"`
	Event       string    `json:"event"`
	PayloadJSON string    `json:"payload_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// InteractionsQuery filters and pages interaction listings.
type InteractionsQuery struct {
	Room   string `json:"room,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
