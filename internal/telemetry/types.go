package telemetry

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row shapes for the Supabase REST tables the original game logged to.
// Score-like fields use decimals so accumulated accuracy survives the round
// trip through JSON without float drift.

// InteractionEvent is one validated action forwarded to the backend.
type InteractionEvent struct {
	Room         string          `json:"room"`
	Action       string          `json:"action"`
	Success      bool            `json:"success"`
	Concept      string          `json:"concept"`
	MistakeCount int             `json:"mistake_count"`
	Accuracy     decimal.Decimal `json:"accuracy"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// CompletionEvent marks a finished room.
type CompletionEvent struct {
	Room         string          `json:"room"`
	MistakeCount int             `json:"mistake_count"`
	Score        decimal.Decimal `json:"score"`
	Concepts     []string        `json:"concepts"`
	CompletedAt  time.Time       `json:"completed_at"`
}

// baseScore is the per-room score before mistake deductions.
var baseScore = decimal.NewFromInt(100)

// mistakePenalty is deducted per recorded mistake, floored at zero.
var mistakePenalty = decimal.NewFromInt(5)

// ScoreFor computes a completion score from the mistake count.
func ScoreFor(mistakes int) decimal.Decimal {
	score := baseScore.Sub(mistakePenalty.Mul(decimal.NewFromInt(int64(mistakes))))
	if score.IsNegative() {
		return decimal.Zero
	}
	return score
}

// AccuracyFor computes successes/attempts as a decimal with 4 places.
func AccuracyFor(successes, attempts int) decimal.Decimal {
	if attempts <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(successes)).
		Div(decimal.NewFromInt(int64(attempts))).
		Round(4)
}
