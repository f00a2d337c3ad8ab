package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Sink receives gameplay telemetry. Forwarding is best-effort by contract:
// the caller must never let a sink failure affect a validation result.
type Sink interface {
	RecordInteraction(ctx context.Context, ev InteractionEvent)
	RecordCompletion(ctx context.Context, ev CompletionEvent)
}

// NopSink discards everything. Used when no backend is configured.
type NopSink struct{}

func (NopSink) RecordInteraction(context.Context, InteractionEvent) {}
func (NopSink) RecordCompletion(context.Context, CompletionEvent)  {}

const (
	interactionsTable = "game_interactions"
	completionsTable  = "room_completions"
)

// SupabaseSink forwards events to a Supabase project's REST endpoint, the
// same path the original game backend proxied. Writes happen in a goroutine
// and failures are logged, never returned.
type SupabaseSink struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSupabaseSink creates a sink for the given project URL and service key.
func NewSupabaseSink(baseURL, serviceKey string) *SupabaseSink {
	return &SupabaseSink{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.New(os.Stdout, "[TELEMETRY] ", log.LstdFlags),
	}
}

// RecordInteraction forwards one action outcome without blocking the caller.
func (s *SupabaseSink) RecordInteraction(ctx context.Context, ev InteractionEvent) {
	go s.insert(interactionsTable, ev)
}

// RecordCompletion forwards a room completion without blocking the caller.
func (s *SupabaseSink) RecordCompletion(ctx context.Context, ev CompletionEvent) {
	go s.insert(completionsTable, ev)
}

func (s *SupabaseSink) insert(table string, row any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.insertRow(ctx, table, row); err != nil {
		s.logger.Printf("forward to %s failed: %v", table, err)
	}
}

func (s *SupabaseSink) insertRow(ctx context.Context, table string, row any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("supabase returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
