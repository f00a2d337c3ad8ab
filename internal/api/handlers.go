package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quantumquest/quantum-quest-go/internal/rooms"
	"github.com/quantumquest/quantum-quest-go/internal/store"
	"github.com/quantumquest/quantum-quest-go/internal/telemetry"
)

// roomFromRequest extracts and validates the roomID path parameter.
// On failure it writes the 404 response and reports false.
func (s *Server) roomFromRequest(w http.ResponseWriter, r *http.Request) (rooms.RoomID, bool) {
	id := rooms.RoomID(chi.URLParam(r, "roomID"))
	if !id.Valid() {
		s.errorHandler.HandleRoomNotFound(w, r, string(id))
		return "", false
	}
	return id, true
}

// GET /api/v1/rooms
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	infos := s.manager.Rooms()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rooms": infos,
		"count": len(infos),
	})
}

// POST /api/v1/rooms/{roomID}/init
func (s *Server) handleInitRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}

	s.manager.InitializeRoom(id)

	intro, _ := s.manager.RoomIntroduction(id)
	s.writeJSON(w, http.StatusOK, InitResponse{
		Room:         string(id),
		Introduction: intro,
		Instructions: s.manager.RoomInstructions(id),
	})
}

// POST /api/v1/rooms/{roomID}/actions
func (s *Server) handleRoomAction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON")
		return
	}
	if req.Action == "" {
		s.errorHandler.HandleValidationError(w, r, "action", "action is required")
		return
	}

	start := time.Now()
	result := s.manager.ValidateRoomAction(id, req.Action, req.Payload)
	duration := time.Since(start)

	s.recordInteraction(r, id, req.Action, result, duration)
	s.writeJSON(w, http.StatusOK, result)
}

// POST /api/v1/rooms/{roomID}/reset
func (s *Server) handleResetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	s.manager.ResetRoom(id)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "room": string(id)})
}

// GET /api/v1/rooms/{roomID}/hint
func (s *Server) handleRoomHint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	hint := s.manager.RoomHint(id)
	s.recorder.ObserveHint(string(id), string(hint.Tier))
	s.writeJSON(w, http.StatusOK, hint)
}

// GET /api/v1/rooms/{roomID}/introduction
func (s *Server) handleRoomIntroduction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	intro, _ := s.manager.RoomIntroduction(id)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"room":         string(id),
		"introduction": intro,
	})
}

// GET /api/v1/rooms/{roomID}/instructions
func (s *Server) handleRoomInstructions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"room":         string(id),
		"instructions": s.manager.RoomInstructions(id),
	})
}

// GET /api/v1/rooms/{roomID}/progress
func (s *Server) handleRoomProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, ProgressResponse{
		Room:     string(id),
		Progress: s.manager.RoomProgress(id),
		Complete: s.manager.IsRoomComplete(id),
	})
}

// GET /api/v1/rooms/{roomID}/state
func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomFromRequest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.manager.RoomState(id))
}

// POST /api/v1/telemetry/measurements
func (s *Server) handleSaveMeasurement(w http.ResponseWriter, r *http.Request) {
	var req MeasurementRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON")
		return
	}
	if !rooms.RoomID(req.Room).Valid() {
		s.errorHandler.HandleValidationError(w, r, "room", "unknown room")
		return
	}
	if req.Event == "" {
		s.errorHandler.HandleValidationError(w, r, "event", "event is required")
		return
	}

	m := &store.Measurement{
		ID:        uuid.New(),
		Room:      req.Room,
		Event:     req.Event,
		CreatedAt: time.Now().UTC(),
	}
	if req.Payload != nil {
		raw, err := json.Marshal(req.Payload)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "payload", "payload is not serializable")
			return
		}
		m.PayloadJSON = string(raw)
	}

	if s.db != nil {
		if err := s.db.SaveMeasurement(r.Context(), m); err != nil {
			engineErr := NewError(ErrTypeStorage, "failed to save measurement").WithCause(err).Build()
			s.errorHandler.HandleError(w, r, engineErr, http.StatusInternalServerError)
			return
		}
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": m.ID.String()})
}

// GET /api/v1/telemetry/interactions?room=&limit=&offset=
func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"interactions": []store.Interaction{}, "count": 0})
		return
	}

	q := store.InteractionsQuery{
		Room:   r.URL.Query().Get("room"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	if q.Room != "" && !rooms.RoomID(q.Room).Valid() {
		s.errorHandler.HandleValidationError(w, r, "room", "unknown room")
		return
	}

	items, err := s.db.ListInteractions(r.Context(), q)
	if err != nil {
		engineErr := NewError(ErrTypeStorage, "failed to list interactions").WithCause(err).Build()
		s.errorHandler.HandleError(w, r, engineErr, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"interactions": items,
		"count":        len(items),
	})
}

// GET /api/v1/telemetry/completions
func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"completions": []store.Completion{}, "count": 0})
		return
	}

	items, err := s.db.ListCompletions(r.Context())
	if err != nil {
		engineErr := NewError(ErrTypeStorage, "failed to list completions").WithCause(err).Build()
		s.errorHandler.HandleError(w, r, engineErr, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"completions": items,
		"count":       len(items),
	})
}

// recordInteraction persists and forwards an action outcome. Failures are
// logged and never change the HTTP response; the validation result stands
// on its own.
func (s *Server) recordInteraction(r *http.Request, id rooms.RoomID, action string, result *rooms.InteractionResult, duration time.Duration) {
	room := string(id)
	s.recorder.ObserveInteraction(room, action, result.Success, duration)
	successes, attempts := s.roomAccuracy(room, result.Success)

	state := s.manager.RoomState(id)
	now := time.Now().UTC()

	if s.db != nil {
		interaction := &store.Interaction{
			ID:           uuid.New(),
			Room:         room,
			Action:       action,
			Success:      result.Success,
			Concept:      result.ConceptValidation.Concept,
			Feedback:     result.ConceptValidation.Feedback,
			MistakeCount: state.MistakeCount,
			CreatedAt:    now,
		}
		if err := s.db.SaveInteraction(r.Context(), interaction); err != nil {
			s.logger.Printf("save_interaction_failed room=%s action=%s err=%v", room, action, err)
		}
	}

	s.sink.RecordInteraction(r.Context(), telemetry.InteractionEvent{
		Room:         room,
		Action:       action,
		Success:      result.Success,
		Concept:      result.ConceptValidation.Concept,
		MistakeCount: state.MistakeCount,
		Accuracy:     telemetry.AccuracyFor(successes, attempts),
		OccurredAt:   now,
	})

	if !result.RoomComplete {
		return
	}

	s.recorder.ObserveCompletion(room)

	conceptsJSON, err := json.Marshal(state.ConceptsLearned)
	if err != nil {
		conceptsJSON = []byte("[]")
	}
	if s.db != nil {
		completion := &store.Completion{
			Room:         room,
			CompletedAt:  now,
			MistakeCount: state.MistakeCount,
			ConceptsJSON: string(conceptsJSON),
		}
		if err := s.db.SaveCompletion(r.Context(), completion); err != nil {
			s.logger.Printf("save_completion_failed room=%s err=%v", room, err)
		}
	}

	s.sink.RecordCompletion(r.Context(), telemetry.CompletionEvent{
		Room:         room,
		MistakeCount: state.MistakeCount,
		Score:        telemetry.ScoreFor(state.MistakeCount),
		Concepts:     state.ConceptsLearned,
		CompletedAt:  now,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
