package rooms

import (
	"github.com/quantumquest/quantum-quest-go/internal/engine"
)

// Manager owns exactly one engine instance per room and routes every call by
// room id. It is constructed once per game session and passed by reference to
// whatever needs it; the UI layer holds no quantum logic of its own.
//
// Unknown room ids are answered with nil/zero values, never a panic: the
// manager is the boundary where programming errors degrade to "not found".
type Manager struct {
	engines map[RoomID]Engine
}

// NewManager builds the registry with all six rooms, seeded from factory,
// and initializes each engine.
func NewManager(factory engine.Factory) *Manager {
	m := &Manager{engines: make(map[RoomID]Engine)}
	m.register(NewProbabilityBay(factory))
	m.register(NewStateChamber(factory))
	m.register(NewSuperpositionTower())
	m.register(NewEntanglementBridge(factory))
	m.register(NewTunnelingVault(factory))
	m.register(NewQuantumArchive())
	for _, e := range m.engines {
		e.Init()
	}
	return m
}

func (m *Manager) register(e Engine) {
	m.engines[e.ID()] = e
}

// Engine returns the engine for id, if registered.
func (m *Manager) Engine(id RoomID) (Engine, bool) {
	e, ok := m.engines[id]
	return e, ok
}

// InitializeRoom reseeds a room's hidden state. No-op for unknown ids.
func (m *Manager) InitializeRoom(id RoomID) {
	if e, ok := m.engines[id]; ok {
		e.Init()
	}
}

// ValidateRoomAction dispatches an action to the room's engine. Returns nil
// for unknown ids.
func (m *Manager) ValidateRoomAction(id RoomID, action string, payload map[string]any) *InteractionResult {
	e, ok := m.engines[id]
	if !ok {
		return nil
	}
	result := e.ValidateAction(action, payload)
	return &result
}

// RoomHint returns the room's current contextual hint, or nil.
func (m *Manager) RoomHint(id RoomID) *EducationalHint {
	e, ok := m.engines[id]
	if !ok {
		return nil
	}
	hint := e.ContextualHint()
	return &hint
}

// RoomIntroduction returns the room's teaching text.
func (m *Manager) RoomIntroduction(id RoomID) (string, bool) {
	e, ok := m.engines[id]
	if !ok {
		return "", false
	}
	return e.Introduction(), true
}

// RoomInstructions returns the room's ordered step list, or nil.
func (m *Manager) RoomInstructions(id RoomID) []string {
	e, ok := m.engines[id]
	if !ok {
		return nil
	}
	return e.StepInstructions()
}

// RoomProgress returns currentStep/maxSteps, or 0 for unknown ids.
func (m *Manager) RoomProgress(id RoomID) float64 {
	e, ok := m.engines[id]
	if !ok {
		return 0
	}
	return e.Progress()
}

// IsRoomComplete reports completion, false for unknown ids.
func (m *Manager) IsRoomComplete(id RoomID) bool {
	e, ok := m.engines[id]
	if !ok {
		return false
	}
	return e.IsComplete()
}

// RoomState returns a copy of the room's bookkeeping state, or nil.
func (m *Manager) RoomState(id RoomID) *State {
	e, ok := m.engines[id]
	if !ok {
		return nil
	}
	s := e.State()
	return &s
}

// ResetRoom clears a room's progress. No-op for unknown ids.
func (m *Manager) ResetRoom(id RoomID) {
	if e, ok := m.engines[id]; ok {
		e.Reset()
	}
}

// RoomInfo is a summary row for listing endpoints.
type RoomInfo struct {
	ID       RoomID  `json:"id"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	Complete bool    `json:"complete"`
}

// Rooms lists all registered rooms in play order.
func (m *Manager) Rooms() []RoomInfo {
	infos := make([]RoomInfo, 0, len(m.engines))
	for _, id := range AllRooms() {
		e, ok := m.engines[id]
		if !ok {
			continue
		}
		infos = append(infos, RoomInfo{
			ID:       id,
			Name:     e.Name(),
			Progress: e.Progress(),
			Complete: e.IsComplete(),
		})
	}
	return infos
}
