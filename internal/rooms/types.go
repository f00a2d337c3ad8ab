package rooms

// RoomID identifies one of the six puzzle rooms.
type RoomID string

const (
	RoomProbabilityBay     RoomID = "probability-bay"
	RoomStateChamber       RoomID = "state-chamber"
	RoomSuperpositionTower RoomID = "superposition-tower"
	RoomEntanglementBridge RoomID = "entanglement-bridge"
	RoomTunnelingVault     RoomID = "tunneling-vault"
	RoomQuantumArchive     RoomID = "quantum-archive"
)

// AllRooms returns the six room ids in play order.
func AllRooms() []RoomID {
	return []RoomID{
		RoomProbabilityBay,
		RoomStateChamber,
		RoomSuperpositionTower,
		RoomEntanglementBridge,
		RoomTunnelingVault,
		RoomQuantumArchive,
	}
}

// Valid reports whether id names a registered room.
func (id RoomID) Valid() bool {
	switch id {
	case RoomProbabilityBay, RoomStateChamber, RoomSuperpositionTower,
		RoomEntanglementBridge, RoomTunnelingVault, RoomQuantumArchive:
		return true
	}
	return false
}

// ConceptValidation describes the outcome of validating one player action.
// Produced fresh on every validation call, never stored.
type ConceptValidation struct {
	Concept            string `json:"concept"`
	IsValid            bool   `json:"isValid"`
	Feedback           string `json:"feedback"`
	Hint               string `json:"hint,omitempty"`
	EducationalContent string `json:"educationalContent,omitempty"`
}

// InteractionResult is the sole contract the rendering layer depends on.
type InteractionResult struct {
	Success           bool              `json:"success"`
	ConceptValidation ConceptValidation `json:"conceptValidation"`
	NextStep          string            `json:"nextStep,omitempty"`
	RoomComplete      bool              `json:"roomComplete,omitempty"`
	UnlockNext        bool              `json:"unlockNext,omitempty"`
}

// HintTier is the escalating specificity level of guidance.
type HintTier string

const (
	HintGentle     HintTier = "gentle"
	HintDetailed   HintTier = "detailed"
	HintConceptual HintTier = "conceptual"
)

// EducationalHint is a hint scaled to the player's accumulated mistakes.
type EducationalHint struct {
	Tier    HintTier `json:"tier"`
	Text    string   `json:"text"`
	Concept string   `json:"concept,omitempty"`
}

// State is a copy of an engine's bookkeeping, safe for callers to hold.
type State struct {
	CurrentStep          int      `json:"currentStep"`
	MaxSteps             int      `json:"maxSteps"`
	ConceptsLearned      []string `json:"conceptsLearned"`
	MistakeCount         int      `json:"mistakeCount"`
	LastAction           string   `json:"lastAction"`
	ConceptuallyComplete bool     `json:"isConceptuallyComplete"`
}
