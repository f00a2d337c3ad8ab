package rooms

// Engine is the contract every room implements. Engines are plain state
// machines: no I/O, no rendering, no panics for player input. Structurally
// invalid payloads degrade to a failure result with explanatory feedback.
type Engine interface {
	// ID returns the room identifier.
	ID() RoomID

	// Name returns the room's display name.
	Name() string

	// Init (re)seeds hidden target data and working state for a fresh
	// attempt. Calling it again fully replaces prior hidden state.
	Init()

	// ValidateAction is the single entry point for all player actions.
	// Unknown action names are a failure case, never an error.
	ValidateAction(action string, payload map[string]any) InteractionResult

	// ContextualHint returns a hint whose specificity escalates with the
	// accumulated mistake count. No side effects.
	ContextualHint() EducationalHint

	// Introduction returns the room's teaching text.
	Introduction() string

	// StepInstructions returns the ordered list of steps the player must
	// perform. Same content every call.
	StepInstructions() []string

	// Progress returns currentStep/maxSteps in [0, 1].
	Progress() float64

	// IsComplete reports whether the room's terminal validation succeeded
	// and all steps are done.
	IsComplete() bool

	// State returns a copy of the bookkeeping state.
	State() State

	// Reset clears progress and reseeds, keeping the instance alive.
	Reset()
}

// conceptUnknownAction tags validation failures for unrecognized actions.
const conceptUnknownAction = "unknown-action"

// conceptProgression tags out-of-sequence or malformed-payload failures.
const conceptProgression = "logical-progression"

// tracker holds the bookkeeping every room shares. Concrete engines embed it
// and drive it through the helpers below, which keep the invariants: the step
// counter never regresses, concepts grow monotonically, completion flips once.
type tracker struct {
	currentStep  int
	maxSteps     int
	concepts     []string
	conceptSet   map[string]bool
	mistakeCount int
	lastAction   string
	complete     bool
}

func newTracker(maxSteps int) tracker {
	return tracker{
		maxSteps:   maxSteps,
		conceptSet: make(map[string]bool),
	}
}

// learn records a concept tag once, preserving insertion order.
func (t *tracker) learn(concept string) {
	if t.conceptSet[concept] {
		return
	}
	t.conceptSet[concept] = true
	t.concepts = append(t.concepts, concept)
}

// advanceTo raises the step counter to step. It never lowers it.
func (t *tracker) advanceTo(step int) {
	if step > t.currentStep {
		t.currentStep = step
	}
}

func (t *tracker) progressRatio() float64 {
	if t.maxSteps == 0 {
		return 0
	}
	return float64(t.currentStep) / float64(t.maxSteps)
}

func (t *tracker) isComplete() bool {
	return t.complete && t.currentStep >= t.maxSteps
}

func (t *tracker) snapshot() State {
	concepts := make([]string, len(t.concepts))
	copy(concepts, t.concepts)
	return State{
		CurrentStep:          t.currentStep,
		MaxSteps:             t.maxSteps,
		ConceptsLearned:      concepts,
		MistakeCount:         t.mistakeCount,
		LastAction:           t.lastAction,
		ConceptuallyComplete: t.complete,
	}
}

func (t *tracker) resetProgress() {
	t.currentStep = 0
	t.concepts = nil
	t.conceptSet = make(map[string]bool)
	t.mistakeCount = 0
	t.lastAction = ""
	t.complete = false
}

// tier maps the accumulated mistake count to a hint tier.
func (t *tracker) tier() HintTier {
	switch {
	case t.mistakeCount <= 1:
		return HintGentle
	case t.mistakeCount <= 3:
		return HintDetailed
	default:
		return HintConceptual
	}
}

// fail records a validation failure and builds its result.
func (t *tracker) fail(concept, feedback, hint string) InteractionResult {
	t.mistakeCount++
	return InteractionResult{
		Success: false,
		ConceptValidation: ConceptValidation{
			Concept:  concept,
			IsValid:  false,
			Feedback: feedback,
			Hint:     hint,
		},
	}
}

// pass records a successful validation and builds its result.
func (t *tracker) pass(concept, feedback, educational, nextStep string) InteractionResult {
	t.learn(concept)
	return InteractionResult{
		Success: true,
		ConceptValidation: ConceptValidation{
			Concept:            concept,
			IsValid:            true,
			Feedback:           feedback,
			EducationalContent: educational,
		},
		NextStep: nextStep,
	}
}

// finish records the room's terminal success. It flips the completion flag
// exactly once; RoomComplete is only reported on that call.
func (t *tracker) finish(concept, feedback, educational string) InteractionResult {
	first := !t.complete
	t.complete = true
	t.advanceTo(t.maxSteps)
	t.learn(concept)
	return InteractionResult{
		Success: true,
		ConceptValidation: ConceptValidation{
			Concept:            concept,
			IsValid:            true,
			Feedback:           feedback,
			EducationalContent: educational,
		},
		RoomComplete: first,
		UnlockNext:   first,
	}
}

// alreadySatisfied answers any action submitted after the room is complete.
// It mutates nothing and never re-reports RoomComplete.
func (t *tracker) alreadySatisfied(roomName string) InteractionResult {
	return InteractionResult{
		Success: true,
		ConceptValidation: ConceptValidation{
			Concept:  "room-complete",
			IsValid:  true,
			Feedback: roomName + " is already complete. Move on to the next room, or reset to replay it.",
		},
	}
}

// unknownAction answers an unrecognized action token.
func (t *tracker) unknownAction(action string, expected string) InteractionResult {
	return t.fail(
		conceptUnknownAction,
		"\""+action+"\" is not something you can do here.",
		"Try \""+expected+"\" next.",
	)
}
