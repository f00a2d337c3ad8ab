package rooms

import (
	"fmt"
)

// Superposition Tower actions.
const (
	ActionApplyHadamard = "apply_hadamard"
	ActionStepOnPad     = "step_on_pad"
	ActionCompleteFloor = "complete_floor"
)

const (
	towerFloors   = 5
	towerPads     = 5
	padStateUp    = "up"
	padStateSuper = "superposition"

	conceptSuperposition = "superposition"
	conceptSuperRequired = "superposition-required"
	conceptSequenceOrder = "sequence-order"
	conceptParallelism   = "quantum-parallelism"
)

// floorSequences is the fixed required pad order per floor. Climbing gets
// harder: one pad on the ground floor, five on the top.
var floorSequences = [towerFloors][]int{
	{2},
	{0, 3},
	{1, 2, 4},
	{0, 1, 3, 2},
	{4, 2, 0, 1, 3},
}

// SuperpositionTower teaches superposition: pads must be put into an equal
// superposition with a Hadamard gate before they can be stepped on, and each
// floor's pads must be crossed in its fixed phase order. The pad sequences
// are fixed puzzle data, so this room draws nothing from the float stream.
type SuperpositionTower struct {
	tracker

	currentFloor int
	padStates    map[int]string
	selectedPath []int
}

// NewSuperpositionTower creates the engine. Call Init before use.
func NewSuperpositionTower() *SuperpositionTower {
	return &SuperpositionTower{
		tracker:   newTracker(towerFloors),
		padStates: make(map[int]string),
	}
}

func (r *SuperpositionTower) ID() RoomID   { return RoomSuperpositionTower }
func (r *SuperpositionTower) Name() string { return "Superposition Tower" }

// Init resets the climb to the ground floor with all pads collapsed.
func (r *SuperpositionTower) Init() {
	r.currentFloor = 0
	r.padStates = make(map[int]string)
	r.selectedPath = nil
}

func (r *SuperpositionTower) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionApplyHadamard:
		return r.applyHadamard(payload)
	case ActionStepOnPad:
		return r.stepOnPad(payload)
	case ActionCompleteFloor:
		return r.completeFloor()
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *SuperpositionTower) requiredSequence() []int {
	if r.currentFloor >= towerFloors {
		return nil
	}
	return floorSequences[r.currentFloor]
}

func (r *SuperpositionTower) expectedAction() string {
	required := r.requiredSequence()
	switch {
	case len(r.selectedPath) >= len(required):
		return ActionCompleteFloor
	case len(required) > 0 && r.padStates[required[len(r.selectedPath)]] != padStateSuper:
		return ActionApplyHadamard
	default:
		return ActionStepOnPad
	}
}

func (r *SuperpositionTower) applyHadamard(payload map[string]any) InteractionResult {
	pad, ok := intField(payload, "padId")
	if !ok {
		return r.fail(conceptProgression,
			"The gate emitter needs a pad to aim at.",
			"Send the pad index as \"padId\".")
	}
	if pad < 0 || pad >= towerPads {
		return r.fail(conceptProgression,
			fmt.Sprintf("There is no pad %d on this floor.", pad),
			fmt.Sprintf("Pads are numbered 0 through %d.", towerPads-1))
	}

	// H·H = I: hitting a superposed pad collapses it back to |up⟩.
	if r.padStates[pad] == padStateSuper {
		r.padStates[pad] = padStateUp
		return r.pass(conceptSuperposition,
			fmt.Sprintf("The second Hadamard collapses pad %d back to |up⟩.", pad),
			"Hadamard is its own inverse: H·H = I. Two applications undo the superposition.",
			ActionApplyHadamard)
	}

	r.padStates[pad] = padStateSuper
	return r.pass(conceptSuperposition,
		fmt.Sprintf("Pad %d shimmers into (|up⟩+|down⟩)/√2.", pad),
		"The Hadamard gate turns a definite state into an equal superposition — the pad is now both up and down until something measures it.",
		ActionStepOnPad)
}

func (r *SuperpositionTower) stepOnPad(payload map[string]any) InteractionResult {
	pad, ok := intField(payload, "padId")
	if !ok {
		return r.fail(conceptProgression,
			"Step where? The floor needs a pad index.",
			"Send the pad index as \"padId\".")
	}
	if pad < 0 || pad >= towerPads {
		return r.fail(conceptProgression,
			fmt.Sprintf("There is no pad %d on this floor.", pad),
			fmt.Sprintf("Pads are numbered 0 through %d.", towerPads-1))
	}

	// The pad state may come from the caller (the view tracks its own pad
	// animations) or fall back to what the gate emitter did engine-side.
	state, ok := stringField(payload, "state")
	if !ok {
		state = r.padStates[pad]
	}
	if state != padStateSuper {
		return r.fail(conceptSuperRequired,
			fmt.Sprintf("Pad %d is in a definite state — your weight collapses it and the floor rejects the step.", pad),
			"Only superposed pads carry you. Apply a Hadamard gate first.")
	}

	required := r.requiredSequence()
	if len(r.selectedPath) >= len(required) {
		return r.fail(conceptProgression,
			"The path across this floor is already complete.",
			"Confirm the floor to ascend.")
	}
	next := required[len(r.selectedPath)]
	if pad != next {
		return r.fail(conceptSequenceOrder,
			fmt.Sprintf("Pad %d flares and the interference pattern breaks — wrong pad for position %d.", pad, len(r.selectedPath)+1),
			"The floor's phases only add up constructively in one order. Watch how the pads glow.")
	}

	r.selectedPath = append(r.selectedPath, pad)
	feedback := fmt.Sprintf("Step %d of %d holds.", len(r.selectedPath), len(required))
	nextAction := ActionStepOnPad
	if len(r.selectedPath) == len(required) {
		feedback += " The pattern across the floor is complete."
		nextAction = ActionCompleteFloor
	}
	return r.pass(conceptSuperposition, feedback,
		"Walking superposed pads in phase order keeps the amplitudes interfering constructively beneath you.",
		nextAction)
}

func (r *SuperpositionTower) completeFloor() InteractionResult {
	required := r.requiredSequence()
	if len(r.selectedPath) < len(required) {
		return r.fail(conceptProgression,
			fmt.Sprintf("The path is not finished: %d of %d pads crossed.", len(r.selectedPath), len(required)),
			"Cross every pad in the floor's sequence before ascending.")
	}

	r.currentFloor++
	r.advanceTo(r.currentFloor)
	r.padStates = make(map[int]string)
	r.selectedPath = nil

	if r.currentFloor >= towerFloors {
		return r.finish(conceptParallelism,
			"The final floor locks into place. Superposition Tower complete!",
			"Five floors, one lesson: superposition lets a system hold many paths at once, and interference decides which path survives.")
	}

	return r.pass(conceptSuperposition,
		fmt.Sprintf("You ascend to floor %d. %d pad(s) ahead.", r.currentFloor, len(r.requiredSequence())),
		"Each floor adds a longer phase pattern — more superposed states to hold in your head at once.",
		ActionApplyHadamard)
}

func (r *SuperpositionTower) ContextualHint() EducationalHint {
	tier := r.tier()
	required := r.requiredSequence()
	var text string
	switch r.expectedAction() {
	case ActionApplyHadamard:
		switch tier {
		case HintGentle:
			text = "The pads are in definite states. They need to be something else before you step."
		case HintDetailed:
			text = "Aim the Hadamard emitter at the pad you intend to step on next."
		default:
			text = fmt.Sprintf("Apply a Hadamard to pad %d, then step on it.", required[len(r.selectedPath)])
		}
	case ActionStepOnPad:
		switch tier {
		case HintGentle:
			text = "Order matters on this floor. The pads glow in a pattern."
		case HintDetailed:
			text = fmt.Sprintf("This floor's sequence has %d pads; you have crossed %d.", len(required), len(r.selectedPath))
		default:
			text = fmt.Sprintf("The next pad in floor %d's sequence is pad %d.", r.currentFloor, required[len(r.selectedPath)])
		}
	default:
		switch tier {
		case HintGentle:
			text = "The pattern beneath you is complete."
		case HintDetailed:
			text = "Confirm the floor to lock the pattern in and ascend."
		default:
			text = "Submit complete_floor — your path matches the required sequence."
		}
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptSuperposition}
}

func (r *SuperpositionTower) Introduction() string {
	return "The Superposition Tower rises through five floors of quantum pads. A pad in a " +
		"definite state collapses under your weight — only pads placed in superposition " +
		"with a Hadamard gate will hold you, and only in each floor's phase order."
}

func (r *SuperpositionTower) StepInstructions() []string {
	return []string{
		"Apply a Hadamard gate to put a pad into superposition.",
		"Step on superposed pads in the floor's required order.",
		"Complete the floor once the full pattern is crossed.",
		"Repeat for all five floors.",
	}
}

func (r *SuperpositionTower) Progress() float64 { return r.progressRatio() }
func (r *SuperpositionTower) IsComplete() bool  { return r.isComplete() }
func (r *SuperpositionTower) State() State      { return r.snapshot() }

// Reset clears progress and returns the climb to the ground floor.
func (r *SuperpositionTower) Reset() {
	r.resetProgress()
	r.Init()
}
