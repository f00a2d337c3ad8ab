package rooms

import (
	"fmt"
	"math"
	"strings"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
)

// State Chamber actions.
const (
	ActionMeasureAxis      = "measure_axis"
	ActionReconstructState = "reconstruct_state"
	ActionApplyFilter      = "apply_filter"
)

const (
	stateChamberMaxSteps  = 3
	maxAxisMeasurements   = 3
	measurementNoiseWidth = 0.2
	conceptQuantumState   = "quantum-state"
	conceptReconstruction = "state-reconstruction"
	conceptNormalization  = "state-normalization"
	conceptMeasureLimits  = "measurement-limits"
)

// filterWindow is the open interval the filtered magnitude must land in.
const (
	filterWindowLow  = 0.9
	filterWindowHigh = 1.1
)

var chamberAxes = []string{"x", "y", "z"}

// StateChamber teaches state tomography: a hidden Bloch vector is sampled
// through noisy per-axis measurements (at most three per axis), reconstructed
// by averaging, then normalized with a tunable filter.
type StateChamber struct {
	tracker

	factory engine.Factory
	attempt uint64
	source  engine.Source

	target        [3]float64
	samples       map[string][]float64
	reconstructed [3]float64
	magnitude     float64
	rebuilt       bool
}

// NewStateChamber creates the engine. Call Init before use.
func NewStateChamber(factory engine.Factory) *StateChamber {
	return &StateChamber{
		tracker: newTracker(stateChamberMaxSteps),
		factory: factory,
		samples: make(map[string][]float64),
	}
}

func (r *StateChamber) ID() RoomID   { return RoomStateChamber }
func (r *StateChamber) Name() string { return "State Chamber" }

// Init draws a fresh hidden Bloch vector and clears all measurements.
func (r *StateChamber) Init() {
	r.attempt++
	r.source = r.factory(string(r.ID()), r.attempt)

	// Random direction, normalized to a unit vector. Bounded retries so a
	// degenerate source cannot hang Init; the fallback is the x axis.
	var v [3]float64
	norm := 0.0
	for tries := 0; norm == 0 && tries < 8; tries++ {
		for i := range v {
			v[i] = r.source.Float()*2 - 1
		}
		norm = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	if norm == 0 {
		v = [3]float64{1, 0, 0}
		norm = 1
	}
	for i := range v {
		v[i] /= norm
	}
	r.target = v

	r.samples = make(map[string][]float64)
	r.reconstructed = [3]float64{}
	r.magnitude = 0
	r.rebuilt = false
}

func (r *StateChamber) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionMeasureAxis:
		return r.measureAxis(payload)
	case ActionReconstructState:
		return r.reconstructState()
	case ActionApplyFilter:
		return r.applyFilter(payload)
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *StateChamber) expectedAction() string {
	switch {
	case len(r.missingAxes()) > 0:
		return ActionMeasureAxis
	case !r.rebuilt:
		return ActionReconstructState
	default:
		return ActionApplyFilter
	}
}

func (r *StateChamber) missingAxes() []string {
	var missing []string
	for _, axis := range chamberAxes {
		if len(r.samples[axis]) == 0 {
			missing = append(missing, axis)
		}
	}
	return missing
}

func axisIndex(axis string) int {
	for i, a := range chamberAxes {
		if a == axis {
			return i
		}
	}
	return -1
}

func (r *StateChamber) measureAxis(payload map[string]any) InteractionResult {
	axis, ok := stringField(payload, "axis")
	if !ok {
		return r.fail(conceptProgression,
			"The detector needs to know which axis to measure.",
			"Send \"axis\" as one of x, y, z.")
	}
	axis = strings.ToLower(axis)
	idx := axisIndex(axis)
	if idx < 0 {
		return r.fail(conceptProgression,
			fmt.Sprintf("\"%s\" is not a measurement axis.", axis),
			"The chamber measures along x, y, or z.")
	}
	if len(r.samples[axis]) >= maxAxisMeasurements {
		return r.fail(conceptMeasureLimits,
			fmt.Sprintf("The %s-axis detector has spent all %d of its measurements.", axis, maxAxisMeasurements),
			"Measurement disturbs the state — the chamber rations each axis. Use the data you already have.")
	}

	if r.source == nil {
		r.Init()
	}
	noise := (r.source.Float() - 0.5) * measurementNoiseWidth
	value := clamp(r.target[idx]+noise, -1, 1)
	r.samples[axis] = append(r.samples[axis], value)

	remaining := maxAxisMeasurements - len(r.samples[axis])
	next := ActionMeasureAxis
	feedback := fmt.Sprintf("⟨%s⟩ reading: %+.3f (%d measurement(s) left on this axis).", axis, value, remaining)
	if len(r.missingAxes()) == 0 {
		r.advanceTo(1)
		next = ActionReconstructState
		feedback += " All three axes sampled — the state can be reconstructed."
	}

	return r.pass(conceptMeasurement, feedback,
		"Each reading is the true Bloch component plus quantum noise. Averaging repeated measurements beats the noise down.",
		next)
}

func (r *StateChamber) reconstructState() InteractionResult {
	if missing := r.missingAxes(); len(missing) > 0 {
		return r.fail(conceptProgression,
			fmt.Sprintf("Cannot reconstruct: no data on the %s axis(es).", strings.Join(missing, ", ")),
			"A 3D state needs all three components. Measure every axis at least once.")
	}

	for i, axis := range chamberAxes {
		sum := 0.0
		for _, v := range r.samples[axis] {
			sum += v
		}
		r.reconstructed[i] = sum / float64(len(r.samples[axis]))
	}
	r.magnitude = math.Sqrt(r.reconstructed[0]*r.reconstructed[0] +
		r.reconstructed[1]*r.reconstructed[1] +
		r.reconstructed[2]*r.reconstructed[2])
	r.rebuilt = true
	r.advanceTo(2)

	return r.pass(conceptReconstruction,
		fmt.Sprintf("State reconstructed: (%+.3f, %+.3f, %+.3f), magnitude %.3f.",
			r.reconstructed[0], r.reconstructed[1], r.reconstructed[2], r.magnitude),
		"Averaging the per-axis readings estimates the Bloch vector. A pure qubit state has magnitude 1; noise pulls your estimate off the sphere.",
		ActionApplyFilter)
}

func (r *StateChamber) applyFilter(payload map[string]any) InteractionResult {
	if !r.rebuilt {
		return r.fail(conceptProgression,
			"There is no reconstructed state to filter yet.",
			"Reconstruct the state from your measurements first.")
	}
	strength, ok := floatField(payload, "strength")
	if !ok {
		return r.fail(conceptProgression,
			"The filter needs a strength setting.",
			"Send \"strength\" as a number between 0 and 1.")
	}
	if strength < 0 || strength > 1 {
		return r.fail(conceptProgression,
			fmt.Sprintf("Filter strength %.3f is outside the dial's range.", strength),
			"The dial only turns between 0 and 1.")
	}

	filtered := strength * r.magnitude
	if filtered <= filterWindowLow || filtered >= filterWindowHigh {
		direction := "weak"
		if filtered >= filterWindowHigh {
			direction = "strong"
		}
		return r.fail(conceptNormalization,
			fmt.Sprintf("The filter is too %s: resulting magnitude %.3f is outside (%.1f, %.1f).",
				direction, filtered, filterWindowLow, filterWindowHigh),
			fmt.Sprintf("Your reconstructed magnitude is %.3f. Pick the strength that scales it to 1.", r.magnitude))
	}

	return r.finish(conceptNormalization,
		fmt.Sprintf("Magnitude %.3f — the state snaps onto the Bloch sphere. State Chamber complete!", filtered),
		"Physical qubit states are unit vectors. Tomography gives a noisy estimate; normalization restores a valid state.")
}

func (r *StateChamber) ContextualHint() EducationalHint {
	tier := r.tier()
	var text string
	switch r.expectedAction() {
	case ActionMeasureAxis:
		switch tier {
		case HintGentle:
			text = "Three detectors, three axes. All of them matter."
		case HintDetailed:
			text = "Measure x, y, and z at least once each. You get three tries per axis — repeats average out the noise."
		default:
			text = fmt.Sprintf("Still missing: %s. Each axis detector works independently and is limited to %d readings.",
				strings.Join(r.missingAxes(), ", "), maxAxisMeasurements)
		}
	case ActionReconstructState:
		switch tier {
		case HintGentle:
			text = "You have data on every axis now. What does it describe?"
		case HintDetailed:
			text = "Reconstruct the state — the chamber averages your readings per axis into a 3D vector."
		default:
			text = "Submit reconstruct_state. The averaged vector is your estimate of the hidden Bloch vector."
		}
	default:
		switch tier {
		case HintGentle:
			text = "The filter scales the state. A valid state has a particular length."
		case HintDetailed:
			text = "Pick a strength so that strength × magnitude lands close to 1."
		default:
			text = fmt.Sprintf("Magnitude is %.3f, so a strength near %.3f normalizes the state.", r.magnitude, 1/math.Max(r.magnitude, 1e-9))
		}
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptQuantumState}
}

func (r *StateChamber) Introduction() string {
	return "This is the State Chamber. A hidden quantum state floats in the containment " +
		"field — you cannot look at it directly. Measure its shadow along each axis, " +
		"rebuild the state from your noisy data, and normalize it back to a physical qubit."
}

func (r *StateChamber) StepInstructions() []string {
	return []string{
		"Measure the state along the x, y, and z axes (at most 3 readings per axis).",
		"Reconstruct the Bloch vector from the averaged measurements.",
		"Apply the filter at a strength that normalizes the vector's magnitude to 1.",
	}
}

func (r *StateChamber) Progress() float64 { return r.progressRatio() }
func (r *StateChamber) IsComplete() bool  { return r.isComplete() }
func (r *StateChamber) State() State      { return r.snapshot() }

// Reset clears progress and reseeds for a fresh attempt.
func (r *StateChamber) Reset() {
	r.resetProgress()
	r.Init()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
