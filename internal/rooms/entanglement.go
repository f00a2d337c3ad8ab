package rooms

import (
	"fmt"
	"math"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
)

// Entanglement Bridge actions.
const (
	ActionMeasureCorrelations  = "measure_correlations"
	ActionComputeBellParameter = "compute_bell_parameter"
	ActionApplyEntanglement    = "apply_entanglement"
	ActionConfirmBridge        = "confirm_bridge"
)

const (
	bridgeMaxSteps      = 4
	requiredPairs       = 100
	bellTolerance       = 0.1
	correlationNoise    = 0.05
	conceptCorrelation  = "quantum-correlation"
	conceptBell         = "bell-inequality"
	conceptEntanglement = "entanglement"
	conceptNonlocality  = "nonlocality"
)

// chshSettings are the four detector setting pairs of a CHSH experiment.
var chshSettings = [4]string{"a,b", "a,b'", "a',b", "a',b'"}

// EntanglementBridge teaches Bell-inequality violation: the player collects
// paired measurements at the four CHSH detector settings, computes the Bell
// parameter S, and uses S > 2 to justify powering the bridge with an
// entangled pair source.
type EntanglementBridge struct {
	tracker

	factory engine.Factory
	attempt uint64
	source  engine.Source

	correlations map[string]float64
	bellS        float64
	measured     bool
	computed     bool
	applied      bool
}

// NewEntanglementBridge creates the engine. Call Init before use.
func NewEntanglementBridge(factory engine.Factory) *EntanglementBridge {
	return &EntanglementBridge{
		tracker: newTracker(bridgeMaxSteps),
		factory: factory,
	}
}

func (r *EntanglementBridge) ID() RoomID   { return RoomEntanglementBridge }
func (r *EntanglementBridge) Name() string { return "Entanglement Bridge" }

// Init reseeds the correlation stream and clears the experiment.
func (r *EntanglementBridge) Init() {
	r.attempt++
	r.source = r.factory(string(r.ID()), r.attempt)
	r.correlations = nil
	r.bellS = 0
	r.measured = false
	r.computed = false
	r.applied = false
}

func (r *EntanglementBridge) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionMeasureCorrelations:
		return r.measureCorrelations(payload)
	case ActionComputeBellParameter:
		return r.computeBellParameter(payload)
	case ActionApplyEntanglement:
		return r.applyEntanglement(payload)
	case ActionConfirmBridge:
		return r.confirmBridge()
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *EntanglementBridge) expectedAction() string {
	switch {
	case !r.measured:
		return ActionMeasureCorrelations
	case !r.computed:
		return ActionComputeBellParameter
	case !r.applied:
		return ActionApplyEntanglement
	default:
		return ActionConfirmBridge
	}
}

func (r *EntanglementBridge) measureCorrelations(payload map[string]any) InteractionResult {
	count, ok := intField(payload, "count")
	if !ok {
		return r.fail(conceptProgression,
			"The detector pair needs to know how many entangled photons to fire.",
			"Send a numeric \"count\" field, e.g. 100.")
	}
	if count < requiredPairs {
		return r.fail(conceptSignificance,
			fmt.Sprintf("%d pairs leave the correlation estimates too noisy. Fire at least %d.", count, requiredPairs),
			"Correlation values only converge with a large sample of pairs.")
	}

	if r.source == nil {
		r.Init()
	}
	// Singlet-state expectation values at the optimal CHSH angles are
	// ±1/√2; a small noise term stands in for finite statistics.
	ideal := 1 / math.Sqrt2
	r.correlations = make(map[string]float64, len(chshSettings))
	for i, setting := range chshSettings {
		sign := 1.0
		if i == 3 {
			sign = -1
		}
		noise := (r.source.Float() - 0.5) * correlationNoise
		r.correlations[setting] = sign*ideal + noise
	}
	r.bellS = r.correlations["a,b"] + r.correlations["a,b'"] +
		r.correlations["a',b"] - r.correlations["a',b'"]
	r.measured = true
	r.advanceTo(1)

	return r.pass(conceptCorrelation,
		fmt.Sprintf("%d pairs measured. E(a,b)=%+.3f, E(a,b')=%+.3f, E(a',b)=%+.3f, E(a',b')=%+.3f.",
			count, r.correlations["a,b"], r.correlations["a,b'"], r.correlations["a',b"], r.correlations["a',b'"]),
		"Each E value is the average product of paired ±1 outcomes at one pair of detector settings. Entangled pairs correlate far more strongly than classical ones.",
		ActionComputeBellParameter)
}

func (r *EntanglementBridge) computeBellParameter(payload map[string]any) InteractionResult {
	if !r.measured {
		return r.fail(conceptProgression,
			"There are no correlation values to combine yet.",
			"Measure the entangled pairs first.")
	}
	bellValue, ok := floatField(payload, "bellValue")
	if !ok {
		return r.fail(conceptProgression,
			"What value of S did you compute?",
			"Send your result as \"bellValue\".")
	}

	if math.Abs(bellValue-r.bellS) > bellTolerance {
		return r.fail(conceptBell,
			fmt.Sprintf("%.3f does not match the data. S = E(a,b) + E(a,b') + E(a',b) − E(a',b') = %.3f.", bellValue, r.bellS),
			"Add the first three correlation values and subtract the fourth.")
	}

	r.computed = true
	r.advanceTo(2)
	return r.pass(conceptBell,
		fmt.Sprintf("S = %.3f > 2 — the CHSH inequality is violated.", r.bellS),
		"No local hidden-variable theory can push S past 2. Quantum mechanics reaches 2√2 ≈ 2.83. Your photons are genuinely entangled.",
		ActionApplyEntanglement)
}

func (r *EntanglementBridge) applyEntanglement(payload map[string]any) InteractionResult {
	if !r.computed {
		return r.fail(conceptProgression,
			"The bridge controls are still locked — you haven't established what the correlations mean.",
			"Compute the Bell parameter first.")
	}
	useEntangled, ok := boolField(payload, "useEntangled")
	if !ok {
		return r.fail(conceptProgression,
			"Choose a pair source for the bridge.",
			"Send \"useEntangled\" as true or false.")
	}
	if !useEntangled {
		return r.fail(conceptEntanglement,
			"The classical source tops out at S = 2 and the bridge segments fall out of sync.",
			"Your own measurement showed S > 2. Only the entangled source sustains that correlation.")
	}

	r.applied = true
	r.advanceTo(3)
	return r.pass(conceptEntanglement,
		"The entangled pair source spins up and the bridge segments lock phase.",
		"Entanglement is a resource: the same correlations that violate Bell's inequality hold the bridge's ends in step.",
		ActionConfirmBridge)
}

func (r *EntanglementBridge) confirmBridge() InteractionResult {
	if !r.applied {
		return r.fail(conceptProgression,
			"The bridge is not powered yet.",
			"Apply the entangled source before crossing.")
	}

	return r.finish(conceptNonlocality,
		"You cross the span. Entanglement Bridge complete!",
		"Measuring one photon instantly fixes its partner's statistics, however far apart they are — correlation without communication.")
}

func (r *EntanglementBridge) ContextualHint() EducationalHint {
	tier := r.tier()
	var text string
	switch r.expectedAction() {
	case ActionMeasureCorrelations:
		switch tier {
		case HintGentle:
			text = "The detector pair is idle. Evidence comes before conclusions."
		case HintDetailed:
			text = "Fire at least 100 entangled pairs so the four correlation values settle."
		default:
			text = "Submit measure_correlations with count 100. You will get E values for the four CHSH setting pairs."
		}
	case ActionComputeBellParameter:
		switch tier {
		case HintGentle:
			text = "Four correlation values combine into one number."
		case HintDetailed:
			text = "S = E(a,b) + E(a,b') + E(a',b) − E(a',b'). Note the minus sign."
		default:
			text = fmt.Sprintf("With your data, S works out to %.3f.", r.bellS)
		}
	case ActionApplyEntanglement:
		switch tier {
		case HintGentle:
			text = "Two sources, one of which can actually produce what you measured."
		case HintDetailed:
			text = "A classical source cannot exceed S = 2. Yours did."
		default:
			text = "Set useEntangled to true — only entangled pairs violate the CHSH bound."
		}
	default:
		text = "The bridge is powered. Confirm and cross."
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptBell}
}

func (r *EntanglementBridge) Introduction() string {
	return "The Entanglement Bridge spans the gap ahead, but its segments only hold " +
		"together when fed correlations stronger than anything classical physics allows. " +
		"Prove your photon pairs are entangled — violate Bell's inequality — and the " +
		"bridge will carry you."
}

func (r *EntanglementBridge) StepInstructions() []string {
	return []string{
		"Measure at least 100 entangled pairs at the four CHSH detector settings.",
		"Compute the Bell parameter S from the four correlation values.",
		"Power the bridge with the entangled pair source.",
		"Confirm the link and cross.",
	}
}

func (r *EntanglementBridge) Progress() float64 { return r.progressRatio() }
func (r *EntanglementBridge) IsComplete() bool  { return r.isComplete() }
func (r *EntanglementBridge) State() State      { return r.snapshot() }

// Reset clears progress and reseeds for a fresh attempt.
func (r *EntanglementBridge) Reset() {
	r.resetProgress()
	r.Init()
}
