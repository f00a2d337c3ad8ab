package rooms

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
)

// Probability Bay actions.
const (
	ActionPerformMeasurements = "perform_measurements"
	ActionAnalyzeDistribution = "analyze_distribution"
	ActionSelectLocker        = "select_locker"
	ActionEnterCode           = "enter_code"
)

const (
	probabilityMaxSteps  = 4
	requiredMeasurements = 50
	maxMeasurements      = 10000
	conceptMeasurement   = "quantum-measurement"
	conceptDistribution  = "probability-distribution"
	conceptPrediction    = "probabilistic-prediction"
	conceptAppliedStats  = "applied-probability"
	conceptSignificance  = "statistical-significance"
)

// probabilityWeights biases the quantum die toward face 3. Presented to the
// player as quantum randomness; fixed here so outcomes stay testable.
var probabilityWeights = [6]float64{0.1, 0.3, 0.4, 0.15, 0.04, 0.01}

// ProbabilityBay teaches that quantum randomness still obeys statistics:
// the player gathers 50 measurements of a biased quantum die, identifies the
// most frequent face, and uses it to pick and open the right locker.
type ProbabilityBay struct {
	tracker

	factory engine.Factory
	attempt uint64
	source  engine.Source

	measurements []int
	analyzed     bool
	lockerPicked bool
}

// NewProbabilityBay creates the engine. Call Init before use.
func NewProbabilityBay(factory engine.Factory) *ProbabilityBay {
	return &ProbabilityBay{
		tracker: newTracker(probabilityMaxSteps),
		factory: factory,
	}
}

func (r *ProbabilityBay) ID() RoomID   { return RoomProbabilityBay }
func (r *ProbabilityBay) Name() string { return "Probability Bay" }

// Init reseeds the measurement stream and clears working data.
func (r *ProbabilityBay) Init() {
	r.attempt++
	r.source = r.factory(string(r.ID()), r.attempt)
	r.measurements = nil
	r.analyzed = false
	r.lockerPicked = false
}

func (r *ProbabilityBay) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionPerformMeasurements:
		return r.performMeasurements(payload)
	case ActionAnalyzeDistribution:
		return r.analyzeDistribution(payload)
	case ActionSelectLocker:
		return r.selectLocker(payload)
	case ActionEnterCode:
		return r.enterCode(payload)
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *ProbabilityBay) expectedAction() string {
	switch {
	case len(r.measurements) == 0:
		return ActionPerformMeasurements
	case !r.analyzed:
		return ActionAnalyzeDistribution
	case !r.lockerPicked:
		return ActionSelectLocker
	default:
		return ActionEnterCode
	}
}

func (r *ProbabilityBay) performMeasurements(payload map[string]any) InteractionResult {
	count, ok := intField(payload, "count")
	if !ok {
		return r.fail(conceptProgression,
			"The measurement console needs to know how many runs to perform.",
			"Send a numeric \"count\" field, e.g. 50.")
	}
	if count < requiredMeasurements {
		return r.fail(conceptSignificance,
			fmt.Sprintf("%d measurements are not enough to trust the statistics. You need at least %d.", count, requiredMeasurements),
			"A handful of rolls can mislead you. Run the full batch.")
	}
	if count > maxMeasurements {
		return r.fail(conceptSignificance,
			fmt.Sprintf("The console caps a batch at %d measurements. %d is far more than the statistics need.", maxMeasurements, count),
			fmt.Sprintf("Anywhere between %d and %d runs will do.", requiredMeasurements, maxMeasurements))
	}

	if r.source == nil {
		r.Init()
	}
	r.measurements = r.measurements[:0]
	for i := 0; i < count; i++ {
		r.measurements = append(r.measurements, weightedFace(r.source.Float()))
	}
	r.advanceTo(1)

	counts := faceCounts(r.measurements)
	return r.pass(conceptMeasurement,
		fmt.Sprintf("%d measurements recorded. Face counts: %s.", count, formatFaceCounts(counts)),
		"Each measurement collapses the die's quantum state to a single face. One roll tells you nothing; many rolls reveal the underlying probability distribution.",
		ActionAnalyzeDistribution)
}

func (r *ProbabilityBay) analyzeDistribution(payload map[string]any) InteractionResult {
	if len(r.measurements) == 0 {
		return r.fail(conceptProgression,
			"There is no data to analyze yet.",
			"Perform the measurements first.")
	}
	identified, ok := intField(payload, "identifiedOutcome")
	if !ok {
		return r.fail(conceptProgression,
			"Which face do you think is most frequent?",
			"Send the face number as \"identifiedOutcome\".")
	}

	mode, modeCount := statisticalMode(r.measurements)
	if identified != mode {
		return r.fail(conceptDistribution,
			fmt.Sprintf("Face %d is not the most frequent outcome. Face %d appeared %d times out of %d.", identified, mode, modeCount, len(r.measurements)),
			"Count how often each face appears and pick the one with the highest count.")
	}

	r.analyzed = true
	r.advanceTo(2)
	return r.pass(conceptDistribution,
		fmt.Sprintf("Correct — face %d dominates with %d of %d measurements.", mode, modeCount, len(r.measurements)),
		"The die is quantum, but its bias is encoded in the amplitudes. Repeated measurement exposes |amplitude|² as frequency.",
		ActionSelectLocker)
}

func (r *ProbabilityBay) selectLocker(payload map[string]any) InteractionResult {
	if !r.analyzed {
		return r.fail(conceptProgression,
			"You haven't identified the dominant outcome yet.",
			"Analyze the distribution before picking a locker.")
	}
	locker, ok := intField(payload, "lockerNumber")
	if !ok {
		return r.fail(conceptProgression,
			"Which locker? The console expects a number.",
			"Send the locker number as \"lockerNumber\".")
	}

	mode, _ := statisticalMode(r.measurements)
	if locker != mode {
		return r.fail(conceptPrediction,
			fmt.Sprintf("Locker %d stays shut. The distribution points elsewhere.", locker),
			"The most probable face marks the locker.")
	}

	r.lockerPicked = true
	r.advanceTo(3)
	return r.pass(conceptPrediction,
		fmt.Sprintf("Locker %d clicks — a keypad slides out.", locker),
		"You just used a probability distribution to make a prediction. That is the heart of quantum mechanics: amplitudes in, statistics out.",
		ActionEnterCode)
}

func (r *ProbabilityBay) enterCode(payload map[string]any) InteractionResult {
	if !r.lockerPicked {
		return r.fail(conceptProgression,
			"No keypad in sight. Find the right locker first.",
			"Select the locker before entering a code.")
	}
	code, ok := stringField(payload, "code")
	if !ok {
		return r.fail(conceptProgression,
			"The keypad expects a code.",
			"Send the code as a string field named \"code\".")
	}

	mode, _ := statisticalMode(r.measurements)
	if code != strconv.Itoa(mode) {
		return r.fail(conceptAppliedStats,
			fmt.Sprintf("The keypad flashes red at \"%s\".", code),
			"The code is the dominant face, typed as digits.")
	}

	return r.finish(conceptAppliedStats,
		"The locker opens. Probability Bay complete!",
		"Quantum outcomes are individually random yet statistically lawful. You cannot predict one roll, but you can bet on fifty.")
}

func (r *ProbabilityBay) ContextualHint() EducationalHint {
	tier := r.tier()
	var text string
	switch r.expectedAction() {
	case ActionPerformMeasurements:
		switch tier {
		case HintGentle:
			text = "The die console is waiting. Gather some data."
		case HintDetailed:
			text = "Run at least 50 measurements so the statistics settle."
		default:
			text = "Submit perform_measurements with count 50. The resulting face counts are everything you need for the rest of the room."
		}
	case ActionAnalyzeDistribution:
		switch tier {
		case HintGentle:
			text = "Look at the histogram. Does one face stand out?"
		case HintDetailed:
			text = "Tally each face across your 50 rolls and pick the most frequent one."
		default:
			mode, count := statisticalMode(r.measurements)
			text = fmt.Sprintf("Face %d appeared %d times — that is the mode of your distribution.", mode, count)
		}
	case ActionSelectLocker:
		switch tier {
		case HintGentle:
			text = "The lockers are numbered like the die faces."
		case HintDetailed:
			text = "The locker matching the dominant face is the one that opens."
		default:
			mode, _ := statisticalMode(r.measurements)
			text = fmt.Sprintf("Open locker %d.", mode)
		}
	default:
		switch tier {
		case HintGentle:
			text = "The code relates to what you measured."
		case HintDetailed:
			text = "Type the dominant face number into the keypad."
		default:
			mode, _ := statisticalMode(r.measurements)
			text = fmt.Sprintf("The code is \"%d\".", mode)
		}
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptDistribution}
}

func (r *ProbabilityBay) Introduction() string {
	return "Welcome to the Probability Bay. The quantum die on the console is biased — " +
		"not broken, biased. A single roll tells you nothing, but enough rolls will " +
		"reveal the hidden probability distribution. Find the dominant outcome and it " +
		"will open the way forward."
}

func (r *ProbabilityBay) StepInstructions() []string {
	return []string{
		"Perform at least 50 measurements of the quantum die.",
		"Analyze the distribution and identify the most frequent face.",
		"Select the locker matching that face.",
		"Enter the face number as the locker code.",
	}
}

func (r *ProbabilityBay) Progress() float64 { return r.progressRatio() }
func (r *ProbabilityBay) IsComplete() bool  { return r.isComplete() }
func (r *ProbabilityBay) State() State      { return r.snapshot() }

// Reset clears progress and reseeds for a fresh attempt.
func (r *ProbabilityBay) Reset() {
	r.resetProgress()
	r.Init()
}

// weightedFace maps a uniform float in [0,1) to a die face in [1,6] using the
// fixed bias weights.
func weightedFace(f float64) int {
	cum := 0.0
	for face, w := range probabilityWeights {
		cum += w
		if f < cum {
			return face + 1
		}
	}
	return len(probabilityWeights)
}

func faceCounts(measurements []int) map[int]int {
	counts := make(map[int]int)
	for _, m := range measurements {
		counts[m]++
	}
	return counts
}

// statisticalMode returns the most frequent face and its count. Ties resolve
// to the lowest face so the answer is stable.
func statisticalMode(measurements []int) (face, count int) {
	counts := faceCounts(measurements)
	faces := make([]int, 0, len(counts))
	for f := range counts {
		faces = append(faces, f)
	}
	sort.Ints(faces)
	for _, f := range faces {
		if counts[f] > count {
			face, count = f, counts[f]
		}
	}
	return face, count
}

func formatFaceCounts(counts map[int]int) string {
	out := ""
	for face := 1; face <= 6; face++ {
		if face > 1 {
			out += ", "
		}
		out += fmt.Sprintf("%d×%d", face, counts[face])
	}
	return out
}
