package rooms

import (
	"fmt"
	"sort"
	"strings"
)

// Quantum Archive actions.
const (
	ActionConnectConcept      = "connect_concept"
	ActionSynthesizeKnowledge = "synthesize_knowledge"
	ActionUnlockArchive       = "unlock_archive"
)

const (
	archiveMaxSteps       = 3
	maxConnectionAttempts = 8

	conceptRelevance        = "concept-relevance"
	conceptConnectionLimits = "connection-limits"
	conceptSynthesis        = "concept-synthesis"
	conceptMastery          = "quantum-mastery"
)

// archiveRequired is the set of concepts the archive terminal accepts — one
// from each of the preceding rooms.
var archiveRequired = []string{
	"quantum-measurement",
	"quantum-state",
	"superposition",
	"entanglement",
	"quantum-tunneling",
}

// QuantumArchive is the final synthesis room: the player wires the concepts
// learned in the other five rooms into the archive terminal, with a limited
// number of connection attempts, then synthesizes and unlocks the archive.
// The required set is fixed puzzle data, so this room draws nothing from the
// float stream.
type QuantumArchive struct {
	tracker

	connected          map[string]bool
	connectionAttempts int
	synthesized        bool
}

// NewQuantumArchive creates the engine. Call Init before use.
func NewQuantumArchive() *QuantumArchive {
	return &QuantumArchive{
		tracker:   newTracker(archiveMaxSteps),
		connected: make(map[string]bool),
	}
}

func (r *QuantumArchive) ID() RoomID   { return RoomQuantumArchive }
func (r *QuantumArchive) Name() string { return "Quantum Archive" }

// Init clears the terminal's connections.
func (r *QuantumArchive) Init() {
	r.connected = make(map[string]bool)
	r.connectionAttempts = 0
	r.synthesized = false
}

func (r *QuantumArchive) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionConnectConcept:
		return r.connectConcept(payload)
	case ActionSynthesizeKnowledge:
		return r.synthesizeKnowledge()
	case ActionUnlockArchive:
		return r.unlockArchive()
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *QuantumArchive) expectedAction() string {
	switch {
	case len(r.missingConcepts()) > 0:
		return ActionConnectConcept
	case !r.synthesized:
		return ActionSynthesizeKnowledge
	default:
		return ActionUnlockArchive
	}
}

func (r *QuantumArchive) missingConcepts() []string {
	var missing []string
	for _, c := range archiveRequired {
		if !r.connected[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func isArchiveConcept(concept string) bool {
	for _, c := range archiveRequired {
		if c == concept {
			return true
		}
	}
	return false
}

func (r *QuantumArchive) connectConcept(payload map[string]any) InteractionResult {
	concept, ok := stringField(payload, "concept")
	if !ok {
		return r.fail(conceptProgression,
			"The terminal needs a concept to wire in.",
			"Send the concept tag as \"concept\".")
	}
	concept = strings.ToLower(strings.TrimSpace(concept))

	// Re-connecting an already-wired concept neither helps nor costs.
	if r.connected[concept] {
		return r.pass(conceptSynthesis,
			fmt.Sprintf("\"%s\" is already wired into the terminal.", concept),
			"",
			r.expectedAction())
	}

	// Exhaustion is a precondition failure; it must not consume attempts.
	if r.connectionAttempts >= maxConnectionAttempts {
		return r.fail(conceptConnectionLimits,
			fmt.Sprintf("The terminal's %d connection ports are burned out.", maxConnectionAttempts),
			"Reset the room to rewire the archive from scratch.")
	}

	r.connectionAttempts++
	if !isArchiveConcept(concept) {
		return r.fail(conceptRelevance,
			fmt.Sprintf("The terminal rejects \"%s\" — it doesn't resonate with the archive's core.", concept),
			"The archive wants the single key idea from each room you've passed through.")
	}

	r.connected[concept] = true
	missing := r.missingConcepts()
	if len(missing) == 0 {
		r.advanceTo(1)
		return r.pass(conceptSynthesis,
			fmt.Sprintf("\"%s\" locks in — all five concepts are wired. The terminal hums.", concept),
			"Quantum mechanics isn't five separate tricks; measurement, states, superposition, entanglement, and tunneling are one formalism seen from five angles.",
			ActionSynthesizeKnowledge)
	}

	return r.pass(conceptSynthesis,
		fmt.Sprintf("\"%s\" locks in. %d concept(s) still missing.", concept, len(missing)),
		"",
		ActionConnectConcept)
}

func (r *QuantumArchive) synthesizeKnowledge() InteractionResult {
	if missing := r.missingConcepts(); len(missing) > 0 {
		sorted := append([]string(nil), missing...)
		sort.Strings(sorted)
		return r.fail(conceptProgression,
			fmt.Sprintf("Synthesis fails — the lattice is missing: %s.", strings.Join(sorted, ", ")),
			"Every room's key concept has to be wired in before the archive can fuse them.")
	}

	r.synthesized = true
	r.advanceTo(2)
	return r.pass(conceptSynthesis,
		"The five concepts fuse into a single shimmering lattice.",
		"States evolve in superposition, entangle with each other, tunnel through barriers, and collapse under measurement — one theory, end to end.",
		ActionUnlockArchive)
}

func (r *QuantumArchive) unlockArchive() InteractionResult {
	if !r.synthesized {
		return r.fail(conceptProgression,
			"The archive door doesn't respond — the knowledge lattice is incomplete.",
			"Synthesize the connected concepts first.")
	}

	return r.finish(conceptMastery,
		"The Quantum Archive opens. You have mastered all six rooms!",
		"Everything in the archive follows from what you've already done with your own hands. That is the point.")
}

func (r *QuantumArchive) ContextualHint() EducationalHint {
	tier := r.tier()
	var text string
	switch r.expectedAction() {
	case ActionConnectConcept:
		attemptsLeft := maxConnectionAttempts - r.connectionAttempts
		switch tier {
		case HintGentle:
			text = "Think back through the rooms. What did each one teach you?"
		case HintDetailed:
			text = fmt.Sprintf("One key concept per room, five in total. %d connection attempt(s) remain.", attemptsLeft)
		default:
			missing := r.missingConcepts()
			sort.Strings(missing)
			text = fmt.Sprintf("Still missing: %s.", strings.Join(missing, ", "))
		}
	case ActionSynthesizeKnowledge:
		switch tier {
		case HintGentle:
			text = "All five ports glow. The terminal is waiting for one more command."
		case HintDetailed:
			text = "Synthesize the wired concepts into a single lattice."
		default:
			text = "Submit synthesize_knowledge — the connections are complete."
		}
	default:
		text = "The lattice is fused. Unlock the archive."
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptSynthesis}
}

func (r *QuantumArchive) Introduction() string {
	return "The Quantum Archive holds everything — but its door only answers to " +
		"understanding. Wire the key concept from each room into the terminal, fuse " +
		"them into one picture, and the archive is yours. Mind the ports: they burn " +
		"out after too many bad connections."
}

func (r *QuantumArchive) StepInstructions() []string {
	return []string{
		"Connect the key concept from each of the five rooms (limited attempts).",
		"Synthesize the connected concepts into a single lattice.",
		"Unlock the archive.",
	}
}

func (r *QuantumArchive) Progress() float64 { return r.progressRatio() }
func (r *QuantumArchive) IsComplete() bool  { return r.isComplete() }
func (r *QuantumArchive) State() State      { return r.snapshot() }

// Reset clears progress and the terminal's connections.
func (r *QuantumArchive) Reset() {
	r.resetProgress()
	r.Init()
}
