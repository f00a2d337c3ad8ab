package rooms

import (
	"fmt"
	"math"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
)

// Tunneling Vault actions.
const (
	ActionScanBarrier         = "scan_barrier"
	ActionComputeTransmission = "compute_transmission"
	ActionAttemptTunneling    = "attempt_tunneling"
	ActionOpenVault           = "open_vault"
)

const (
	vaultMaxSteps         = 4
	transmissionTolerance = 0.005
	particleEnergy        = 0.5 // eV

	conceptWaveFunction = "wave-function"
	conceptTunneling    = "quantum-tunneling"
	conceptPenetration  = "barrier-penetration"
	conceptProbability  = "quantum-probability"
)

// TunnelingVault teaches barrier penetration: the vault door is a potential
// barrier. The player scans its width and height, computes the transmission
// coefficient T = e^(−2κL), then sends the particle at the wall until a draw
// lands under T.
type TunnelingVault struct {
	tracker

	factory engine.Factory
	attempt uint64
	source  engine.Source

	barrierWidth  float64 // nm
	barrierHeight float64 // eV
	transmission  float64

	scanned       bool
	computed      bool
	tunneled      bool
	throwAttempts int
}

// NewTunnelingVault creates the engine. Call Init before use.
func NewTunnelingVault(factory engine.Factory) *TunnelingVault {
	return &TunnelingVault{
		tracker: newTracker(vaultMaxSteps),
		factory: factory,
	}
}

func (r *TunnelingVault) ID() RoomID   { return RoomTunnelingVault }
func (r *TunnelingVault) Name() string { return "Tunneling Vault" }

// Init draws a fresh barrier and clears the experiment.
func (r *TunnelingVault) Init() {
	r.attempt++
	r.source = r.factory(string(r.ID()), r.attempt)

	// Width 0.5–1.5 nm, height 1–3 eV. With E = 0.5 eV this keeps T in a
	// playable range (roughly 0.01 to 0.5).
	r.barrierWidth = 0.5 + r.source.Float()
	r.barrierHeight = 1 + r.source.Float()*2
	kappa := math.Sqrt(r.barrierHeight - particleEnergy)
	r.transmission = math.Exp(-2 * kappa * r.barrierWidth)

	r.scanned = false
	r.computed = false
	r.tunneled = false
	r.throwAttempts = 0
}

func (r *TunnelingVault) ValidateAction(action string, payload map[string]any) InteractionResult {
	r.lastAction = action
	if r.isComplete() {
		return r.alreadySatisfied(r.Name())
	}

	switch action {
	case ActionScanBarrier:
		return r.scanBarrier()
	case ActionComputeTransmission:
		return r.computeTransmission(payload)
	case ActionAttemptTunneling:
		return r.attemptTunneling()
	case ActionOpenVault:
		return r.openVault()
	default:
		return r.unknownAction(action, r.expectedAction())
	}
}

func (r *TunnelingVault) expectedAction() string {
	switch {
	case !r.scanned:
		return ActionScanBarrier
	case !r.computed:
		return ActionComputeTransmission
	case !r.tunneled:
		return ActionAttemptTunneling
	default:
		return ActionOpenVault
	}
}

func (r *TunnelingVault) scanBarrier() InteractionResult {
	if r.source == nil {
		r.Init()
	}
	r.scanned = true
	r.advanceTo(1)

	return r.pass(conceptWaveFunction,
		fmt.Sprintf("Scan complete: barrier width L = %.3f nm, height V = %.3f eV. Your particle carries E = %.1f eV.",
			r.barrierWidth, r.barrierHeight, particleEnergy),
		"Classically a particle with E < V bounces off. But the wave function doesn't stop at the wall — it decays inside it, and a tail leaks out the far side.",
		ActionComputeTransmission)
}

func (r *TunnelingVault) computeTransmission(payload map[string]any) InteractionResult {
	if !r.scanned {
		return r.fail(conceptProgression,
			"You don't know the barrier's dimensions yet.",
			"Scan the barrier first.")
	}
	probability, ok := floatField(payload, "probability")
	if !ok {
		return r.fail(conceptProgression,
			"What transmission probability did you compute?",
			"Send your result as \"probability\".")
	}

	if math.Abs(probability-r.transmission) > transmissionTolerance {
		kappa := math.Sqrt(r.barrierHeight - particleEnergy)
		return r.fail(conceptTunneling,
			fmt.Sprintf("%.4f is off. With κ = √(V−E) = %.3f and L = %.3f, T = e^(−2κL) = %.4f.",
				probability, kappa, r.barrierWidth, r.transmission),
			"Compute κ from the height, multiply by twice the width, and exponentiate with a minus sign.")
	}

	r.computed = true
	r.advanceTo(2)
	return r.pass(conceptTunneling,
		fmt.Sprintf("Correct: T = %.4f. Roughly %d in 1000 attempts should make it through.", r.transmission, int(r.transmission*1000)),
		"The transmission coefficient falls exponentially with both barrier width and √(V−E) — which is why tunneling only matters at quantum scales.",
		ActionAttemptTunneling)
}

func (r *TunnelingVault) attemptTunneling() InteractionResult {
	if !r.computed {
		return r.fail(conceptProgression,
			"The launcher is calibrated by the transmission coefficient. Compute it first.",
			"Work out T before throwing particles at the wall.")
	}

	r.throwAttempts++
	draw := r.source.Float()
	if draw >= r.transmission {
		// Reflection is real physics, but it still counts as a failed
		// validation for hint escalation.
		return r.fail(conceptProbability,
			fmt.Sprintf("Attempt %d: the particle reflects off the barrier.", r.throwAttempts),
			fmt.Sprintf("Each attempt succeeds with probability T = %.4f. Keep trying — tunneling is a numbers game.", r.transmission))
	}

	r.tunneled = true
	r.advanceTo(3)
	return r.pass(conceptPenetration,
		fmt.Sprintf("Attempt %d: the particle appears on the far side of the barrier!", r.throwAttempts),
		"The particle never had the energy to go over the wall — its wave function simply had nonzero amplitude beyond it.",
		ActionOpenVault)
}

func (r *TunnelingVault) openVault() InteractionResult {
	if !r.tunneled {
		return r.fail(conceptProgression,
			"The vault mechanism is still untouched on the far side.",
			"Tunnel a particle through to trip it first.")
	}

	return r.finish(conceptPenetration,
		"The tunneled particle trips the lock from inside. Tunneling Vault complete!",
		"From alpha decay to flash memory, the quantum world routinely walks through walls — with exactly the probability you computed.")
}

func (r *TunnelingVault) ContextualHint() EducationalHint {
	tier := r.tier()
	var text string
	switch r.expectedAction() {
	case ActionScanBarrier:
		switch tier {
		case HintGentle:
			text = "Know your enemy. The vault door is a barrier like any other."
		case HintDetailed:
			text = "Scan the barrier to learn its width and height."
		default:
			text = "Submit scan_barrier — you need L and V before anything else in this room."
		}
	case ActionComputeTransmission:
		switch tier {
		case HintGentle:
			text = "How likely is a particle to make it through? There's a formula."
		case HintDetailed:
			text = "T = e^(−2κL), with κ = √(V−E)."
		default:
			kappa := math.Sqrt(r.barrierHeight - particleEnergy)
			text = fmt.Sprintf("κ = √(%.3f − %.1f) = %.3f, so T = e^(−2·%.3f·%.3f) = %.4f.",
				r.barrierHeight, particleEnergy, kappa, kappa, r.barrierWidth, r.transmission)
		}
	case ActionAttemptTunneling:
		switch tier {
		case HintGentle:
			text = "The odds are known. All that's left is to play them."
		case HintDetailed:
			text = "Each launch is an independent trial with success probability T. Reflections are expected."
		default:
			text = fmt.Sprintf("Keep launching — with T = %.4f the particle will get through; every reflection is just probability doing its job.", r.transmission)
		}
	default:
		text = "A particle is on the far side. Open the vault."
	}
	return EducationalHint{Tier: tier, Text: text, Concept: conceptTunneling}
}

func (r *TunnelingVault) Introduction() string {
	return "The Tunneling Vault's door has no handle on this side — but quantum particles " +
		"don't need one. Scan the barrier, compute how likely a particle is to tunnel " +
		"through, and keep throwing until one does."
}

func (r *TunnelingVault) StepInstructions() []string {
	return []string{
		"Scan the barrier to learn its width and height.",
		"Compute the transmission coefficient T = e^(−2κL).",
		"Launch particles at the barrier until one tunnels through.",
		"Open the vault.",
	}
}

func (r *TunnelingVault) Progress() float64 { return r.progressRatio() }
func (r *TunnelingVault) IsComplete() bool  { return r.isComplete() }
func (r *TunnelingVault) State() State      { return r.snapshot() }

// Reset clears progress and draws a new barrier.
func (r *TunnelingVault) Reset() {
	r.resetProgress()
	r.Init()
}
