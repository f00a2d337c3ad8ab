package rooms

import (
	"strings"
	"testing"
)

// chamberSeq seeds Init with draws that make the hidden target exactly
// (1, 0, 0) and every subsequent measurement noise-free: Init consumes
// 0.9, 0.5, 0.5 for the direction (0.8, 0, 0) normalized, and 0.5 draws
// yield zero noise.
func chamberSeq() []float64 {
	seq := []float64{0.9, 0.5, 0.5}
	for i := 0; i < 30; i++ {
		seq = append(seq, 0.5)
	}
	return seq
}

func newChamber(t *testing.T) *StateChamber {
	t.Helper()
	c := NewStateChamber(seqFactory(chamberSeq()...))
	c.Init()
	return c
}

func TestStateChamberPlaythrough(t *testing.T) {
	c := newChamber(t)

	for _, axis := range []string{"x", "y", "z"} {
		result := c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": axis})
		if !result.Success {
			t.Fatalf("measure_axis(%s) failed: %+v", axis, result)
		}
	}
	if c.State().CurrentStep != 1 {
		t.Errorf("step after sampling all axes = %d, want 1", c.State().CurrentStep)
	}

	result := c.ValidateAction(ActionReconstructState, nil)
	if !result.Success {
		t.Fatalf("reconstruct_state failed: %+v", result)
	}
	if c.magnitude != 1.0 {
		t.Fatalf("reconstructed magnitude = %v, want exactly 1.0", c.magnitude)
	}

	result = c.ValidateAction(ActionApplyFilter, map[string]any{"strength": 1.0})
	if !result.Success {
		t.Fatalf("apply_filter failed: %+v", result)
	}
	if !result.RoomComplete || !c.IsComplete() {
		t.Error("room not complete after filter")
	}
}

func TestAxisMeasurementLimit(t *testing.T) {
	c := newChamber(t)

	for i := 0; i < 3; i++ {
		result := c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": "x"})
		if !result.Success {
			t.Fatalf("measurement %d failed: %+v", i+1, result)
		}
	}
	stored := append([]float64(nil), c.samples["x"]...)

	result := c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": "x"})
	if result.Success {
		t.Fatal("4th measurement on x succeeded")
	}
	if result.ConceptValidation.Concept != conceptMeasureLimits {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptMeasureLimits)
	}
	if len(c.samples["x"]) != len(stored) {
		t.Errorf("rejected measurement altered stored samples: %v -> %v", stored, c.samples["x"])
	}
	for i := range stored {
		if c.samples["x"][i] != stored[i] {
			t.Errorf("sample %d changed: %v -> %v", i, stored[i], c.samples["x"][i])
		}
	}
}

func TestReconstructRequiresAllAxes(t *testing.T) {
	c := newChamber(t)
	c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": "x"})

	result := c.ValidateAction(ActionReconstructState, nil)
	if result.Success {
		t.Fatal("reconstruct succeeded with missing axes")
	}
	if result.ConceptValidation.Concept != conceptProgression {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptProgression)
	}
	if !strings.Contains(result.ConceptValidation.Feedback, "y") || !strings.Contains(result.ConceptValidation.Feedback, "z") {
		t.Errorf("feedback does not name missing axes: %q", result.ConceptValidation.Feedback)
	}
}

func TestFilterBoundary(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		want     bool
	}{
		{"exactly 0.9 is outside the open interval", 0.9, false},
		{"exactly 1.0 succeeds", 1.0, true},
		{"just inside low edge", 0.901, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChamber(t)
			for _, axis := range []string{"x", "y", "z"} {
				c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": axis})
			}
			c.ValidateAction(ActionReconstructState, nil)
			// Magnitude is exactly 1.0 with the canned draws, so the
			// filtered magnitude equals the strength itself.

			result := c.ValidateAction(ActionApplyFilter, map[string]any{"strength": tt.strength})
			if result.Success != tt.want {
				t.Errorf("apply_filter(%v) success = %v, want %v: %q",
					tt.strength, result.Success, tt.want, result.ConceptValidation.Feedback)
			}
		})
	}
}

func TestFilterTooStrongFails(t *testing.T) {
	// A diagonal target (1,1,1)/sqrt(3) with near-maximal positive noise on
	// each single reading inflates the reconstructed magnitude to about 1.17,
	// past the upper window edge. Full dial strength then lands at the
	// magnitude itself, which must be rejected as too strong.
	c := NewStateChamber(seqFactory(0.9, 0.9, 0.9, 0.999, 0.999, 0.999))
	c.Init()

	for _, axis := range []string{"x", "y", "z"} {
		if result := c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": axis}); !result.Success {
			t.Fatalf("measure_axis(%s) failed: %+v", axis, result)
		}
	}
	if result := c.ValidateAction(ActionReconstructState, nil); !result.Success {
		t.Fatalf("reconstruct_state failed: %+v", result)
	}
	if c.magnitude < filterWindowHigh {
		t.Fatalf("reconstructed magnitude = %v, want >= %v for this sequence", c.magnitude, filterWindowHigh)
	}

	result := c.ValidateAction(ActionApplyFilter, map[string]any{"strength": 1.0})
	if result.Success {
		t.Fatalf("apply_filter succeeded at magnitude %v", c.magnitude)
	}
	if result.ConceptValidation.Concept != conceptNormalization {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptNormalization)
	}
	if !strings.Contains(result.ConceptValidation.Feedback, "strong") {
		t.Errorf("feedback does not name the direction: %q", result.ConceptValidation.Feedback)
	}

	// Dialing the strength down to 1/magnitude brings it inside the window.
	result = c.ValidateAction(ActionApplyFilter, map[string]any{"strength": 1 / c.magnitude})
	if !result.Success {
		t.Errorf("apply_filter(1/magnitude) failed: %+v", result)
	}
}

func TestFilterStrengthRange(t *testing.T) {
	c := newChamber(t)
	for _, axis := range []string{"x", "y", "z"} {
		c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": axis})
	}
	c.ValidateAction(ActionReconstructState, nil)

	result := c.ValidateAction(ActionApplyFilter, map[string]any{"strength": 1.5})
	if result.Success {
		t.Fatal("strength outside [0,1] accepted")
	}
	if result.ConceptValidation.Concept != conceptProgression {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptProgression)
	}
}

func TestDegenerateSourceFallsBackToXAxis(t *testing.T) {
	// A source stuck at 0.5 maps every component to zero, so the direction
	// draw can never normalize. Init must still terminate and settle on the
	// x axis instead of spinning on the stream.
	c := NewStateChamber(seqFactory(0.5))
	c.Init()

	if c.target != [3]float64{1, 0, 0} {
		t.Fatalf("target = %v, want the x axis fallback", c.target)
	}
}

func TestInvalidAxis(t *testing.T) {
	c := newChamber(t)

	result := c.ValidateAction(ActionMeasureAxis, map[string]any{"axis": "w"})
	if result.Success {
		t.Fatal("invalid axis accepted")
	}
	if result.ConceptValidation.Concept != conceptProgression {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptProgression)
	}
}

func TestFilterBeforeReconstruct(t *testing.T) {
	c := newChamber(t)

	result := c.ValidateAction(ActionApplyFilter, map[string]any{"strength": 1.0})
	if result.Success {
		t.Fatal("filter succeeded with no reconstructed state")
	}
	if result.ConceptValidation.Concept != conceptProgression {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptProgression)
	}
}
