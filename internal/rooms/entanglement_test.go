package rooms

import (
	"math"
	"strings"
	"testing"
)

// A cycling 0.5 draw zeroes the correlation noise, pinning S to 4/√2 ≈ 2.828.
func newMeasuredBridge(t *testing.T) *EntanglementBridge {
	t.Helper()
	bridge := NewEntanglementBridge(seqFactory(0.5))
	bridge.Init()

	result := bridge.ValidateAction(ActionMeasureCorrelations, map[string]any{"count": 100})
	if !result.Success {
		t.Fatalf("measure_correlations failed: %+v", result)
	}
	return bridge
}

func TestBridgePlaythrough(t *testing.T) {
	bridge := newMeasuredBridge(t)

	wantS := 4 / math.Sqrt2
	if math.Abs(bridge.bellS-wantS) > 1e-9 {
		t.Fatalf("bellS = %v, want %v", bridge.bellS, wantS)
	}

	result := bridge.ValidateAction(ActionComputeBellParameter, map[string]any{"bellValue": wantS})
	if !result.Success {
		t.Fatalf("compute_bell_parameter failed: %+v", result)
	}

	result = bridge.ValidateAction(ActionApplyEntanglement, map[string]any{"useEntangled": true})
	if !result.Success {
		t.Fatalf("apply_entanglement failed: %+v", result)
	}

	result = bridge.ValidateAction(ActionConfirmBridge, nil)
	if !result.Success || !result.RoomComplete {
		t.Fatalf("confirm_bridge did not complete the room: %+v", result)
	}
}

func TestBellValueWithinTolerance(t *testing.T) {
	bridge := newMeasuredBridge(t)

	result := bridge.ValidateAction(ActionComputeBellParameter, map[string]any{"bellValue": bridge.bellS + 0.09})
	if !result.Success {
		t.Errorf("value inside tolerance rejected: %+v", result)
	}
}

func TestWrongBellValueNamesComputedS(t *testing.T) {
	bridge := newMeasuredBridge(t)

	result := bridge.ValidateAction(ActionComputeBellParameter, map[string]any{"bellValue": 2.0})
	if result.Success {
		t.Fatal("wrong Bell value accepted")
	}
	if !strings.Contains(result.ConceptValidation.Feedback, "2.828") {
		t.Errorf("feedback does not name the computed S: %q", result.ConceptValidation.Feedback)
	}
}

func TestClassicalSourceRejected(t *testing.T) {
	bridge := newMeasuredBridge(t)
	bridge.ValidateAction(ActionComputeBellParameter, map[string]any{"bellValue": bridge.bellS})

	result := bridge.ValidateAction(ActionApplyEntanglement, map[string]any{"useEntangled": false})
	if result.Success {
		t.Fatal("classical source accepted")
	}
	if result.ConceptValidation.Concept != conceptEntanglement {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptEntanglement)
	}
}

func TestTooFewPairs(t *testing.T) {
	bridge := NewEntanglementBridge(seqFactory(0.5))
	bridge.Init()

	result := bridge.ValidateAction(ActionMeasureCorrelations, map[string]any{"count": 10})
	if result.Success {
		t.Fatal("10 pairs accepted")
	}
	if result.ConceptValidation.Concept != conceptSignificance {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptSignificance)
	}
}

func TestComputeBeforeMeasuring(t *testing.T) {
	bridge := NewEntanglementBridge(seqFactory(0.5))
	bridge.Init()

	result := bridge.ValidateAction(ActionComputeBellParameter, map[string]any{"bellValue": 2.8})
	if result.Success {
		t.Fatal("compute succeeded with no data")
	}
	if result.ConceptValidation.Concept != conceptProgression {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptProgression)
	}
}
