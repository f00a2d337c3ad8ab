package rooms

import (
	"strings"
	"testing"
)

func newArchive(t *testing.T) *QuantumArchive {
	t.Helper()
	a := NewQuantumArchive()
	a.Init()
	return a
}

func connectAll(t *testing.T, a *QuantumArchive) {
	t.Helper()
	for _, c := range archiveRequired {
		result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": c})
		if !result.Success {
			t.Fatalf("connect_concept(%s) failed: %+v", c, result)
		}
	}
}

func TestArchivePlaythrough(t *testing.T) {
	a := newArchive(t)
	connectAll(t, a)

	if a.State().CurrentStep != 1 {
		t.Errorf("step after all connections = %d, want 1", a.State().CurrentStep)
	}

	result := a.ValidateAction(ActionSynthesizeKnowledge, nil)
	if !result.Success {
		t.Fatalf("synthesize_knowledge failed: %+v", result)
	}

	result = a.ValidateAction(ActionUnlockArchive, nil)
	if !result.Success || !result.RoomComplete {
		t.Fatalf("unlock_archive did not complete the room: %+v", result)
	}
	if !a.IsComplete() {
		t.Error("archive not complete")
	}
}

func TestIrrelevantConceptConsumesAttempt(t *testing.T) {
	a := newArchive(t)

	result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "astrology"})
	if result.Success {
		t.Fatal("irrelevant concept accepted")
	}
	if result.ConceptValidation.Concept != conceptRelevance {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptRelevance)
	}
	if a.connectionAttempts != 1 {
		t.Errorf("attempts = %d, want 1", a.connectionAttempts)
	}
}

func TestConnectionLimitExhaustion(t *testing.T) {
	a := newArchive(t)

	for i := 0; i < maxConnectionAttempts; i++ {
		a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "wrong-idea"})
	}

	result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "superposition"})
	if result.Success {
		t.Fatal("connection accepted after port exhaustion")
	}
	if result.ConceptValidation.Concept != conceptConnectionLimits {
		t.Errorf("concept = %q, want %q", result.ConceptValidation.Concept, conceptConnectionLimits)
	}
	// Exhaustion rejections must not consume further attempts.
	if a.connectionAttempts != maxConnectionAttempts {
		t.Errorf("attempts = %d, want %d", a.connectionAttempts, maxConnectionAttempts)
	}
}

func TestReconnectIsFreeAndIdempotent(t *testing.T) {
	a := newArchive(t)

	a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "superposition"})
	attempts := a.connectionAttempts

	result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "superposition"})
	if !result.Success {
		t.Fatalf("re-connecting a wired concept failed: %+v", result)
	}
	if a.connectionAttempts != attempts {
		t.Errorf("re-connection consumed an attempt: %d -> %d", attempts, a.connectionAttempts)
	}
}

func TestSynthesisRequiresFullSet(t *testing.T) {
	a := newArchive(t)
	a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "entanglement"})

	result := a.ValidateAction(ActionSynthesizeKnowledge, nil)
	if result.Success {
		t.Fatal("synthesis succeeded with missing concepts")
	}
	if !strings.Contains(result.ConceptValidation.Feedback, "superposition") {
		t.Errorf("feedback does not name missing concepts: %q", result.ConceptValidation.Feedback)
	}
}

func TestConceptNormalization(t *testing.T) {
	a := newArchive(t)

	result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "  Superposition "})
	if !result.Success {
		t.Fatalf("case/space variant rejected: %+v", result)
	}
	if !a.connected["superposition"] {
		t.Error("normalized concept not recorded")
	}
}

func TestResetRestoresConnectionPorts(t *testing.T) {
	a := newArchive(t)
	for i := 0; i < maxConnectionAttempts; i++ {
		a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "wrong-idea"})
	}
	a.Reset()

	if a.connectionAttempts != 0 {
		t.Errorf("attempts after reset = %d, want 0", a.connectionAttempts)
	}
	result := a.ValidateAction(ActionConnectConcept, map[string]any{"concept": "entanglement"})
	if !result.Success {
		t.Errorf("connection failed after reset: %+v", result)
	}
}
