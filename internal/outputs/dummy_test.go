package outputs

import (
	"testing"
)

func TestDummyCollection(t *testing.T) {
	count := uint(3)
	dc := NewDummyCollection(count)

	if err := dc.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	if got := dc.CountOutputs(); got != count {
		t.Errorf("CountOutputs() = %d, want %d", got, count)
	}

	if got := len(dc.ListOutputs()); got != int(count) {
		t.Errorf("ListOutputs() returned %d outputs, want %d", got, count)
	}

	out, err := dc.GetOutput(1)
	if err != nil {
		t.Fatalf("GetOutput(1) failed: %v", err)
	}

	if _, err := dc.GetOutput(count); err == nil {
		t.Error("GetOutput() with invalid ID should return error")
	}

	state, err := out.GetState()
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	if state {
		t.Error("outputs should start off")
	}

	if err := SetState(out, true); err != nil {
		t.Fatalf("SetState(true) failed: %v", err)
	}
	if state, _ := out.GetState(); !state {
		t.Error("output should be on after SetState(true)")
	}

	if err := SetState(out, false); err != nil {
		t.Fatalf("SetState(false) failed: %v", err)
	}
	if state, _ := out.GetState(); state {
		t.Error("output should be off after SetState(false)")
	}

	if got := dc.Dummy(1).Writes(); got != 2 {
		t.Errorf("Writes() = %d, want 2", got)
	}

	if err := dc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
}

func TestDummyOutputFailing(t *testing.T) {
	do := &DummyOutput{id: 7}
	do.SetFailing(true)

	if err := do.TurnOn(); err == nil {
		t.Fatal("TurnOn() should fail when the output is failing")
	}
	if state, _ := do.GetState(); state {
		t.Error("failed write must not change state")
	}
	if do.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", do.Writes())
	}

	if expected := "dummy:7"; do.String() != expected {
		t.Errorf("String() = %q, want %q", do.String(), expected)
	}
}
