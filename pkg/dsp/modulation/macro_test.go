package modulation

import "testing"

func TestMacroMapsInputThroughMidpoint(t *testing.T) {
	m := NewMacro("test", 0.0)
	m.Midpoint.SetPlain(0.5)
	m.Input.SetPlain(1.0)
	m.Min.SetPlain(0.0)
	m.Max.SetPlain(1.0)
	m.Scale.SetPlain(1.0)

	m.Update(0)

	if got := m.Value(0); got < 0.99 || got > 1.01 {
		t.Fatalf("expected macro to map input=1.0 to output near 1.0, got %v", got)
	}
}

func TestMacroUpdateGuardBreaksRecursion(t *testing.T) {
	m := NewMacro("test", 0.5)

	var depth int
	var recurse func(channel int)
	recurse = func(channel int) {
		depth++
		if depth > 3 {
			t.Fatal("Macro.Update recursed instead of no-oping while already updating")
		}
		m.Update(channel) // reentrant call from "inside" Update
	}

	orig := m.isUpdating
	m.isUpdating = true
	recurse(0)
	m.isUpdating = orig
}

func TestMacroSkipsRecomputeWhenNothingChanged(t *testing.T) {
	m := NewMacro("test", 0.5)
	m.Update(0)
	before := m.ChangeIndex(0)

	m.Update(0) // nothing changed since the last Update

	if m.ChangeIndex(0) != before {
		t.Fatalf("expected no-op Update not to bump the change index")
	}
}

func TestMidiControllerPerChannelIndependence(t *testing.T) {
	mc := NewMidiController()
	mc.Change(0, 0.25)
	mc.Change(1, 0.75)

	if mc.Value(0) == mc.Value(1) {
		t.Fatalf("expected independent channel values, got equal %v", mc.Value(0))
	}
	if mc.ChangeIndex(0) != 1 || mc.ChangeIndex(1) != 1 {
		t.Fatalf("expected each channel's index bumped exactly once")
	}
}
