package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("party")

	first := gen.Next()
	second := gen.Next()

	if first != "party-1" || second != "party-2" {
		t.Fatalf("identifiers = %q, %q, want party-1 and party-2", first, second)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("note")
	_ = gen.Next()
	gen.SetCounter(0)
	gen.SetPrefix("log")

	if next := gen.Next(); next != "log-1" {
		t.Fatalf("identifier after reset = %q, want log-1", next)
	}
}
