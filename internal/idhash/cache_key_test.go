package idhash

import (
	"testing"

	"strategy-validator/internal/analysis"
)

func TestComputeCacheKey(t *testing.T) {
	p := analysis.DefaultParams()
	wf := 72.5

	tests := []struct {
		name        string
		tableHash   string
		walkForward *float64
	}{
		{name: "without walk-forward", tableHash: "abc123def456"},
		{name: "with walk-forward", tableHash: "xyz789ghi012", walkForward: &wf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCacheKey(tt.tableHash, p, tt.walkForward)

			if len(got) != 64 {
				t.Errorf("ComputeCacheKey() length = %d, want 64", len(got))
			}

			// Same inputs should produce same output
			got2 := ComputeCacheKey(tt.tableHash, p, tt.walkForward)
			if got != got2 {
				t.Errorf("ComputeCacheKey() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeCacheKey_DifferentInputs(t *testing.T) {
	p := analysis.DefaultParams()
	base := ComputeCacheKey("table", p, nil)

	if base == ComputeCacheKey("other_table", p, nil) {
		t.Error("Different table hash should produce different key")
	}

	seeded := p
	seeded.Seed = 7
	if base == ComputeCacheKey("table", seeded, nil) {
		t.Error("Different seed should produce different key")
	}

	wf := 50.0
	if base == ComputeCacheKey("table", p, &wf) {
		t.Error("Supplied walk-forward score should produce different key")
	}
}

func TestComputeRunID(t *testing.T) {
	a := ComputeRunID("key")
	b := ComputeRunID("key")
	if a != b {
		t.Errorf("ComputeRunID not deterministic: %s != %s", a, b)
	}
	if a == ComputeRunID("other") {
		t.Error("Different keys should produce different run IDs")
	}
	if len(a) != 36 {
		t.Errorf("ComputeRunID length = %d, want 36", len(a))
	}
}
