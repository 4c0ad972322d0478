package analysis

import (
	"errors"
	"testing"
)

func TestDefaultParams_Valid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() = %v", err)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero capital", func(p *Params) { p.InitialCapital = 0 }},
		{"confidence one", func(p *Params) { p.ConfidenceLevel = 1 }},
		{"bootstrap over limit", func(p *Params) { p.BootstrapIterations = p.MaxBootstrap + 1 }},
		{"no lags", func(p *Params) { p.ACFLags = 0 }},
		{"percentile 50", func(p *Params) { p.ExtremePercentile = 50 }},
		{"tiny lot window", func(p *Params) { p.LotWindow = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}
