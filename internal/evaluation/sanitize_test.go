package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nested struct {
	Value  float64
	Ptr    *float64
	Values []float64
	ByName map[string]float64
	Inner  map[string]struct{ X float64 }
}

func TestSanitizeFloats(t *testing.T) {
	inf := math.Inf(1)
	v := &nested{
		Value:  math.NaN(),
		Ptr:    &inf,
		Values: []float64{1, math.Inf(-1)},
		ByName: map[string]float64{"a": math.NaN(), "b": 2},
		Inner:  map[string]struct{ X float64 }{"k": {X: math.NaN()}},
	}

	sanitizeFloats(v)

	assert.Equal(t, 0.0, v.Value)
	assert.Equal(t, 0.0, *v.Ptr)
	assert.Equal(t, []float64{1, 0}, v.Values)
	assert.Equal(t, map[string]float64{"a": 0, "b": 2}, v.ByName)
	assert.Equal(t, 0.0, v.Inner["k"].X)
}
