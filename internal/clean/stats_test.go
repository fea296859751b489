package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, median([]float64{3, 1, 2}), 0)
	assert.InDelta(t, 2.5, median([]float64{4, 1, 3, 2}), 0)

	in := []float64{3, 1, 2}
	median(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "input order preserved")
}

func TestFirstMode(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
		ok   bool
	}{
		{name: "single winner", in: []float64{1, 2, 2, 3}, want: 2, ok: true},
		{name: "tie picks smallest", in: []float64{9, 4, 9, 4, 1}, want: 4, ok: true},
		{name: "late larger tie", in: []float64{2, 2, 7, 7}, want: 2, ok: true},
		{name: "all unique", in: []float64{5, 3, 8}, want: 3, ok: true},
		{name: "empty", in: nil, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstMode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0)
		})
	}

	s, ok := firstMode([]string{"b", "a", "b", "a"})
	assert.True(t, ok)
	assert.Equal(t, "a", s)
}
