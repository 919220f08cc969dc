package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.05, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 1))
	assert.Equal(t, 1.0, Clamp(math.Inf(1), 0, 1))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.61, RoundTo(0.6099999, 2))
	assert.Equal(t, 0.5, RoundTo(0.499, 2))
	assert.Equal(t, 1.0, RoundTo(1, 2))
}
