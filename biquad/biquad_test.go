package biquad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeIdentityPassthrough(t *testing.T) {
	// a single stage with b0=a0=1 and all other coefficients zero is the
	// identity filter
	c, err := NewCascade([]Coef{{B0: 1, A0: 1}})
	require.NoError(t, err)

	in := []float32{0.1, 0.2, -0.3, 0.4}
	out := make([]float32, len(in))
	require.NoError(t, c.Filter(out, in))
	assert.InDeltaSlice(t, in, out, 1e-6)
}

func TestCascadeRejectsTooManyStages(t *testing.T) {
	coefs := make([]Coef, MaxStages+1)
	_, err := NewCascade(coefs)
	require.Error(t, err)
}

func TestCascadeRejectsEmpty(t *testing.T) {
	_, err := NewCascade(nil)
	require.Error(t, err)
}

func TestCascadeRejectsOverlap(t *testing.T) {
	c, err := NewCascade([]Coef{{B0: 1, A0: 1}})
	require.NoError(t, err)
	buf := make([]float32, 8)
	err = c.Filter(buf[1:], buf[:6])
	require.Error(t, err)
}

func TestCascadeResetClearsState(t *testing.T) {
	c, err := NewCascade([]Coef{{B0: 1, B1: 0.5, A0: 1, A1: 0.2}})
	require.NoError(t, err)
	buf := make([]float32, 4)
	require.NoError(t, c.Filter(buf, []float32{1, 0, 0, 0}))
	assert.NotZero(t, c.States[0])
	c.Reset()
	assert.Zero(t, c.States[0])
}
