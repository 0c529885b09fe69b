package gammatone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterFreqsStrictlyIncreasing(t *testing.T) {
	cfs := centerFreqs(64, 80, 4000)
	for i := 1; i < len(cfs); i++ {
		assert.Greater(t, cfs[i], cfs[i-1])
	}
	assert.InDelta(t, erbOf(80), erbOf(cfs[0]), 1e-9)
}

func TestBankUnitGainAtCenterFreq(t *testing.T) {
	bank, err := NewBank(8, 80, 4000, 11025)
	require.NoError(t, err)

	for _, ch := range bank.Channels {
		w := 2 * math.Pi * float64(ch.CenterFreq) / float64(bank.SampleRate)
		z := complex(math.Cos(w), math.Sin(w))
		resp := complex(1.0, 0.0)
		for _, co := range ch.Cascade.Coefs {
			zInv := 1 / z
			num := complex(co.B0, 0) + complex(co.B1, 0)*zInv + complex(co.B2, 0)*zInv*zInv
			den := complex(co.A0, 0) + complex(co.A1, 0)*zInv + complex(co.A2, 0)*zInv*zInv
			resp *= num / den
		}
		mag := math.Hypot(real(resp), imag(resp))
		assert.InDelta(t, 1.0, mag, 1e-6)
	}
}

func TestNewBankRejectsNonPositiveChannelCount(t *testing.T) {
	_, err := NewBank(0, 80, 4000, 11025)
	require.Error(t, err)
}
