package spectrum

import (
	"math"
	"testing"

	"github.com/pesolab/pespec/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func testMeta() map[string]any {
	return map[string]any{"name": "Fe 2p", "filename": "fe2p.txt"}
}

func newTestSpectrum(t *testing.T) *Spectrum {
	t.Helper()
	energy := make([]float64, 101)
	intensity := make([]float64, 101)
	for j := range energy {
		energy[j] = float64(j) // 0 .. 100
		intensity[j] = 5 + 100*math.Exp(-0.01*(energy[j]-50)*(energy[j]-50))
	}
	s, err := New(energy, intensity, testMeta())
	require.NoError(t, err)
	return s
}

// collect connects a counter to one signal and returns the tally and the last
// event seen.
func collect(t *testing.T, o *event.Observable, signal event.Signal) (*int, *event.Event) {
	t.Helper()
	count := new(int)
	last := new(event.Event)
	_, err := o.Connect(signal, func(ev event.Event) {
		*count++
		*last = ev
	})
	require.NoError(t, err)
	return count, last
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		energy    []float64
		intensity []float64
		meta      map[string]any
		wantErr   error
	}{
		{"empty arrays", nil, nil, testMeta(), ErrMissingField},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, testMeta(), ErrShapeMismatch},
		{"missing name", []float64{1, 2}, []float64{1, 2}, map[string]any{"filename": "x"}, ErrMissingField},
		{"missing filename", []float64{1, 2}, []float64{1, 2}, map[string]any{"name": "x"}, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.energy, tt.intensity, tt.meta)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_ArrayInvariants(t *testing.T) {
	s, err := New([]float64{0, 3, 1, 2, 7}, []float64{10, 40, 20, 30, 80}, testMeta())
	require.NoError(t, err)

	e := s.Energy()
	require.Equal(t, len(e), len(s.Intensity()))
	require.Equal(t, len(e), len(s.Background()))

	step := e[1] - e[0]
	for j := 1; j < len(e); j++ {
		assert.Greater(t, e[j], e[j-1])
		assert.InDelta(t, step, e[j]-e[j-1], 1e-9, "energy axis must be equidistant")
	}
}

func TestNew_ReordersDecreasingInput(t *testing.T) {
	s, err := New([]float64{3, 2, 1}, []float64{30, 20, 10}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, s.Energy())
	assert.Equal(t, []float64{10, 20, 30}, s.Intensity())
}

func TestMeta(t *testing.T) {
	s := newTestSpectrum(t)
	m := s.Meta()

	assert.Equal(t, "Fe 2p", m.Name())
	assert.Equal(t, "fe2p.txt", m.Filename())
	assert.Equal(t, []string{"filename", "name"}, m.Keys())

	count, last := collect(t, m.Observable, SignalChangedMetadata)
	m.Set("notes", "pass energy 20 eV")
	assert.Equal(t, 1, *count)
	assert.Equal(t, "notes", last.Attr)
	assert.Equal(t, "pass energy 20 eV", last.Value)
	assert.Equal(t, "pass energy 20 eV", m.Get("notes"))
	assert.Nil(t, m.Get("absent"))
}

func TestMetadataPropagatesToSpectrum(t *testing.T) {
	s := newTestSpectrum(t)
	count, last := collect(t, s.Observable, SignalChangedMetadata)

	s.Meta().Set("name", "renamed")

	assert.Equal(t, 1, *count)
	assert.True(t, last.ReEmitted)
	assert.Same(t, s.Meta(), last.Source)
	assert.Equal(t, "name", last.Attr)
}

func TestSetEnergyCalibration(t *testing.T) {
	s := newTestSpectrum(t)
	count, last := collect(t, s.Observable, SignalChangedSpectrum)

	require.NoError(t, s.SetEnergyCalibration(1.5))
	assert.Equal(t, 1, *count)
	assert.Equal(t, "energy_calibration", last.Attr)
	assert.InDelta(t, 1.5, s.Energy()[0], 1e-12)

	assert.ErrorIs(t, s.SetEnergyCalibration(math.Inf(1)), ErrOutOfRange)
	assert.ErrorIs(t, s.SetEnergyCalibration(math.NaN()), ErrOutOfRange)
	assert.Equal(t, 1, *count, "rejected values must not emit")
}

func TestNormalization(t *testing.T) {
	s, err := New([]float64{1, 2, 3}, []float64{10, 20, 30}, testMeta())
	require.NoError(t, err)

	t.Run("highest picks the maximum intensity", func(t *testing.T) {
		require.NoError(t, s.SetNormalizationType(NormalizationHighest))
		assert.InDelta(t, 30.0, s.NormalizationDivisor(), 1e-12)
		assert.InDelta(t, 1.0, s.Intensity()[2], 1e-12)
	})

	t.Run("repeating the policy keeps the divisor", func(t *testing.T) {
		require.NoError(t, s.SetNormalizationType(NormalizationHighest))
		assert.InDelta(t, 30.0, s.NormalizationDivisor(), 1e-12)
	})

	t.Run("manual keeps the current divisor", func(t *testing.T) {
		require.NoError(t, s.SetNormalizationType(NormalizationManual))
		assert.InDelta(t, 30.0, s.NormalizationDivisor(), 1e-12)
	})

	t.Run("none restores unity", func(t *testing.T) {
		require.NoError(t, s.SetNormalizationType(NormalizationNone))
		assert.InDelta(t, 1.0, s.NormalizationDivisor(), 1e-12)
	})

	t.Run("explicit divisor forces manual", func(t *testing.T) {
		require.NoError(t, s.SetNormalizationDivisor(4))
		assert.Equal(t, NormalizationManual, s.NormalizationType())
		assert.InDelta(t, 5.0, s.Intensity()[1], 1e-12)
	})

	t.Run("zero divisor is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SetNormalizationDivisor(0), ErrOutOfRange)
	})

	t.Run("unknown policy is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SetNormalizationType("median"), ErrUnknownType)
	})
}

func TestSetNormalizationEnergy(t *testing.T) {
	s, err := New([]float64{1, 2, 3}, []float64{10, 20, 30}, testMeta())
	require.NoError(t, err)

	require.NoError(t, s.SetNormalizationEnergy(2))
	assert.Equal(t, NormalizationManual, s.NormalizationType())
	assert.InDelta(t, 20.0, s.NormalizationDivisor(), 1e-12)
	e, ok := s.NormalizationEnergy()
	assert.True(t, ok)
	assert.Equal(t, 2.0, e)
}

func TestBackgroundBounds(t *testing.T) {
	s := newTestSpectrum(t)

	t.Run("odd count is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SetBackgroundBounds([]float64{10, 20, 30}), ErrOddBoundCount)
	})

	t.Run("out of range is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SetBackgroundBounds([]float64{-5, 20}), ErrOutOfRange)
		assert.ErrorIs(t, s.SetBackgroundBounds([]float64{10, 200}), ErrOutOfRange)
	})

	t.Run("bounds are sorted on storage", func(t *testing.T) {
		require.NoError(t, s.SetBackgroundBounds([]float64{80, 20, 60, 40}))
		assert.Equal(t, []float64{20, 40, 60, 80}, s.BackgroundBounds())
	})

	t.Run("all zeros clears", func(t *testing.T) {
		require.NoError(t, s.SetBackgroundBounds([]float64{0, 0}))
		assert.Empty(t, s.BackgroundBounds())
	})
}

func TestBackgroundBounds_AddRemoveRoundTrip(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetBackgroundBounds([]float64{20, 40}))

	require.NoError(t, s.AddBackgroundBounds(80, 60)) // swapped pair
	assert.Equal(t, []float64{20, 40, 60, 80}, s.BackgroundBounds())

	require.NoError(t, s.RemoveBackgroundBounds(60, 80))
	assert.Equal(t, []float64{20, 40}, s.BackgroundBounds())

	// Values not present are ignored.
	require.NoError(t, s.RemoveBackgroundBounds(1, 2))
	assert.Equal(t, []float64{20, 40}, s.BackgroundBounds())
}

func TestBackgroundBounds_FollowCalibration(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetBackgroundBounds([]float64{20, 40}))

	require.NoError(t, s.SetEnergyCalibration(2))
	assert.Equal(t, []float64{22, 42}, s.BackgroundBounds())

	require.NoError(t, s.SetEnergyCalibration(0))
	assert.Equal(t, []float64{20, 40}, s.BackgroundBounds())
}

func TestSetBackgroundType(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetBackgroundBounds([]float64{20, 80}))

	count, last := collect(t, s.Observable, SignalChangedSpectrum)
	require.NoError(t, s.SetBackgroundType(BackgroundShirley))
	assert.Equal(t, 1, *count)
	assert.Equal(t, "background_type", last.Attr)

	bg := s.Background()
	in := s.Intensity()
	assert.InDelta(t, in[20], bg[20], 1e-9, "background pinned at region start")
	assert.InDelta(t, in[80], bg[80], 1e-9, "background pinned at region end")

	assert.ErrorIs(t, s.SetBackgroundType("spline"), ErrUnknownType)
}

func TestBackgroundScalesWithNormalization(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetBackgroundBounds([]float64{20, 80}))
	require.NoError(t, s.SetBackgroundType(BackgroundLinear))

	before := s.Background()[50]
	require.NoError(t, s.SetNormalizationDivisor(2))
	assert.InDelta(t, before/2, s.Background()[50], 1e-12)
}

func TestIntensityOfE(t *testing.T) {
	s, err := New([]float64{1, 2, 3}, []float64{10, 20, 30}, testMeta())
	require.NoError(t, err)

	v, err := s.IntensityOfE(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, v, 1e-12)

	// Calibration shifts the displayed axis the lookup works in.
	require.NoError(t, s.SetEnergyCalibration(1))
	v, err = s.IntensityOfE(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, v, 1e-12)
}
