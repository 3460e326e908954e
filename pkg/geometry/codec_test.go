package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/lanefit/pkg/types"
)

// rawFrame is the frame of a 540px capture cropped at 0.17 and resized to 224.
func rawFrame() types.Frame {
	return types.Frame{RawSize: 540, CropX: 91, CroppedSize: 358, CropFactorX: 0.17, DesiredSize: 224}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(DefaultCodecConfig())
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	_, err := NewCodec(CodecConfig{DesiredSize: 0, Calibration: DefaultCalibration()})
	assert.ErrorIs(t, err, types.ErrConfiguration)

	cal := DefaultCalibration()
	cal.Q2 = Interval{Min: 10, Max: 10}
	_, err = NewCodec(CodecConfig{DesiredSize: 224, Calibration: cal})
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "q2")
}

func TestDistanceBounds(t *testing.T) {
	c := newTestCodec(t)
	dmin, dmax := c.DistanceBounds()
	assert.Equal(t, -224.0*224.0, dmin)
	assert.Equal(t, 224.0+224.0*224.0, dmax)
}

func TestEncodeScenario(t *testing.T) {
	c := newTestCodec(t)
	raw := types.FullLabel{M1: 0.1, M2: -0.1, B1: 300, B2: 250}
	f := rawFrame()

	assert.InDelta(t, 224.0/358.0, f.ResizeFactor(), 1e-12)

	target, err := c.Encode(raw, f, types.VariantFull)
	require.NoError(t, err)
	az, ok := target.(types.AzimuthLabel)
	require.True(t, ok, "full variant should produce an AzimuthLabel")

	assert.InDelta(t, 0.0317, az.Azimuth1, 1e-4)
	assert.InDelta(t, -0.0317, az.Azimuth2, 1e-4)

	// b1' = rf * (300 + 0.1*0.17*540 - (1 - 358/540)*540)
	rf := 224.0 / 358.0
	wantB1 := rf * (300 + 0.1*0.17*540 - (540 - 358))
	scaled := Scale(raw, f)
	assert.InDelta(t, wantB1, scaled.B1, 1e-9)

	decoded, err := c.Decode(target)
	require.NoError(t, err)
	assert.InDelta(t, raw.M1, decoded.M1, 1e-3)
	assert.InDelta(t, raw.M2, decoded.M2, 1e-3)
}

func TestRoundTripFull(t *testing.T) {
	c := newTestCodec(t)
	frames := []types.Frame{
		rawFrame(),
		types.IdentityFrame(224),
		{RawSize: 1000, CropX: 170, CroppedSize: 660, CropFactorX: 0.17, DesiredSize: 224},
	}
	slopes := []float64{-40, -3.5, -0.25, 0, 0.1, 1, 7.75, 120}
	intercepts := []float64{-400, 0, 137.5, 540}

	approx := cmpopts.EquateApprox(1e-9, 1e-6)
	for _, f := range frames {
		for _, m := range slopes {
			for _, b := range intercepts {
				raw := types.FullLabel{M1: m, M2: -m / 2, B1: b, B2: b + 10}
				target, err := c.Encode(raw, f, types.VariantFull)
				require.NoError(t, err)

				got, err := c.DecodeRaw(target, f)
				require.NoError(t, err)
				if diff := cmp.Diff(raw, got, approx); diff != "" {
					t.Errorf("round trip m=%g b=%g frame=%+v (-want +got):\n%s", m, b, f, diff)
				}
			}
		}
	}
}

func TestNormalizationBounds(t *testing.T) {
	c := newTestCodec(t)
	f := rawFrame()
	for m := -20.0; m <= 20; m += 0.5 {
		for b := -540.0; b <= 1080; b += 60 {
			target, err := c.Encode(types.FullLabel{M1: m, M2: -m, B1: b, B2: 540 - b}, f, types.VariantFull)
			require.NoError(t, err)
			for i, v := range target.Values() {
				assert.GreaterOrEqual(t, v, -1.0, "component %d for m=%g b=%g", i, m, b)
				assert.LessOrEqual(t, v, 1.0, "component %d for m=%g b=%g", i, m, b)
			}
		}
	}
}

func TestEncodeZeroSlope(t *testing.T) {
	c := newTestCodec(t)
	target, err := c.Encode(types.FullLabel{M1: 0, M2: 0, B1: 400, B2: 500}, rawFrame(), types.VariantFull)
	require.NoError(t, err)
	az := target.(types.AzimuthLabel)
	assert.Equal(t, 0.0, az.Azimuth1)
	assert.Equal(t, 0.0, az.Azimuth2)
}

func TestEncodeVerticalLine(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Encode(types.FullLabel{M1: math.Inf(1), M2: 1, B1: 0, B2: 0}, rawFrame(), types.VariantFull)
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)

	_, err = c.Encode(types.FullLabel{M1: 1, M2: 1, B1: math.NaN(), B2: 0}, rawFrame(), types.VariantFull)
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)
}

func TestEncodeRejectsEmptyFrame(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Encode(types.FullLabel{M1: 1, M2: 1}, types.Frame{}, types.VariantFull)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestDecodeNearAsymptote(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Decode(types.AzimuthLabel{Azimuth1: 0.5, Azimuth2: 0, D1: 0, D2: 0})
	assert.ErrorIs(t, err, types.ErrGeometryDegenerate)

	_, err = c.Decode(nil)
	assert.Error(t, err)
}

func TestScaleUnscaleInverse(t *testing.T) {
	raw := types.FullLabel{M1: 2.5, M2: -1.25, B1: 12, B2: 480}
	f := rawFrame()
	got := Unscale(Scale(raw, f), f)
	assert.InDelta(t, raw.B1, got.B1, 1e-9)
	assert.InDelta(t, raw.B2, got.B2, 1e-9)
	assert.Equal(t, raw.M1, got.M1)
	assert.Equal(t, raw.M2, got.M2)
}

func TestIdentityFrameScaleIsNoop(t *testing.T) {
	raw := types.FullLabel{M1: 0.3, M2: -7, B1: 10, B2: 200}
	assert.Equal(t, raw, Scale(raw, types.IdentityFrame(224)))
}

func BenchmarkEncodeDecode(b *testing.B) {
	c, _ := NewCodec(DefaultCodecConfig())
	raw := types.FullLabel{M1: 0.1, M2: -0.1, B1: 300, B2: 250}
	f := rawFrame()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		target, _ := c.Encode(raw, f, types.VariantFull)
		c.DecodeRaw(target, f)
	}
}
