package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigStageToggles(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.OrientationEnabled())
	assert.True(t, c.BasicEnabled())
	assert.False(t, c.NoiseEnabled())
	assert.False(t, c.MorphEnabled())
	assert.False(t, c.LinesEnabled())

	assert.Equal(t, 15, c.Basic.AdaptiveThreshold.BlockSize)
	assert.Equal(t, 11.0, c.Basic.AdaptiveThreshold.CValue)
	assert.Equal(t, 3, c.Basic.MedianBlur.KernelSize)
	assert.Equal(t, 2.0, c.Basic.Contrast.Factor)
	assert.Equal(t, "fastNlMeansDenoising", c.Noise.Method)
	assert.Equal(t, 100, c.Lines.Threshold)
	assert.Equal(t, 50, c.Lines.MinLineLength)
}

func TestParseConfigOverridesAndDefaults(t *testing.T) {
	raw := []byte(`
orientation_correction:
  enabled: false
noise_removal:
  enabled: true
  method: bilateralFilter
  d: 5
line_removal:
  enabled: true
  threshold: 42
`)
	c, err := ParseConfig(raw)
	require.NoError(t, err)

	assert.False(t, c.OrientationEnabled())
	assert.True(t, c.BasicEnabled(), "omitted basic_preprocessing defaults to enabled")
	assert.True(t, c.NoiseEnabled())
	assert.Equal(t, "bilateralFilter", c.Noise.Method)
	assert.Equal(t, 5, c.Noise.D)
	assert.Equal(t, 75.0, c.Noise.SigmaColor, "unset tunables take defaults")
	assert.True(t, c.LinesEnabled())
	assert.Equal(t, 42, c.Lines.Threshold)
	assert.Equal(t, 10.0, c.Lines.AngleTolerance)
}

func TestParseConfigRejectsUnknownStage(t *testing.T) {
	_, err := ParseConfig([]byte("despeckle:\n  enabled: true\n"))
	require.Error(t, err)
}

func TestParseConfigRejectsBadMethod(t *testing.T) {
	_, err := ParseConfig([]byte("noise_removal:\n  method: gaussian\n"))
	require.Error(t, err)
}

func TestParseConfigRejectsBadMorphOp(t *testing.T) {
	raw := []byte(`
morphological_operations:
  enabled: true
  operations:
    - type: smudge
`)
	_, err := ParseConfig(raw)
	require.Error(t, err)
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, c.BasicEnabled())
}
