package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleParams = `
setting:
  binWidth: 16
  label: 2
  interpolator: linear
  resampledPixelSpacing: [2, 2, 2]
featureClass:
  glrlm:
    - ShortRunEmphasis
    - LongRunEmphasis
imageType:
  original: {}
`

func TestParseParams(t *testing.T) {
	s, err := ParseParams([]byte(sampleParams))
	require.NoError(t, err)

	assert.Equal(t, 16.0, s.BinWidth)
	assert.Equal(t, int32(2), s.Label)
	assert.Equal(t, InterpLinear, s.Interpolator)
	assert.Equal(t, []float64{2, 2, 2}, s.ResampledSpacing)
	assert.Equal(t, []string{"ShortRunEmphasis", "LongRunEmphasis"}, s.EnabledClasses["glrlm"])
	assert.True(t, s.EnabledImageTypes["original"])
}

func TestParseParams_EmptyClassListMeansAll(t *testing.T) {
	s, err := ParseParams([]byte("featureClass:\n  glrlm:\n"))
	require.NoError(t, err)

	features, enabled := s.EnabledClasses["glrlm"]
	assert.True(t, enabled)
	assert.Empty(t, features)
}

func TestParseParams_DefaultsWhenSectionsMissing(t *testing.T) {
	s, err := ParseParams([]byte("setting:\n  binWidth: 32\n"))
	require.NoError(t, err)

	assert.Equal(t, 32.0, s.BinWidth)
	assert.True(t, s.EnabledImageTypes["original"])
	_, enabled := s.EnabledClasses["glrlm"]
	assert.True(t, enabled)
}

func TestParseParams_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"BadYAML", "setting: ["},
		{"UnknownSetting", "setting:\n  binWdith: 10\n"},
		{"BadValue", "setting:\n  binWidth: wide\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseParams([]byte(tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleParams), 0o644))

	s, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 16.0, s.BinWidth)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
