package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtract/internal/config"
	"voxtract/internal/imaging"
)

func testPair(t *testing.T) (*imaging.Volume, *imaging.Mask) {
	t.Helper()
	vol, err := imaging.NewVolume(4, 4, 1)
	require.NoError(t, err)
	for i := range vol.Data {
		vol.Data[i] = float64((i * 37) % 200)
	}

	mask, err := imaging.NewMask(4, 4, 1)
	require.NoError(t, err)
	for y := 1; y <= 2; y++ {
		for x := 0; x < 4; x++ {
			mask.Set(x, y, 0, 1)
		}
	}
	return vol, mask
}

func TestExecute_KeyLayout(t *testing.T) {
	vol, mask := testPair(t)

	ext, err := New(config.Default(), nil)
	require.NoError(t, err)

	res, err := ext.Execute(context.Background(), vol, mask)
	require.NoError(t, err)

	keys := res.Keys()
	require.NotEmpty(t, keys)

	// Diagnostics lead, feature values follow; keys are composite and unique.
	sawFeature := false
	for _, key := range keys {
		if strings.HasPrefix(key, "diagnostics_") {
			assert.False(t, sawFeature, "diagnostic %s after feature values", key)
			continue
		}
		sawFeature = true
		assert.True(t, strings.HasPrefix(key, "original_glrlm_"), "unexpected key %s", key)
	}
	assert.True(t, sawFeature)

	voxels, ok := res.Float("diagnostics_Mask-original_VoxelNum")
	require.True(t, ok)
	assert.Equal(t, 8.0, voxels)

	_, ok = res.Get("original_glrlm_ShortRunEmphasis")
	assert.True(t, ok)
}

func TestExecute_Deterministic(t *testing.T) {
	vol, mask := testPair(t)

	ext, err := New(config.Default(), nil)
	require.NoError(t, err)

	first, err := ext.Execute(context.Background(), vol, mask)
	require.NoError(t, err)
	second, err := ext.Execute(context.Background(), vol, mask)
	require.NoError(t, err)

	require.Equal(t, first.Keys(), second.Keys())
	for _, key := range first.Keys() {
		a, _ := first.Get(key)
		b, _ := second.Get(key)
		assert.Equal(t, a, b, "key %s", key)
	}
}

func TestExecute_DoesNotMutateInputs(t *testing.T) {
	vol, mask := testPair(t)
	settings := config.Default()
	require.NoError(t, settings.Apply(map[string]interface{}{
		"resampledPixelSpacing": []float64{2, 2, 1},
		"smoothingSigma":        0.0,
	}))

	volBefore := vol.Clone()
	maskBefore := mask.Clone()

	ext, err := New(settings, nil)
	require.NoError(t, err)
	_, err = ext.Execute(context.Background(), vol, mask)
	require.NoError(t, err)

	assert.Equal(t, volBefore, vol)
	assert.Equal(t, maskBefore, mask)
}

func TestExecute_FeatureSubset(t *testing.T) {
	vol, mask := testPair(t)

	settings := config.Default()
	settings.EnableClass("glrlm", []string{"RunPercentage"})

	ext, err := New(settings, nil)
	require.NoError(t, err)

	res, err := ext.Execute(context.Background(), vol, mask)
	require.NoError(t, err)

	_, ok := res.Get("original_glrlm_RunPercentage")
	assert.True(t, ok)
	_, ok = res.Get("original_glrlm_ShortRunEmphasis")
	assert.False(t, ok)
}

func TestExecute_Errors(t *testing.T) {
	vol, mask := testPair(t)

	ext, err := New(config.Default(), nil)
	require.NoError(t, err)

	t.Run("GeometryMismatch", func(t *testing.T) {
		other, err := imaging.NewMask(3, 4, 1)
		require.NoError(t, err)
		_, err = ext.Execute(context.Background(), vol, other)
		assert.ErrorIs(t, err, imaging.ErrGeometryMismatch)
	})

	t.Run("EmptyROI", func(t *testing.T) {
		empty, err := imaging.NewMask(4, 4, 1)
		require.NoError(t, err)
		_, err = ext.Execute(context.Background(), vol, empty)
		assert.ErrorIs(t, err, imaging.ErrEmptyROI)
	})

	t.Run("ROITooSmall", func(t *testing.T) {
		settings := config.Default()
		require.NoError(t, settings.Apply(map[string]interface{}{"minimumROISize": 100}))
		strict, err := New(settings, nil)
		require.NoError(t, err)
		_, err = strict.Execute(context.Background(), vol, mask)
		assert.ErrorIs(t, err, ErrROITooSmall)
	})
}

func TestNew_Validation(t *testing.T) {
	t.Run("UnknownClass", func(t *testing.T) {
		settings := config.Default()
		settings.EnableClass("glcm", nil)
		_, err := New(settings, nil)
		assert.ErrorIs(t, err, ErrUnknownClass)
	})

	t.Run("UnknownFeature", func(t *testing.T) {
		settings := config.Default()
		settings.EnableClass("glrlm", []string{"Sphericity"})
		_, err := New(settings, nil)
		assert.Error(t, err)
	})

	t.Run("UnknownImageType", func(t *testing.T) {
		settings := config.Default()
		settings.EnableImageType("wavelet")
		_, err := New(settings, nil)
		assert.ErrorIs(t, err, ErrUnknownImageType)
	})
}

func TestClasses(t *testing.T) {
	ext, err := New(config.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"glrlm"}, ext.Classes())
}
