// Package extractor wires settings, preprocessing, and feature classes into
// the single execute operation callers see.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"voxtract/internal/config"
	"voxtract/internal/discretize"
	"voxtract/internal/filters"
	"voxtract/internal/glrlm"
	"voxtract/internal/imaging"
	"voxtract/internal/logger"
	"voxtract/internal/results"
)

var (
	// ErrUnknownClass is returned when settings enable a feature class the
	// registry does not know.
	ErrUnknownClass = errors.New("extractor: unknown feature class")

	// ErrUnknownImageType is returned for enabled image types with no
	// implementation.
	ErrUnknownImageType = errors.New("extractor: unknown image type")

	// ErrROITooSmall is returned when the region has fewer voxels than
	// settings allow.
	ErrROITooSmall = errors.New("extractor: region of interest below minimum size")
)

// FeatureClass is one family of features with per-feature enablement.
type FeatureClass interface {
	Name() string
	FeatureNames() []string
	EnableAll()
	DisableAll()
	EnableByName(name string) error
	Calculate(ctx context.Context, grid *discretize.Grid) (map[string]float64, error)
}

// classOrder fixes the emission order of registered classes.
var classOrder = []string{glrlm.ClassName}

// imageTypeOrder fixes the emission order of image types.
var imageTypeOrder = []string{"original"}

// Extractor computes an ordered feature mapping from an image and a mask.
// Safe for concurrent Execute calls.
type Extractor struct {
	mu       sync.RWMutex
	settings config.Settings
	classes  map[string]func() FeatureClass
	chain    *filters.Chain
	log      logger.Logger
}

// New builds an extractor for the given settings. Settings are sanitized,
// then enabled classes, features, and image types are validated against the
// registry.
func New(settings config.Settings, log logger.Logger) (*Extractor, error) {
	if log == nil {
		log = logger.Nop()
	}

	e := &Extractor{
		settings: settings.Sanitized(),
		classes: map[string]func() FeatureClass{
			glrlm.ClassName: func() FeatureClass { return glrlm.New() },
		},
		chain: filters.NewChain(log),
		log:   log,
	}

	for name, features := range e.settings.EnabledClasses {
		construct, known := e.classes[name]
		if !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
		}
		probe := construct()
		for _, feature := range features {
			if err := probe.EnableByName(feature); err != nil {
				return nil, err
			}
		}
	}

	for imageType, enabled := range e.settings.EnabledImageTypes {
		if !enabled {
			continue
		}
		if !contains(imageTypeOrder, imageType) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownImageType, imageType)
		}
	}

	e.log.Info("extractor", "configured", map[string]interface{}{
		"binWidth":     e.settings.BinWidth,
		"label":        e.settings.Label,
		"interpolator": e.settings.Interpolator,
		"classes":      len(e.settings.EnabledClasses),
	})

	return e, nil
}

// Settings returns a copy of the sanitized settings in effect.
func (e *Extractor) Settings() config.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Classes lists the registered feature class names.
func (e *Extractor) Classes() []string {
	names := make([]string, len(classOrder))
	copy(names, classOrder)
	return names
}

// Execute runs one extraction: diagnostics, preprocessing, discretization,
// then every enabled feature class. Inputs are never mutated. Keys are
// unique and insertion-ordered, diagnostics first.
func (e *Extractor) Execute(ctx context.Context, vol *imaging.Volume, mask *imaging.Mask) (*results.Results, error) {
	e.mu.RLock()
	settings := e.settings
	e.mu.RUnlock()

	if vol == nil || mask == nil {
		return nil, fmt.Errorf("extractor: nil image or mask")
	}
	if !vol.SameGeometry(mask) {
		return nil, imaging.ErrGeometryMismatch
	}

	res := results.New()
	if err := e.inputDiagnostics(res, settings, vol); err != nil {
		return nil, err
	}

	workVol, workMask, err := e.chain.Run(ctx, vol.Clone(), mask.Clone(), settings)
	if err != nil {
		return nil, err
	}

	roi, err := workMask.ROI(settings.Label)
	if err != nil {
		return nil, err
	}
	if roi.VoxelCount < settings.MinimumROIVoxels {
		return nil, fmt.Errorf("%w: %d voxels, need %d",
			ErrROITooSmall, roi.VoxelCount, settings.MinimumROIVoxels)
	}

	grid, err := discretize.FromROI(workVol, workMask, roi, settings.BinWidth)
	if err != nil {
		return nil, err
	}

	if err := e.maskDiagnostics(res, roi, grid); err != nil {
		return nil, err
	}

	for _, imageType := range imageTypeOrder {
		if !settings.EnabledImageTypes[imageType] {
			continue
		}
		if err := e.runClasses(ctx, res, settings, imageType, grid); err != nil {
			return nil, err
		}
	}

	e.log.Info("extractor", "execution finished", map[string]interface{}{
		"entries": res.Len(),
		"voxels":  roi.VoxelCount,
	})

	return res, nil
}

func (e *Extractor) runClasses(ctx context.Context, res *results.Results, settings config.Settings, imageType string, grid *discretize.Grid) error {
	for _, className := range classOrder {
		features, enabled := settings.EnabledClasses[className]
		if !enabled {
			continue
		}

		class := e.classes[className]()
		if len(features) > 0 {
			class.DisableAll()
			for _, feature := range features {
				if err := class.EnableByName(feature); err != nil {
					return err
				}
			}
		}

		values, err := class.Calculate(ctx, grid)
		if err != nil {
			return fmt.Errorf("class %s: %w", className, err)
		}

		for _, feature := range class.FeatureNames() {
			value, computed := values[feature]
			if !computed {
				continue
			}
			key := fmt.Sprintf("%s_%s_%s", imageType, className, feature)
			if err := res.Set(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Extractor) inputDiagnostics(res *results.Results, settings config.Settings, vol *imaging.Volume) error {
	entries := []struct {
		key   string
		value interface{}
	}{
		{"diagnostics_Configuration_Settings", settingsSummary(settings)},
		{"diagnostics_Image-original_Size", fmt.Sprintf("(%d, %d, %d)", vol.NX, vol.NY, vol.NZ)},
		{"diagnostics_Image-original_Spacing", fmt.Sprintf("(%g, %g, %g)", vol.Spacing[0], vol.Spacing[1], vol.Spacing[2])},
		{"diagnostics_Image-original_Mean", vol.Mean()},
	}
	for _, entry := range entries {
		if err := res.Set(entry.key, entry.value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) maskDiagnostics(res *results.Results, roi imaging.ROI, grid *discretize.Grid) error {
	entries := []struct {
		key   string
		value interface{}
	}{
		{"diagnostics_Mask-original_VoxelNum", float64(roi.VoxelCount)},
		{"diagnostics_Mask-original_BoundingBox", roi.Bounds.String()},
		{"diagnostics_Image-discretized_GrayLevels", float64(grid.Ng)},
	}
	for _, entry := range entries {
		if err := res.Set(entry.key, entry.value); err != nil {
			return err
		}
	}
	return nil
}

func settingsSummary(s config.Settings) string {
	resampled := "off"
	if len(s.ResampledSpacing) == 3 {
		resampled = fmt.Sprintf("(%g, %g, %g)", s.ResampledSpacing[0], s.ResampledSpacing[1], s.ResampledSpacing[2])
	}
	return fmt.Sprintf("binWidth=%g label=%d interpolator=%s resampledPixelSpacing=%s smoothingSigma=%g",
		s.BinWidth, s.Label, s.Interpolator, resampled, s.SmoothingSigma)
}

func contains(list []string, item string) bool {
	for _, candidate := range list {
		if candidate == item {
			return true
		}
	}
	return false
}
