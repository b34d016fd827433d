package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOption is returned for option names no setting recognizes.
	ErrUnknownOption = errors.New("config: unknown option")

	// ErrBadOptionValue is returned when an option value has the wrong type
	// or shape.
	ErrBadOptionValue = errors.New("config: bad option value")
)

// Interpolator names accepted by the resampler.
const (
	InterpNearest = "nearest"
	InterpLinear  = "linear"
)

const (
	defaultBinWidth = 25.0
	defaultLabel    = 1
)

// Settings controls one extraction run. Zero values are not usable; start
// from Default and override via Apply or a parameter file.
type Settings struct {
	// BinWidth is the fixed gray-level discretization bin width.
	BinWidth float64

	// Label selects the mask region of interest.
	Label int32

	// Interpolator is the image resampling method. Masks always use
	// nearest neighbor.
	Interpolator string

	// ResampledSpacing is the target physical spacing per axis. Empty
	// disables resampling.
	ResampledSpacing []float64

	// SmoothingSigma enables Gaussian pre-smoothing of the image when
	// positive.
	SmoothingSigma float64

	// MinimumROIVoxels rejects regions smaller than this.
	MinimumROIVoxels int

	// EnabledImageTypes maps image type name to enablement. Only
	// "original" ships.
	EnabledImageTypes map[string]bool

	// EnabledClasses maps feature class name to the features to compute.
	// A nil or empty list enables every feature of the class.
	EnabledClasses map[string][]string
}

// Default returns the settings an unconfigured extractor runs with.
func Default() Settings {
	return Settings{
		BinWidth:          defaultBinWidth,
		Label:             defaultLabel,
		Interpolator:      InterpNearest,
		MinimumROIVoxels:  1,
		EnabledImageTypes: map[string]bool{"original": true},
		EnabledClasses:    map[string][]string{"glrlm": nil},
	}
}

// Sanitized clamps out-of-range values back to usable ones.
func (s Settings) Sanitized() Settings {
	if s.BinWidth <= 0 {
		s.BinWidth = defaultBinWidth
	}
	if s.Label <= 0 {
		s.Label = defaultLabel
	}
	switch s.Interpolator {
	case InterpNearest, InterpLinear:
	default:
		s.Interpolator = InterpNearest
	}
	if s.SmoothingSigma < 0 {
		s.SmoothingSigma = 0
	}
	if s.MinimumROIVoxels < 1 {
		s.MinimumROIVoxels = 1
	}
	if len(s.ResampledSpacing) != 0 && len(s.ResampledSpacing) != 3 {
		s.ResampledSpacing = nil
	}
	for _, spacing := range s.ResampledSpacing {
		if spacing <= 0 {
			s.ResampledSpacing = nil
			break
		}
	}
	if len(s.EnabledImageTypes) == 0 {
		s.EnabledImageTypes = map[string]bool{"original": true}
	}
	if len(s.EnabledClasses) == 0 {
		s.EnabledClasses = map[string][]string{"glrlm": nil}
	}
	return s
}

// Apply overrides settings from an inline option map, the way a caller would
// pass literal key/value pairs. Unknown names and wrong types are errors.
func (s *Settings) Apply(options map[string]interface{}) error {
	for name, value := range options {
		if err := s.applyOption(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Settings) applyOption(name string, value interface{}) error {
	switch name {
	case "binWidth":
		width, ok := toFloat(value)
		if !ok || width <= 0 {
			return fmt.Errorf("%w: binWidth=%v", ErrBadOptionValue, value)
		}
		s.BinWidth = width
	case "label":
		label, ok := toInt(value)
		if !ok || label <= 0 {
			return fmt.Errorf("%w: label=%v", ErrBadOptionValue, value)
		}
		s.Label = int32(label)
	case "interpolator":
		interp, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: interpolator=%v", ErrBadOptionValue, value)
		}
		switch interp {
		case InterpNearest, InterpLinear:
			s.Interpolator = interp
		default:
			return fmt.Errorf("%w: interpolator=%q", ErrBadOptionValue, interp)
		}
	case "resampledPixelSpacing":
		spacing, ok := toFloatSlice(value)
		if !ok {
			return fmt.Errorf("%w: resampledPixelSpacing=%v", ErrBadOptionValue, value)
		}
		if len(spacing) != 0 && len(spacing) != 3 {
			return fmt.Errorf("%w: resampledPixelSpacing needs 3 components", ErrBadOptionValue)
		}
		for _, component := range spacing {
			if component <= 0 {
				return fmt.Errorf("%w: resampledPixelSpacing=%v", ErrBadOptionValue, value)
			}
		}
		s.ResampledSpacing = spacing
	case "smoothingSigma":
		sigma, ok := toFloat(value)
		if !ok || sigma < 0 {
			return fmt.Errorf("%w: smoothingSigma=%v", ErrBadOptionValue, value)
		}
		s.SmoothingSigma = sigma
	case "minimumROISize":
		size, ok := toInt(value)
		if !ok || size < 1 {
			return fmt.Errorf("%w: minimumROISize=%v", ErrBadOptionValue, value)
		}
		s.MinimumROIVoxels = size
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return nil
}

// EnableClass switches on a feature class; features lists the features to
// compute, nil or empty meaning all of them.
func (s *Settings) EnableClass(name string, features []string) {
	if s.EnabledClasses == nil {
		s.EnabledClasses = make(map[string][]string)
	}
	s.EnabledClasses[name] = features
}

// EnableImageType switches on an image type by name.
func (s *Settings) EnableImageType(name string) {
	if s.EnabledImageTypes == nil {
		s.EnabledImageTypes = make(map[string]bool)
	}
	s.EnabledImageTypes[name] = true
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toFloatSlice(value interface{}) ([]float64, bool) {
	switch v := value.(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, item := range v {
			out[i] = float64(item)
		}
		return out, true
	case []interface{}:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
