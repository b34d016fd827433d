// Package filters holds the preprocessing stages an image/mask pair passes
// through before feature computation.
package filters

import (
	"context"
	"fmt"

	"voxtract/internal/config"
	"voxtract/internal/imaging"
	"voxtract/internal/logger"
)

// Stage is one preprocessing step. Stages never mutate their inputs; they
// return fresh grids (or the inputs unchanged when they have nothing to do).
type Stage interface {
	Name() string
	ShouldExecute(settings config.Settings) bool
	Apply(ctx context.Context, vol *imaging.Volume, mask *imaging.Mask, settings config.Settings) (*imaging.Volume, *imaging.Mask, error)
}

// Chain runs the registered stages in order, skipping those the settings do
// not enable.
type Chain struct {
	stages []Stage
	log    logger.Logger
}

// NewChain builds the default preprocessing chain: resampling, then
// smoothing.
func NewChain(log logger.Logger) *Chain {
	if log == nil {
		log = logger.Nop()
	}
	return &Chain{
		stages: []Stage{
			NewResampler(),
			NewGaussianSmoother(),
		},
		log: log,
	}
}

// Run applies the enabled stages and returns the preprocessed pair.
func (c *Chain) Run(ctx context.Context, vol *imaging.Volume, mask *imaging.Mask, settings config.Settings) (*imaging.Volume, *imaging.Mask, error) {
	for _, stage := range c.stages {
		if !stage.ShouldExecute(settings) {
			continue
		}

		next, nextMask, err := stage.Apply(ctx, vol, mask, settings)
		if err != nil {
			return nil, nil, fmt.Errorf("filter %s: %w", stage.Name(), err)
		}

		c.log.Debug("filters", "stage applied", map[string]interface{}{
			"stage": stage.Name(),
			"dims":  fmt.Sprintf("%dx%dx%d", next.NX, next.NY, next.NZ),
		})
		vol, mask = next, nextMask
	}
	return vol, mask, nil
}
