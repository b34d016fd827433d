// Package glrlm computes gray-level run-length texture features over a
// discretized region of interest. Matrices are built for every unique scan
// direction and feature values are the mean across directions.
package glrlm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"voxtract/internal/discretize"
)

// ClassName is the registry name of this feature class.
const ClassName = "glrlm"

// ErrUnknownFeature is returned when enabling a feature this class does not
// compute.
var ErrUnknownFeature = errors.New("glrlm: unknown feature")

// Class is the run-length feature class with per-feature enablement.
// The zero value is unusable; New enables every feature.
type Class struct {
	enabled map[string]bool
}

func New() *Class {
	c := &Class{enabled: make(map[string]bool, len(featureOrder))}
	c.EnableAll()
	return c
}

func (c *Class) Name() string {
	return ClassName
}

// FeatureNames lists every feature this class can compute, in emission order.
func (c *Class) FeatureNames() []string {
	names := make([]string, len(featureOrder))
	copy(names, featureOrder)
	return names
}

// EnableAll marks every feature for computation.
func (c *Class) EnableAll() {
	for _, name := range featureOrder {
		c.enabled[name] = true
	}
}

// DisableAll clears the enabled set.
func (c *Class) DisableAll() {
	for _, name := range featureOrder {
		c.enabled[name] = false
	}
}

// EnableByName marks a single feature for computation.
func (c *Class) EnableByName(name string) error {
	if _, known := c.enabled[name]; !known {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	c.enabled[name] = true
	return nil
}

// Enabled reports whether a feature will be computed.
func (c *Class) Enabled(name string) bool {
	return c.enabled[name]
}

// Calculate builds the per-direction run-length matrices (concurrently) and
// returns the enabled features, averaged over directions.
func (c *Class) Calculate(ctx context.Context, grid *discretize.Grid) (map[string]float64, error) {
	if grid.VoxelCount == 0 || grid.Ng == 0 {
		return nil, fmt.Errorf("glrlm: empty grid")
	}

	dirs := directions(grid.NZ)
	vectors := make([]map[string]float64, len(dirs))

	var wg sync.WaitGroup
	for d, dir := range dirs {
		wg.Add(1)
		go func(d int, dir [3]int) {
			defer wg.Done()
			matrix := buildMatrix(grid, dir)
			vectors[d] = featureVector(matrix, grid.VoxelCount)
		}(d, dir)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(featureOrder))
	for _, name := range featureOrder {
		if !c.enabled[name] {
			continue
		}
		sum := 0.0
		for _, vector := range vectors {
			sum += vector[name]
		}
		values[name] = sum / float64(len(dirs))
	}

	return values, nil
}
