// Package discretize maps region-of-interest intensities onto contiguous
// 1-based gray levels with a fixed bin width, the representation the texture
// matrices are built from.
package discretize

import (
	"errors"
	"fmt"
	"math"

	"voxtract/internal/imaging"
)

// ErrBadBinWidth is returned for non-positive bin widths.
var ErrBadBinWidth = errors.New("discretize: bin width must be positive")

// Grid is a discretized crop of the region of interest. Levels holds the
// gray level per voxel (0 outside the mask), x-fastest like imaging.Volume.
type Grid struct {
	Levels []int
	NX     int
	NY     int
	NZ     int

	// Ng is the number of gray levels; levels run 1..Ng.
	Ng int

	// VoxelCount is the number of in-mask voxels.
	VoxelCount int
}

// Inside reports whether (x, y, z) belongs to the region.
func (g *Grid) Inside(x, y, z int) bool {
	return g.Levels[(z*g.NY+y)*g.NX+x] > 0
}

// Level returns the gray level at (x, y, z); 0 means outside the region.
func (g *Grid) Level(x, y, z int) int {
	return g.Levels[(z*g.NY+y)*g.NX+x]
}

// FromROI crops the volume to the ROI bounding box and discretizes in-mask
// intensities: level = floor((v - min) / width) + 1. A region with a single
// intensity discretizes to one level.
func FromROI(vol *imaging.Volume, mask *imaging.Mask, roi imaging.ROI, binWidth float64) (*Grid, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadBinWidth, binWidth)
	}
	if !vol.SameGeometry(mask) {
		return nil, imaging.ErrGeometryMismatch
	}

	bounds := roi.Bounds
	grid := &Grid{
		NX: bounds.MaxX - bounds.MinX + 1,
		NY: bounds.MaxY - bounds.MinY + 1,
		NZ: bounds.MaxZ - bounds.MinZ + 1,
	}
	grid.Levels = make([]int, grid.NX*grid.NY*grid.NZ)

	minIntensity := math.Inf(1)
	for z := bounds.MinZ; z <= bounds.MaxZ; z++ {
		for y := bounds.MinY; y <= bounds.MaxY; y++ {
			for x := bounds.MinX; x <= bounds.MaxX; x++ {
				if mask.At(x, y, z) != roi.Label {
					continue
				}
				minIntensity = math.Min(minIntensity, vol.At(x, y, z))
			}
		}
	}
	if math.IsInf(minIntensity, 1) {
		return nil, fmt.Errorf("%w: label %d", imaging.ErrEmptyROI, roi.Label)
	}

	idx := 0
	for z := bounds.MinZ; z <= bounds.MaxZ; z++ {
		for y := bounds.MinY; y <= bounds.MaxY; y++ {
			for x := bounds.MinX; x <= bounds.MaxX; x++ {
				if mask.At(x, y, z) == roi.Label {
					level := int(math.Floor((vol.At(x, y, z)-minIntensity)/binWidth)) + 1
					grid.Levels[idx] = level
					grid.Ng = max(grid.Ng, level)
					grid.VoxelCount++
				}
				idx++
			}
		}
	}

	return grid, nil
}
