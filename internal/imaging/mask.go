package imaging

import "fmt"

// Mask is a label map sharing geometry with a Volume. Label 0 is background.
type Mask struct {
	Labels  []int32
	NX      int
	NY      int
	NZ      int
	Spacing [3]float64
}

// NewMask allocates an all-background mask with unit spacing.
func NewMask(nx, ny, nz int) (*Mask, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, nx, ny, nz)
	}
	return &Mask{
		Labels:  make([]int32, nx*ny*nz),
		NX:      nx,
		NY:      ny,
		NZ:      nz,
		Spacing: [3]float64{1, 1, 1},
	}, nil
}

func (m *Mask) index(x, y, z int) int {
	return (z*m.NY+y)*m.NX + x
}

// At returns the label at (x, y, z).
func (m *Mask) At(x, y, z int) int32 {
	return m.Labels[m.index(x, y, z)]
}

// Set stores a label at (x, y, z).
func (m *Mask) Set(x, y, z int, label int32) {
	m.Labels[m.index(x, y, z)] = label
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	labels := make([]int32, len(m.Labels))
	copy(labels, m.Labels)
	return &Mask{Labels: labels, NX: m.NX, NY: m.NY, NZ: m.NZ, Spacing: m.Spacing}
}

// BoundingBox is an inclusive voxel-index box.
type BoundingBox struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// String renders the box the way diagnostics report it.
func (b BoundingBox) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d, %d:%d]", b.MinX, b.MaxX, b.MinY, b.MaxY, b.MinZ, b.MaxZ)
}

// ROI describes the voxels of one label.
type ROI struct {
	Label      int32
	VoxelCount int
	Bounds     BoundingBox
}

// ROI scans the mask for the given label and returns its extent.
// Returns ErrEmptyROI when no voxel carries the label.
func (m *Mask) ROI(label int32) (ROI, error) {
	roi := ROI{
		Label: label,
		Bounds: BoundingBox{
			MinX: m.NX, MinY: m.NY, MinZ: m.NZ,
			MaxX: -1, MaxY: -1, MaxZ: -1,
		},
	}

	idx := 0
	for z := 0; z < m.NZ; z++ {
		for y := 0; y < m.NY; y++ {
			for x := 0; x < m.NX; x++ {
				if m.Labels[idx] == label {
					roi.VoxelCount++
					roi.Bounds.MinX = min(roi.Bounds.MinX, x)
					roi.Bounds.MinY = min(roi.Bounds.MinY, y)
					roi.Bounds.MinZ = min(roi.Bounds.MinZ, z)
					roi.Bounds.MaxX = max(roi.Bounds.MaxX, x)
					roi.Bounds.MaxY = max(roi.Bounds.MaxY, y)
					roi.Bounds.MaxZ = max(roi.Bounds.MaxZ, z)
				}
				idx++
			}
		}
	}

	if roi.VoxelCount == 0 {
		return ROI{}, fmt.Errorf("%w: label %d", ErrEmptyROI, label)
	}
	return roi, nil
}
