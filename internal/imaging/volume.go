package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometryMismatch is returned when an image and a mask do not share
	// dimensions and spacing.
	ErrGeometryMismatch = errors.New("imaging: image and mask geometry mismatch")

	// ErrEmptyROI is returned when a mask contains no voxels with the
	// requested label.
	ErrEmptyROI = errors.New("imaging: region of interest is empty")

	// ErrInvalidDimensions is returned for non-positive volume dimensions.
	ErrInvalidDimensions = errors.New("imaging: invalid volume dimensions")
)

// Volume is a 3D grayscale voxel grid with physical spacing per axis.
// Data is stored x-fastest, then y, then z. A 2D image is a volume with NZ=1.
type Volume struct {
	Data    []float64
	NX      int
	NY      int
	NZ      int
	Spacing [3]float64
}

// NewVolume allocates a zero-filled volume with unit spacing.
func NewVolume(nx, ny, nz int) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, nx, ny, nz)
	}
	return &Volume{
		Data:    make([]float64, nx*ny*nz),
		NX:      nx,
		NY:      ny,
		NZ:      nz,
		Spacing: [3]float64{1, 1, 1},
	}, nil
}

func (v *Volume) index(x, y, z int) int {
	return (z*v.NY+y)*v.NX + x
}

// At returns the voxel value at (x, y, z). Bounds are the caller's problem.
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.index(x, y, z)]
}

// Set stores value at (x, y, z).
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.index(x, y, z)] = value
}

// InBounds reports whether (x, y, z) lies inside the grid.
func (v *Volume) InBounds(x, y, z int) bool {
	return x >= 0 && x < v.NX && y >= 0 && y < v.NY && z >= 0 && z < v.NZ
}

// Len returns the total voxel count.
func (v *Volume) Len() int {
	return v.NX * v.NY * v.NZ
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	data := make([]float64, len(v.Data))
	copy(data, v.Data)
	return &Volume{Data: data, NX: v.NX, NY: v.NY, NZ: v.NZ, Spacing: v.Spacing}
}

// Mean returns the mean intensity over the whole volume.
func (v *Volume) Mean() float64 {
	if len(v.Data) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range v.Data {
		sum += value
	}
	return sum / float64(len(v.Data))
}

// SameGeometry reports whether two grids share dimensions and spacing.
func (v *Volume) SameGeometry(m *Mask) bool {
	return v.NX == m.NX && v.NY == m.NY && v.NZ == m.NZ && v.Spacing == m.Spacing
}
