package imaging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// LoadSliceStack reads 2D grayscale image files (PNG, JPEG, BMP) and stacks
// them into a volume in lexical filename order. Spacing is the physical voxel
// size to attach; a single path yields a one-slice volume.
func LoadSliceStack(paths []string, spacing [3]float64) (*Volume, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no slices", ErrInvalidDimensions)
	}

	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Strings(ordered)

	var vol *Volume
	for z, path := range ordered {
		mat := gocv.IMRead(path, gocv.IMReadGrayScale)
		if mat.Empty() {
			return nil, fmt.Errorf("imaging: cannot decode slice %s", path)
		}

		rows := mat.Rows()
		cols := mat.Cols()
		if vol == nil {
			created, err := NewVolume(cols, rows, len(ordered))
			if err != nil {
				mat.Close()
				return nil, err
			}
			vol = created
			vol.Spacing = spacing
		} else if rows != vol.NY || cols != vol.NX {
			mat.Close()
			return nil, fmt.Errorf("imaging: slice %s is %dx%d, want %dx%d",
				path, cols, rows, vol.NX, vol.NY)
		}

		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				vol.Set(x, y, z, float64(mat.GetUCharAt(y, x)))
			}
		}
		mat.Close()
	}

	return vol, nil
}

// LoadSliceStackMask reads 2D label images the same way LoadSliceStack reads
// intensities. Pixel values are taken verbatim as labels.
func LoadSliceStackMask(paths []string, spacing [3]float64) (*Mask, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no slices", ErrInvalidDimensions)
	}

	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Strings(ordered)

	var mask *Mask
	for z, path := range ordered {
		mat := gocv.IMRead(path, gocv.IMReadGrayScale)
		if mat.Empty() {
			return nil, fmt.Errorf("imaging: cannot decode mask slice %s", path)
		}

		rows := mat.Rows()
		cols := mat.Cols()
		if mask == nil {
			created, err := NewMask(cols, rows, len(ordered))
			if err != nil {
				mat.Close()
				return nil, err
			}
			mask = created
			mask.Spacing = spacing
		} else if rows != mask.NY || cols != mask.NX {
			mat.Close()
			return nil, fmt.Errorf("imaging: mask slice %s is %dx%d, want %dx%d",
				path, cols, rows, mask.NX, mask.NY)
		}

		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				mask.Set(x, y, z, int32(mat.GetUCharAt(y, x)))
			}
		}
		mat.Close()
	}

	return mask, nil
}

// LoadVolumeAuto picks a reader by extension: the native container for
// .vvol files, gocv slice decoding otherwise.
func LoadVolumeAuto(path string, spacing [3]float64) (*Volume, error) {
	if strings.EqualFold(filepath.Ext(path), ".vvol") {
		return ReadVolumeFile(path)
	}
	return LoadSliceStack([]string{path}, spacing)
}

// LoadMaskAuto is LoadVolumeAuto for label masks.
func LoadMaskAuto(path string, spacing [3]float64) (*Mask, error) {
	if strings.EqualFold(filepath.Ext(path), ".vvol") {
		return ReadMaskFile(path)
	}
	return LoadSliceStackMask([]string{path}, spacing)
}
