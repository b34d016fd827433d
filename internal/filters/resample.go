package filters

import (
	"context"
	"math"

	"voxtract/internal/config"
	"voxtract/internal/imaging"
)

// Resampler brings the pair onto the target physical spacing. The image uses
// the configured interpolator; the mask is always nearest neighbor so labels
// stay intact.
type Resampler struct{}

func NewResampler() *Resampler {
	return &Resampler{}
}

func (r *Resampler) Name() string {
	return "resampler"
}

func (r *Resampler) ShouldExecute(settings config.Settings) bool {
	return len(settings.ResampledSpacing) == 3
}

func (r *Resampler) Apply(ctx context.Context, vol *imaging.Volume, mask *imaging.Mask, settings config.Settings) (*imaging.Volume, *imaging.Mask, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	target := [3]float64{
		settings.ResampledSpacing[0],
		settings.ResampledSpacing[1],
		settings.ResampledSpacing[2],
	}
	if target == vol.Spacing {
		return vol, mask, nil
	}

	nx := outputDim(vol.NX, vol.Spacing[0], target[0])
	ny := outputDim(vol.NY, vol.Spacing[1], target[1])
	nz := outputDim(vol.NZ, vol.Spacing[2], target[2])

	out, err := imaging.NewVolume(nx, ny, nz)
	if err != nil {
		return nil, nil, err
	}
	out.Spacing = target

	outMask, err := imaging.NewMask(nx, ny, nz)
	if err != nil {
		return nil, nil, err
	}
	outMask.Spacing = target

	linear := settings.Interpolator == config.InterpLinear

	for z := 0; z < nz; z++ {
		srcZ := sourceCoord(z, vol.Spacing[2], target[2])
		for y := 0; y < ny; y++ {
			srcY := sourceCoord(y, vol.Spacing[1], target[1])
			for x := 0; x < nx; x++ {
				srcX := sourceCoord(x, vol.Spacing[0], target[0])

				if linear {
					out.Set(x, y, z, trilinear(vol, srcX, srcY, srcZ))
				} else {
					out.Set(x, y, z, vol.At(nearest(srcX, vol.NX), nearest(srcY, vol.NY), nearest(srcZ, vol.NZ)))
				}
				outMask.Set(x, y, z, mask.At(nearest(srcX, mask.NX), nearest(srcY, mask.NY), nearest(srcZ, mask.NZ)))
			}
		}
	}

	return out, outMask, nil
}

func outputDim(n int, spacing, target float64) int {
	dim := int(math.Round(float64(n) * spacing / target))
	return max(dim, 1)
}

// sourceCoord maps an output voxel center back into source index space.
func sourceCoord(i int, spacing, target float64) float64 {
	return (float64(i)+0.5)*target/spacing - 0.5
}

func nearest(coord float64, n int) int {
	i := int(math.Round(coord))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func trilinear(vol *imaging.Volume, x, y, z float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	z0 := int(math.Floor(z))
	fx := x - float64(x0)
	fy := y - float64(y0)
	fz := z - float64(z0)

	value := 0.0
	for dz := 0; dz <= 1; dz++ {
		wz := 1 - fz
		if dz == 1 {
			wz = fz
		}
		for dy := 0; dy <= 1; dy++ {
			wy := 1 - fy
			if dy == 1 {
				wy = fy
			}
			for dx := 0; dx <= 1; dx++ {
				wx := 1 - fx
				if dx == 1 {
					wx = fx
				}
				sample := vol.At(
					clampIndex(x0+dx, vol.NX),
					clampIndex(y0+dy, vol.NY),
					clampIndex(z0+dz, vol.NZ),
				)
				value += sample * wx * wy * wz
			}
		}
	}
	return value
}
