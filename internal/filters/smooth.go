package filters

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"voxtract/internal/config"
	"voxtract/internal/imaging"
)

// GaussianSmoother blurs the image slice by slice. The mask is never
// smoothed.
type GaussianSmoother struct{}

func NewGaussianSmoother() *GaussianSmoother {
	return &GaussianSmoother{}
}

func (g *GaussianSmoother) Name() string {
	return "gaussian_smoother"
}

func (g *GaussianSmoother) ShouldExecute(settings config.Settings) bool {
	return settings.SmoothingSigma > 0
}

func (g *GaussianSmoother) Apply(ctx context.Context, vol *imaging.Volume, mask *imaging.Mask, settings config.Settings) (*imaging.Volume, *imaging.Mask, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	sigma := settings.SmoothingSigma
	kernelSize := kernelForSigma(sigma)

	out := vol.Clone()
	src := gocv.NewMatWithSize(vol.NY, vol.NX, gocv.MatTypeCV64F)
	defer src.Close()
	dst := gocv.NewMatWithSize(vol.NY, vol.NX, gocv.MatTypeCV64F)
	defer dst.Close()

	for z := 0; z < vol.NZ; z++ {
		for y := 0; y < vol.NY; y++ {
			for x := 0; x < vol.NX; x++ {
				src.SetDoubleAt(y, x, vol.At(x, y, z))
			}
		}

		gocv.GaussianBlur(src, &dst, image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderDefault)

		for y := 0; y < vol.NY; y++ {
			for x := 0; x < vol.NX; x++ {
				out.Set(x, y, z, dst.GetDoubleAt(y, x))
			}
		}
	}

	return out, mask, nil
}

func kernelForSigma(sigma float64) int {
	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return max(3, min(kernelSize, 15))
}
