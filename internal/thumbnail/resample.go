package thumbnail

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Filter names a resampling kernel.
type Filter string

const (
	// Lanczos3 is the 3-lobe windowed-sinc filter.
	Lanczos3 Filter = "lanczos3"
	// CatmullRom is the cubic Catmull-Rom spline.
	CatmullRom Filter = "catmullrom"
	// Mitchell is the Mitchell-Netravali cubic filter.
	Mitchell Filter = "mitchell"
)

// resampleFunc scales img to exactly width x height. Callers guarantee both are positive.
type resampleFunc func(img image.Image, width, height int) image.Image

var resamplers = map[Filter]resampleFunc{
	Lanczos3:   resampleLanczos3,
	CatmullRom: resampleCatmullRom,
	Mitchell:   resampleMitchell,
}

// Filters lists the supported filter names.
func Filters() []Filter {
	return []Filter{Lanczos3, CatmullRom, Mitchell}
}

func resampleLanczos3(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

func resampleCatmullRom(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func resampleMitchell(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.MitchellNetravali)
}
