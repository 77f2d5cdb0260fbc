package transcode

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
)

// Fit selects how a source raster is mapped onto the target dimensions
// when the aspect ratios differ.
type Fit int

const (
	// FitStretch scales to the exact target size, distorting if needed.
	FitStretch Fit = iota
	// FitCover scales to completely cover the target and crops the
	// center.
	FitCover
	// FitContain scales to fit inside the target and letterboxes the
	// remainder with black.
	FitContain
)

// scalerFor picks the resampler: the kernel scaler averages the source
// footprint when minifying, the cheaper interpolator is enough when
// magnifying.
func scalerFor(srcW, srcH, dstW, dstH int) xdraw.Scaler {
	if dstW < srcW || dstH < srcH {
		return xdraw.BiLinear
	}
	return xdraw.ApproxBiLinear
}

// resizeTo returns src resampled to exactly w by h pixels.
func resizeTo(src image.Image, w, h int, fit Fit) *image.NRGBA {
	sb := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if sb.Dx() == 0 || sb.Dy() == 0 {
		return dst
	}

	switch fit {
	case FitCover:
		// Crop the centered source window with the target aspect ratio,
		// then stretch that window.
		win := sb
		if sb.Dx()*h > w*sb.Dy() {
			cw := w * sb.Dy() / h
			x0 := sb.Min.X + (sb.Dx()-cw)/2
			win = image.Rect(x0, sb.Min.Y, x0+cw, sb.Max.Y)
		} else if sb.Dx()*h < w*sb.Dy() {
			ch := h * sb.Dx() / w
			y0 := sb.Min.Y + (sb.Dy()-ch)/2
			win = image.Rect(win.Min.X, y0, win.Max.X, y0+ch)
		}
		scalerFor(win.Dx(), win.Dy(), w, h).Scale(dst, dst.Bounds(), src, win, xdraw.Src, nil)

	case FitContain:
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{A: 0xff}), image.Point{}, draw.Src)

		iw, ih := w, sb.Dy()*w/sb.Dx()
		if ih > h {
			iw, ih = sb.Dx()*h/sb.Dy(), h
		}
		// Extreme aspect ratios round the inner box down to nothing; keep
		// at least one visible row and column.
		if iw < 1 {
			iw = 1
		}
		if ih < 1 {
			ih = 1
		}
		x0 := (w - iw) / 2
		y0 := (h - ih) / 2
		inner := image.Rect(x0, y0, x0+iw, y0+ih)
		scalerFor(sb.Dx(), sb.Dy(), iw, ih).Scale(dst, inner, src, sb, xdraw.Src, nil)

	default: // FitStretch
		scalerFor(sb.Dx(), sb.Dy(), w, h).Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	}

	return dst
}

// applyGamma brightens or darkens midtones before quantization. Values
// above 1 lighten, below 1 darken; 1 (or unset) is a no-op.
func applyGamma(src image.Image, gamma float64) image.Image {
	if gamma == 0 || gamma == 1.0 {
		return src
	}

	g := gift.New(gift.Gamma(float32(gamma)))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
