// Package imaging implements the photo pipeline: decode an uploaded image,
// rescale it to a bounding dimension preserving aspect ratio, and re-encode
// it as JPEG at a target quality. The pipeline never touches the store.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// Register the decoders accepted for uploads.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ErrDecode marks corrupt or unsupported source bytes. Callers match it with
// errors.Is and must not persist anything when it is returned.
var ErrDecode = errors.New("image decode failed")

// Size is the pixel dimensions of an encoded artifact.
type Size struct {
	Width  int
	Height int
}

// Compress decodes src, scales the longer side down to at most maxDim pixels
// keeping the exact aspect ratio, and re-encodes the result as JPEG with the
// given quality in [0,1]. Images already within maxDim are not upscaled but
// are still re-encoded, so the output is always a fresh artifact.
func Compress(src []byte, maxDim int, quality float64) ([]byte, Size, error) {
	if maxDim <= 0 {
		return nil, Size{}, fmt.Errorf("max dimension must be positive, got %d", maxDim)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, Size{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	target := FitWithin(bounds.Dx(), bounds.Dy(), maxDim)

	out := img
	if target.Width != bounds.Dx() || target.Height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, Size{}, fmt.Errorf("jpeg encode: %w", err)
	}

	return buf.Bytes(), target, nil
}

// FitWithin computes the output dimensions for a w×h image bounded by maxDim
// on its longer side. The aspect ratio is preserved exactly and images
// already within the bound keep their dimensions.
func FitWithin(w, h, maxDim int) Size {
	if w <= 0 || h <= 0 {
		return Size{Width: w, Height: h}
	}
	if w >= h {
		if w <= maxDim {
			return Size{Width: w, Height: h}
		}
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return Size{Width: maxDim, Height: nh}
	}
	if h <= maxDim {
		return Size{Width: w, Height: h}
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return Size{Width: nw, Height: maxDim}
}

// jpegQuality maps the [0,1] pipeline quality to the encoder's 1–100 scale.
func jpegQuality(q float64) int {
	n := int(q * 100)
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}
