package gpu

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/internal/svg"
	"github.com/gogpu/compositor/primitive"
)

// openHandle returns a reader over the encoded bytes of h.
func openHandle(h *primitive.Handle) (io.ReadCloser, error) {
	switch h.Kind() {
	case primitive.HandleMemory:
		return io.NopCloser(bytes.NewReader(h.Bytes())), nil
	case primitive.HandlePath:
		f, err := os.Open(h.Path())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: handle kind %d", ErrUnsupportedImage, h.Kind())
	}
}

// parseSvg reads the document behind a vector handle.
func parseSvg(h *primitive.Handle) (*svg.Document, error) {
	r, err := openHandle(h)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := svg.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return doc, nil
}

// svgDimensions returns the viewport of a document rounded up to whole
// pixels.
func svgDimensions(doc *svg.Document) (width, height uint32) {
	w, h := doc.Size()
	return uint32(max(1, math.Ceil(float64(w)))), uint32(max(1, math.Ceil(float64(h))))
}

// rasterizeSvg draws the document behind h at the given pixel size.
func rasterizeSvg(h *primitive.Handle, width, height int, tint core.Color) (w, ht uint32, pix *image.NRGBA, err error) {
	doc, err := parseSvg(h)
	if err != nil {
		return 0, 0, nil, err
	}
	w, ht = svgDimensions(doc)
	pix = doc.Rasterize(width, height, tint)
	slogger().Debug("svg rasterized", "handle", h.ID(), "shapes", doc.Shapes(), "size", pix.Rect.Size())
	return w, ht, pix, nil
}

// imageDimensions returns the size of the image behind h without decoding
// its pixels.
func imageDimensions(h *primitive.Handle) (width, height uint32, err error) {
	if h.IsVector() {
		doc, err := parseSvg(h)
		if err != nil {
			return 0, 0, err
		}
		width, height = svgDimensions(doc)
		return width, height, nil
	}
	if h.Kind() == primitive.HandlePixels {
		w, ht := h.PixelSize()
		return w, ht, nil
	}
	r, err := openHandle(h)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return uint32(cfg.Width), uint32(cfg.Height), nil
}

// decodeHandle returns the pixels of h as straight-alpha RGBA with a
// stride of exactly four bytes per pixel. Images larger than maxDim on
// either side are downsampled to fit.
func decodeHandle(h *primitive.Handle, maxDim int) (*image.NRGBA, error) {
	var src image.Image
	if h.Kind() == primitive.HandlePixels {
		w, ht := h.PixelSize()
		if w == 0 || ht == 0 || uint64(len(h.Bytes())) != uint64(w)*uint64(ht)*4 {
			return nil, fmt.Errorf("%w: %dx%d pixels with %d bytes", ErrUnsupportedImage, w, ht, len(h.Bytes()))
		}
		src = &image.NRGBA{Pix: h.Bytes(), Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(ht))}
	} else {
		r, err := openHandle(h)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		if src, _, err = image.Decode(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
		}
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	w, ht := fitWithin(b.Dx(), b.Dy(), maxDim)
	if w != b.Dx() || ht != b.Dy() {
		dst := image.NewNRGBA(image.Rect(0, 0, w, ht))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		slogger().Debug("image downsampled", "from", b.Size(), "to", dst.Rect.Size())
		return dst, nil
	}
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// fitWithin scales w and h down, keeping the aspect ratio, until neither
// exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
