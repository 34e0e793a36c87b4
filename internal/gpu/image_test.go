package gpu

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/primitive"
)

func newImagePipeline(t *testing.T, h *harness, budget uint64) *ImagePipeline {
	t.Helper()
	p, err := NewImagePipeline(h.dev, testFormat, budget)
	if err != nil {
		t.Fatalf("NewImagePipeline() error = %v", err)
	}
	t.Cleanup(p.pool.Close)
	return p
}

func entry(t *testing.T, p *ImagePipeline, id uint64) *imageEntry {
	t.Helper()
	e, ok := p.cache.Peek(imageKey{handle: id})
	if !ok {
		t.Fatalf("image %d is not cached", id)
	}
	return e
}

func solidPixels(w, h uint32, c byte) *primitive.Handle {
	data := bytes.Repeat([]byte{c, c, c, 255}, int(w*h))
	return primitive.NewHandleFromPixels(w, h, data)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestImagePipeline_PrepareRender(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)

	a, b := solidPixels(2, 2, 10), solidPixels(3, 1, 20)
	images := []primitive.Image{
		{Handle: a, Bounds: core.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}},
		{Handle: b, Bounds: core.Rectangle{X: 5, Y: 6, Width: 7, Height: 8}, Filter: primitive.FilterNearest},
	}
	if err := p.Prepare(h.frame, images); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	pass := h.pass()
	if err := p.Render(pass, 0, core.RectU{Width: 100, Height: 100}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	pass.End()
	h.submit()

	draws := h.enc.Passes[0].Draws
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	if draws[1].FirstInstance != 1 || draws[1].Count != 6 {
		t.Errorf("second draw = %+v", draws[1])
	}
	if draws[0].BindGroups[1] == draws[1].BindGroups[1] {
		t.Error("images share a texture bind group")
	}

	// The nearest sampler is bound for the second image.
	sampler := h.dev.BindGroups[draws[1].BindGroups[1]].Entries[1].Sampler
	if h.dev.Samplers[sampler].Filter != gpucore.FilterNearest {
		t.Error("second image not sampled with nearest filtering")
	}

	inst := h.dev.Buffers[p.layers[0].instances.ID()].Data
	if got := floatAt(inst, 4); got != 5 {
		t.Errorf("second instance x = %v, want 5", got)
	}

	tex := h.dev.Textures[entry(t, p, a.ID()).texture]
	if !bytes.Equal(tex.Data, a.Bytes()) {
		t.Error("texture contents differ from the handle pixels")
	}
}

func TestImagePipeline_Dimensions(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)

	tests := []struct {
		name   string
		handle *primitive.Handle
		w, h   uint32
	}{
		{"pixels", solidPixels(4, 3, 0), 4, 3},
		{"png", primitive.NewHandleFromMemory(encodePNG(t, 5, 2)), 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ht, err := p.Dimensions(tt.handle)
			if err != nil {
				t.Fatalf("Dimensions() error = %v", err)
			}
			if w != tt.w || ht != tt.h {
				t.Errorf("Dimensions() = %dx%d, want %dx%d", w, ht, tt.w, tt.h)
			}
		})
	}
}

func TestImagePipeline_DecodesPNG(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)
	handle := primitive.NewHandleFromMemory(encodePNG(t, 3, 2))

	if err := p.Prepare(h.frame, []primitive.Image{{Handle: handle, Bounds: core.Rectangle{Width: 3, Height: 2}}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	h.submit()

	tex := h.dev.Textures[entry(t, p, handle.ID()).texture]
	// Pixel (2, 1) in RGBA.
	px := tex.Data[(1*3+2)*4:]
	if px[0] != 80 || px[1] != 40 || px[2] != 7 || px[3] != 255 {
		t.Errorf("pixel (2, 1) = %v", px[:4])
	}
}

func TestImagePipeline_DecodesConcurrently(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)

	var images []primitive.Image
	for w := 1; w <= 6; w++ {
		handle := primitive.NewHandleFromMemory(encodePNG(t, w, 2))
		images = append(images, primitive.Image{Handle: handle, Bounds: core.Rectangle{Width: 10, Height: 10}})
	}
	// A handle drawn twice is decoded once.
	images = append(images, images[0])

	if err := p.Prepare(h.frame, images); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	h.submit()

	if p.CachedImages() != 6 {
		t.Fatalf("CachedImages() = %d, want 6", p.CachedImages())
	}
	for i, img := range images[:6] {
		e := entry(t, p, img.Handle.ID())
		if e.width != uint32(i+1) || e.height != 2 {
			t.Errorf("image %d cached as %dx%d", i, e.width, e.height)
		}
	}
}

func TestImagePipeline_Downsamples(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	limits := gpucore.DefaultLimits()
	limits.MaxTextureDimension2D = 4
	h.dev.SetLimits(limits)
	p := newImagePipeline(t, h, 0)

	handle := solidPixels(8, 2, 100)
	if err := p.Prepare(h.frame, []primitive.Image{{Handle: handle, Bounds: core.Rectangle{Width: 8, Height: 2}}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	tex := h.dev.Textures[entry(t, p, handle.ID()).texture]
	if tex.Desc.Width != 4 || tex.Desc.Height != 1 {
		t.Errorf("texture = %dx%d, want 4x1", tex.Desc.Width, tex.Desc.Height)
	}
	if w, ht, _ := p.Dimensions(handle); w != 8 || ht != 2 {
		t.Errorf("Dimensions() = %dx%d, want the source size 8x2", w, ht)
	}
}

func TestImagePipeline_InvalidImage(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)

	tests := []struct {
		name   string
		handle *primitive.Handle
	}{
		{"garbage", primitive.NewHandleFromMemory([]byte("definitely not an image"))},
		{"short pixels", primitive.NewHandleFromPixels(4, 4, make([]byte, 3))},
		{"missing file", primitive.NewHandleFromPath("/nonexistent/image.png")},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Prepare(h.frame, []primitive.Image{{Handle: tt.handle, Bounds: core.Rectangle{Width: 1, Height: 1}}})
			if !errors.Is(err, ErrUnsupportedImage) {
				t.Errorf("Prepare() error = %v, want ErrUnsupportedImage", err)
			}
		})
	}
}

func TestImagePipeline_FrameEviction(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)
	a, b := solidPixels(2, 2, 1), solidPixels(2, 2, 2)
	bounds := core.Rectangle{Width: 2, Height: 2}

	if err := p.Prepare(h.frame, []primitive.Image{{Handle: a, Bounds: bounds}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	p.EndFrame()
	if p.CachedImages() != 1 {
		t.Fatalf("CachedImages() = %d, want 1", p.CachedImages())
	}

	if err := p.Prepare(h.frame, []primitive.Image{{Handle: b, Bounds: bounds}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	p.EndFrame()
	if p.CachedImages() != 1 {
		t.Fatalf("CachedImages() = %d, want 1", p.CachedImages())
	}
	if _, ok := p.cache.Peek(imageKey{handle: b.ID()}); !ok {
		t.Error("image drawn in the last frame was evicted")
	}
	if p.CachedBytes() != 16 {
		t.Errorf("CachedBytes() = %d, want 16", p.CachedBytes())
	}
}

func TestImagePipeline_Budget(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 16)
	bounds := core.Rectangle{Width: 2, Height: 2}
	a, b, c := solidPixels(2, 2, 1), solidPixels(2, 2, 2), solidPixels(2, 2, 3)

	// Images in use this frame are never evicted, even over budget.
	if err := p.Prepare(h.frame, []primitive.Image{{Handle: a, Bounds: bounds}, {Handle: b, Bounds: bounds}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if p.CachedImages() != 2 {
		t.Fatalf("CachedImages() = %d, want 2", p.CachedImages())
	}
	p.EndFrame()

	if err := p.Prepare(h.frame, []primitive.Image{{Handle: c, Bounds: bounds}}); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if p.CachedImages() != 1 {
		t.Errorf("CachedImages() = %d, want 1 after the budget evicted a and b", p.CachedImages())
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{10, 10, 20, 10, 10},
		{40, 10, 20, 20, 5},
		{10, 40, 20, 5, 20},
		{1000, 1, 10, 10, 1},
		{10, 10, 0, 10, 10},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="12.5" viewBox="0 0 10 10" preserveAspectRatio="none">
	<rect width="10" height="10" fill="#f00"/>
</svg>`

func TestImagePipeline_Svg(t *testing.T) {
	h := newHarness(t, 100, 100, 2)
	p := newImagePipeline(t, h, 0)
	icon := primitive.NewSvgHandleFromMemory([]byte(redSquare))

	if w, ht, err := p.Dimensions(icon); err != nil || w != 24 || ht != 13 {
		t.Fatalf("Dimensions() = %dx%d, %v, want the viewport 24x13", w, ht, err)
	}

	green := core.Color{G: 1, A: 1}
	images := []primitive.Image{
		{Handle: icon, Bounds: core.Rectangle{Width: 10, Height: 5}},
		{Handle: icon, Bounds: core.Rectangle{X: 20, Width: 10, Height: 5}},
		{Handle: icon, Bounds: core.Rectangle{Width: 10, Height: 5}, Tint: green},
		{Handle: icon, Bounds: core.Rectangle{Width: 4, Height: 4}},
	}
	if err := p.Prepare(h.frame, images); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	h.submit()

	// Same size and tint share a texture.
	if p.CachedImages() != 3 {
		t.Fatalf("CachedImages() = %d, want 3", p.CachedImages())
	}

	tests := []struct {
		name string
		key  imageKey
		w, h uint32
		px   [4]byte
	}{
		{"plain", imageKey{handle: icon.ID(), width: 20, height: 10}, 20, 10, [4]byte{255, 0, 0, 255}},
		{"tinted", imageKey{handle: icon.ID(), width: 20, height: 10, tint: green}, 20, 10, [4]byte{0, 255, 0, 255}},
		{"small", imageKey{handle: icon.ID(), width: 8, height: 8}, 8, 8, [4]byte{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := p.cache.Peek(tt.key)
			if !ok {
				t.Fatalf("no texture for %+v", tt.key)
			}
			if e.width != 24 || e.height != 13 {
				t.Errorf("source size = %dx%d, want 24x13", e.width, e.height)
			}
			tex := h.dev.Textures[e.texture]
			if tex.Desc.Width != tt.w || tex.Desc.Height != tt.h {
				t.Fatalf("texture = %dx%d, want %dx%d", tex.Desc.Width, tex.Desc.Height, tt.w, tt.h)
			}
			// Center pixel.
			i := ((tt.h/2)*tt.w + tt.w/2) * 4
			if got := [4]byte(tex.Data[i : i+4]); got != tt.px {
				t.Errorf("center pixel = %v, want %v", got, tt.px)
			}
		})
	}

	// Drawing at another size next frame evicts the unused rasters.
	p.EndFrame()
	h.next(h.frame.Viewport)
	if err := p.Prepare(h.frame, images[3:]); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	p.EndFrame()
	if p.CachedImages() != 1 {
		t.Errorf("CachedImages() after a frame = %d, want 1", p.CachedImages())
	}
}

func TestImagePipeline_InvalidSvg(t *testing.T) {
	h := newHarness(t, 100, 100, 1)
	p := newImagePipeline(t, h, 0)

	for _, handle := range []*primitive.Handle{
		primitive.NewSvgHandleFromMemory([]byte("<html/>")),
		primitive.NewSvgHandleFromPath("/nonexistent/icon.svg"),
	} {
		err := p.Prepare(h.frame, []primitive.Image{{Handle: handle, Bounds: core.Rectangle{Width: 1, Height: 1}}})
		if !errors.Is(err, ErrUnsupportedImage) {
			t.Errorf("Prepare() error = %v, want ErrUnsupportedImage", err)
		}
		if _, _, err := p.Dimensions(handle); !errors.Is(err, ErrUnsupportedImage) {
			t.Errorf("Dimensions() error = %v, want ErrUnsupportedImage", err)
		}
	}
}
