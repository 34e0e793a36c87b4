package compositor

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/geometry"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/internal/gpu"
	"github.com/gogpu/compositor/layer"
	"github.com/gogpu/compositor/pipeline"
	"github.com/gogpu/compositor/primitive"
	"github.com/gogpu/compositor/text"
)

// Backend renders frames of primitives with one pipeline per kind.
//
// A Backend is not safe for concurrent use.
type Backend struct {
	dev      gpucore.Device
	format   gputypes.TextureFormat
	srgb     bool
	settings Settings

	belt     *gpu.StagingBelt
	quads    *gpu.QuadPipeline
	meshes   *gpu.TrianglePipeline
	images   *gpu.ImagePipeline
	texts    *gpu.TextPipeline
	storage  *pipeline.Storage
	lastStat FrameStats
}

// New creates a backend rendering into targets of the given format.
func New(dev gpucore.Device, format gputypes.TextureFormat, opts ...Option) (*Backend, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	s := o.settings

	b := &Backend{
		dev:      dev,
		format:   format,
		srgb:     gpucore.IsSRGB(format),
		settings: s,
		storage:  pipeline.NewStorage(),
	}
	if err := b.init(); err != nil {
		b.Destroy()
		return nil, err
	}

	Logger().Info("compositor backend created",
		"format", format,
		"antialiasing", s.Antialiasing,
		"staging", s.StagingChunkSize)
	return b, nil
}

func (b *Backend) init() error {
	s := b.settings
	fonts, err := text.NewSystem()
	if err != nil {
		return fmt.Errorf("compositor: load default fonts: %w", err)
	}
	if b.belt, err = gpu.NewStagingBelt(b.dev, s.StagingChunkSize); err != nil {
		return err
	}
	if b.quads, err = gpu.NewQuadPipeline(b.dev, b.format); err != nil {
		return err
	}
	if b.meshes, err = gpu.NewTrianglePipeline(b.dev, b.format, s.Antialiasing.SampleCount()); err != nil {
		return err
	}
	if b.images, err = gpu.NewImagePipeline(b.dev, b.format, s.ImageCacheBudget); err != nil {
		return err
	}
	defaults := gpu.TextDefaults{Family: s.DefaultFont.Family, Size: s.DefaultTextSize}
	if b.texts, err = gpu.NewTextPipeline(b.dev, b.format, fonts, defaults); err != nil {
		return err
	}
	return nil
}

// Settings returns the settings the backend was created with.
func (b *Backend) Settings() Settings { return b.settings }

// Storage returns the storage shared by custom primitives.
func (b *Backend) Storage() *pipeline.Storage { return b.storage }

// LastFrame returns statistics of the last successfully presented frame.
func (b *Backend) LastFrame() FrameStats { return b.lastStat }

// Present records a frame into enc.
//
// The primitives are split into layers; overlay, when not empty, adds a
// layer of diagnostic text on top. Uploads are recorded first, then the
// render passes on target. A nil clear keeps the existing contents of the
// target. vp must match the size of target.
//
// Invalid primitives abort the frame with an error wrapping
// ErrInvalidPrimitive; the encoder must then be discarded. After the
// encoder has been submitted, call Recall.
func (b *Backend) Present(enc gpucore.CommandEncoder, clear *core.Color, target gpucore.TextureViewID, vp core.Viewport, primitives []primitive.Primitive, overlay []string) error {
	layers := layer.Generate(primitives, vp)
	if len(overlay) > 0 {
		layers = append(layers, layer.Overlay(overlay, vp))
	}

	stats := FrameStats{Layers: len(layers)}
	defer b.endFrame()

	f := &gpu.Frame{Encoder: enc, Belt: b.belt, Viewport: vp, SRGB: b.srgb}
	if err := b.prepare(f, layers, &stats); err != nil {
		return err
	}
	b.belt.Finish()

	if err := b.render(enc, clear, target, vp, layers, &stats); err != nil {
		return err
	}

	belt := b.belt.Stats()
	stats.BeltCapacity = belt.Capacity
	stats.BeltArenas = belt.Arenas
	b.lastStat = stats
	Logger().Debug("frame presented", "stats", stats.String())
	return nil
}

// Recall makes the staging memory of presented frames reusable.
//
// It must only be called once the GPU has finished executing the encoders
// passed to Present, typically right after a blocking submit. Calling it
// earlier lets the next frame overwrite data that has not been copied yet.
// This ordering is not checked.
func (b *Backend) Recall() {
	b.belt.Recall()
}

// LoadFont registers a TrueType or OpenType font and returns its family
// name. Text naming that family is drawn with it from the next frame on.
func (b *Backend) LoadFont(data []byte) (string, error) {
	family, err := b.texts.LoadFont(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	Logger().Debug("font loaded", "family", family)
	return family, nil
}

// ImageDimensions returns the pixel size of the image behind h.
func (b *Backend) ImageDimensions(h *primitive.Handle) (width, height uint32, err error) {
	width, height, err = b.images.Dimensions(h)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return width, height, nil
}

// SvgDimensions returns the viewport size of the SVG document behind h,
// rounded up to whole units.
func (b *Backend) SvgDimensions(h *primitive.Handle) (width, height uint32, err error) {
	if h == nil || !h.IsVector() {
		return 0, 0, fmt.Errorf("%w: not an svg handle", ErrUnsupportedImage)
	}
	return b.ImageDimensions(h)
}

// NewFrame returns an empty geometry frame of the given logical size. Its
// shapes are drawn by the mesh pipeline once the frame's primitive is
// presented.
func (b *Backend) NewFrame(size core.Size) *geometry.Frame {
	return geometry.NewFrame(size)
}

// Destroy releases every GPU resource of the backend, including values in
// the custom primitive storage that implement Destroy.
func (b *Backend) Destroy() {
	b.storage.Clear()
	if b.texts != nil {
		b.texts.Destroy()
		b.texts = nil
	}
	if b.images != nil {
		b.images.Destroy()
		b.images = nil
	}
	if b.meshes != nil {
		b.meshes.Destroy()
		b.meshes = nil
	}
	if b.quads != nil {
		b.quads.Destroy()
		b.quads = nil
	}
	if b.belt != nil {
		b.belt.Destroy()
		b.belt = nil
	}
}

// layerScissor returns the physical clip of l inside the target. ok is
// false for layers that are skipped: those smaller than one pixel and
// those outside the target.
func layerScissor(l *layer.Layer, vp core.Viewport) (core.RectU, bool) {
	r := l.PhysicalBounds(vp.ScaleFactor())
	if !r.IsVisible() {
		return core.RectU{}, false
	}
	r = r.ClampTo(vp.PhysicalSize())
	return r, r.IsVisible()
}

func (b *Backend) prepare(f *gpu.Frame, layers []*layer.Layer, stats *FrameStats) error {
	for _, l := range layers {
		if _, ok := layerScissor(l, f.Viewport); !ok {
			stats.CulledLayers++
			continue
		}
		for _, kind := range DrawOrder {
			n, err := b.prepareKind(f, l, kind)
			if err != nil {
				return classify(kind, err)
			}
			if n > 0 {
				stats.Prepared[kind]++
				stats.Items[kind] += n
			}
		}
	}
	return nil
}

// prepareKind prepares the drawables of one kind in l and returns how many
// there were.
func (b *Backend) prepareKind(f *gpu.Frame, l *layer.Layer, kind Kind) (int, error) {
	switch kind {
	case KindQuad:
		if len(l.Quads) == 0 {
			return 0, nil
		}
		return len(l.Quads), b.quads.Prepare(f, l.Quads)
	case KindMesh:
		if len(l.Meshes) == 0 {
			return 0, nil
		}
		return len(l.Meshes), b.meshes.Prepare(f, l.Meshes)
	case KindImage:
		if len(l.Images) == 0 {
			return 0, nil
		}
		return len(l.Images), b.images.Prepare(f, l.Images)
	case KindText:
		if len(l.Text) == 0 {
			return 0, nil
		}
		return len(l.Text), b.texts.Prepare(f, l.Text, l.Bounds)
	case KindCustom:
		for _, c := range l.Pipelines {
			if err := c.Primitive.Prepare(b.dev, b.format, b.storage, c.Bounds, f.Viewport); err != nil {
				return 0, err
			}
		}
		return len(l.Pipelines), nil
	}
	return 0, nil
}

// classify wraps a preparation error, marking invalid input.
func classify(kind Kind, err error) error {
	switch {
	case errors.Is(err, gpu.ErrUnsupportedImage):
		return fmt.Errorf("%w: %w: %w", ErrInvalidPrimitive, ErrUnsupportedImage, err)
	case errors.Is(err, primitive.ErrInvalidMesh), errors.Is(err, gpu.ErrUnknownFont):
		return fmt.Errorf("%w: %s: %w", ErrInvalidPrimitive, kind, err)
	}
	return fmt.Errorf("compositor: prepare %s: %w", kind, err)
}

func (b *Backend) render(enc gpucore.CommandEncoder, clear *core.Color, target gpucore.TextureViewID, vp core.Viewport, layers []*layer.Layer, stats *FrameStats) error {
	size := vp.PhysicalSize()
	scale := float32(vp.ScaleFactor())

	pass := &framePass{enc: enc, target: target}
	defer func() {
		pass.close()
		stats.Passes += pass.opened
	}()

	if clear != nil {
		cv := clearValue(*clear, b.srgb)
		pass.open(&cv)
	} else {
		pass.open(nil)
	}

	var index [kindCount]int
	for _, l := range layers {
		bounds, ok := layerScissor(l, vp)
		if !ok {
			continue
		}
		for _, kind := range DrawOrder {
			switch kind {
			case KindQuad:
				if len(l.Quads) == 0 {
					continue
				}
				if err := b.quads.Render(pass.encoder(), index[kind], bounds); err != nil {
					return err
				}
			case KindMesh:
				if len(l.Meshes) == 0 {
					continue
				}
				pass.closeForMesh()
				n, err := b.meshes.Render(enc, gpu.Target{View: target, Size: size}, index[kind], bounds)
				if err != nil {
					return err
				}
				stats.Passes += n
				pass.reopenWithLoad()
			case KindImage:
				if len(l.Images) == 0 {
					continue
				}
				if err := b.images.Render(pass.encoder(), index[kind], bounds); err != nil {
					return err
				}
			case KindText:
				if len(l.Text) == 0 {
					continue
				}
				if err := b.texts.Render(pass.encoder(), index[kind], bounds); err != nil {
					return err
				}
			case KindCustom:
				if len(l.Pipelines) == 0 {
					continue
				}
				pass.closeForCustom()
				for _, c := range l.Pipelines {
					clip := c.Viewport.Scale(scale).Snap().ClampTo(size)
					if !clip.IsVisible() {
						continue
					}
					c.Primitive.Render(b.storage, enc, target, size, clip)
				}
				pass.reopenWithLoad()
			}
			index[kind]++
		}
	}
	return nil
}

// endFrame lets every pipeline release per-frame state.
func (b *Backend) endFrame() {
	b.quads.EndFrame()
	b.meshes.EndFrame()
	b.images.EndFrame()
	b.texts.EndFrame()
}
