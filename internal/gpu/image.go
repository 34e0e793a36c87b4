package gpu

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/internal/cache"
	"github.com/gogpu/compositor/internal/parallel"
	"github.com/gogpu/compositor/primitive"
)

const (
	// imageInstanceSize is position and size.
	imageInstanceSize = 4 * 4

	// DefaultImageCacheBudget is the texture memory kept by the image
	// cache before least recently used images are evicted.
	DefaultImageCacheBudget = 64 << 20

	initialImageInstances = 64

	maxDecodeWorkers = 4
)

// ImagePipeline draws raster and SVG images. Every raster handle is
// uploaded once into its own texture; an SVG handle gets one texture per
// pixel size and tint it is drawn with. Textures are cached until they go
// a frame without being drawn or the cache exceeds its byte budget.
type ImagePipeline struct {
	dev           gpucore.Device
	textureFormat gputypes.TextureFormat
	maxDimension  int

	constantsLayout gpucore.BindGroupLayoutID
	textureLayout   gpucore.BindGroupLayoutID
	samplers        [2]gpucore.SamplerID
	set             *pipelineSet

	cache  *cache.LRU[imageKey, *imageEntry]
	budget uint64
	frame  uint64
	pool   *parallel.Pool

	layers       []*imageLayer
	prepareLayer int
}

// imageKey identifies a cached texture. Raster images use the handle id
// alone.
type imageKey struct {
	handle        uint64
	width, height uint32
	tint          core.Color
}

type imageEntry struct {
	key     imageKey
	texture gpucore.TextureID
	view    gpucore.TextureViewID
	groups  [2]gpucore.BindGroupID

	// width and height are the source dimensions, before any downsampling.
	width, height uint32
	bytes         uint64
	lastUsed      uint64
}

type imageLayer struct {
	uniforms  *Buffer
	constants gpucore.BindGroupID
	instances *Buffer
	draws     []gpucore.BindGroupID
}

// NewImagePipeline creates the image pipeline for targets of the given
// format. A zero budget selects DefaultImageCacheBudget.
func NewImagePipeline(dev gpucore.Device, format gputypes.TextureFormat, budget uint64) (*ImagePipeline, error) {
	if budget == 0 {
		budget = DefaultImageCacheBudget
	}
	textureFormat := gputypes.TextureFormatRGBA8Unorm
	if gpucore.IsSRGB(format) {
		textureFormat = gputypes.TextureFormatRGBA8UnormSrgb
	}
	p := &ImagePipeline{
		dev:           dev,
		textureFormat: textureFormat,
		maxDimension:  int(dev.Limits().MaxTextureDimension2D),
		cache:         cache.NewLRU[imageKey, *imageEntry](),
		pool:          parallel.NewPool(min(runtime.GOMAXPROCS(0), maxDecodeWorkers)),
		budget:        budget,
	}

	var err error
	for i, filter := range []gpucore.FilterMode{gpucore.FilterLinear, gpucore.FilterNearest} {
		if p.samplers[i], err = dev.CreateSampler(&gpucore.SamplerDescriptor{Label: "image_sampler", Filter: filter}); err != nil {
			p.Destroy()
			return nil, fmt.Errorf("gpu: create image sampler: %w", err)
		}
	}
	if p.constantsLayout, err = dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "image_constants_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0)},
	}); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("gpu: create image bind group layout: %w", err)
	}
	if p.textureLayout, err = dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "image_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{textureEntry(0), samplerEntry(1)},
	}); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("gpu: create image bind group layout: %w", err)
	}
	if p.set, err = createPipelineSet(dev, pipelineConfig{
		label:   "image",
		wgsl:    imageShaderSource,
		groups:  []gpucore.BindGroupLayoutID{p.constantsLayout, p.textureLayout},
		buffers: imageVertexLayout(),
		format:  format,
	}); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func imageVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: imageInstanceSize,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // size
			},
		},
	}
}

// Dimensions returns the pixel size of the image behind h. For an SVG
// handle this is its viewport size rounded up.
func (p *ImagePipeline) Dimensions(h *primitive.Handle) (width, height uint32, err error) {
	if h == nil {
		return 0, 0, fmt.Errorf("%w: nil handle", ErrUnsupportedImage)
	}
	if e, ok := p.cache.Peek(imageKey{handle: h.ID()}); ok {
		return e.width, e.height, nil
	}
	return imageDimensions(h)
}

// keyFor returns the cache key of img drawn at the given scale factor. SVG
// images are rasterized at their physical size, capped by the texture
// limit.
func (p *ImagePipeline) keyFor(img *primitive.Image, scale float32) imageKey {
	if !img.Handle.IsVector() {
		return imageKey{handle: img.Handle.ID()}
	}
	side := func(v float32) uint32 {
		px := int(math.Round(float64(v * scale)))
		return uint32(min(max(px, 1), p.maxDimension))
	}
	return imageKey{
		handle: img.Handle.ID(),
		width:  side(img.Bounds.Width),
		height: side(img.Bounds.Height),
		tint:   img.Tint,
	}
}

// decoded holds the pixels of a handle decoded ahead of its upload.
type decoded struct {
	width, height uint32
	pix           *image.NRGBA
	err           error
}

func (p *ImagePipeline) decode(h *primitive.Handle, key imageKey) decoded {
	if h.IsVector() {
		w, ht, pix, err := rasterizeSvg(h, int(key.width), int(key.height), key.tint)
		return decoded{width: w, height: ht, pix: pix, err: err}
	}
	w, ht, err := imageDimensions(h)
	if err != nil {
		return decoded{err: err}
	}
	pix, err := decodeHandle(h, p.maxDimension)
	return decoded{width: w, height: ht, pix: pix, err: err}
}

type pendingImage struct {
	handle *primitive.Handle
	key    imageKey
}

// decodeMissing decodes or rasterizes the images that are not cached yet
// on the decode pool.
func (p *ImagePipeline) decodeMissing(images []primitive.Image, scale float32) map[imageKey]decoded {
	var missing []pendingImage
	seen := make(map[imageKey]bool)
	for i := range images {
		h := images[i].Handle
		if h == nil {
			continue
		}
		key := p.keyFor(&images[i], scale)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := p.cache.Peek(key); !ok {
			missing = append(missing, pendingImage{handle: h, key: key})
		}
	}
	if len(missing) == 0 {
		return nil
	}

	results := make([]decoded, len(missing))
	p.pool.Run(len(missing), func(i int) {
		results[i] = p.decode(missing[i].handle, missing[i].key)
	})
	out := make(map[imageKey]decoded, len(missing))
	for i, m := range missing {
		out[m.key] = results[i]
	}
	return out
}

// upload returns the cache entry for key, uploading it first if needed.
// Keys missing from pre are decoded on the caller.
func (p *ImagePipeline) upload(h *primitive.Handle, key imageKey, pre map[imageKey]decoded) (*imageEntry, error) {
	if e, ok := p.cache.Get(key); ok {
		return e, nil
	}
	d, ok := pre[key]
	if !ok {
		d = p.decode(h, key)
	}
	if d.err != nil {
		return nil, d.err
	}
	w, ht, pix := d.width, d.height, d.pix

	tw, th := uint32(pix.Rect.Dx()), uint32(pix.Rect.Dy())
	tex, err := p.dev.CreateTexture(&gpucore.TextureDescriptor{
		Label:       "image",
		Width:       tw,
		Height:      th,
		Format:      p.textureFormat,
		Usage:       gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		SampleCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create image texture %dx%d: %w", tw, th, err)
	}
	view, err := p.dev.CreateTextureView(tex, "image_view")
	if err != nil {
		p.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create image view: %w", err)
	}
	p.dev.WriteTexture(&gpucore.TextureWrite{
		Texture:     tex,
		Width:       tw,
		Height:      th,
		BytesPerRow: 4 * tw,
	}, pix.Pix)

	e := &imageEntry{
		key:      key,
		texture:  tex,
		view:     view,
		width:    w,
		height:   ht,
		bytes:    uint64(tw) * uint64(th) * 4,
		lastUsed: p.frame,
	}
	p.cache.Add(e.key, e, e.bytes)
	p.enforceBudget()
	return e, nil
}

// enforceBudget evicts least recently used images not drawn this frame
// until the cache fits its budget.
func (p *ImagePipeline) enforceBudget() {
	for p.cache.Weight() > p.budget {
		_, e, _ := p.cache.Oldest()
		if e.lastUsed == p.frame {
			slogger().Warn("image cache over budget", "bytes", p.cache.Weight(), "budget", p.budget)
			return
		}
		p.evict(e)
	}
}

func (p *ImagePipeline) evict(e *imageEntry) {
	for _, g := range e.groups {
		if g != gpucore.InvalidID {
			p.dev.DestroyBindGroup(g)
		}
	}
	p.dev.DestroyTextureView(e.view)
	p.dev.DestroyTexture(e.texture)
	p.cache.Remove(e.key)
}

func (p *ImagePipeline) group(e *imageEntry, filter primitive.FilterMethod) (gpucore.BindGroupID, error) {
	i := 0
	if filter == primitive.FilterNearest {
		i = 1
	}
	if e.groups[i] != gpucore.InvalidID {
		return e.groups[i], nil
	}
	g, err := p.dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:  "image_texture",
		Layout: p.textureLayout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, TextureView: e.view},
			{Binding: 1, Sampler: p.samplers[i]},
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpu: create image bind group: %w", err)
	}
	e.groups[i] = g
	return g, nil
}

func (p *ImagePipeline) newLayer() (*imageLayer, error) {
	uniforms, err := NewBuffer(p.dev, "image_uniforms", matrixSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	constants, err := p.dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
		Label:   "image_constants",
		Layout:  p.constantsLayout,
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: uniforms.ID(), Size: matrixSize}},
	})
	if err != nil {
		uniforms.Destroy()
		return nil, fmt.Errorf("gpu: create image bind group: %w", err)
	}
	instances, err := NewBuffer(p.dev, "image_instances", initialImageInstances*imageInstanceSize,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		p.dev.DestroyBindGroup(constants)
		uniforms.Destroy()
		return nil, err
	}
	return &imageLayer{uniforms: uniforms, constants: constants, instances: instances}, nil
}

// Prepare uploads missing textures and stages the images of the next
// layer. An image that cannot be decoded fails the whole layer.
func (p *ImagePipeline) Prepare(f *Frame, images []primitive.Image) error {
	if p.prepareLayer == len(p.layers) {
		l, err := p.newLayer()
		if err != nil {
			return err
		}
		p.layers = append(p.layers, l)
	}
	l := p.layers[p.prepareLayer]
	l.draws = l.draws[:0]

	scale := float32(f.Viewport.ScaleFactor())
	pre := p.decodeMissing(images, scale)
	instances := make([]byte, len(images)*imageInstanceSize)
	for i := range images {
		img := &images[i]
		if img.Handle == nil {
			return fmt.Errorf("%w: image %d has no handle", ErrUnsupportedImage, i)
		}
		e, err := p.upload(img.Handle, p.keyFor(img, scale), pre)
		if err != nil {
			return fmt.Errorf("gpu: image %d: %w", i, err)
		}
		e.lastUsed = p.frame

		g, err := p.group(e, img.Filter)
		if err != nil {
			return err
		}
		putFloats(instances[i*imageInstanceSize:], img.Bounds.X, img.Bounds.Y, img.Bounds.Width, img.Bounds.Height)
		l.draws = append(l.draws, g)
	}

	uniforms, err := f.Belt.WriteBuffer(f.Encoder, l.uniforms.ID(), 0, matrixSize)
	if err != nil {
		return err
	}
	putMatrix(uniforms, f.Viewport.ScaledProjection())

	if len(instances) > 0 {
		if _, err := l.instances.Ensure(uint64(len(instances))); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.instances.ID(), 0, instances); err != nil {
			return err
		}
	}
	p.prepareLayer++
	return nil
}

// Render draws the images of a prepared layer, clipped to bounds.
func (p *ImagePipeline) Render(pass gpucore.RenderPassEncoder, index int, bounds core.RectU) error {
	if index >= p.prepareLayer {
		return fmt.Errorf("gpu: image layer %d: %w", index, ErrLayerNotPrepared)
	}
	l := p.layers[index]
	if len(l.draws) == 0 {
		return nil
	}
	pass.SetPipeline(p.set.pipeline)
	pass.SetScissorRect(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	pass.SetBindGroup(0, l.constants)
	pass.SetVertexBuffer(0, l.instances.ID(), 0)
	for i, g := range l.draws {
		pass.SetBindGroup(1, g)
		pass.Draw(6, 1, 0, uint32(i))
	}
	return nil
}

// EndFrame evicts images not drawn this frame and resets the layer counter.
func (p *ImagePipeline) EndFrame() {
	evicted := 0
	p.cache.Range(func(_ imageKey, e *imageEntry) bool {
		if e.lastUsed != p.frame {
			p.evict(e)
			evicted++
		}
		return true
	})
	if evicted > 0 {
		slogger().Debug("image cache trimmed", "evicted", evicted, "bytes", p.cache.Weight())
	}
	p.frame++
	p.prepareLayer = 0
}

// CachedImages returns the number of textures in the cache.
func (p *ImagePipeline) CachedImages() int { return p.cache.Len() }

// CachedBytes returns the texture memory held by the cache.
func (p *ImagePipeline) CachedBytes() uint64 { return p.cache.Weight() }

// Layers returns the number of per-layer slots allocated so far.
func (p *ImagePipeline) Layers() int { return len(p.layers) }

// Destroy releases every GPU resource of the pipeline.
func (p *ImagePipeline) Destroy() {
	p.cache.Range(func(_ imageKey, e *imageEntry) bool {
		p.evict(e)
		return true
	})
	for _, l := range p.layers {
		p.dev.DestroyBindGroup(l.constants)
		l.uniforms.Destroy()
		l.instances.Destroy()
	}
	p.layers = nil
	p.set.destroy(p.dev)
	if p.textureLayout != gpucore.InvalidID {
		p.dev.DestroyBindGroupLayout(p.textureLayout)
	}
	if p.constantsLayout != gpucore.InvalidID {
		p.dev.DestroyBindGroupLayout(p.constantsLayout)
	}
	for _, s := range p.samplers {
		if s != gpucore.InvalidID {
			p.dev.DestroySampler(s)
		}
	}
	p.pool.Close()
}
