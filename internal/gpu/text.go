package gpu

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/primitive"
	"github.com/gogpu/compositor/text"
)

const (
	// textVertexSize is position, atlas uv and color.
	textVertexSize = 8 * 4
	textIndexSize  = 4

	maxAtlasSize = 4096

	// atlasTrimUtilization is the atlas coverage above which EndFrame
	// clears the atlas so it is rebuilt from the glyphs still in use.
	atlasTrimUtilization = 0.75

	initialTextGlyphs = 256
)

// TextDefaults are applied to text that leaves the font or size unset.
type TextDefaults struct {
	Family string
	Size   float32
}

// TextPipeline shapes text, rasterizes glyphs into a shared atlas and draws
// them as textured quads.
type TextPipeline struct {
	dev      gpucore.Device
	system   *text.System
	defaults TextDefaults

	cache *text.Cache
	atlas *text.Atlas

	atlasTexture gpucore.TextureID
	atlasView    gpucore.TextureViewID
	atlasWidth   int
	atlasHeight  int
	atlasGen     uint64
	maxAtlas     int

	sampler      gpucore.SamplerID
	groupLayout  gpucore.BindGroupLayoutID
	set          *pipelineSet
	layers       []*textLayer
	prepareLayer int

	vertices []byte
	indices  []byte
}

type textLayer struct {
	uniforms   *Buffer
	vertices   *Buffer
	indices    *Buffer
	group      gpucore.BindGroupID
	groupGen   uint64
	indexCount uint32
}

// NewTextPipeline creates the text pipeline for targets of the given format.
func NewTextPipeline(dev gpucore.Device, format gputypes.TextureFormat, system *text.System, defaults TextDefaults) (*TextPipeline, error) {
	if defaults.Family == "" {
		defaults.Family = text.DefaultFamily
	}
	if defaults.Size <= 0 {
		defaults.Size = 16
	}

	p := &TextPipeline{
		dev:      dev,
		system:   system,
		defaults: defaults,
		cache:    text.NewCache(),
		atlas:    text.NewAtlas(text.DefaultAtlasSize, text.DefaultAtlasSize),
		maxAtlas: min(maxAtlasSize, int(dev.Limits().MaxTextureDimension2D)),
	}

	var err error
	p.sampler, err = dev.CreateSampler(&gpucore.SamplerDescriptor{Label: "text_sampler", Filter: gpucore.FilterLinear})
	if err != nil {
		return nil, fmt.Errorf("gpu: create text sampler: %w", err)
	}
	p.groupLayout, err = dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDescriptor{
		Label:   "text_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0), textureEntry(1), samplerEntry(2)},
	})
	if err != nil {
		dev.DestroySampler(p.sampler)
		return nil, fmt.Errorf("gpu: create text bind group layout: %w", err)
	}
	p.set, err = createPipelineSet(dev, pipelineConfig{
		label:   "text",
		wgsl:    textShaderSource,
		groups:  []gpucore.BindGroupLayoutID{p.groupLayout},
		buffers: textVertexLayout(),
		format:  format,
	})
	if err != nil {
		dev.DestroyBindGroupLayout(p.groupLayout)
		dev.DestroySampler(p.sampler)
		return nil, err
	}
	if err := p.ensureAtlasTexture(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: textVertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// LoadFont registers a font with the font system and returns its family.
func (p *TextPipeline) LoadFont(data []byte) (string, error) {
	return p.system.LoadFont(data)
}

// ensureAtlasTexture recreates the atlas texture when the atlas has been
// resized.
func (p *TextPipeline) ensureAtlasTexture() error {
	w, h := p.atlas.Size()
	if p.atlasTexture != gpucore.InvalidID && w == p.atlasWidth && h == p.atlasHeight {
		return nil
	}
	tex, err := p.dev.CreateTexture(&gpucore.TextureDescriptor{
		Label:       "text_atlas",
		Width:       uint32(w),
		Height:      uint32(h),
		Format:      gputypes.TextureFormatR8Unorm,
		Usage:       gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		SampleCount: 1,
	})
	if err != nil {
		return fmt.Errorf("gpu: create text atlas %dx%d: %w", w, h, err)
	}
	view, err := p.dev.CreateTextureView(tex, "text_atlas_view")
	if err != nil {
		p.dev.DestroyTexture(tex)
		return fmt.Errorf("gpu: create text atlas view: %w", err)
	}
	if p.atlasTexture != gpucore.InvalidID {
		p.dev.DestroyTextureView(p.atlasView)
		p.dev.DestroyTexture(p.atlasTexture)
		slogger().Debug("text atlas resized", "width", w, "height", h)
	}
	p.atlasTexture, p.atlasView = tex, view
	p.atlasWidth, p.atlasHeight = w, h
	p.atlasGen++
	return nil
}

// uploadAtlas writes the dirty region of the atlas to the GPU.
func (p *TextPipeline) uploadAtlas() error {
	if err := p.ensureAtlasTexture(); err != nil {
		return err
	}
	r, ok := p.atlas.TakeDirty()
	if !ok {
		return nil
	}
	w, _ := p.atlas.Size()
	pix := p.atlas.Pixels()
	data := make([]byte, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		data = append(data, pix[y*w+r.Min.X:y*w+r.Max.X]...)
	}
	p.dev.WriteTexture(&gpucore.TextureWrite{
		Texture:     p.atlasTexture,
		X:           uint32(r.Min.X),
		Y:           uint32(r.Min.Y),
		Width:       uint32(r.Dx()),
		Height:      uint32(r.Dy()),
		BytesPerRow: uint32(r.Dx()),
	}, data)
	return nil
}

func (p *TextPipeline) newLayer() (*textLayer, error) {
	uniforms, err := NewBuffer(p.dev, "text_uniforms", matrixSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	vertices, err := NewBuffer(p.dev, "text_vertices", initialTextGlyphs*4*textVertexSize,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		uniforms.Destroy()
		return nil, err
	}
	indices, err := NewBuffer(p.dev, "text_indices", initialTextGlyphs*6*textIndexSize,
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		uniforms.Destroy()
		vertices.Destroy()
		return nil, err
	}
	return &textLayer{uniforms: uniforms, vertices: vertices, indices: indices}, nil
}

// refreshGroups rebuilds the bind groups of the layers prepared so far this
// frame, plus the current one, when the atlas texture has changed.
func (p *TextPipeline) refreshGroups() error {
	for _, l := range p.layers[:p.prepareLayer+1] {
		if l.group != gpucore.InvalidID && l.groupGen == p.atlasGen {
			continue
		}
		group, err := p.dev.CreateBindGroup(&gpucore.BindGroupDescriptor{
			Label:  "text_group",
			Layout: p.groupLayout,
			Entries: []gpucore.BindGroupEntry{
				{Binding: 0, Buffer: l.uniforms.ID(), Size: matrixSize},
				{Binding: 1, TextureView: p.atlasView},
				{Binding: 2, Sampler: p.sampler},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: create text bind group: %w", err)
		}
		if l.group != gpucore.InvalidID {
			p.dev.DestroyBindGroup(l.group)
		}
		l.group, l.groupGen = group, p.atlasGen
	}
	return nil
}

// Prepare shapes and stages the text of the next layer. Lines entirely
// outside bounds are skipped.
func (p *TextPipeline) Prepare(f *Frame, texts []primitive.Text, bounds core.Rectangle) error {
	if p.prepareLayer == len(p.layers) {
		l, err := p.newLayer()
		if err != nil {
			return err
		}
		p.layers = append(p.layers, l)
	}
	l := p.layers[p.prepareLayer]

	p.vertices = p.vertices[:0]
	p.indices = p.indices[:0]
	for i := range texts {
		if err := p.layout(f, &texts[i], bounds); err != nil {
			return err
		}
	}

	if err := p.uploadAtlas(); err != nil {
		return err
	}
	if err := p.refreshGroups(); err != nil {
		return err
	}

	uniforms, err := f.Belt.WriteBuffer(f.Encoder, l.uniforms.ID(), 0, matrixSize)
	if err != nil {
		return err
	}
	putMatrix(uniforms, f.Viewport.Projection())

	if len(p.indices) > 0 {
		if _, err := l.vertices.Ensure(uint64(len(p.vertices))); err != nil {
			return err
		}
		if _, err := l.indices.Ensure(uint64(len(p.indices))); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.vertices.ID(), 0, p.vertices); err != nil {
			return err
		}
		if err := f.Belt.Write(f.Encoder, l.indices.ID(), 0, p.indices); err != nil {
			return err
		}
	}
	l.indexCount = uint32(len(p.indices) / textIndexSize)
	p.prepareLayer++
	return nil
}

// layout appends the glyph quads of t to the scratch buffers.
func (p *TextPipeline) layout(f *Frame, t *primitive.Text, bounds core.Rectangle) error {
	if t.Content == "" {
		return nil
	}
	family := t.Font.Family
	if t.Font.IsDefault() {
		family = p.defaults.Family
	}
	if !p.system.Has(family) {
		return fmt.Errorf("%w: %q", ErrUnknownFont, family)
	}
	size := t.Size
	if size <= 0 {
		size = p.defaults.Size
	}
	sized := *t
	sized.Size = size
	lineHeight := sized.LineHeightPx()

	key := text.NewCacheKey(t.Content, family, size, lineHeight, p.system.Version())
	para, ok := p.cache.Get(key, t.Content, family)
	if !ok {
		para = p.system.Shape(t.Content, family, size, lineHeight)
		p.cache.Put(key, t.Content, family, para)
	}

	scale := f.scale()
	ppem := size * scale
	color := t.Color.Pack(f.SRGB)

	top := t.Bounds.Y + align(t.Vertical, t.Bounds.Height, para.Height)
	for i := range para.Lines {
		line := &para.Lines[i]
		lineTop := top + float32(i)*lineHeight
		if lineTop >= bounds.Y+bounds.Height || lineTop+lineHeight <= bounds.Y {
			continue
		}
		left := t.Bounds.X + align(t.Horizontal, t.Bounds.Width, line.Width)
		baseline := lineTop + para.Ascent

		for _, g := range line.Glyphs {
			gk := text.NewGlyphKey(para.Font, g.ID, ppem)
			ag, ok := p.atlas.Lookup(gk)
			if !ok {
				var err error
				ag, ok, err = p.rasterize(para.Font, gk, g.ID, ppem)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
			}
			if ag.Rect.Empty() {
				continue
			}
			x := float32(math.Round(float64((left+g.X)*scale))) + float32(ag.Left)
			y := float32(math.Round(float64((baseline+g.Y)*scale))) + float32(ag.Top)
			p.appendGlyph(x, y, ag, color)
		}
	}
	return nil
}

// rasterize renders a glyph and adds it to the atlas, growing the atlas
// when it is full. Glyphs without an outline report false. A glyph that
// does not fit the atlas at its maximum size fails with ErrAtlasFull.
func (p *TextPipeline) rasterize(font *text.Font, key text.GlyphKey, id uint16, ppem float32) (text.AtlasGlyph, bool, error) {
	bm, err := font.Rasterize(id, ppem)
	if err != nil {
		slogger().Debug("glyph rasterization failed", "glyph", id, "err", err)
		return text.AtlasGlyph{}, false, nil
	}
	for {
		if ag, ok := p.atlas.Insert(key, bm); ok {
			return ag, true, nil
		}
		if !p.atlas.Grow(p.maxAtlas) {
			w, h := p.atlas.Size()
			return text.AtlasGlyph{}, false, fmt.Errorf("%w: glyph %d at %gpx in a %dx%d atlas holding %d glyphs",
				ErrAtlasFull, id, ppem, w, h, p.atlas.Len())
		}
	}
}

func (p *TextPipeline) appendGlyph(x, y float32, ag text.AtlasGlyph, color [4]float32) {
	w := float32(ag.Rect.Dx())
	h := float32(ag.Rect.Dy())
	u0, v0 := float32(ag.Rect.Min.X), float32(ag.Rect.Min.Y)
	u1, v1 := float32(ag.Rect.Max.X), float32(ag.Rect.Max.Y)

	base := uint32(len(p.vertices) / textVertexSize)
	p.vertices = appendTextVertex(p.vertices, x, y, u0, v0, color)
	p.vertices = appendTextVertex(p.vertices, x+w, y, u1, v0, color)
	p.vertices = appendTextVertex(p.vertices, x+w, y+h, u1, v1, color)
	p.vertices = appendTextVertex(p.vertices, x, y+h, u0, v1, color)

	var idx [6 * textIndexSize]byte
	putUint32s(idx[:], base, base+1, base+2, base, base+2, base+3)
	p.indices = append(p.indices, idx[:]...)
}

func appendTextVertex(dst []byte, x, y, u, v float32, color [4]float32) []byte {
	var vtx [textVertexSize]byte
	putFloats(vtx[:], x, y, u, v, color[0], color[1], color[2], color[3])
	return append(dst, vtx[:]...)
}

// align returns the offset of content of the given extent inside space.
// Unbounded space always aligns to the start.
func align(a primitive.Alignment, space, extent float32) float32 {
	if math.IsInf(float64(space), 0) {
		return 0
	}
	switch a {
	case primitive.AlignCenter:
		return (space - extent) / 2
	case primitive.AlignEnd:
		return space - extent
	default:
		return 0
	}
}

// Render draws the glyphs of a prepared layer, clipped to bounds.
func (p *TextPipeline) Render(pass gpucore.RenderPassEncoder, index int, bounds core.RectU) error {
	if index >= p.prepareLayer {
		return fmt.Errorf("gpu: text layer %d: %w", index, ErrLayerNotPrepared)
	}
	l := p.layers[index]
	if l.indexCount == 0 {
		return nil
	}
	pass.SetPipeline(p.set.pipeline)
	pass.SetScissorRect(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	pass.SetBindGroup(0, l.group)
	pass.SetVertexBuffer(0, l.vertices.ID(), 0)
	pass.SetIndexBuffer(l.indices.ID(), gputypes.IndexFormatUint32, 0)
	pass.DrawIndexed(l.indexCount, 1, 0, 0, 0)
	return nil
}

// EndFrame evicts text not drawn this frame and resets the layer counter.
// An atlas above its utilization budget is cleared and refilled by the
// next frame.
func (p *TextPipeline) EndFrame() {
	if n := p.cache.Trim(); n > 0 {
		slogger().Debug("text cache trimmed", "evicted", n, "remaining", p.cache.Len())
	}
	if u := p.atlas.Utilization(); u > atlasTrimUtilization {
		slogger().Warn("text atlas reset", "utilization", u, "glyphs", p.atlas.Len())
		p.atlas.Reset()
	}
	p.prepareLayer = 0
}

// CachedParagraphs returns the number of shaped paragraphs in the cache.
func (p *TextPipeline) CachedParagraphs() int { return p.cache.Len() }

// AtlasGlyphs returns the number of glyphs in the atlas.
func (p *TextPipeline) AtlasGlyphs() int { return p.atlas.Len() }

// Layers returns the number of per-layer slots allocated so far.
func (p *TextPipeline) Layers() int { return len(p.layers) }

// Destroy releases every GPU resource of the pipeline.
func (p *TextPipeline) Destroy() {
	for _, l := range p.layers {
		if l.group != gpucore.InvalidID {
			p.dev.DestroyBindGroup(l.group)
		}
		l.uniforms.Destroy()
		l.vertices.Destroy()
		l.indices.Destroy()
	}
	p.layers = nil
	if p.atlasTexture != gpucore.InvalidID {
		p.dev.DestroyTextureView(p.atlasView)
		p.dev.DestroyTexture(p.atlasTexture)
		p.atlasTexture = gpucore.InvalidID
	}
	p.set.destroy(p.dev)
	p.dev.DestroyBindGroupLayout(p.groupLayout)
	p.dev.DestroySampler(p.sampler)
}
