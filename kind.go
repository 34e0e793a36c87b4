package compositor

import (
	"fmt"
	"strings"
)

// Kind is a kind of drawable handled by one pipeline.
type Kind uint8

// Kinds of drawables.
const (
	KindQuad Kind = iota
	KindMesh
	KindImage
	KindText
	KindCustom

	kindCount
)

// DrawOrder is the order in which the kinds of a layer are prepared and
// rendered. Later kinds draw on top of earlier ones within a layer.
var DrawOrder = [kindCount]Kind{KindQuad, KindMesh, KindImage, KindText, KindCustom}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindQuad:
		return "quad"
	case KindMesh:
		return "mesh"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// FrameStats describes the last presented frame.
type FrameStats struct {
	// Layers is the number of layers built, culled ones included.
	Layers int

	// CulledLayers is the number of layers skipped for being smaller than
	// one physical pixel or outside the target.
	CulledLayers int

	// Prepared counts, per kind, the layers prepared for that kind.
	Prepared [kindCount]int

	// Items counts, per kind, the drawables submitted to the pipelines.
	Items [kindCount]int

	// Passes is the number of render passes recorded by the compositor
	// and the mesh pipeline. Passes of custom primitives are not counted.
	Passes int

	// BeltCapacity is the staging belt capacity after the frame.
	BeltCapacity uint64

	// BeltArenas is the number of staging arenas alive after the frame.
	BeltArenas int
}

// String formats the statistics on one line.
func (s FrameStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layers=%d culled=%d passes=%d", s.Layers, s.CulledLayers, s.Passes)
	for _, k := range DrawOrder {
		if s.Items[k] > 0 {
			fmt.Fprintf(&b, " %s=%d", k, s.Items[k])
		}
	}
	fmt.Fprintf(&b, " belt=%dB/%d", s.BeltCapacity, s.BeltArenas)
	return b.String()
}
