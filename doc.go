// Package compositor renders frames of 2D primitives onto a GPU texture.
//
// # Overview
//
// A frame is a list of primitives: quads, text, meshes, images, custom
// pipeline primitives and the structural Group, Clip, Translate and Cache
// variants. [Backend.Present] turns them into layers, prepares every layer
// with the pipeline of each primitive kind and records the draws into a
// caller-owned command encoder.
//
// # Quick Start
//
//	session, err := backend.Open(backend.Default())
//	...
//	defer session.Close()
//
//	b, err := compositor.New(session.Device, gputypes.TextureFormatBGRA8Unorm)
//	...
//	enc, err := session.NewEncoder("frame")
//	...
//	black := core.Black
//	err = b.Present(enc, &black, view, vp, primitives, nil)
//	...
//	err = session.Submit(enc)
//	b.Recall()
//
// # Frame protocol
//
// Present prepares layers in order and, within a layer, kinds in
// [DrawOrder]. All uploads go through a staging belt and land in the
// encoder as buffer copies before the first render pass. Rendering then
// opens one pass on the target, closing and reopening it around mesh and
// custom primitives, which record passes of their own.
//
// Layers whose bounds snap to less than one physical pixel are skipped in
// both phases, so every pipeline sees the same sequence of layer indices.
//
// After the encoder has been submitted and the GPU is done with it, the
// caller calls [Backend.Recall] to make the staging memory reusable.
//
// # Coordinate System
//
// Primitives use logical coordinates with the origin at the top-left
// corner, X to the right and Y down. The [core.Viewport] scale factor maps
// them to physical pixels.
package compositor

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
