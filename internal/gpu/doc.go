// Package gpu implements the per-kind render pipelines of the compositor and
// the staging belt they upload through.
//
// Every pipeline follows the same frame protocol:
//
//  1. Prepare is called once per visible layer that holds items of the
//     pipeline's kind. It records uploads through the [StagingBelt] into the
//     frame encoder and stores the resulting draw list in a per-layer slot.
//  2. Render is called with the layer index of the same layer. It replays
//     the slot into an open render pass (the triangle pipeline opens its own
//     passes).
//  3. EndFrame resets the layer counter. Slots and buffers are kept for the
//     next frame; buffers only ever grow.
//
// Layer indices are counted separately per pipeline.
package gpu
