// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline lets third-party code add its own drawable kinds to the
// compositor.
//
// A custom drawable implements [Primitive]. During a frame the compositor
// calls Prepare for every custom primitive of every visible layer, then,
// after closing the shared render pass, calls Render so the primitive can
// record its own passes into the frame encoder.
//
// GPU state that must outlive a frame (pipelines, buffers, atlases) belongs
// in the [Storage] passed to both calls. Storage is keyed by the Go type of
// the stored value, so two pipelines never see each other's state as long
// as each uses a type it owns:
//
//	type waveState struct {
//	    pipeline gpucore.RenderPipelineID
//	    uniforms gpucore.BufferID
//	}
//
//	func (w *Wave) Prepare(dev gpucore.Device, format gputypes.TextureFormat,
//	    storage *pipeline.Storage, bounds core.Rectangle, vp core.Viewport) error {
//	    if !pipeline.Has[*waveState](storage) {
//	        st, err := newWaveState(dev, format)
//	        if err != nil {
//	            return err
//	        }
//	        pipeline.Store(storage, st)
//	    }
//	    st, _ := pipeline.Get[*waveState](storage)
//	    dev.WriteBuffer(st.uniforms, 0, w.uniformBytes(bounds, vp))
//	    return nil
//	}
package pipeline
