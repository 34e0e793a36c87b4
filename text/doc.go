// Package text turns strings into positioned glyph bitmaps for the text
// pipeline.
//
// The package covers four steps:
//
//   - font management: [System] keeps the loaded fonts by family name and
//     always provides the Go fonts from golang.org/x/image/font/gofont
//   - shaping: [System.Shape] splits each line into bidi runs
//     (golang.org/x/text/unicode/bidi) and shapes them with the HarfBuzz port
//     of github.com/go-text/typesetting
//   - rasterization: [Font.Rasterize] fills glyph outlines from
//     golang.org/x/image/font/sfnt with golang.org/x/image/vector
//   - packing: [Atlas] places glyph bitmaps in a single-channel texture with
//     a shelf packer
//
// Shaped paragraphs are cached by [Cache] with frame-based eviction.
//
// Text is laid out line by line; lines are split at '\n' only.
package text
