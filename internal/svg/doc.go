// Package svg parses a static subset of SVG and rasterizes it.
//
// Supported: the shape elements (path, rect, circle, ellipse, line,
// polyline, polygon), nested groups and svg elements, the transform
// attribute, solid fill and stroke paint with opacities, fill rules,
// stroke caps, joins, miter limits and dashes, either as attributes or
// in a style attribute. Gradients, patterns, text, clipping, masking,
// filters and references are skipped.
//
// Shapes are tessellated with package geometry and the triangles are
// scan-converted with golang.org/x/image/vector for anti-aliasing.
package svg
