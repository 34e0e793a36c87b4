// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package primitive

// Font selects a loaded font by family name.
type Font struct {
	Family string
}

// Built-in fonts. Both are always available.
var (
	DefaultFont   = Font{Family: "Go"}
	MonospaceFont = Font{Family: "Go Mono"}
)

// IsDefault reports whether f names no family.
func (f Font) IsDefault() bool {
	return f.Family == ""
}
