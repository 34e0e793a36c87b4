package text

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Family names of the built-in fonts.
const (
	DefaultFamily   = "Go"
	MonospaceFamily = "Go Mono"
)

// System owns the loaded fonts and shapes text with them.
//
// Font loading is safe for concurrent use. Shaping reuses one HarfBuzz
// shaper and must be called from a single goroutine.
type System struct {
	mu       sync.RWMutex
	fonts    map[string]*Font
	fallback *Font
	version  uint64

	shaper shaping.HarfbuzzShaper
	lang   language.Language
}

// NewSystem returns a font system with the built-in fonts loaded.
func NewSystem() (*System, error) {
	s := &System{
		fonts: make(map[string]*Font),
		lang:  language.NewLanguage("en"),
	}

	regular, err := parseFont(goregular.TTF, DefaultFamily)
	if err != nil {
		return nil, fmt.Errorf("text: built-in font: %w", err)
	}
	mono, err := parseFont(gomono.TTF, MonospaceFamily)
	if err != nil {
		return nil, fmt.Errorf("text: built-in font: %w", err)
	}

	s.fonts[regular.family] = regular
	s.fonts[mono.family] = mono
	s.fallback = regular
	return s, nil
}

// LoadFont parses a TrueType or OpenType font and registers it under its
// family name, replacing any font of the same family. It returns the family
// name.
func (s *System) LoadFont(data []byte) (string, error) {
	f, err := parseFont(data, "")
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.fonts[f.family] = f
	s.version++
	s.mu.Unlock()

	return f.family, nil
}

// Font returns the font of a family, or the default font when the family is
// empty or unknown.
func (s *System) Font(family string) *Font {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.fonts[family]; ok {
		return f
	}
	return s.fallback
}

// Has reports whether a family is loaded.
func (s *System) Has(family string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fonts[family]
	return ok
}

// Families returns the loaded family names in sorted order.
func (s *System) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.fonts))
	for name := range s.fonts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Version changes whenever the set of fonts changes. Caches of shaped text
// key on it.
func (s *System) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
