package text

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	s, err := NewSystem()
	if err != nil {
		t.Fatalf("NewSystem() error = %v", err)
	}
	return s
}

func TestNewSystem_BuiltinFonts(t *testing.T) {
	s := newTestSystem(t)

	for _, family := range []string{DefaultFamily, MonospaceFamily} {
		if !s.Has(family) {
			t.Errorf("built-in family %q missing", family)
		}
	}
	if got := s.Font("no such family"); got.Family() != DefaultFamily {
		t.Errorf("unknown family falls back to %q, want %q", got.Family(), DefaultFamily)
	}
	if got := s.Font(""); got.Family() != DefaultFamily {
		t.Errorf("empty family falls back to %q", got.Family())
	}
}

func TestSystem_LoadFont(t *testing.T) {
	s := newTestSystem(t)
	before := s.Version()

	family, err := s.LoadFont(gobold.TTF)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	if family == "" {
		t.Fatal("LoadFont() returned empty family")
	}
	if !s.Has(family) || !slices.Contains(s.Families(), family) {
		t.Errorf("family %q not registered", family)
	}
	if s.Version() == before {
		t.Error("Version() unchanged after LoadFont")
	}
}

func TestSystem_LoadFontInvalid(t *testing.T) {
	s := newTestSystem(t)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyFontData},
		{"garbage", []byte("definitely not a font file"), ErrInvalidFont},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.LoadFont(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFont() error = %v, want %v", err, tt.want)
			}
		})
	}
	if s.Version() != 0 {
		t.Error("failed loads must not change the version")
	}
}

func TestFont_Metrics(t *testing.T) {
	s := newTestSystem(t)
	ascent, descent := s.Font(DefaultFamily).Metrics(20)
	if ascent <= 0 || descent <= 0 || ascent+descent > 30 {
		t.Errorf("Metrics(20) = %v, %v", ascent, descent)
	}
}
