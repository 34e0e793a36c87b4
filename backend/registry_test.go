package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/wgpu/hal/noop"
)

func TestNoopRegistered(t *testing.T) {
	if !IsRegistered(NameNoop) {
		t.Fatal("noop backend is not registered")
	}
	if !slices.Contains(Available(), NameNoop) {
		t.Errorf("Available() = %v, want noop", Available())
	}
}

func TestDefaultPrefersHardware(t *testing.T) {
	if got := Default(); got != NameNoop {
		t.Fatalf("Default() = %q, want noop when nothing else is registered", got)
	}

	Register(NameVulkan, noop.API{})
	t.Cleanup(func() { Unregister(NameVulkan) })
	if got := Default(); got != NameVulkan {
		t.Errorf("Default() = %q, want vulkan", got)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(NameNoop)
	if err != nil {
		t.Fatalf("Open(noop) error = %v", err)
	}
	defer s.Close()
	if s.Info.Name == "" {
		t.Error("adapter info is empty")
	}
	if s.Limits().MaxTextureDimension2D == 0 {
		t.Error("device limits are empty")
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
	}
}
