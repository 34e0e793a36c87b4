package compositor

import (
	"log/slog"
	"testing"

	"github.com/gogpu/compositor/primitive"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.settings != DefaultSettings() {
		t.Errorf("settings = %+v, want %+v", o.settings, DefaultSettings())
	}
	if o.logger != nil {
		t.Error("default options should not carry a logger")
	}
}

func TestOptions(t *testing.T) {
	custom := slog.Default()
	font := primitive.Font{Family: "Custom"}

	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, o options)
	}{
		{
			name: "antialiasing",
			opts: []Option{WithAntialiasing(AntialiasingMSAAx4)},
			check: func(t *testing.T, o options) {
				if o.settings.Antialiasing != AntialiasingMSAAx4 {
					t.Errorf("Antialiasing = %v", o.settings.Antialiasing)
				}
			},
		},
		{
			name: "staging and text",
			opts: []Option{WithStagingChunkSize(1 << 20), WithDefaultTextSize(20), WithDefaultFont(font)},
			check: func(t *testing.T, o options) {
				if o.settings.StagingChunkSize != 1<<20 {
					t.Errorf("StagingChunkSize = %d", o.settings.StagingChunkSize)
				}
				if o.settings.DefaultTextSize != 20 {
					t.Errorf("DefaultTextSize = %v", o.settings.DefaultTextSize)
				}
				if o.settings.DefaultFont != font {
					t.Errorf("DefaultFont = %v", o.settings.DefaultFont)
				}
			},
		},
		{
			name: "settings then override",
			opts: []Option{
				WithSettings(Settings{Antialiasing: AntialiasingMSAAx2, ImageCacheBudget: 10}),
				WithImageCacheBudget(20),
			},
			check: func(t *testing.T, o options) {
				if o.settings.Antialiasing != AntialiasingMSAAx2 {
					t.Errorf("Antialiasing = %v", o.settings.Antialiasing)
				}
				if o.settings.ImageCacheBudget != 20 {
					t.Errorf("ImageCacheBudget = %d, want 20", o.settings.ImageCacheBudget)
				}
			},
		},
		{
			name: "logger",
			opts: []Option{WithLogger(custom)},
			check: func(t *testing.T, o options) {
				if o.logger != custom {
					t.Error("logger not set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			tt.check(t, o)
		})
	}
}
