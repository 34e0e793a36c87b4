package compositor

import (
	"log/slog"

	"github.com/gogpu/compositor/primitive"
)

// Option configures a Backend during creation.
// Use functional options to customize Backend behavior.
//
// Example:
//
//	// Default settings
//	b, err := compositor.New(dev, format)
//
//	// Multisampled meshes and a larger staging belt
//	b, err := compositor.New(dev, format,
//	    compositor.WithAntialiasing(compositor.AntialiasingMSAAx4),
//	    compositor.WithStagingChunkSize(1<<20))
type Option func(*options)

// options holds optional configuration for Backend creation.
type options struct {
	settings Settings
	logger   *slog.Logger
}

// defaultOptions returns the default backend options.
func defaultOptions() options {
	return options{
		settings: DefaultSettings(),
		logger:   nil, // keep the package logger
	}
}

// WithSettings replaces all settings at once. Options given after it still
// apply.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithAntialiasing sets the multisampling applied to meshes.
func WithAntialiasing(a Antialiasing) Option {
	return func(o *options) {
		o.settings.Antialiasing = a
	}
}

// WithStagingChunkSize sets the initial staging belt capacity in bytes.
func WithStagingChunkSize(size uint64) Option {
	return func(o *options) {
		o.settings.StagingChunkSize = size
	}
}

// WithDefaultTextSize sets the size of text that specifies none.
func WithDefaultTextSize(size float32) Option {
	return func(o *options) {
		o.settings.DefaultTextSize = size
	}
}

// WithDefaultFont sets the font of text that specifies no family.
func WithDefaultFont(f primitive.Font) Option {
	return func(o *options) {
		o.settings.DefaultFont = f
	}
}

// WithImageCacheBudget sets the texture memory kept by the image cache.
func WithImageCacheBudget(bytes uint64) Option {
	return func(o *options) {
		o.settings.ImageCacheBudget = bytes
	}
}

// WithLogger sets the logger for compositor and its sub-packages, as
// SetLogger does.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
