package thumbnail

import "fmt"

// Default pipeline settings.
const (
	DefaultWidth   = 100
	DefaultQuality = 90
	DefaultFilter  = Lanczos3
)

// Config holds the fixed settings of a Generator. They are chosen once for the
// whole process, never per call.
type Config struct {
	// Width is the pixel width of every thumbnail.
	Width int
	// Quality is the JPEG quality, 1-100.
	Quality int
	// Filter selects the resampling kernel.
	Filter Filter
}

// DefaultConfig returns a 100px wide, quality 90, Lanczos3 configuration.
func DefaultConfig() Config {
	return Config{
		Width:   DefaultWidth,
		Quality: DefaultQuality,
		Filter:  DefaultFilter,
	}
}

// Validate checks that every field is usable by the pipeline.
func (c Config) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("thumbnail width must be positive, got %d", c.Width)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("thumbnail quality must be between 1 and 100, got %d", c.Quality)
	}
	if _, ok := resamplers[c.Filter]; !ok {
		return fmt.Errorf("unknown thumbnail filter %q", c.Filter)
	}
	return nil
}
