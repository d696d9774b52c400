// Package thumbnail turns an image file into a small JPEG preview packaged as a
// self-contained data URI.
//
// The pipeline is a single synchronous pass:
//
//	load -> decode -> measure -> compute geometry -> resample -> encode -> package
//
// The output width is fixed by Config.Width and the height is derived from the
// source aspect ratio, truncated toward zero. Any failing stage aborts the call
// with an *Error naming that stage.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"

	// Registered decoders; the decode step decides which formats are accepted.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// MIMEType is the media type of every generated thumbnail.
const MIMEType = "image/jpeg"

const dataURLPrefix = "data:" + MIMEType + ";base64,"

// Result is a generated thumbnail.
type Result struct {
	// DataURL is "data:image/jpeg;base64," followed by the padded base64 JPEG bytes.
	DataURL string `json:"data_url"`
	// Width is always the configured target width.
	Width int `json:"width"`
	// Height is the derived target height.
	Height int `json:"height"`
}

// decodeFunc parses an encoded image and names its format.
type decodeFunc func(r io.Reader) (image.Image, string, error)

// encodeFunc serializes img as JPEG at quality into w.
type encodeFunc func(w io.Writer, img image.Image, quality int) error

// Generator produces thumbnails with a fixed Config. It holds no mutable state
// and is safe for concurrent use.
type Generator struct {
	cfg      Config
	decode   decodeFunc
	resample resampleFunc
	encode   encodeFunc
}

// NewGenerator validates cfg and returns a Generator that uses it.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:      cfg,
		decode:   image.Decode,
		resample: resamplers[cfg.Filter],
		encode:   encodeJPEG,
	}, nil
}

// Config returns the settings the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate reads the image at path and returns its thumbnail.
func (g *Generator) Generate(path string) (*Result, error) {
	log.Debug().
		Str("path", path).
		Int("width", g.cfg.Width).
		Str("filter", string(g.cfg.Filter)).
		Msg("Generating thumbnail")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Stage: StageLoad, Path: path, Err: err}
	}

	img, format, err := g.decodeImage(data)
	if err != nil {
		return nil, &Error{Stage: StageDecode, Path: path, Err: err}
	}

	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()
	width, height := TargetSize(srcWidth, srcHeight, g.cfg.Width)

	resized, err := g.resize(img, width, height)
	if err != nil {
		return nil, &Error{Stage: StageResize, Path: path, Err: err}
	}

	var buf bytes.Buffer
	if err := g.encode(&buf, resized, g.cfg.Quality); err != nil {
		return nil, &Error{Stage: StageEncode, Path: path, Err: err}
	}

	log.Debug().
		Str("path", path).
		Str("format", format).
		Int("orig_width", srcWidth).
		Int("orig_height", srcHeight).
		Int("new_width", width).
		Int("new_height", height).
		Int("output_size", buf.Len()).
		Msg("Thumbnail generated")

	return &Result{
		DataURL: DataURL(buf.Bytes()),
		Width:   width,
		Height:  height,
	}, nil
}

// decodeImage runs the registered decoders, turning a decoder panic on
// malformed input into an error.
func (g *Generator) decodeImage(data []byte) (img image.Image, format string, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, format = nil, ""
			err = fmt.Errorf("decoder panicked: %v", r)
		}
	}()
	return g.decode(bytes.NewReader(data))
}

// resize runs the resampler, turning a degenerate target or a resampler panic
// into an error.
func (g *Generator) resize(img image.Image, width, height int) (out image.Image, err error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("resampler panicked: %v", r)
		}
	}()

	out = g.resample(img, width, height)
	if b := out.Bounds(); b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("resampler produced %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
	return out, nil
}

// TargetSize returns the thumbnail dimensions for a srcWidth x srcHeight source:
// the fixed width and floor(width * srcHeight / srcWidth). The height is 0 when
// the source is wide enough; the resize stage rejects that.
func TargetSize(srcWidth, srcHeight, width int) (int, int) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return width, 0
	}
	return width, int(int64(width) * int64(srcHeight) / int64(srcWidth))
}

// DataURL packages JPEG bytes as an RFC 2397 data URI.
func DataURL(jpegBytes []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(jpegBytes)
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}
