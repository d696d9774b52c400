package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// writeTestPNG writes a width x height gradient PNG into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

// decodePayload decodes the base64 part of a data URL and returns the image config.
func decodePayload(t *testing.T, dataURL string) (image.Config, string) {
	t.Helper()
	if !strings.HasPrefix(dataURL, "data:image/jpeg;base64,") {
		t.Fatalf("data URL has wrong prefix: %.40s", dataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/jpeg;base64,"))
	if err != nil {
		t.Fatalf("payload is not standard base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a decodable image: %v", err)
	}
	return cfg, format
}

func TestGenerate_Dimensions(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name       string
		srcWidth   int
		srcHeight  int
		wantWidth  int
		wantHeight int
	}{
		{"square", 500, 500, 100, 100},
		{"landscape 2:1", 400, 200, 100, 50},
		{"landscape non-integer ratio", 333, 100, 100, 30},
		{"portrait", 200, 400, 100, 200},
		{"upscale small source", 50, 25, 100, 50},
		{"ratio 10:3 truncates exactly", 10, 3, 100, 30},
	}

	g := newTestGenerator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestPNG(t, dir, tt.name+".png", tt.srcWidth, tt.srcHeight)

			res, err := g.Generate(path)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if res.Width != tt.wantWidth || res.Height != tt.wantHeight {
				t.Errorf("Generate() = %dx%d, want %dx%d", res.Width, res.Height, tt.wantWidth, tt.wantHeight)
			}

			cfg, format := decodePayload(t, res.DataURL)
			if format != "jpeg" {
				t.Errorf("payload format = %q, want jpeg", format)
			}
			if cfg.Width != res.Width || cfg.Height != res.Height {
				t.Errorf("payload is %dx%d, reported %dx%d", cfg.Width, cfg.Height, res.Width, res.Height)
			}
		})
	}
}

func TestGenerate_DecodesOtherFormats(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 300, 150))
	for i := range src.Pix {
		src.Pix[i] = 200
	}

	jpegPath := filepath.Join(dir, "photo.jpg")
	var jb bytes.Buffer
	if err := jpeg.Encode(&jb, src, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jpegPath, jb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	gifPath := filepath.Join(dir, "anim.gif")
	pal := image.NewPaletted(image.Rect(0, 0, 300, 150), color.Palette{color.Black, color.White})
	var gb bytes.Buffer
	if err := gif.Encode(&gb, pal, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(gifPath, gb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	bmpPath := filepath.Join(dir, "scan.bmp")
	var bb bytes.Buffer
	if err := bmp.Encode(&bb, src); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bmpPath, bb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	tiffPath := filepath.Join(dir, "scan.tiff")
	var tb bytes.Buffer
	if err := tiff.Encode(&tb, src, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tiffPath, tb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	g := newTestGenerator(t)
	for _, path := range []string{jpegPath, gifPath, bmpPath, tiffPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			res, err := g.Generate(path)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if res.Width != 100 || res.Height != 50 {
				t.Errorf("Generate() = %dx%d, want 100x50", res.Width, res.Height)
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()

	notImage := filepath.Join(dir, "notes.jpg")
	if err := os.WriteFile(notImage, []byte("this is plain text, not a JPEG"), 0o644); err != nil {
		t.Fatal(err)
	}
	wide := writeTestPNG(t, dir, "wide.png", 10000, 1)

	tests := []struct {
		name      string
		path      string
		wantErr   error
		wantStage Stage
	}{
		{"missing file", filepath.Join(dir, "does-not-exist.png"), ErrLoad, StageLoad},
		{"directory", dir, ErrLoad, StageLoad},
		{"text file with image extension", notImage, ErrDecode, StageDecode},
		{"zero derived height", wide, ErrResize, StageResize},
	}

	g := newTestGenerator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := g.Generate(tt.path)
			if err == nil {
				t.Fatalf("Generate() = %+v, want error", res)
			}
			if res != nil {
				t.Errorf("Generate() returned a result alongside error: %+v", res)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantErr)
			}
			stage, ok := StageOf(err)
			if !ok || stage != tt.wantStage {
				t.Errorf("StageOf() = %v, %v, want %v, true", stage, ok, tt.wantStage)
			}
			var te *Error
			if errors.As(err, &te) && te.Path != tt.path {
				t.Errorf("Error.Path = %q, want %q", te.Path, tt.path)
			}
		})
	}
}

func TestGenerate_EncodeFailure(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "ok.png", 200, 200)

	g := newTestGenerator(t)
	g.encode = func(w io.Writer, img image.Image, quality int) error {
		return errors.New("unsupported pixel layout")
	}

	_, err := g.Generate(path)
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("Generate() error = %v, want ErrEncode", err)
	}
	if !strings.Contains(err.Error(), "unsupported pixel layout") {
		t.Errorf("error %q does not carry the cause", err)
	}
}

func TestGenerate_ResamplerPanic(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "ok.png", 200, 200)

	g := newTestGenerator(t)
	g.resample = func(img image.Image, width, height int) image.Image {
		panic("kernel exploded")
	}

	_, err := g.Generate(path)
	if !errors.Is(err, ErrResize) {
		t.Fatalf("Generate() error = %v, want ErrResize", err)
	}
}

func TestGenerate_DecoderPanic(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "ok.png", 20, 20)

	g := newTestGenerator(t)
	g.decode = func(r io.Reader) (image.Image, string, error) {
		panic("index out of range")
	}

	_, err := g.Generate(path)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Generate() error = %v, want ErrDecode", err)
	}
	if !strings.Contains(err.Error(), "decoder panicked") {
		t.Errorf("error = %q, want panic cause", err.Error())
	}
}

func TestGenerate_ResamplerWrongSize(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "ok.png", 200, 200)

	g := newTestGenerator(t)
	g.resample = func(img image.Image, width, height int) image.Image {
		return image.NewRGBA(image.Rect(0, 0, width+1, height))
	}

	_, err := g.Generate(path)
	if !errors.Is(err, ErrResize) {
		t.Fatalf("Generate() error = %v, want ErrResize", err)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "same.png", 640, 480)
	g := newTestGenerator(t)

	first, err := g.Generate(path)
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	second, err := g.Generate(path)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	if first.Width != second.Width || first.Height != second.Height {
		t.Errorf("dimensions differ: %dx%d vs %dx%d", first.Width, first.Height, second.Width, second.Height)
	}
	if first.DataURL != second.DataURL {
		t.Error("encoded output differs between identical calls")
	}
}

func TestGenerate_Filters(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "src.png", 400, 200)

	for _, f := range Filters() {
		t.Run(string(f), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Filter = f
			g, err := NewGenerator(cfg)
			if err != nil {
				t.Fatalf("NewGenerator() error = %v", err)
			}
			res, err := g.Generate(path)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			decoded, _ := decodePayload(t, res.DataURL)
			if decoded.Width != 100 || decoded.Height != 50 {
				t.Errorf("payload is %dx%d, want 100x50", decoded.Width, decoded.Height)
			}
		})
	}
}

func TestGenerate_CustomWidth(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "src.png", 400, 300)

	cfg := Config{Width: 64, Quality: 75, Filter: Lanczos3}
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if got := g.Config(); got != cfg {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}
	res, err := g.Generate(path)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Width != 64 || res.Height != 48 {
		t.Errorf("Generate() = %dx%d, want 64x48", res.Width, res.Height)
	}
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero width", Config{Width: 0, Quality: 90, Filter: Lanczos3}},
		{"negative width", Config{Width: -5, Quality: 90, Filter: Lanczos3}},
		{"quality too low", Config{Width: 100, Quality: 0, Filter: Lanczos3}},
		{"quality too high", Config{Width: 100, Quality: 101, Filter: Lanczos3}},
		{"unknown filter", Config{Width: 100, Quality: 90, Filter: "nearest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGenerator(tt.cfg); err == nil {
				t.Errorf("NewGenerator(%+v) error = nil, want error", tt.cfg)
			}
		})
	}
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		srcWidth, srcHeight, width int
		wantHeight                 int
	}{
		{500, 500, 100, 100},
		{400, 200, 100, 50},
		{333, 100, 100, 30},
		{10000, 1, 100, 0},
		{201, 1, 100, 0},
		{200, 1, 100, 0},
		{199, 2, 100, 1},
		{1, 3, 100, 300},
		{3, 7, 100, 233},
		{0, 10, 100, 0},
	}

	for _, tt := range tests {
		w, h := TargetSize(tt.srcWidth, tt.srcHeight, tt.width)
		if w != tt.width || h != tt.wantHeight {
			t.Errorf("TargetSize(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.srcWidth, tt.srcHeight, tt.width, w, h, tt.width, tt.wantHeight)
		}
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL([]byte{0xff, 0xd8, 0xff})
	want := "data:image/jpeg;base64,/9j/"
	if got != want {
		t.Errorf("DataURL() = %q, want %q", got, want)
	}

	// Padding is kept.
	if got := DataURL([]byte{0x01}); got != "data:image/jpeg;base64,AQ==" {
		t.Errorf("DataURL() = %q, want padded payload", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Stage: StageDecode, Path: "/x.png", Err: errors.New("image: unknown format")}
	if got, want := err.Error(), "failed to decode image: image: unknown format"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Is(err, ErrLoad) {
		t.Error("decode error matched ErrLoad")
	}
	if StageResize.String() != "resize" {
		t.Errorf("StageResize.String() = %q", StageResize.String())
	}
}
