package filehandler

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/evanoberholster/imagemeta"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// FileInfo describes a single file or directory.
type FileInfo struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	Size         int64      `json:"size"`
	ModifiedTime time.Time  `json:"modifiedTime"`
	IsDir        bool       `json:"isDir"`
	MIMEType     string     `json:"mimeType,omitempty"`
	Image        *ImageInfo `json:"image,omitempty"`
}

// ImageInfo holds image dimensions and whatever EXIF metadata was present.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`

	// Timestamp (DateTimeOriginal, then CreateDate, then ModifyDate)
	DateTaken *time.Time `json:"dateTaken,omitempty"`

	CameraMake  string `json:"cameraMake,omitempty"`
	CameraModel string `json:"cameraModel,omitempty"`

	HasGPS    bool    `json:"hasGps"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Location  string  `json:"location,omitempty"`
}

// Describe stats path, sniffs its content type and, for decodable images,
// adds dimensions and EXIF metadata. Metadata failures are logged and leave
// the corresponding fields empty; only a failed stat is an error.
func Describe(path string) (*FileInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fi := &FileInfo{
		Path:         absPath,
		Name:         info.Name(),
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
		IsDir:        info.IsDir(),
	}
	if info.IsDir() {
		return fi, nil
	}

	mt, err := mimetype.DetectFile(absPath)
	if err != nil {
		log.Debug().Err(err).Str("path", absPath).Msg("MIME detection failed")
	} else {
		fi.MIMEType = mt.String()
	}

	if strings.HasPrefix(fi.MIMEType, "image/") || IsImage(filepath.Ext(absPath)) {
		imgInfo, err := describeImage(absPath)
		if err != nil {
			log.Debug().Err(err).Str("path", absPath).Msg("Not a decodable image")
		} else {
			fi.Image = imgInfo
		}
	}

	return fi, nil
}

func describeImage(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	imgInfo := &ImageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return imgInfo, nil
	}
	if err := addExif(f, imgInfo); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata")
	}
	return imgInfo, nil
}

// addExif copies GPS, date and camera fields from the EXIF block of f.
func addExif(f *os.File, imgInfo *ImageInfo) error {
	exifData, err := imagemeta.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		imgInfo.HasGPS = true
		imgInfo.Latitude = gps.Latitude()
		imgInfo.Longitude = gps.Longitude()
		imgInfo.Location = CoordinatesToDMS(imgInfo.Latitude, imgInfo.Longitude)
	}

	for _, t := range []time.Time{exifData.DateTimeOriginal(), exifData.CreateDate(), exifData.ModifyDate()} {
		if !t.IsZero() {
			taken := t
			imgInfo.DateTaken = &taken
			break
		}
	}

	imgInfo.CameraMake = strings.TrimSpace(exifData.Make)
	imgInfo.CameraModel = strings.TrimSpace(exifData.Model)
	return nil
}
