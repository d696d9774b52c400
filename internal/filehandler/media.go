// Package filehandler lists directories and describes files for the explorer UI.
//
// Extension tables drive the cheap per-entry MIME hints in directory listings;
// Describe sniffs the file content and, for images, reads dimensions and EXIF.
package filehandler

import (
	"fmt"
	"strings"
)

// SupportedImageExtensions maps image file extensions to their MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
}

// SupportedVideoExtensions maps video file extensions to their MIME types.
var SupportedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)

	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType, nil
	}

	if mimeType, ok := SupportedVideoExtensions[ext]; ok {
		return mimeType, nil
	}

	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// IsImage returns true if the file extension corresponds to an image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo returns true if the file extension corresponds to a video.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}

// IsSupported returns true if the file extension is a known image or video.
func IsSupported(ext string) bool {
	return IsImage(ext) || IsVideo(ext)
}

// CoordinatesToDMS converts decimal degrees to degrees, minutes, seconds format.
func CoordinatesToDMS(lat, lon float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	latDeg := int(lat)
	latMin := int((lat - float64(latDeg)) * 60)
	latSec := ((lat-float64(latDeg))*60 - float64(latMin)) * 60

	lonDeg := int(lon)
	lonMin := int((lon - float64(lonDeg)) * 60)
	lonSec := ((lon-float64(lonDeg))*60 - float64(lonMin)) * 60

	return fmt.Sprintf("%d°%d'%.2f\"%s, %d°%d'%.2f\"%s",
		latDeg, latMin, latSec, latDir,
		lonDeg, lonMin, lonSec, lonDir)
}
