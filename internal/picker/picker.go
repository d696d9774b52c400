// Package picker shows the operating system's native file and folder dialogs.
package picker

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// Mode selects which dialog to show.
type Mode string

const (
	ModeFiles     Mode = "files"
	ModeDirectory Mode = "directory"
)

// Selection is the outcome of a dialog. Canceled is set when the user
// dismissed the dialog; it is not an error.
type Selection struct {
	Paths    []string `json:"paths"`
	Canceled bool     `json:"canceled"`
}

// Picker shows a native selection dialog.
type Picker interface {
	Pick(mode Mode) (Selection, error)
}

// imagePatterns are the file filters offered by the files dialog.
var imagePatterns = []string{
	"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.bmp", "*.tif", "*.tiff",
}

// Zenity implements Picker with ncruces/zenity.
type Zenity struct{}

// Pick shows the dialog for mode.
func (Zenity) Pick(mode Mode) (Selection, error) {
	var (
		paths []string
		err   error
	)

	switch mode {
	case ModeFiles:
		paths, err = zenity.SelectFileMultiple(
			zenity.Title("Select files"),
			zenity.FileFilters{
				{Name: "Images", Patterns: imagePatterns},
				{Name: "All files", Patterns: []string{"*"}},
			},
		)
	case ModeDirectory:
		var dir string
		dir, err = zenity.SelectFile(
			zenity.Directory(),
			zenity.Title("Select folder"),
		)
		if dir != "" {
			paths = []string{dir}
		}
	default:
		return Selection{}, fmt.Errorf("mode must be %q or %q", ModeFiles, ModeDirectory)
	}

	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return Selection{Paths: []string{}, Canceled: true}, nil
		}
		return Selection{}, fmt.Errorf("%s picker failed: %w", mode, err)
	}

	log.Info().Str("mode", string(mode)).Int("count", len(paths)).Msg("Paths picked via native dialog")
	return Selection{Paths: paths}, nil
}
