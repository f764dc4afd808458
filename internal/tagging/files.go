package tagging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// Extensions lists the audio file types picked up by [Scan].
var Extensions = []string{".mp3", ".flac", ".m4a"}

// Cover is downloaded artwork ready to embed.
type Cover struct {
	Data     []byte
	MimeType string
}

// Empty reports whether there is no image data.
func (c Cover) Empty() bool {
	return len(c.Data) == 0
}

// ReadTags returns the artist, title, genre, year and cover presence of an audio file.
func ReadTags(path string) (models.LocalTagSnapshot, error) {
	switch ext(path) {
	case ".mp3":
		return readMP3(path)
	case ".flac":
		return readFLAC(path)
	default:
		return models.LocalTagSnapshot{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, filepath.Base(path))
	}
}

// WriteTags writes the non-empty fields of upd, embedding cover when it carries data.
func WriteTags(path string, upd models.FieldUpdates, cover Cover) error {
	if upd.Genre == "" && upd.Year == "" && cover.Empty() {
		return nil
	}

	switch ext(path) {
	case ".mp3":
		return writeMP3(path, upd, cover)
	case ".flac":
		return writeFLAC(path, upd, cover)
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, filepath.Base(path))
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
