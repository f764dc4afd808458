package tagging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// parseFLAC reads path, turning a parser panic on a damaged stream (for example metadata
// with no audio frames) into [shared.ErrUnsupportedFormat].
func parseFLAC(path string) (f *flac.File, err error) {
	defer func() {
		if p := recover(); p != nil {
			f = nil
			err = fmt.Errorf("%w: damaged flac stream %s: %v", shared.ErrUnsupportedFormat, filepath.Base(path), p)
		}
	}()

	f, err = flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac file: %w", err)
	}
	return f, nil
}

func readFLAC(path string) (models.LocalTagSnapshot, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return models.LocalTagSnapshot{}, err
	}

	var snap models.LocalTagSnapshot
	for _, meta := range f.Meta {
		switch meta.Type {
		case flac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return models.LocalTagSnapshot{}, fmt.Errorf("failed to parse vorbis comment: %w", err)
			}
			snap.Artist = first(cmts, flacvorbis.FIELD_ARTIST)
			snap.Title = first(cmts, flacvorbis.FIELD_TITLE)
			snap.Genre = first(cmts, flacvorbis.FIELD_GENRE)
			snap.Year = first(cmts, flacvorbis.FIELD_DATE)
		case flac.Picture:
			snap.HasCover = true
		}
	}
	return snap, nil
}

func writeFLAC(path string, upd models.FieldUpdates, cover Cover) error {
	f, err := parseFLAC(path)
	if err != nil {
		return err
	}

	var cmts *flacvorbis.MetaDataBlockVorbisComment
	idx := -1
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse vorbis comment: %w", err)
			}
			idx = i
			break
		}
	}
	if cmts == nil {
		cmts = flacvorbis.New()
	}

	if upd.Genre != "" {
		replace(cmts, flacvorbis.FIELD_GENRE, upd.Genre)
	}
	if upd.Year != "" {
		replace(cmts, flacvorbis.FIELD_DATE, upd.Year)
	}

	block := cmts.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if !cover.Empty() {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, coverDescription, cover.Data, cover.MimeType)
		if err != nil {
			return fmt.Errorf("failed to build flac picture: %w", err)
		}

		kept := f.Meta[:0]
		for _, meta := range f.Meta {
			if meta.Type != flac.Picture {
				kept = append(kept, meta)
			}
		}
		picBlock := pic.Marshal()
		f.Meta = append(kept, &picBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save flac file: %w", err)
	}
	return nil
}

func first(cmts *flacvorbis.MetaDataBlockVorbisComment, key string) string {
	values, err := cmts.Get(key)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// replace drops every existing value for key before adding the new one; Add only appends.
func replace(cmts *flacvorbis.MetaDataBlockVorbisComment, key, value string) {
	prefix := strings.ToUpper(key) + "="
	kept := cmts.Comments[:0]
	for _, c := range cmts.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			kept = append(kept, c)
		}
	}
	cmts.Comments = kept
	cmts.Add(key, value)
}
