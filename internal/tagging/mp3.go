package tagging

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
	"github.com/desertthunder/tunesync/internal/models"
)

const coverDescription = "Front Cover"

func readMP3(path string) (models.LocalTagSnapshot, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return models.LocalTagSnapshot{}, fmt.Errorf("failed to open mp3 tags: %w", err)
	}
	defer tag.Close()

	return models.LocalTagSnapshot{
		Artist:   tag.Artist(),
		Title:    tag.Title(),
		Genre:    tag.Genre(),
		Year:     tag.Year(),
		HasCover: len(tag.GetFrames(tag.CommonID("Attached picture"))) > 0,
	}, nil
}

func writeMP3(path string, upd models.FieldUpdates, cover Cover) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3 tags: %w", err)
	}
	defer tag.Close()

	if upd.Genre != "" {
		tag.SetGenre(upd.Genre)
	}
	if upd.Year != "" {
		tag.SetYear(upd.Year)
	}
	if !cover.Empty() {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    cover.MimeType,
			PictureType: id3v2.PTFrontCover,
			Description: coverDescription,
			Picture:     cover.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save mp3 tags: %w", err)
	}
	return nil
}
