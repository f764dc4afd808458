package matching

import (
	"regexp"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
)

var (
	bracketed   = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
	featuring   = regexp.MustCompile(`(?i)\s+(feat\.?|ft\.?|featuring)\s+.*$`)
	artistSplit = []string{",", "&", " x ", " / "}
)

// CleanQuery reduces a query to the words remote catalogs match best.
//
// Parenthesized and bracketed parts ("(Remastered 2011)", "[Deluxe]") are dropped from the
// title, only the first credited artist is kept, and apostrophes are removed.
func CleanQuery(q models.TrackQuery) models.TrackQuery {
	return models.TrackQuery{
		Artist:      cleanArtist(q.Artist),
		Title:       cleanTitle(q.Title),
		SourceLabel: q.SourceLabel,
	}
}

func cleanTitle(title string) string {
	title = bracketed.ReplaceAllString(title, "")
	title = featuring.ReplaceAllString(title, "")
	return tidy(title)
}

func cleanArtist(artist string) string {
	artist = featuring.ReplaceAllString(artist, "")
	for _, sep := range artistSplit {
		if before, _, found := strings.Cut(artist, sep); found && strings.TrimSpace(before) != "" {
			artist = before
		}
	}
	return tidy(artist)
}

func tidy(s string) string {
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
