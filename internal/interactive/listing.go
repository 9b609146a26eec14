package interactive

import (
	"fmt"
	"strings"

	"github.com/handiism/dmx/internal/model"
	"github.com/handiism/dmx/internal/session"
)

// Listing renders the current result list as numbered entries. Numbers
// match the selectors the interpreter accepts.
func Listing(state *session.State) []Entry {
	results := state.Results()
	entries := make([]Entry, len(results))
	for i, item := range results {
		entries[i] = entryFor(i+1, item)
	}
	return entries
}

// TopTrackListing renders the top tracks of the current artist profile.
func TopTrackListing(state *session.State) []Entry {
	tracks := state.TopTracks()
	entries := make([]Entry, len(tracks))
	for i, t := range tracks {
		entries[i] = entryFor(i+1, model.TrackItem(t))
	}
	return entries
}

// Prompt returns the input prompt for the current view.
func Prompt(state *session.State) string {
	if state.View() == session.ViewArtistProfile {
		return fmt.Sprintf("[%s Albums] > ", state.Label())
	}
	return fmt.Sprintf("[%s] > ", state.Mode())
}

func entryFor(index int, item model.Item) Entry {
	e := Entry{Index: index}
	switch item.Kind {
	case model.KindTrack:
		t := item.Track
		e.Label = fmt.Sprintf("%s - %s", t.Artist, t.Title)
		details := []string{model.FormatDuration(t.Duration)}
		if t.Album != "" {
			details = append(details, t.Album)
		}
		if t.HasPreview() {
			details = append(details, "preview")
		}
		e.Detail = strings.Join(details, " | ")
	case model.KindAlbum:
		a := item.Album
		e.Label = fmt.Sprintf("%s - %s", a.Artist, a.Title)
		if a.Artist == "" {
			e.Label = a.Title
		}
		details := []string{plural(a.TrackCount, "track")}
		if y := a.Year(); y != "" {
			details = append(details, y)
		}
		if a.RecordType != "" && a.RecordType != "album" {
			details = append(details, a.RecordType)
		}
		e.Detail = strings.Join(details, " | ")
	case model.KindArtist:
		a := item.Artist
		e.Label = a.Name
		e.Detail = fmt.Sprintf("%s | %s", plural(a.Fans, "fan"), plural(a.AlbumCount, "album"))
	}
	return e
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

var helpLines = []string{
	"Commands:",
	"  [number]      Download item (tracks/albums) or view profile (artists)",
	"  [1,3,5]       Download multiple items",
	"  [1-5]         Download a range of items",
	"  [1,3-5,8]     Download a mixed selection",
	"  all / *       Download all current results",
	"  s <query>     Search for tracks",
	"  sa <query>    Search for albums",
	"  st <query>    Search for artists",
	"  m [mode]      Switch mode (tracks/albums/artists)",
	"  l             List current results",
	"  p <number>    Preview a track",
	"  t<number>     Preview an artist's top track (profile view)",
	"  play          Pause or resume the preview",
	"  stop          Stop the preview",
	"  back / b      Leave the artist profile",
	"  status        Show system status",
	"  h             Show this help",
	"  q             Quit",
	"Any other text searches in the current mode.",
}
