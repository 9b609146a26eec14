package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/dmx/internal/model"
)

// ErrEmptyStack is returned by Pop when there is no previous frame.
var ErrEmptyStack = errors.New("nothing to go back to")

// Mode is the search mode: which catalog endpoint plain queries use.
type Mode int

const (
	ModeTracks Mode = iota
	ModeAlbums
	ModeArtists
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeTracks, ModeAlbums, ModeArtists}

func (m Mode) String() string {
	switch m {
	case ModeAlbums:
		return "albums"
	case ModeArtists:
		return "artists"
	default:
		return "tracks"
	}
}

// ParseMode accepts "tracks", "albums" or "artists" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return ModeTracks, fmt.Errorf("invalid mode %q (tracks, albums, artists)", s)
}

// View tags what the current result list means, and therefore what a
// bare selection does.
type View int

const (
	// ViewTracks: selections download tracks.
	ViewTracks View = iota

	// ViewAlbums: selections download albums.
	ViewAlbums

	// ViewArtists: a selection opens the artist profile.
	ViewArtists

	// ViewArtistProfile: results are the artist's albums; top tracks are
	// kept alongside for previews.
	ViewArtistProfile
)

func (v View) String() string {
	switch v {
	case ViewAlbums:
		return "albums"
	case ViewArtists:
		return "artists"
	case ViewArtistProfile:
		return "artist profile"
	default:
		return "tracks"
	}
}

// ViewFor returns the top-level view of a mode.
func ViewFor(m Mode) View {
	switch m {
	case ModeAlbums:
		return ViewAlbums
	case ModeArtists:
		return ViewArtists
	default:
		return ViewTracks
	}
}

// Frame is one navigation level: a mode, a result list and its context.
// Frames are values; State copies their slices on the way in and out.
type Frame struct {
	Mode      Mode
	View      View
	Results   []model.Item
	TopTracks []*model.Track

	// Label names the context, e.g. the artist whose profile is shown.
	Label string
}

func (f Frame) clone() Frame {
	f.Results = cloneSlice(f.Results)
	f.TopTracks = cloneSlice(f.TopTracks)
	return f
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// State is the interactive session: the current frame plus the stack of
// frames "back" returns to. It performs no I/O and is not safe for
// concurrent use.
//
//	state := session.New()
//	state.Replace(session.ModeArtists, model.ArtistItems(artists))
//	state.Push(session.Frame{Mode: session.ModeArtists, View: session.ViewArtistProfile, ...})
//	prev, err := state.Pop() // back to the artist list
type State struct {
	current Frame
	stack   []Frame
}

// New returns an empty session in tracks mode.
func New() *State {
	return &State{current: Frame{Mode: ModeTracks, View: ViewTracks}}
}

// Mode returns the current search mode.
func (s *State) Mode() Mode { return s.current.Mode }

// View returns the tag of the current result list.
func (s *State) View() View { return s.current.View }

// Label returns the context label, empty at top level.
func (s *State) Label() string { return s.current.Label }

// Depth returns the number of frames Pop can restore.
func (s *State) Depth() int { return len(s.stack) }

// Results returns a copy of the current result list.
func (s *State) Results() []model.Item {
	return cloneSlice(s.current.Results)
}

// TopTracks returns a copy of the current top tracks (profile views only).
func (s *State) TopTracks() []*model.Track {
	return cloneSlice(s.current.TopTracks)
}

// Len returns the size of the current result list.
func (s *State) Len() int { return len(s.current.Results) }

// Item returns the result at 1-based index i.
func (s *State) Item(i int) (model.Item, bool) {
	if i < 1 || i > len(s.current.Results) {
		return model.Item{}, false
	}
	return s.current.Results[i-1], true
}

// TopTrack returns the top track at 1-based index i.
func (s *State) TopTrack(i int) (*model.Track, bool) {
	if i < 1 || i > len(s.current.TopTracks) {
		return nil, false
	}
	return s.current.TopTracks[i-1], true
}

// Snapshot returns a copy of the current frame.
func (s *State) Snapshot() Frame {
	return s.current.clone()
}

// Push saves the current frame and makes f current.
func (s *State) Push(f Frame) {
	s.stack = append(s.stack, s.current)
	s.current = f.clone()
}

// Pop restores the most recently pushed frame and returns it.
func (s *State) Pop() (Frame, error) {
	if len(s.stack) == 0 {
		return Frame{}, ErrEmptyStack
	}
	last := len(s.stack) - 1
	s.current = s.stack[last]
	s.stack[last] = Frame{}
	s.stack = s.stack[:last]
	return s.current.clone(), nil
}

// Replace installs a fresh top-level result list for mode and clears the
// navigation stack.
func (s *State) Replace(mode Mode, results []model.Item) {
	s.stack = nil
	s.current = Frame{Mode: mode, View: ViewFor(mode), Results: cloneSlice(results)}
}

// Reset switches to mode with an empty result list and no history.
func (s *State) Reset(mode Mode) {
	s.Replace(mode, nil)
}
