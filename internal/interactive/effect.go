package interactive

import (
	"errors"
	"fmt"

	"github.com/handiism/dmx/internal/model"
)

var (
	// ErrInvalidCommand is returned for lines that match no command.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrOutOfRange is returned for selections outside the result list.
	ErrOutOfRange = errors.New("selection out of range")

	// ErrMalformedRange is returned for selections that cannot be parsed.
	ErrMalformedRange = errors.New("malformed selection")

	// ErrNoResults is returned when selecting from an empty result list.
	ErrNoResults = errors.New("no search results")

	// ErrWrongContext is returned for commands the current view does not
	// support, such as previewing an album.
	ErrWrongContext = errors.New("not available here")

	// ErrNoPreview is returned by play when no preview is active.
	ErrNoPreview = errors.New("no active preview")
)

// EffectKind tells the front end what a command did.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectResultsUpdated
	EffectNavigationChanged
	EffectListing
	EffectDownloadStarted
	EffectPreviewStarted
	EffectPreviewStopped
	EffectPreviewToggled
	EffectHelp
	EffectStatus
	EffectInfo
	EffectQuit
	EffectError
)

func (k EffectKind) String() string {
	return [...]string{
		"none",
		"results-updated",
		"navigation-changed",
		"listing",
		"download-started",
		"preview-started",
		"preview-stopped",
		"preview-toggled",
		"help",
		"status",
		"info",
		"quit",
		"error",
	}[k]
}

// Entry is one numbered line of a listing.
type Entry struct {
	Index  int
	Label  string
	Detail string
}

// Tally counts the outcome of a download command per track.
type Tally struct {
	BatchID   string
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of tracks the command handled.
func (t Tally) Total() int {
	return t.Succeeded + t.Skipped + t.Failed
}

func (t Tally) String() string {
	return fmt.Sprintf("%d downloaded, %d already present, %d failed", t.Succeeded, t.Skipped, t.Failed)
}

// Effect is the result of one input line.
//
// Entries carries the listing to show after results or navigation change;
// TopTracks is filled inside an artist profile. Download commands report
// their Tally and every per-item error in Errs. Error effects set Err.
type Effect struct {
	Kind    EffectKind
	Message string

	Entries   []Entry
	TopTracks []Entry
	Lines     []string

	// Items are the resolved selection of a download command.
	Items []model.Item
	Tally Tally
	Errs  []error

	Err error

	// Paused is the playback state after a toggle.
	Paused bool
}

func errorEffect(err error) Effect {
	return Effect{Kind: EffectError, Message: err.Error(), Err: err}
}

func infoEffect(format string, args ...any) Effect {
	return Effect{Kind: EffectInfo, Message: fmt.Sprintf(format, args...)}
}
