package interactive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/model"
	"github.com/handiism/dmx/internal/preview"
	"github.com/handiism/dmx/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	tracks   []*model.Track
	albums   []*model.Album
	artists  []*model.Artist
	profile  *model.ArtistProfile
	album    map[int64][]*model.Track
	err      error
	searches int
}

func (c *fakeCatalog) SearchTracks(ctx context.Context, query string) ([]*model.Track, error) {
	c.searches++
	return c.tracks, c.err
}

func (c *fakeCatalog) SearchAlbums(ctx context.Context, query string) ([]*model.Album, error) {
	c.searches++
	return c.albums, c.err
}

func (c *fakeCatalog) SearchArtists(ctx context.Context, query string) ([]*model.Artist, error) {
	c.searches++
	return c.artists, c.err
}

func (c *fakeCatalog) ArtistProfile(ctx context.Context, artistID int64) (*model.ArtistProfile, error) {
	if c.profile == nil {
		return nil, errors.New("no profile")
	}
	return c.profile, nil
}

func (c *fakeCatalog) AlbumTracks(ctx context.Context, albumID int64) ([]*model.Track, error) {
	tracks, ok := c.album[albumID]
	if !ok {
		return nil, errors.New("album not found")
	}
	return tracks, nil
}

type fakeDispatcher struct {
	existing map[int64]bool
	failing  map[int64]bool
	got      []int64
	playlist []int64
}

func (d *fakeDispatcher) Download(ctx context.Context, track *model.Track, destDir string, qualities []model.Quality) (download.Status, error) {
	d.got = append(d.got, track.ID)
	if d.failing[track.ID] {
		return 0, download.ErrDispatchFailure
	}
	if d.existing[track.ID] {
		return download.StatusAlreadyExists, nil
	}
	return download.StatusSuccess, nil
}

type playlistDispatcher struct {
	fakeDispatcher
}

func (d *playlistDispatcher) WritePlaylist(ctx context.Context, album *model.Album, tracks []*model.Track, destDir string) (string, error) {
	d.playlist = append(d.playlist, album.ID)
	return "/music/playlist.m3u", nil
}

type fakePlayer struct {
	next    preview.Handle
	active  preview.Handle
	paused  bool
	started []int64
	stopped []preview.Handle
}

func (p *fakePlayer) Start(ctx context.Context, track *model.Track) (preview.Handle, error) {
	if !track.HasPreview() {
		return 0, preview.ErrUnplayable
	}
	p.next++
	p.active = p.next
	p.paused = false
	p.started = append(p.started, track.ID)
	return p.active, nil
}

func (p *fakePlayer) Toggle(h preview.Handle) (bool, error) {
	if h != p.active {
		return false, preview.ErrStaleHandle
	}
	p.paused = !p.paused
	return p.paused, nil
}

func (p *fakePlayer) Stop(h preview.Handle) error {
	if h != p.active {
		return preview.ErrStaleHandle
	}
	p.stopped = append(p.stopped, h)
	p.active = 0
	return nil
}

func testTracks(n int) []*model.Track {
	out := make([]*model.Track, n)
	for i := range out {
		out[i] = &model.Track{
			ID:         int64(i + 1),
			Title:      "Song",
			Artist:     "Band",
			PreviewURL: "https://cdn.example/preview.mp3",
		}
	}
	return out
}

func newTestInterpreter(catalog *fakeCatalog, dispatcher Dispatcher, player Player) *Interpreter {
	in := NewInterpreter(session.New(), catalog, dispatcher, player, Config{OutputDir: "/music"}, nil)
	in.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return in
}

func TestHandleLine_SearchReplacesResults(t *testing.T) {
	catalog := &fakeCatalog{tracks: testTracks(3)}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)

	effect := in.HandleLine(context.Background(), "get lucky")

	assert.Equal(t, EffectResultsUpdated, effect.Kind)
	assert.Len(t, effect.Entries, 3)
	assert.Equal(t, 3, in.State().Len())
	assert.Equal(t, session.ModeTracks, in.State().Mode())
}

func TestHandleLine_ExplicitSearchSwitchesMode(t *testing.T) {
	catalog := &fakeCatalog{albums: []*model.Album{{ID: 7, Title: "Discovery", Artist: "Daft Punk"}}}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)

	effect := in.HandleLine(context.Background(), "sa discovery")

	assert.Equal(t, EffectResultsUpdated, effect.Kind)
	assert.Equal(t, session.ModeAlbums, in.State().Mode())
	assert.Equal(t, "[albums] > ", in.Prompt())
}

func TestHandleLine_FailedSearchKeepsState(t *testing.T) {
	catalog := &fakeCatalog{tracks: testTracks(2)}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "first")
	before := in.State().Snapshot()

	catalog.err = errors.New("network down")
	effect := in.HandleLine(context.Background(), "second")

	assert.Equal(t, EffectError, effect.Kind)
	assert.Equal(t, before, in.State().Snapshot())
}

func TestHandleLine_SelectionDownloadsInOrder(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(10)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")

	var progress []Progress
	in.OnProgress(func(p Progress) { progress = append(progress, p) })

	effect := in.HandleLine(context.Background(), "[3-5,4,1]")

	assert.Equal(t, EffectDownloadStarted, effect.Kind)
	assert.Equal(t, []int64{1, 3, 4, 5}, dispatcher.got)
	assert.Equal(t, 4, effect.Tally.Succeeded)
	assert.NotEmpty(t, effect.Tally.BatchID)
	assert.Empty(t, effect.Errs)
	require.NotEmpty(t, progress)
	assert.Equal(t, 4, progress[len(progress)-1].Done)
}

func TestHandleLine_MixedSelection(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(10)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")

	in.HandleLine(context.Background(), "[1,3-5,8]")

	assert.Equal(t, []int64{1, 3, 4, 5, 8}, dispatcher.got)
}

func TestHandleLine_OutOfRangeLeavesState(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(10)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")
	before := in.State().Snapshot()

	effect := in.HandleLine(context.Background(), "12")

	assert.Equal(t, EffectError, effect.Kind)
	assert.ErrorIs(t, effect.Err, ErrOutOfRange)
	assert.Empty(t, dispatcher.got)
	assert.Equal(t, before, in.State().Snapshot())
}

func TestHandleLine_PartialSelectionReportsErrors(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(10)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "2,12")

	assert.Equal(t, EffectDownloadStarted, effect.Kind)
	assert.Equal(t, []int64{2}, dispatcher.got)
	require.Len(t, effect.Errs, 1)
	assert.ErrorIs(t, effect.Errs[0], ErrOutOfRange)
	assert.Equal(t, 1, effect.Tally.Total())
}

func TestHandleLine_AlreadyExists(t *testing.T) {
	dispatcher := &fakeDispatcher{existing: map[int64]bool{1: true}}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(1)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "1")

	assert.Equal(t, Tally{BatchID: effect.Tally.BatchID, Skipped: 1}, effect.Tally)
}

func TestHandleLine_BatchContinuesPastFailures(t *testing.T) {
	dispatcher := &fakeDispatcher{failing: map[int64]bool{2: true}}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(3)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "all")

	assert.Equal(t, []int64{1, 2, 3}, dispatcher.got)
	assert.Equal(t, 2, effect.Tally.Succeeded)
	assert.Equal(t, 1, effect.Tally.Failed)
	require.Len(t, effect.Errs, 1)
	assert.ErrorIs(t, effect.Errs[0], download.ErrDispatchFailure)
}

func TestHandleLine_AlbumDownloadExpandsTracks(t *testing.T) {
	catalog := &fakeCatalog{
		albums: []*model.Album{{ID: 7, Title: "Discovery"}, {ID: 8, Title: "Empty"}},
		album:  map[int64][]*model.Track{7: testTracks(3), 8: nil},
	}
	dispatcher := &playlistDispatcher{}
	in := newTestInterpreter(catalog, dispatcher, nil)
	in.HandleLine(context.Background(), "sa discovery")

	effect := in.HandleLine(context.Background(), "1-2")

	assert.Equal(t, []int64{1, 2, 3}, dispatcher.got)
	assert.Equal(t, []int64{7}, dispatcher.playlist)
	assert.Equal(t, 3, effect.Tally.Succeeded)
	assert.Equal(t, 1, effect.Tally.Failed)
	assert.Len(t, effect.Errs, 1)
}

func TestHandleLine_ArtistProfileAndBack(t *testing.T) {
	catalog := &fakeCatalog{
		artists: []*model.Artist{{ID: 1, Name: "Daft Punk", Fans: 900}, {ID: 2, Name: "Justice"}},
		profile: &model.ArtistProfile{
			Artist:    &model.Artist{ID: 1, Name: "Daft Punk"},
			TopTracks: testTracks(2),
			Albums:    []*model.Album{{ID: 7, Title: "Discovery"}},
		},
	}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "st daft punk")
	before := in.State().Snapshot()

	effect := in.HandleLine(context.Background(), "1")
	assert.Equal(t, EffectNavigationChanged, effect.Kind)
	assert.Len(t, effect.TopTracks, 2)
	assert.Equal(t, session.ViewArtistProfile, in.State().View())
	assert.Equal(t, "[Daft Punk Albums] > ", in.Prompt())

	effect = in.HandleLine(context.Background(), "b")
	assert.Equal(t, EffectNavigationChanged, effect.Kind)
	assert.Equal(t, before, in.State().Snapshot())

	effect = in.HandleLine(context.Background(), "b")
	assert.Equal(t, EffectError, effect.Kind)
	assert.ErrorIs(t, effect.Err, session.ErrEmptyStack)
}

func TestHandleLine_ArtistProfileDownloadsAlbums(t *testing.T) {
	catalog := &fakeCatalog{
		artists: []*model.Artist{{ID: 1, Name: "Daft Punk"}},
		profile: &model.ArtistProfile{
			Artist:    &model.Artist{ID: 1, Name: "Daft Punk"},
			TopTracks: testTracks(2),
			Albums:    []*model.Album{{ID: 7, Title: "Discovery"}, {ID: 8, Title: "Alive"}},
		},
		album: map[int64][]*model.Track{
			7: testTracks(2),
			8: {{ID: 30, Title: "Aerodynamic", Artist: "Daft Punk"}},
		},
	}
	dispatcher := &playlistDispatcher{fakeDispatcher{existing: map[int64]bool{2: true}}}
	in := newTestInterpreter(catalog, dispatcher, nil)
	in.HandleLine(context.Background(), "st daft punk")
	in.HandleLine(context.Background(), "1")
	require.Equal(t, session.ViewArtistProfile, in.State().View())
	profile := in.State().Snapshot()

	effect := in.HandleLine(context.Background(), "all")

	assert.Equal(t, EffectDownloadStarted, effect.Kind)
	assert.Equal(t, []int64{1, 2, 30}, dispatcher.got)
	assert.Equal(t, []int64{7, 8}, dispatcher.playlist)
	assert.Equal(t, 2, effect.Tally.Succeeded)
	assert.Equal(t, 1, effect.Tally.Skipped)
	assert.Zero(t, effect.Tally.Failed)
	assert.Empty(t, effect.Errs)
	assert.Equal(t, 1, in.State().Depth())
	assert.Equal(t, profile, in.State().Snapshot())

	dispatcher.got = nil
	effect = in.HandleLine(context.Background(), "2")
	assert.Equal(t, []int64{30}, dispatcher.got)
	assert.Equal(t, 1, effect.Tally.Succeeded)
	assert.Equal(t, session.ViewArtistProfile, in.State().View())
}

func TestHandleLine_NegativeIndexIsOutOfRange(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(10)}, dispatcher, nil)
	in.HandleLine(context.Background(), "song")
	before := in.State().Snapshot()

	effect := in.HandleLine(context.Background(), "-1")

	assert.Equal(t, EffectError, effect.Kind)
	assert.ErrorIs(t, effect.Err, ErrOutOfRange)
	assert.NotErrorIs(t, effect.Err, ErrMalformedRange)
	assert.Empty(t, dispatcher.got)
	assert.Equal(t, before, in.State().Snapshot())
}

func TestHandleLine_BracketedTitleSearches(t *testing.T) {
	catalog := &fakeCatalog{tracks: testTracks(2)}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)

	effect := in.HandleLine(context.Background(), "[Untitled]")

	assert.Equal(t, EffectResultsUpdated, effect.Kind)
	assert.Equal(t, 1, catalog.searches)
	assert.Equal(t, 2, in.State().Len())
}

func TestHandleLine_ArtistsRejectMultipleSelection(t *testing.T) {
	catalog := &fakeCatalog{artists: []*model.Artist{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "st a")

	effect := in.HandleLine(context.Background(), "1-2")

	assert.ErrorIs(t, effect.Err, ErrWrongContext)
	assert.Equal(t, session.ViewArtists, in.State().View())
}

func TestHandleLine_PlayToggle(t *testing.T) {
	player := &fakePlayer{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(3)}, &fakeDispatcher{}, player)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "play")
	assert.ErrorIs(t, effect.Err, ErrNoPreview)

	effect = in.HandleLine(context.Background(), "p 2")
	require.Equal(t, EffectPreviewStarted, effect.Kind)
	assert.Equal(t, []int64{2}, player.started)

	effect = in.HandleLine(context.Background(), "play")
	assert.Equal(t, EffectPreviewToggled, effect.Kind)
	assert.True(t, effect.Paused)

	effect = in.HandleLine(context.Background(), "play")
	assert.False(t, effect.Paused)

	effect = in.HandleLine(context.Background(), "p 3")
	require.Equal(t, EffectPreviewStarted, effect.Kind)
	assert.Len(t, player.stopped, 1)

	effect = in.HandleLine(context.Background(), "stop")
	assert.Equal(t, EffectPreviewStopped, effect.Kind)

	effect = in.HandleLine(context.Background(), "stop")
	assert.Equal(t, EffectNone, effect.Kind)
}

func TestHandleLine_FinishedPreviewIsInactive(t *testing.T) {
	player := &fakePlayer{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(1)}, &fakeDispatcher{}, player)
	in.HandleLine(context.Background(), "song")
	in.HandleLine(context.Background(), "p 1")

	player.active = 0

	effect := in.HandleLine(context.Background(), "play")
	assert.ErrorIs(t, effect.Err, ErrNoPreview)
}

func TestHandleLine_PreviewContext(t *testing.T) {
	catalog := &fakeCatalog{albums: []*model.Album{{ID: 7}}}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, &fakePlayer{})
	in.HandleLine(context.Background(), "sa x")

	effect := in.HandleLine(context.Background(), "p 1")
	assert.ErrorIs(t, effect.Err, ErrWrongContext)

	effect = in.HandleLine(context.Background(), "t1")
	assert.ErrorIs(t, effect.Err, ErrWrongContext)
}

func TestHandleLine_PreviewWithoutPlayer(t *testing.T) {
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(1)}, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "p 1")

	assert.ErrorIs(t, effect.Err, preview.ErrUnavailable)
}

func TestHandleLine_ModeSwitchClearsResults(t *testing.T) {
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(3)}, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "song")

	effect := in.HandleLine(context.Background(), "m tracks")

	assert.Equal(t, EffectNavigationChanged, effect.Kind)
	assert.Zero(t, in.State().Len())

	effect = in.HandleLine(context.Background(), "m polka")
	assert.ErrorIs(t, effect.Err, ErrInvalidCommand)

	effect = in.HandleLine(context.Background(), "m")
	assert.Equal(t, EffectInfo, effect.Kind)
}

func TestHandleLine_ListIsIdempotent(t *testing.T) {
	catalog := &fakeCatalog{tracks: testTracks(3)}
	in := newTestInterpreter(catalog, &fakeDispatcher{}, nil)
	in.HandleLine(context.Background(), "song")
	before := in.State().Snapshot()

	first := in.HandleLine(context.Background(), "l")
	second := in.HandleLine(context.Background(), "l")

	assert.Equal(t, first, second)
	assert.Equal(t, before, in.State().Snapshot())
	assert.Equal(t, 1, catalog.searches)
}

func TestHandleLine_SelectWithoutResults(t *testing.T) {
	in := newTestInterpreter(&fakeCatalog{}, &fakeDispatcher{}, nil)

	effect := in.HandleLine(context.Background(), "1")

	assert.ErrorIs(t, effect.Err, ErrNoResults)
}

func TestHandleLine_QuitStopsPreview(t *testing.T) {
	player := &fakePlayer{}
	in := newTestInterpreter(&fakeCatalog{tracks: testTracks(1)}, &fakeDispatcher{}, player)
	in.HandleLine(context.Background(), "song")
	in.HandleLine(context.Background(), "p 1")

	effect := in.HandleLine(context.Background(), "q")

	assert.Equal(t, EffectQuit, effect.Kind)
	assert.Len(t, player.stopped, 1)
}

type staticStatus []string

func (s staticStatus) StatusLines(ctx context.Context) []string { return s }

func TestHandleLine_Status(t *testing.T) {
	in := newTestInterpreter(&fakeCatalog{}, &fakeDispatcher{}, nil)
	in.SetStatusProvider(staticStatus{"Catalog: reachable"})

	effect := in.HandleLine(context.Background(), "status")

	assert.Equal(t, EffectStatus, effect.Kind)
	assert.Contains(t, effect.Lines, "Mode: tracks")
	assert.Contains(t, effect.Lines, "Preview: none")
	assert.Contains(t, effect.Lines, "Catalog: reachable")
}
