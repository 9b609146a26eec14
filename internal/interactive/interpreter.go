package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/model"
	"github.com/handiism/dmx/internal/preview"
	"github.com/handiism/dmx/internal/session"
	"go.uber.org/zap"
)

// Catalog is the search and lookup side of the music catalog.
type Catalog interface {
	SearchTracks(ctx context.Context, query string) ([]*model.Track, error)
	SearchAlbums(ctx context.Context, query string) ([]*model.Album, error)
	SearchArtists(ctx context.Context, query string) ([]*model.Artist, error)
	ArtistProfile(ctx context.Context, artistID int64) (*model.ArtistProfile, error)
	AlbumTracks(ctx context.Context, albumID int64) ([]*model.Track, error)
}

// Dispatcher downloads one track, trying qualities in order.
type Dispatcher interface {
	Download(ctx context.Context, track *model.Track, destDir string, qualities []model.Quality) (download.Status, error)
}

// PlaylistWriter is implemented by dispatchers that can write a playlist
// after an album download.
type PlaylistWriter interface {
	WritePlaylist(ctx context.Context, album *model.Album, tracks []*model.Track, destDir string) (string, error)
}

// Player plays track previews, one at a time.
type Player interface {
	Start(ctx context.Context, track *model.Track) (preview.Handle, error)
	Toggle(h preview.Handle) (paused bool, err error)
	Stop(h preview.Handle) error
}

// StatusProvider contributes collaborator health to the status command.
type StatusProvider interface {
	StatusLines(ctx context.Context) []string
}

// Config holds the values the interpreter reads from settings.
type Config struct {
	// OutputDir is where downloads are written.
	OutputDir string

	// Qualities is the ordered fallback list passed to the dispatcher.
	Qualities []model.Quality

	// DownloadDelay separates consecutive items of a batch.
	DownloadDelay time.Duration
}

// Progress reports batch download progress.
type Progress struct {
	BatchID string
	Done    int
	Total   int
	Current string
}

// playback is the single active preview slot.
type playback struct {
	handle preview.Handle
	track  *model.Track
	paused bool
}

// Interpreter executes input lines against a session.
//
// HandleLine never panics on user input and never returns an error: every
// failure becomes an EffectError. Commands run one at a time; the caller
// must not invoke HandleLine concurrently.
//
//	in := interactive.NewInterpreter(session.New(), catalog, dispatcher, player, cfg, logger)
//	for {
//	    effect := in.HandleLine(ctx, readLine(in.Prompt()))
//	    render(effect)
//	    if effect.Kind == interactive.EffectQuit {
//	        break
//	    }
//	}
type Interpreter struct {
	state      *session.State
	catalog    Catalog
	dispatcher Dispatcher
	player     Player
	status     StatusProvider
	cfg        Config
	logger     *zap.Logger

	onProgress func(Progress)
	sleep      func(ctx context.Context, d time.Duration) error

	active *playback
}

// NewInterpreter creates an interpreter. player may be nil when previews
// are unavailable.
func NewInterpreter(state *session.State, catalog Catalog, dispatcher Dispatcher, player Player, cfg Config, logger *zap.Logger) *Interpreter {
	if state == nil {
		state = session.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Qualities) == 0 {
		cfg.Qualities = model.Quality320.Fallback()
	}
	return &Interpreter{
		state:      state,
		catalog:    catalog,
		dispatcher: dispatcher,
		player:     player,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// SetStatusProvider adds collaborator lines to the status command.
func (in *Interpreter) SetStatusProvider(p StatusProvider) { in.status = p }

// OnProgress registers a callback for batch download progress.
func (in *Interpreter) OnProgress(fn func(Progress)) { in.onProgress = fn }

// State returns the session the interpreter mutates.
func (in *Interpreter) State() *session.State { return in.state }

// Prompt returns the prompt for the current view.
func (in *Interpreter) Prompt() string { return Prompt(in.state) }

// HandleLine parses and executes one input line.
func (in *Interpreter) HandleLine(ctx context.Context, line string) Effect {
	cmd := Parse(line)
	if cmd.Kind != CmdEmpty {
		in.logger.Debug("command", zap.String("line", line), zap.Stringer("kind", cmd.Kind))
	}

	effect := in.execute(ctx, cmd)
	if effect.Kind == EffectError {
		in.logger.Warn("command failed", zap.String("line", line), zap.Error(effect.Err))
	}
	return effect
}

// Close stops any active preview.
func (in *Interpreter) Close() {
	in.stopPreview()
}

func (in *Interpreter) execute(ctx context.Context, cmd Command) Effect {
	switch cmd.Kind {
	case CmdEmpty:
		return Effect{Kind: EffectNone}
	case CmdInvalid:
		return errorEffect(cmd.Err)
	case CmdQuit:
		in.stopPreview()
		return Effect{Kind: EffectQuit, Message: "Goodbye!"}
	case CmdHelp:
		return Effect{Kind: EffectHelp, Lines: helpLines}
	case CmdStatus:
		return in.statusEffect(ctx)
	case CmdMode:
		return in.switchMode(cmd.Arg)
	case CmdSearch:
		mode := in.state.Mode()
		if cmd.HasMode {
			mode = cmd.Mode
		}
		return in.search(ctx, mode, cmd.Query)
	case CmdList:
		return in.listing(EffectListing, "")
	case CmdBack:
		if _, err := in.state.Pop(); err != nil {
			return errorEffect(err)
		}
		return in.listing(EffectNavigationChanged, "Back to "+in.state.Mode().String()+" results")
	case CmdSelect:
		return in.selectItems(ctx, cmd)
	case CmdPreview:
		return in.previewByIndex(ctx, cmd.Index)
	case CmdTopPreview:
		if in.state.View() != session.ViewArtistProfile {
			return errorEffect(fmt.Errorf("%w: t<number> works inside an artist profile", ErrWrongContext))
		}
		return in.previewTopTrack(ctx, cmd.Index)
	case CmdPlay:
		return in.togglePreview()
	case CmdStop:
		if in.active == nil {
			return Effect{Kind: EffectNone, Message: "No preview playing"}
		}
		in.stopPreview()
		return Effect{Kind: EffectPreviewStopped, Message: "Preview stopped"}
	}
	return errorEffect(fmt.Errorf("%w: %s", ErrInvalidCommand, cmd.Kind))
}

func (in *Interpreter) switchMode(arg string) Effect {
	if arg == "" {
		return infoEffect("Current mode: %s (available: tracks, albums, artists)", in.state.Mode())
	}
	mode, err := session.ParseMode(arg)
	if err != nil {
		return errorEffect(fmt.Errorf("%w: %w", ErrInvalidCommand, err))
	}
	in.state.Reset(mode)
	return Effect{Kind: EffectNavigationChanged, Message: fmt.Sprintf("Switched to %s mode", mode)}
}

func (in *Interpreter) search(ctx context.Context, mode session.Mode, query string) Effect {
	var (
		items []model.Item
		err   error
	)
	switch mode {
	case session.ModeAlbums:
		var albums []*model.Album
		albums, err = in.catalog.SearchAlbums(ctx, query)
		items = model.AlbumItems(albums)
	case session.ModeArtists:
		var artists []*model.Artist
		artists, err = in.catalog.SearchArtists(ctx, query)
		items = model.ArtistItems(artists)
	default:
		var tracks []*model.Track
		tracks, err = in.catalog.SearchTracks(ctx, query)
		items = model.TrackItems(tracks)
	}
	if err != nil {
		return errorEffect(fmt.Errorf("search for %s failed: %w", mode, err))
	}

	in.state.Replace(mode, items)
	in.logger.Info("search", zap.Stringer("mode", mode), zap.String("query", query), zap.Int("results", len(items)))

	if len(items) == 0 {
		return Effect{Kind: EffectResultsUpdated, Message: fmt.Sprintf("No %s found for %q", mode, query)}
	}
	return in.listing(EffectResultsUpdated, fmt.Sprintf("Found %d %s for %q", len(items), mode, query))
}

func (in *Interpreter) listing(kind EffectKind, message string) Effect {
	effect := Effect{Kind: kind, Message: message, Entries: Listing(in.state)}
	if in.state.View() == session.ViewArtistProfile {
		effect.TopTracks = TopTrackListing(in.state)
	}
	if kind == EffectListing && len(effect.Entries) == 0 {
		effect.Message = "No results to display."
	}
	return effect
}

func (in *Interpreter) selectItems(ctx context.Context, cmd Command) Effect {
	n := in.state.Len()
	if n == 0 {
		return errorEffect(fmt.Errorf("%w: search first", ErrNoResults))
	}

	var (
		indices []int
		errs    []error
	)
	if cmd.All {
		for i := 1; i <= n; i++ {
			indices = append(indices, i)
		}
	} else {
		indices, errs = ExpandSelection(cmd.Selection, n)
	}
	if len(indices) == 0 {
		effect := errorEffect(errors.Join(errs...))
		effect.Errs = errs
		return effect
	}

	switch in.state.View() {
	case session.ViewArtists:
		if len(indices) != 1 || len(errs) > 0 {
			return errorEffect(fmt.Errorf("%w: artist mode only supports a single selection", ErrWrongContext))
		}
		return in.openProfile(ctx, indices[0])
	default:
		return in.downloadBatch(ctx, indices, errs)
	}
}

func (in *Interpreter) openProfile(ctx context.Context, index int) Effect {
	item, _ := in.state.Item(index)
	artist := item.Artist

	profile, err := in.catalog.ArtistProfile(ctx, artist.ID)
	if err != nil {
		return errorEffect(fmt.Errorf("failed to load %s: %w", artist.Name, err))
	}

	in.state.Push(session.Frame{
		Mode:      session.ModeArtists,
		View:      session.ViewArtistProfile,
		Results:   model.AlbumItems(profile.Albums),
		TopTracks: profile.TopTracks,
		Label:     artist.Name,
	})
	return in.listing(EffectNavigationChanged,
		fmt.Sprintf("Artist: %s (%s, %s)", artist.Name, plural(artist.Fans, "fan"), plural(len(profile.Albums), "album")))
}

// downloadBatch downloads the items at indices in order, continuing past
// failures. errs carries selection errors to report alongside.
func (in *Interpreter) downloadBatch(ctx context.Context, indices []int, errs []error) Effect {
	tally := Tally{BatchID: uuid.NewString()}
	items := make([]model.Item, 0, len(indices))
	for _, idx := range indices {
		item, _ := in.state.Item(idx)
		items = append(items, item)
	}

	log := in.logger.With(zap.String("batch_id", tally.BatchID))
	log.Info("download batch", zap.Ints("indices", indices))

	for i, item := range items {
		if i > 0 {
			if err := in.sleep(ctx, in.cfg.DownloadDelay); err != nil {
				errs = append(errs, fmt.Errorf("batch interrupted: %w", err))
				break
			}
		}
		in.progress(Progress{BatchID: tally.BatchID, Done: i, Total: len(items), Current: item.Title()})

		switch item.Kind {
		case model.KindTrack:
			if err := in.downloadTrack(ctx, item.Track, &tally); err != nil {
				errs = append(errs, err)
			}
		case model.KindAlbum:
			errs = append(errs, in.downloadAlbum(ctx, item.Album, &tally)...)
		}
	}
	in.progress(Progress{BatchID: tally.BatchID, Done: len(items), Total: len(items)})

	log.Info("download batch finished",
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("skipped", tally.Skipped),
		zap.Int("failed", tally.Failed))

	return Effect{
		Kind:    EffectDownloadStarted,
		Message: tally.String(),
		Items:   items,
		Tally:   tally,
		Errs:    errs,
	}
}

func (in *Interpreter) downloadTrack(ctx context.Context, track *model.Track, tally *Tally) error {
	status, err := in.dispatcher.Download(ctx, track, in.cfg.OutputDir, in.cfg.Qualities)
	switch {
	case err != nil:
		tally.Failed++
		return fmt.Errorf("%s - %s: %w", track.Artist, track.Title, err)
	case status == download.StatusAlreadyExists:
		tally.Skipped++
	default:
		tally.Succeeded++
	}
	return nil
}

// downloadAlbum expands album into tracks and downloads each one.
func (in *Interpreter) downloadAlbum(ctx context.Context, album *model.Album, tally *Tally) []error {
	tracks, err := in.catalog.AlbumTracks(ctx, album.ID)
	if err == nil && len(tracks) == 0 {
		err = errors.New("album has no tracks")
	}
	if err != nil {
		tally.Failed++
		return []error{fmt.Errorf("%s - %s: %w", album.Artist, album.Title, err)}
	}

	var errs []error
	for _, track := range tracks {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := in.downloadTrack(ctx, track, tally); err != nil {
			errs = append(errs, err)
		}
	}

	if w, ok := in.dispatcher.(PlaylistWriter); ok {
		if _, err := w.WritePlaylist(ctx, album, tracks, in.cfg.OutputDir); err != nil {
			in.logger.Warn("playlist not written", zap.Int64("album_id", album.ID), zap.Error(err))
		}
	}
	return errs
}

func (in *Interpreter) previewByIndex(ctx context.Context, index int) Effect {
	switch in.state.View() {
	case session.ViewArtistProfile:
		return in.previewTopTrack(ctx, index)
	case session.ViewTracks:
		item, ok := in.state.Item(index)
		if !ok {
			return errorEffect(outOfRange(fmt.Sprint(index), in.state.Len()))
		}
		return in.startPreview(ctx, item.Track)
	default:
		return errorEffect(fmt.Errorf("%w: previews need a track list", ErrWrongContext))
	}
}

func (in *Interpreter) previewTopTrack(ctx context.Context, index int) Effect {
	track, ok := in.state.TopTrack(index)
	if !ok {
		return errorEffect(outOfRange(fmt.Sprintf("t%d", index), len(in.state.TopTracks())))
	}
	return in.startPreview(ctx, track)
}

func (in *Interpreter) startPreview(ctx context.Context, track *model.Track) Effect {
	if in.player == nil {
		return errorEffect(fmt.Errorf("%w: audio playback is unavailable", preview.ErrUnavailable))
	}
	in.stopPreview()

	h, err := in.player.Start(ctx, track)
	if err != nil {
		return errorEffect(fmt.Errorf("%s - %s: %w", track.Artist, track.Title, err))
	}
	in.active = &playback{handle: h, track: track}
	return Effect{Kind: EffectPreviewStarted, Message: fmt.Sprintf("Playing preview: %s - %s", track.Artist, track.Title)}
}

func (in *Interpreter) togglePreview() Effect {
	if in.active == nil {
		return errorEffect(ErrNoPreview)
	}
	paused, err := in.player.Toggle(in.active.handle)
	if errors.Is(err, preview.ErrStaleHandle) {
		in.active = nil
		return errorEffect(fmt.Errorf("%w: preview finished", ErrNoPreview))
	}
	if err != nil {
		return errorEffect(err)
	}

	in.active.paused = paused
	state := "Resumed"
	if paused {
		state = "Paused"
	}
	return Effect{
		Kind:    EffectPreviewToggled,
		Message: fmt.Sprintf("%s: %s - %s", state, in.active.track.Artist, in.active.track.Title),
		Paused:  paused,
	}
}

// stopPreview releases the active handle, if any.
func (in *Interpreter) stopPreview() {
	if in.active == nil {
		return
	}
	if err := in.player.Stop(in.active.handle); err != nil && !errors.Is(err, preview.ErrStaleHandle) {
		in.logger.Warn("preview stop failed", zap.Error(err))
	}
	in.active = nil
}

func (in *Interpreter) statusEffect(ctx context.Context) Effect {
	lines := []string{
		"Mode: " + in.state.Mode().String(),
		"View: " + in.state.View().String(),
		fmt.Sprintf("Results: %d", in.state.Len()),
	}
	if label := in.state.Label(); label != "" {
		lines = append(lines, "Context: "+label)
	}
	lines = append(lines, fmt.Sprintf("Back levels: %d", in.state.Depth()))

	switch {
	case in.active == nil:
		lines = append(lines, "Preview: none")
	case in.active.paused:
		lines = append(lines, fmt.Sprintf("Preview: paused (%s)", in.active.track.Title))
	default:
		lines = append(lines, fmt.Sprintf("Preview: playing (%s)", in.active.track.Title))
	}

	qualities := make([]string, len(in.cfg.Qualities))
	for i, q := range in.cfg.Qualities {
		qualities[i] = q.String()
	}
	lines = append(lines,
		"Output: "+in.cfg.OutputDir,
		"Quality: "+strings.Join(qualities, " > "))

	if in.status != nil {
		lines = append(lines, in.status.StatusLines(ctx)...)
	}
	return Effect{Kind: EffectStatus, Lines: lines}
}

func (in *Interpreter) progress(p Progress) {
	if in.onProgress != nil {
		in.onProgress(p)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
