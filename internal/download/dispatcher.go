package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/handiism/dmx/internal/audio"
	"github.com/handiism/dmx/internal/config"
	"github.com/handiism/dmx/internal/http"
	ioutils "github.com/handiism/dmx/internal/io"
	"github.com/handiism/dmx/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrDispatchFailure is returned when every quality tier failed.
	ErrDispatchFailure = errors.New("download failed at every quality")

	// ErrQualityUnavailable is returned by engines that reject a bitrate.
	ErrQualityUnavailable = errors.New("quality not available")

	// ErrNoARL is returned when no ARL token is configured.
	ErrNoARL = errors.New("no ARL token configured")
)

// Status is the outcome of a download that did not fail.
type Status int

const (
	// StatusSuccess means the engine produced a new file.
	StatusSuccess Status = iota

	// StatusAlreadyExists means a matching file was already present and
	// nothing was downloaded.
	StatusAlreadyExists
)

func (s Status) String() string {
	if s == StatusAlreadyExists {
		return "already exists"
	}
	return "downloaded"
}

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Dispatcher downloads single tracks through an Engine.
//
// For every track it:
//  1. Skips the download when a matching file already exists
//  2. Tries each quality tier in order until the engine produces a file
//  3. Rewrites ID3 tags and embeds cover art (MP3 only)
//
// Dispatcher remembers where each track ended up so album playlists can
// reference the files.
type Dispatcher struct {
	settings *config.Settings
	engine   Engine
	http     *http.Client
	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator
	images   *ioutils.ImageService
	logger   *zap.Logger

	onProgress func(ProgressEvent)
	now        func() time.Time

	mu      sync.Mutex
	written map[int64]string
	covers  map[string][]byte
}

// NewDispatcher creates a new Dispatcher. httpClient fetches cover art
// and may be nil to skip it.
func NewDispatcher(settings *config.Settings, engine Engine, httpClient *http.Client, logger *zap.Logger, onProgress func(ProgressEvent)) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	tags := audio.DefaultTagConfig()
	tags.ModifyTags = settings.ModifyTags
	tags.CoverArt = settings.SaveCoverArtInTags

	return &Dispatcher{
		settings:   settings,
		engine:     engine,
		http:       httpClient,
		tagger:     audio.NewTagger(tags),
		playlist:   audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		images:     ioutils.NewImageService(90),
		logger:     logger,
		onProgress: onProgress,
		now:        time.Now,
		written:    make(map[int64]string),
		covers:     make(map[string][]byte),
	}
}

// Available reports whether the underlying engine can run.
func (d *Dispatcher) Available() bool {
	return d.engine.Available()
}

// Download fetches track into destDir, trying qualities in order. An empty
// qualities list uses the configured fallback list.
//
// Returns StatusAlreadyExists (and no error) when the track is already on
// disk. When every tier fails the error wraps ErrDispatchFailure and the
// last engine error.
func (d *Dispatcher) Download(ctx context.Context, track *model.Track, destDir string, qualities []model.Quality) (Status, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: no track", ErrDispatchFailure)
	}
	if len(qualities) == 0 {
		qualities = d.settings.Qualities()
	}
	if err := ioutils.EnsureDir(destDir); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	name := track.Artist + " - " + track.Title
	log := d.logger.With(zap.Int64("track_id", track.ID), zap.String("track", name))

	if path, ok := d.existing(track, destDir); ok {
		d.remember(track.ID, path)
		log.Info("track already present", zap.String("path", path))
		d.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
		return StatusAlreadyExists, nil
	}

	var lastErr error
	for i, q := range qualities {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if i > 0 {
			d.progress(ProgressEvent{Message: fmt.Sprintf("Trying lower quality %s for %s", q, name), Level: LevelWarning})
		}

		// Filesystem timestamps can be coarser than the clock.
		start := d.now().Add(-time.Second)
		err := d.engine.Download(ctx, track.URL(), q, destDir)
		if err == nil {
			path, ok := ioutils.NewestAudioSince(destDir, start)
			if ok {
				d.remember(track.ID, path)
				d.postProcess(ctx, track, path)
				log.Info("track downloaded", zap.Stringer("quality", q), zap.String("path", path))
				d.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s (%s)", filepath.Base(path), q), Level: LevelSuccess})
				return StatusSuccess, nil
			}
			err = fmt.Errorf("engine produced no audio file at quality %s", q)
		}

		lastErr = err
		log.Warn("download attempt failed", zap.Stringer("quality", q), zap.Error(err))
		if errors.Is(err, ErrNoARL) || ctx.Err() != nil {
			break
		}
	}

	d.progress(ProgressEvent{Message: fmt.Sprintf("Failed: %s: %v", name, lastErr), Level: LevelError})
	return 0, fmt.Errorf("%w: %s: %w", ErrDispatchFailure, name, lastErr)
}

// WritePlaylist writes the playlist of album listing the tracks that were
// downloaded or found on disk. Returns the playlist path, or an empty
// string when playlists are disabled or no track has a known file.
func (d *Dispatcher) WritePlaylist(ctx context.Context, album *model.Album, tracks []*model.Track, destDir string) (string, error) {
	if !d.settings.CreatePlaylist {
		return "", nil
	}

	var entries []audio.PlaylistEntry
	d.mu.Lock()
	for _, t := range tracks {
		if path, ok := d.written[t.ID]; ok {
			entries = append(entries, audio.EntryFor(t, path))
		}
	}
	d.mu.Unlock()
	if len(entries) == 0 {
		return "", nil
	}

	path := album.PlaylistPath(destDir, d.settings.ToPathConfig())
	content := d.playlist.CreatePlaylist(album, entries)
	if err := ioutils.WriteFile(path, []byte(content)); err != nil {
		return "", fmt.Errorf("failed to write playlist: %w", err)
	}
	d.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist: %s", filepath.Base(path)), Level: LevelSuccess})
	return path, nil
}

// PathOf returns where track was written or found, if known.
func (d *Dispatcher) PathOf(trackID int64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	path, ok := d.written[trackID]
	return path, ok
}

// existing looks for the track under its configured file name in every
// quality, then for any audio file naming both artist and title.
func (d *Dispatcher) existing(track *model.Track, destDir string) (string, bool) {
	cfg := d.settings.ToTrackConfig()
	for _, q := range model.Qualities {
		path := filepath.Join(destDir, track.FileName(cfg, q))
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, true
		}
	}
	return ioutils.FindTrackFile(destDir, track.Artist, track.Title)
}

func (d *Dispatcher) postProcess(ctx context.Context, track *model.Track, path string) {
	if !d.settings.ModifyTags && !d.settings.SaveCoverArtInTags {
		return
	}

	var cover []byte
	if d.settings.SaveCoverArtInTags {
		cover = d.cover(ctx, track.CoverURL)
	}

	err := d.tagger.SaveTags(path, track, cover)
	switch {
	case errors.Is(err, audio.ErrUnsupportedFormat):
		d.logger.Debug("skipping tags", zap.String("path", path))
	case err != nil:
		d.logger.Warn("tagging failed", zap.String("path", path), zap.Error(err))
		d.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(path), err), Level: LevelWarning})
	}
}

// cover downloads and resizes cover art once per URL.
func (d *Dispatcher) cover(ctx context.Context, url string) []byte {
	if url == "" || d.http == nil {
		return nil
	}

	d.mu.Lock()
	data, ok := d.covers[url]
	d.mu.Unlock()
	if ok {
		return data
	}

	raw, err := d.http.DownloadBytes(ctx, url)
	if err == nil {
		data, err = d.images.PrepareCover(ctx, raw, d.settings.CoverArtMaxSize)
	}
	if err != nil {
		d.logger.Warn("cover art unavailable", zap.String("url", url), zap.Error(err))
		data = nil
	}

	d.mu.Lock()
	d.covers[url] = data
	d.mu.Unlock()
	return data
}

func (d *Dispatcher) remember(trackID int64, path string) {
	d.mu.Lock()
	d.written[trackID] = path
	d.mu.Unlock()
}

func (d *Dispatcher) progress(event ProgressEvent) {
	if d.onProgress != nil {
		d.onProgress(event)
	}
}
