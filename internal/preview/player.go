package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/handiism/dmx/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrUnplayable is returned when a track has no preview or the preview
	// cannot be fetched or decoded.
	ErrUnplayable = errors.New("preview cannot be played")

	// ErrUnavailable is returned when no audio output can be opened.
	ErrUnavailable = errors.New("audio output unavailable")

	// ErrStaleHandle is returned for handles that are no longer playing.
	ErrStaleHandle = errors.New("preview is no longer active")
)

// Handle identifies one started preview. Handles are never reused.
type Handle uint64

// Fetcher downloads a preview file. *http.Client satisfies it.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Output is the audio sink. Play must not block.
type Output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Clear()
}

// Speaker is the Output backed by the system audio device.
type Speaker struct {
	once sync.Once
	err  error
}

// Init opens the audio device once; later calls return the first result.
func (s *Speaker) Init(rate beep.SampleRate) error {
	s.once.Do(func() {
		s.err = speaker.Init(rate, rate.N(time.Second/10))
	})
	return s.err
}

func (s *Speaker) Play(st beep.Streamer) { speaker.Play(st) }

func (s *Speaker) Lock() { speaker.Lock() }

func (s *Speaker) Unlock() { speaker.Unlock() }

func (s *Speaker) Clear() { speaker.Clear() }

// playback is the single active preview slot.
type playback struct {
	handle  Handle
	trackID int64
	ctrl    *beep.Ctrl
	closer  io.Closer
}

// Player plays 30 second track previews, one at a time.
//
// Starting a preview stops the previous one. Playback runs on the audio
// device's own goroutine; Toggle and Stop only flip its state.
//
//	player := preview.NewPlayer(httpClient, &preview.Speaker{}, logger)
//	defer player.Close()
//
//	h, err := player.Start(ctx, track)
//	paused, err := player.Toggle(h)
//	err = player.Stop(h)
type Player struct {
	fetcher Fetcher
	out     Output
	rate    beep.SampleRate
	logger  *zap.Logger

	mu      sync.Mutex
	tempDir string
	next    Handle
	current *playback
}

// NewPlayer creates a Player fetching previews with fetcher and playing
// them on out.
func NewPlayer(fetcher Fetcher, out Output, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		fetcher: fetcher,
		out:     out,
		rate:    beep.SampleRate(44100),
		logger:  logger,
	}
}

// Start fetches and plays the preview of track, stopping any active one.
func (p *Player) Start(ctx context.Context, track *model.Track) (Handle, error) {
	if track == nil || !track.HasPreview() {
		return 0, fmt.Errorf("%w: no preview available", ErrUnplayable)
	}

	path, err := p.fetch(ctx, track)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnplayable, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnplayable, err)
	}
	stream, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, fmt.Errorf("%w: decode: %w", ErrUnplayable, err)
	}

	if err := p.out.Init(p.rate); err != nil {
		stream.Close()
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var s beep.Streamer = stream
	if format.SampleRate != p.rate {
		s = beep.Resample(4, format.SampleRate, p.rate, stream)
	}

	h := p.play(track.ID, s, stream)
	p.logger.Debug("preview started", zap.Int64("track_id", track.ID), zap.Uint64("handle", uint64(h)))
	return h, nil
}

// Toggle pauses or resumes the preview h and returns the new paused state.
func (p *Player) Toggle(h Handle) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.handle != h {
		return false, ErrStaleHandle
	}
	p.out.Lock()
	p.current.ctrl.Paused = !p.current.ctrl.Paused
	paused := p.current.ctrl.Paused
	p.out.Unlock()
	return paused, nil
}

// Stop ends the preview h.
func (p *Player) Stop(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.handle != h {
		return ErrStaleHandle
	}
	p.stopLocked()
	return nil
}

// Active returns the handle and track of the preview currently playing.
func (p *Player) Active() (Handle, int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0, 0, false
	}
	return p.current.handle, p.current.trackID, true
}

// Close stops playback and removes downloaded previews.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(p.tempDir)
	p.tempDir = ""
	return err
}

// play installs s as the active preview and starts it.
func (p *Player) play(trackID int64, s beep.Streamer, closer io.Closer) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.next++
	h := p.next
	ctrl := &beep.Ctrl{Streamer: s}
	p.current = &playback{handle: h, trackID: trackID, ctrl: ctrl, closer: closer}

	// The callback runs with the output locked.
	p.out.Play(beep.Seq(ctrl, beep.Callback(func() {
		go p.finished(h)
	})))
	return h
}

func (p *Player) finished(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.handle == h {
		p.current.closer.Close()
		p.current = nil
	}
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	p.out.Clear()
	p.current.closer.Close()
	p.current = nil
}

// fetch returns the local preview file, downloading it on first use.
func (p *Player) fetch(ctx context.Context, track *model.Track) (string, error) {
	p.mu.Lock()
	if p.tempDir == "" {
		dir, err := os.MkdirTemp("", "dmx_previews_")
		if err != nil {
			p.mu.Unlock()
			return "", err
		}
		p.tempDir = dir
	}
	path := filepath.Join(p.tempDir, fmt.Sprintf("%d.mp3", track.ID))
	p.mu.Unlock()

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}
	if err := p.fetcher.DownloadFile(ctx, track.PreviewURL, path, nil); err != nil {
		return "", err
	}
	return path, nil
}
