package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/faiface/beep"
	"github.com/handiism/dmx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	mu      sync.Mutex
	played  int
	cleared int
}

func (o *fakeOutput) Init(beep.SampleRate) error { return nil }

func (o *fakeOutput) Play(beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.played++
}

func (o *fakeOutput) Lock() {}

func (o *fakeOutput) Unlock() {}

func (o *fakeOutput) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleared++
}

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, url, dest string, _ func(int64, int64)) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, f.data, 0644)
}

type nopCloser struct{ closed bool }

func (c *nopCloser) Close() error {
	c.closed = true
	return nil
}

func TestStart_NoPreview(t *testing.T) {
	p := NewPlayer(&fakeFetcher{}, &fakeOutput{}, nil)
	_, err := p.Start(context.Background(), &model.Track{ID: 1})
	assert.ErrorIs(t, err, ErrUnplayable)
}

func TestStart_FetchFails(t *testing.T) {
	p := NewPlayer(&fakeFetcher{err: errors.New("offline")}, &fakeOutput{}, nil)
	defer p.Close()

	_, err := p.Start(context.Background(), &model.Track{ID: 1, PreviewURL: "https://cdn/1.mp3"})
	assert.ErrorIs(t, err, ErrUnplayable)
	assert.Contains(t, err.Error(), "offline")
}

func TestStart_UndecodablePayload(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(&fakeFetcher{data: []byte("definitely not mpeg audio")}, out, nil)
	defer p.Close()

	_, err := p.Start(context.Background(), &model.Track{ID: 1, PreviewURL: "https://cdn/1.mp3"})
	assert.ErrorIs(t, err, ErrUnplayable)
	assert.Zero(t, out.played)

	_, _, active := p.Active()
	assert.False(t, active)
}

func TestToggleAndStop(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(&fakeFetcher{}, out, nil)

	first := &nopCloser{}
	h1 := p.play(1, beep.Silence(-1), first)

	paused, err := p.Toggle(h1)
	require.NoError(t, err)
	assert.True(t, paused)

	paused, err = p.Toggle(h1)
	require.NoError(t, err)
	assert.False(t, paused)

	second := &nopCloser{}
	h2 := p.play(2, beep.Silence(-1), second)
	assert.NotEqual(t, h1, h2)
	assert.True(t, first.closed, "starting a preview stops the previous one")

	_, err = p.Toggle(h1)
	assert.ErrorIs(t, err, ErrStaleHandle)

	h, track, ok := p.Active()
	assert.True(t, ok)
	assert.Equal(t, h2, h)
	assert.Equal(t, int64(2), track)

	require.NoError(t, p.Stop(h2))
	assert.True(t, second.closed)
	assert.ErrorIs(t, p.Stop(h2), ErrStaleHandle)
	assert.Equal(t, 2, out.cleared)
}

func TestFinishedClearsSlot(t *testing.T) {
	p := NewPlayer(&fakeFetcher{}, &fakeOutput{}, nil)
	c := &nopCloser{}
	h := p.play(1, beep.Silence(0), c)

	p.finished(h)
	_, _, ok := p.Active()
	assert.False(t, ok)
	assert.True(t, c.closed)

	_, err := p.Toggle(h)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestClose_RemovesTempDir(t *testing.T) {
	f := &fakeFetcher{data: []byte("junk")}
	p := NewPlayer(f, &fakeOutput{}, nil)

	track := &model.Track{ID: 9, PreviewURL: "https://cdn/9.mp3"}
	path, err := p.fetch(context.Background(), track)
	require.NoError(t, err)
	assert.Equal(t, "9.mp3", filepath.Base(path))

	_, err = p.fetch(context.Background(), track)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls, "previews are downloaded once")

	require.NoError(t, p.Close())
	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err))
}
