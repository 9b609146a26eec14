package session

import (
	"testing"

	"github.com/handiism/dmx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artists() []model.Item {
	return model.ArtistItems([]*model.Artist{
		{ID: 1, Name: "Daft Punk", Fans: 900},
		{ID: 2, Name: "Justice", Fans: 500},
	})
}

func profileFrame() Frame {
	return Frame{
		Mode:      ModeArtists,
		View:      ViewArtistProfile,
		Results:   model.AlbumItems([]*model.Album{{ID: 10, Title: "Discovery"}, {ID: 11, Title: "Homework"}}),
		TopTracks: []*model.Track{{ID: 100, Title: "One More Time"}},
		Label:     "Daft Punk",
	}
}

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, ModeTracks, s.Mode())
	assert.Equal(t, ViewTracks, s.View())
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Depth())
}

func TestPushPop_RestoresFrame(t *testing.T) {
	s := New()
	s.Replace(ModeArtists, artists())
	before := s.Snapshot()

	s.Push(profileFrame())
	assert.Equal(t, ViewArtistProfile, s.View())
	assert.Equal(t, "Daft Punk", s.Label())
	assert.Equal(t, 1, s.Depth())
	top, ok := s.TopTrack(1)
	require.True(t, ok)
	assert.Equal(t, int64(100), top.ID)

	restored, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, before, restored)
	assert.Equal(t, before, s.Snapshot())
	assert.Zero(t, s.Depth())
}

func TestPop_EmptyStack(t *testing.T) {
	s := New()
	s.Replace(ModeTracks, model.TrackItems([]*model.Track{{ID: 1}}))
	before := s.Snapshot()

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrEmptyStack)
	assert.Equal(t, before, s.Snapshot())
}

func TestReplace_ClearsStack(t *testing.T) {
	s := New()
	s.Replace(ModeArtists, artists())
	s.Push(profileFrame())

	s.Replace(ModeAlbums, model.AlbumItems([]*model.Album{{ID: 5}}))
	assert.Zero(t, s.Depth())
	assert.Equal(t, ModeAlbums, s.Mode())
	assert.Equal(t, ViewAlbums, s.View())
	assert.Empty(t, s.Label())
	assert.Empty(t, s.TopTracks())
	assert.Equal(t, 1, s.Len())
}

func TestReset_EvenWhenModeUnchanged(t *testing.T) {
	s := New()
	s.Replace(ModeAlbums, model.AlbumItems([]*model.Album{{ID: 5}}))

	s.Reset(ModeAlbums)
	assert.Equal(t, ModeAlbums, s.Mode())
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Depth())
}

func TestResults_ReturnsCopy(t *testing.T) {
	s := New()
	s.Replace(ModeArtists, artists())

	got := s.Results()
	got[0] = model.ArtistItem(&model.Artist{ID: 99})

	item, ok := s.Item(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), item.ID())

	input := artists()
	s.Replace(ModeArtists, input)
	input[1] = model.ArtistItem(&model.Artist{ID: 42})
	item, _ = s.Item(2)
	assert.Equal(t, int64(2), item.ID(), "Replace copies its input")
}

func TestItem_Bounds(t *testing.T) {
	s := New()
	s.Replace(ModeArtists, artists())

	tests := []struct {
		index int
		want  bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{-1, false},
	}
	for _, tt := range tests {
		if _, ok := s.Item(tt.index); ok != tt.want {
			t.Errorf("Item(%d) ok = %v, want %v", tt.index, ok, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"tracks", ModeTracks, false},
		{"ALBUMS", ModeAlbums, false},
		{" artists ", ModeArtists, false},
		{"playlists", ModeTracks, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v, want %v (err %v)", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}
