package audio

import (
	"strings"
	"testing"

	"github.com/handiism/dmx/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	album, entries := createTestAlbum()
	content := NewPlaylistCreator(model.PlaylistFormatM3U, false).CreatePlaylist(album, entries)

	want := "Test Artist - track1.mp3\nTest Artist - track2.mp3\n"
	if content != want {
		t.Errorf("M3U = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	album, entries := createTestAlbum()
	content := NewPlaylistCreator(model.PlaylistFormatM3U, true).CreatePlaylist(album, entries)

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Test Artist - track1\n") {
		t.Errorf("Extended M3U missing EXTINF line:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	album, entries := createTestAlbum()
	content := NewPlaylistCreator(model.PlaylistFormatPLS, false).CreatePlaylist(album, entries)

	for _, want := range []string{"[playlist]\n", "File1=Test Artist - track1.mp3\n", "Length2=200\n", "NumberOfEntries=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS should contain %q", want)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	album, entries := createTestAlbum()
	content := NewPlaylistCreator(model.PlaylistFormatWPL, false).CreatePlaylist(album, entries)

	if !strings.HasPrefix(content, "<?wpl") {
		t.Error("WPL should start with XML declaration")
	}
	if !strings.Contains(content, "<media src=\"Test Artist - track2.mp3\"/>") {
		t.Error("WPL should contain media elements")
	}
	if strings.Contains(content, "albumTitle=") {
		t.Error("WPL should not carry ZPL attributes")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	album, entries := createTestAlbum()
	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist(album, entries)

	if !strings.HasPrefix(content, "<?zpl") {
		t.Error("ZPL should start with XML declaration")
	}
	if !strings.Contains(content, `albumTitle="Test Album"`) {
		t.Error("ZPL should contain albumTitle attribute")
	}
	if !strings.Contains(content, `duration="180000"`) {
		t.Error("ZPL duration should be in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	album := &model.Album{Title: "Album <Special>", Artist: "Artist & Co"}
	entries := []PlaylistEntry{{Path: "/music/x.mp3", Title: `Track & "Quote"`, Artist: "Artist & Co", Duration: 180}}

	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist(album, entries)

	if strings.Contains(content, "<Special>") {
		t.Error("ZPL should escape < and >")
	}
	if !strings.Contains(content, "Track &amp; &quot;Quote&quot;") {
		t.Errorf("ZPL should escape & and quotes:\n%s", content)
	}
}

func createTestAlbum() (*model.Album, []PlaylistEntry) {
	album := &model.Album{Title: "Test Album", Artist: "Test Artist"}
	tracks := []*model.Track{
		{Title: "track1", Artist: "Test Artist", Duration: 180},
		{Title: "track2", Artist: "Test Artist", Duration: 200},
	}
	cfg := &model.TrackConfig{}

	entries := make([]PlaylistEntry, len(tracks))
	for i, track := range tracks {
		entries[i] = EntryFor(track, "/music/"+track.FileName(cfg, model.Quality320))
	}
	return album, entries
}
