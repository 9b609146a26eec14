package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Album represents an album as returned by the catalog.
//
// TrackCount comes from the catalog listing and may be zero when the
// listing endpoint does not report it; the album's tracks themselves are
// only fetched when the album is downloaded.
type Album struct {
	// ID is the catalog identifier.
	ID int64

	// Title is the album title.
	Title string

	// Artist is the album artist name.
	Artist string

	// ArtistID is the catalog identifier of the album artist.
	ArtistID int64

	// TrackCount is the number of tracks on the album.
	TrackCount int

	// ReleaseDate is when the album was released (zero if unknown).
	ReleaseDate time.Time

	// CoverURL is the cover image URL. Empty if not available.
	CoverURL string

	// Link is the public web page of the album.
	Link string

	// RecordType is the catalog record type (album, single, ep, compile).
	RecordType string
}

// URL returns the public link of the album.
func (a *Album) URL() string {
	if a.Link != "" {
		return a.Link
	}
	return fmt.Sprintf("https://www.deezer.com/album/%d", a.ID)
}

// Year returns the release year, or an empty string when unknown.
func (a *Album) Year() string {
	if a.ReleaseDate.IsZero() {
		return ""
	}
	return a.ReleaseDate.Format("2006")
}

// PathConfig holds playlist path settings for albums.
//
// Example configuration:
//
//	cfg := &PathConfig{
//	    PlaylistFileNameFormat: "{artist} - {album}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
type PathConfig struct {
	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a config value (m3u, pls, wpl, zpl) to a
// PlaylistFormat, defaulting to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistPath computes the playlist file path for the album inside dir.
func (a *Album) PlaylistPath(dir string, cfg *PathConfig) string {
	name := cfg.PlaylistFileNameFormat
	if name == "" {
		name = "{artist} - {album}"
	}
	name = strings.ReplaceAll(name, "{year}", a.Year())
	name = strings.ReplaceAll(name, "{album}", a.Title)
	name = strings.ReplaceAll(name, "{artist}", a.Artist)
	name = sanitizeFileName(name)
	ext := cfg.PlaylistFormat.Extension()
	path := filepath.Join(dir, name+ext)

	// Limit total path length for Windows compatibility (MAX_PATH = 260)
	if len(path) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(name) {
			path = filepath.Join(dir, name[:maxLen]+ext)
		}
	}
	return path
}
