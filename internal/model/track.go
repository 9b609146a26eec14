package model

import (
	"fmt"
	"strings"
	"time"
)

// Track represents a single track as returned by the catalog.
//
// Track contains:
//   - Identifiers for the track, its artist and its album
//   - Display metadata (title, artist, album, duration)
//   - Position metadata for ID3 tagging (track and disc number)
//   - The 30 second preview URL, empty when the catalog has none
//
// Example:
//
//	track := &Track{ID: 1, Title: "One More Time", Artist: "Daft Punk", Duration: 320}
//	fmt.Println(FormatDuration(track.Duration)) // "5:20"
type Track struct {
	// ID is the catalog identifier.
	ID int64

	// Title is the track title.
	Title string

	// Artist is the main artist name.
	Artist string

	// ArtistID is the catalog identifier of the main artist.
	ArtistID int64

	// Album is the title of the album the track belongs to.
	Album string

	// AlbumID is the catalog identifier of the album.
	AlbumID int64

	// Number is the position within the album (1-indexed, 0 if unknown).
	Number int

	// DiscNumber is the disc within the album (0 if unknown).
	DiscNumber int

	// Duration is the track length in seconds.
	Duration int

	// PreviewURL points at a short MP3 sample. Empty if not available.
	PreviewURL string

	// Link is the public web page of the track.
	Link string

	// CoverURL is the album cover image. Empty if not available.
	CoverURL string

	// ReleaseDate is the album release date (zero if unknown).
	ReleaseDate time.Time

	// Lyrics contains the song lyrics, if available.
	Lyrics string
}

// URL returns the public link of the track, building one from the ID
// when the catalog did not supply it.
func (t *Track) URL() string {
	if t.Link != "" {
		return t.Link
	}
	return fmt.Sprintf("https://www.deezer.com/track/%d", t.ID)
}

// HasPreview reports whether a preview sample can be played.
func (t *Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// TrackConfig holds track file naming settings.
//
// The FileNameFormat supports placeholders that are replaced with actual values:
//   - {tracknum} - Track number (2 digits, zero-padded)
//   - {title} - Track title
//   - {artist} - Artist name
//   - {album} - Album title
//   - {year} - Release year
//
// The format excludes the extension, which depends on the download quality.
type TrackConfig struct {
	// FileNameFormat is the template for track filenames without extension.
	FileNameFormat string
}

// FileName computes the expected file name of the track for the given quality.
//
// Invalid filename characters are replaced with underscores.
func (t *Track) FileName(cfg *TrackConfig, q Quality) string {
	name := cfg.FileNameFormat
	if name == "" {
		name = "{artist} - {title}"
	}
	year := ""
	if !t.ReleaseDate.IsZero() {
		year = t.ReleaseDate.Format("2006")
	}
	name = strings.ReplaceAll(name, "{year}", year)
	name = strings.ReplaceAll(name, "{album}", t.Album)
	name = strings.ReplaceAll(name, "{artist}", t.Artist)
	name = strings.ReplaceAll(name, "{title}", t.Title)
	name = strings.ReplaceAll(name, "{tracknum}", fmt.Sprintf("%02d", t.Number))
	return sanitizeFileName(name) + q.Extension()
}

// FormatDuration renders a duration in seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
