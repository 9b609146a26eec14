// Package dto holds the JSON shapes of the Deezer public API and their
// conversion into model records.
package dto

import (
	"time"

	"github.com/handiism/dmx/internal/model"
)

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Data  []T    `json:"data"`
	Total int    `json:"total"`
	Next  string `json:"next"`
}

// Error is the payload Deezer returns (with HTTP 200) on failure.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Artist is an artist object, full or embedded.
type Artist struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	NbAlbum int    `json:"nb_album"`
	NbFan   int    `json:"nb_fan"`
}

// ToArtist converts Artist to a model.Artist.
func (a *Artist) ToArtist() *model.Artist {
	return &model.Artist{
		ID:         a.ID,
		Name:       a.Name,
		AlbumCount: a.NbAlbum,
		Fans:       a.NbFan,
		Link:       a.Link,
	}
}

// Album is an album object, full or embedded.
type Album struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Link        string       `json:"link"`
	Cover       string       `json:"cover"`
	CoverBig    string       `json:"cover_big"`
	CoverXL     string       `json:"cover_xl"`
	NbTracks    int          `json:"nb_tracks"`
	ReleaseDate string       `json:"release_date"`
	RecordType  string       `json:"record_type"`
	Artist      *Artist      `json:"artist"`
	Tracks      *Page[Track] `json:"tracks"`
}

// CoverURL returns the largest cover image available.
func (a *Album) CoverURL() string {
	switch {
	case a.CoverXL != "":
		return a.CoverXL
	case a.CoverBig != "":
		return a.CoverBig
	default:
		return a.Cover
	}
}

// ToAlbum converts Album to a model.Album. fallbackArtist is used when the
// payload embeds no artist (artist album listings).
func (a *Album) ToAlbum(fallbackArtist *Artist) *model.Album {
	artist := a.Artist
	if artist == nil {
		artist = fallbackArtist
	}
	album := &model.Album{
		ID:          a.ID,
		Title:       a.Title,
		TrackCount:  a.NbTracks,
		ReleaseDate: parseDate(a.ReleaseDate),
		CoverURL:    a.CoverURL(),
		Link:        a.Link,
		RecordType:  a.RecordType,
	}
	if artist != nil {
		album.Artist = artist.Name
		album.ArtistID = artist.ID
	}
	return album
}

// Track is a track object, full or embedded.
type Track struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Link          string  `json:"link"`
	Duration      int     `json:"duration"`
	Preview       string  `json:"preview"`
	TrackPosition int     `json:"track_position"`
	DiskNumber    int     `json:"disk_number"`
	ReleaseDate   string  `json:"release_date"`
	Artist        *Artist `json:"artist"`
	Album         *Album  `json:"album"`
}

// ToTrack converts Track to a model.Track. album supplies the album
// fields when the payload does not embed them (album track listings).
func (t *Track) ToTrack(album *Album) *model.Track {
	track := &model.Track{
		ID:          t.ID,
		Title:       t.Title,
		Duration:    t.Duration,
		PreviewURL:  t.Preview,
		Link:        t.Link,
		Number:      t.TrackPosition,
		DiscNumber:  t.DiskNumber,
		ReleaseDate: parseDate(t.ReleaseDate),
	}

	if t.Artist != nil {
		track.Artist = t.Artist.Name
		track.ArtistID = t.Artist.ID
	}

	src := t.Album
	if src == nil {
		src = album
	}
	if src != nil {
		track.Album = src.Title
		track.AlbumID = src.ID
		track.CoverURL = src.CoverURL()
		if track.ReleaseDate.IsZero() {
			track.ReleaseDate = parseDate(src.ReleaseDate)
		}
	}
	if track.Artist == "" && album != nil && album.Artist != nil {
		track.Artist = album.Artist.Name
		track.ArtistID = album.Artist.ID
	}
	return track
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
