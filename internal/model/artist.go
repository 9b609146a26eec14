package model

import "fmt"

// Artist represents an artist as returned by the catalog.
type Artist struct {
	// ID is the catalog identifier.
	ID int64

	// Name is the artist name.
	Name string

	// AlbumCount is the number of albums the catalog lists for the artist.
	AlbumCount int

	// Fans is the catalog fan count, used to rank search results.
	Fans int

	// Link is the public web page of the artist.
	Link string
}

// URL returns the public link of the artist.
func (a *Artist) URL() string {
	if a.Link != "" {
		return a.Link
	}
	return fmt.Sprintf("https://www.deezer.com/artist/%d", a.ID)
}

// ArtistProfile is the drill-down view of an artist: the artist record,
// its most popular tracks and its complete album list.
type ArtistProfile struct {
	Artist    *Artist
	TopTracks []*Track
	Albums    []*Album
}
