package model

import "fmt"

// Kind tags which record an Item carries.
type Kind int

const (
	KindTrack Kind = iota
	KindAlbum
	KindArtist
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindArtist:
		return "artist"
	}
	return "unknown"
}

// Item is one entry of a result list. Exactly one of Track, Album or
// Artist is set, matching Kind.
//
// Items are treated as immutable once a search returns them; result lists
// are replaced wholesale rather than edited.
type Item struct {
	Kind   Kind
	Track  *Track
	Album  *Album
	Artist *Artist
}

// TrackItem wraps a track.
func TrackItem(t *Track) Item { return Item{Kind: KindTrack, Track: t} }

// AlbumItem wraps an album.
func AlbumItem(a *Album) Item { return Item{Kind: KindAlbum, Album: a} }

// ArtistItem wraps an artist.
func ArtistItem(a *Artist) Item { return Item{Kind: KindArtist, Artist: a} }

// ID returns the catalog identifier of the wrapped record.
func (i Item) ID() int64 {
	switch i.Kind {
	case KindTrack:
		return i.Track.ID
	case KindAlbum:
		return i.Album.ID
	case KindArtist:
		return i.Artist.ID
	}
	return 0
}

// Title returns the display title: track or album title, or artist name.
func (i Item) Title() string {
	switch i.Kind {
	case KindTrack:
		return i.Track.Title
	case KindAlbum:
		return i.Album.Title
	case KindArtist:
		return i.Artist.Name
	}
	return ""
}

// TrackItems wraps every track in a slice.
func TrackItems(tracks []*Track) []Item {
	items := make([]Item, len(tracks))
	for i, t := range tracks {
		items[i] = TrackItem(t)
	}
	return items
}

// AlbumItems wraps every album in a slice.
func AlbumItems(albums []*Album) []Item {
	items := make([]Item, len(albums))
	for i, a := range albums {
		items[i] = AlbumItem(a)
	}
	return items
}

// ArtistItems wraps every artist in a slice.
func ArtistItems(artists []*Artist) []Item {
	items := make([]Item, len(artists))
	for i, a := range artists {
		items[i] = ArtistItem(a)
	}
	return items
}

// Subtitle returns the secondary display text: the artist for tracks and
// albums, the fan count for artists.
func (i Item) Subtitle() string {
	switch i.Kind {
	case KindTrack:
		return i.Track.Artist
	case KindAlbum:
		return i.Album.Artist
	case KindArtist:
		return fmt.Sprintf("%d fans", i.Artist.Fans)
	}
	return ""
}
