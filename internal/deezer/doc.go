// Package deezer implements the catalog client on top of the Deezer
// public API (https://api.deezer.com).
//
// # Operations
//
//   - SearchTracks, SearchAlbums, SearchArtists: keyword search
//   - ArtistProfile: artist, top tracks and full album list
//   - AlbumTracks: expand an album into downloadable tracks
//   - Track, Album: single record lookup
//   - ResolveURL: map a deezer.com link to a record kind and ID
//
// # Errors
//
// The API reports failures as {"error": {...}} bodies with HTTP 200.
// These are returned as ErrAPI, or ErrNotFound for missing objects.
// Transport failures and non-200 statuses wrap ErrNetwork.
//
//	tracks, err := client.SearchTracks(ctx, "get lucky")
//	switch {
//	case errors.Is(err, deezer.ErrNetwork):
//	    // offline
//	case errors.Is(err, deezer.ErrAPI):
//	    // quota exceeded or bad request
//	}
package deezer
