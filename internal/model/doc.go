// Package model defines the catalog records shared by every dmx package.
//
// # Records
//
// Track, Album and Artist mirror the three kinds of objects the Deezer
// catalog returns. They are plain values filled in by the catalog client
// and never mutated after a search:
//
//	track := &model.Track{ID: 3135556, Title: "Harder, Better, Faster, Stronger", Artist: "Daft Punk"}
//	fmt.Println(track.URL()) // https://www.deezer.com/track/3135556
//
// # Result Items
//
// Item wraps exactly one record together with its Kind, so a result list
// can hold tracks, albums or artists behind one type:
//
//	items := []model.Item{model.TrackItem(track)}
//	fmt.Println(items[0].Kind, items[0].Title())
//
// # Quality
//
// Quality is a download tier (128, 320, FLAC). Fallback returns the ordered
// list of tiers to try, starting with the preferred one:
//
//	model.QualityFLAC.Fallback() // [FLAC 320 128]
//
// # Path Configuration
//
// TrackConfig and PathConfig control how expected file names and playlist
// paths are computed using placeholders:
//
//	cfg := &model.TrackConfig{FileNameFormat: "{artist} - {title}"}
//	track.FileName(cfg, model.Quality320) // "Daft Punk - Harder, Better, Faster, Stronger.mp3"
//
// Available placeholders: {artist}, {album}, {title}, {tracknum}, {year}
package model
