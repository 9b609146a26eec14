// Package audio post-processes downloaded tracks: ID3 tagging from catalog
// metadata and album playlist generation.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags("/music/Daft Punk - One More Time.mp3", track, cover)
//
// Only MP3 files are tagged. FLAC output keeps the tags written by the
// download engine and SaveTags reports ErrUnsupportedFormat.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album, entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
