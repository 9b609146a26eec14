package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/dmx/internal/model"
)

// PlaylistEntry is one downloaded track in a playlist.
type PlaylistEntry struct {
	// Path of the audio file. Only the base name is written.
	Path string

	Title  string
	Artist string

	// Duration in seconds.
	Duration int
}

// EntryFor builds the playlist entry of a track written to path.
func EntryFor(track *model.Track, path string) PlaylistEntry {
	return PlaylistEntry{
		Path:     path,
		Title:    track.Title,
		Artist:   track.Artist,
		Duration: track.Duration,
	}
}

// PlaylistCreator renders album playlists in M3U, PLS, WPL or ZPL.
//
// Track paths are written relative to the playlist, which is expected to
// live in the same directory as the tracks.
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album, entries)
//	os.WriteFile(album.PlaylistPath(dir, cfg), []byte(content), 0644)
//
//	// #EXTM3U
//	// #EXTINF:320,Daft Punk - One More Time
//	// Daft Punk - One More Time.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // M3U only: emit #EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator. extended is ignored
// for formats other than M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{format: format, extended: extended}
}

// CreatePlaylist renders the playlist of album containing entries.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album, entries []PlaylistEntry) string {
	var sb strings.Builder
	switch p.format {
	case model.PlaylistFormatPLS:
		p.writePLS(&sb, entries)
	case model.PlaylistFormatWPL:
		writeSMIL(&sb, `<?wpl version="1.0"?>`, album, entries, false)
	case model.PlaylistFormatZPL:
		writeSMIL(&sb, `<?zpl version="2.0"?>`, album, entries, true)
	default:
		p.writeM3U(&sb, entries)
	}
	return sb.String()
}

func (p *PlaylistCreator) writeM3U(sb *strings.Builder, entries []PlaylistEntry) {
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(sb, "#EXTINF:%d,%s - %s\n", e.Duration, e.Artist, e.Title)
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}
}

func (p *PlaylistCreator) writePLS(sb *strings.Builder, entries []PlaylistEntry) {
	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(sb, "File%d=%s\n", n, filepath.Base(e.Path))
		fmt.Fprintf(sb, "Title%d=%s - %s\n", n, e.Artist, e.Title)
		fmt.Fprintf(sb, "Length%d=%d\n", n, e.Duration)
	}
	fmt.Fprintf(sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")
}

// writeSMIL renders the XML body shared by WPL and ZPL. ZPL adds per-media
// metadata attributes and header meta elements.
func writeSMIL(sb *strings.Builder, decl string, album *model.Album, entries []PlaylistEntry, zune bool) {
	sb.WriteString(decl + "\n<smil>\n  <head>\n")
	fmt.Fprintf(sb, "    <title>%s</title>\n", escapeXML(album.Title))
	if zune {
		sb.WriteString("    <meta name=\"Generator\" content=\"dmx\"/>\n")
		fmt.Fprintf(sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")

	for _, e := range entries {
		src := escapeXML(filepath.Base(e.Path))
		if !zune {
			fmt.Fprintf(sb, "      <media src=\"%s\"/>\n", src)
			continue
		}
		fmt.Fprintf(sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			src,
			escapeXML(album.Title),
			escapeXML(album.Artist),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration*1000)
	}

	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
