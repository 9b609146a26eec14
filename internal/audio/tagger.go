package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/dmx/internal/model"
)

// ErrUnsupportedFormat is returned for files that do not carry ID3 tags.
var ErrUnsupportedFormat = errors.New("tagging is only supported for MP3 files")

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify TagEditAction = iota

	// TagModify overwrites the tag with the catalog value.
	TagModify

	// TagEmpty removes the tag.
	TagEmpty
)

// TagConfig holds tagging configuration for each ID3 field.
//
// The download engine already writes a base set of tags. TagConfig
// decides which of them are rewritten from catalog metadata afterwards.
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Artist:      TagModify,
//	    TrackTitle:  TagModify,
//	    Comments:    TagEmpty,       // drop engine comments
//	    AlbumArtist: TagDoNotModify, // keep the engine's value
//	    CoverArt:    true,
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are touched.
	ModifyTags bool

	Artist      TagEditAction // TPE1
	AlbumArtist TagEditAction // TPE2
	Album       TagEditAction // TALB
	Year        TagEditAction // TYER
	Date        TagEditAction // TDRC
	TrackNumber TagEditAction // TRCK
	DiscNumber  TagEditAction // TPOS
	TrackTitle  TagEditAction // TIT2
	Lyrics      TagEditAction // USLT
	Comments    TagEditAction // COMM

	// CoverArt embeds the artwork passed to SaveTags as the front cover.
	CoverArt bool
}

// DefaultTagConfig rewrites every frame from the catalog, clears comments
// and embeds cover art.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		TrackNumber: TagModify,
		DiscNumber:  TagModify,
		TrackTitle:  TagModify,
		Lyrics:      TagModify,
		Comments:    TagEmpty,
		CoverArt:    true,
	}
}

// Tagger writes ID3 tags to downloaded MP3 files.
//
//	tagger := NewTagger(DefaultTagConfig())
//	if err := tagger.SaveTags(path, track, jpegBytes); err != nil {
//	    logger.Warn("tagging failed", zap.Error(err))
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger. A nil config selects DefaultTagConfig.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes the track's catalog metadata into the MP3 at path.
//
// artwork is JPEG data for the front cover; nil leaves pictures alone.
// Non-MP3 files return ErrUnsupportedFormat without being opened.
func (t *Tagger) SaveTags(path string, track *model.Track, artwork []byte) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return ErrUnsupportedFormat
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.applyTextFrames(tag, track)
	}
	if t.config.CoverArt && artwork != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     artwork,
		})
	}

	return tag.Save()
}

// textFrame pairs a frame ID with its configured action and value.
type textFrame struct {
	id     string
	action TagEditAction
	value  string
}

func (t *Tagger) applyTextFrames(tag *id3v2.Tag, track *model.Track) {
	year, date := "", ""
	if !track.ReleaseDate.IsZero() {
		year = track.ReleaseDate.Format("2006")
		date = track.ReleaseDate.Format("2006-01-02")
	}

	frames := []textFrame{
		{"TPE1", t.config.Artist, track.Artist},
		{"TPE2", t.config.AlbumArtist, track.Artist},
		{"TALB", t.config.Album, track.Album},
		{"TIT2", t.config.TrackTitle, track.Title},
		{"TYER", t.config.Year, year},
		{"TDRC", t.config.Date, date},
		{"TRCK", t.config.TrackNumber, positiveInt(track.Number)},
		{"TPOS", t.config.DiscNumber, positiveInt(track.DiscNumber)},
	}

	for _, f := range frames {
		switch f.action {
		case TagEmpty:
			tag.DeleteFrames(f.id)
		case TagModify:
			// Unknown catalog values keep whatever the engine wrote.
			if f.value != "" {
				tag.DeleteFrames(f.id)
				tag.AddTextFrame(f.id, id3v2.EncodingUTF8, f.value)
			}
		}
	}

	lyricsID := tag.CommonID("Unsynchronised lyrics/text transcription")
	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames(lyricsID)
	case TagModify:
		if track.Lyrics != "" {
			tag.DeleteFrames(lyricsID)
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Lyrics:   track.Lyrics,
			})
		}
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}

func positiveInt(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
