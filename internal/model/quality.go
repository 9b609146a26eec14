package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuality is returned by ParseQuality for unknown tiers.
var ErrInvalidQuality = errors.New("invalid quality")

// Quality is an audio quality tier offered by the catalog.
//
// Tiers are ordered from lowest to highest so that lower tiers compare
// less than higher ones.
type Quality int

const (
	Quality128 Quality = iota
	Quality320
	QualityFLAC
)

// Qualities lists every supported tier from highest to lowest.
var Qualities = []Quality{QualityFLAC, Quality320, Quality128}

// ParseQuality accepts the config spellings "128", "320" and "FLAC"
// (case-insensitive).
func ParseQuality(s string) (Quality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "128":
		return Quality128, nil
	case "320":
		return Quality320, nil
	case "FLAC":
		return QualityFLAC, nil
	}
	return Quality320, fmt.Errorf("%w: %q (supported: 128, 320, FLAC)", ErrInvalidQuality, s)
}

func (q Quality) String() string {
	switch q {
	case Quality128:
		return "128"
	case QualityFLAC:
		return "FLAC"
	default:
		return "320"
	}
}

// Bitrate returns the value passed to the download engine's bitrate flag.
func (q Quality) Bitrate() string {
	switch q {
	case Quality128:
		return "128"
	case QualityFLAC:
		return "flac"
	default:
		return "320"
	}
}

// Extension returns the audio file extension produced for the tier.
func (q Quality) Extension() string {
	if q == QualityFLAC {
		return ".flac"
	}
	return ".mp3"
}

// Fallback returns q followed by every lower tier, highest first.
//
//	QualityFLAC.Fallback() // [FLAC 320 128]
//	Quality128.Fallback()  // [128]
func (q Quality) Fallback() []Quality {
	var out []Quality
	for _, tier := range Qualities {
		if tier <= q {
			out = append(out, tier)
		}
	}
	return out
}
