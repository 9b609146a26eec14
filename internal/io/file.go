package ioutils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// AudioExtensions lists the file types the download engine produces.
var AudioExtensions = []string{".mp3", ".flac", ".m4a"}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data to a temporary file next to path and renames it
// into place, so readers never see a partial file.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// IsAudioFile reports whether name has one of AudioExtensions.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindTrackFile searches dir recursively for a non-empty audio file whose
// lowercased name contains both artist and title, in either order.
//
//	FindTrackFile("/music", "Daft Punk", "Aerodynamic")
//	// matches "01 - Daft Punk - Aerodynamic.flac"
//	// matches "Aerodynamic (Daft Punk).mp3"
func FindTrackFile(dir, artist, title string) (string, bool) {
	artist = strings.ToLower(strings.TrimSpace(artist))
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return "", false
	}

	exts := make([]string, len(AudioExtensions))
	for i, e := range AudioExtensions {
		exts[i] = strings.TrimPrefix(e, ".")
	}
	suffix := ".{" + strings.Join(exts, ",") + "}"

	a, t := glob.QuoteMeta(artist), glob.QuoteMeta(title)
	var matchers []glob.Glob
	for _, pattern := range []string{"*" + a + "*" + t + "*" + suffix, "*" + t + "*" + a + "*" + suffix} {
		g, err := glob.Compile(pattern)
		if err != nil {
			return "", false
		}
		matchers = append(matchers, g)
	}

	var found string
	walkAudio(dir, func(path string, info fs.FileInfo) bool {
		name := strings.ToLower(info.Name())
		for _, g := range matchers {
			if g.Match(name) {
				found = path
				return false
			}
		}
		return true
	})
	return found, found != ""
}

// NewestAudioSince returns the most recently modified non-empty audio file
// under dir whose modification time is not before since.
func NewestAudioSince(dir string, since time.Time) (string, bool) {
	var (
		newest  string
		newestT time.Time
	)
	walkAudio(dir, func(path string, info fs.FileInfo) bool {
		mod := info.ModTime()
		if !mod.Before(since) && mod.After(newestT) {
			newest, newestT = path, mod
		}
		return true
	})
	return newest, newest != ""
}

// walkAudio calls visit for every non-empty audio file under dir until
// visit returns false. Unreadable entries are skipped.
func walkAudio(dir string, visit func(path string, info fs.FileInfo) bool) {
	stop := false
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || stop {
			return nil
		}
		if d.IsDir() || !IsAudioFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() == 0 {
			return nil
		}
		if !visit(path, info) {
			stop = true
			return filepath.SkipAll
		}
		return nil
	})
}
