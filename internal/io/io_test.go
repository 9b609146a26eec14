package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindTrackFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Daft Punk", "Discovery", "01 - Daft Punk - One More Time.flac"), "x")
	writeFile(t, filepath.Join(dir, "Aerodynamic (Daft Punk).mp3"), "x")
	writeFile(t, filepath.Join(dir, "Daft Punk - Empty.mp3"), "")
	writeFile(t, filepath.Join(dir, "Daft Punk - Notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "AC_DC - T.N.T. [live].mp3"), "x")

	tests := []struct {
		artist, title string
		want          bool
	}{
		{"Daft Punk", "One More Time", true},
		{"daft punk", "AERODYNAMIC", true},
		{"Daft Punk", "Empty", false},
		{"Daft Punk", "Notes", false},
		{"Daft Punk", "Digital Love", false},
		{"AC_DC", "T.N.T. [live]", true},
		{"Daft Punk", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, got := FindTrackFile(dir, tt.artist, tt.title)
			if got != tt.want {
				t.Errorf("FindTrackFile(%q, %q) = %v, want %v", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}

func TestNewestAudioSince(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.mp3")
	writeFile(t, old, "x")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	start := time.Now().Add(-time.Minute)
	if _, ok := NewestAudioSince(dir, start); ok {
		t.Fatal("NewestAudioSince() found a file older than start")
	}

	fresh := filepath.Join(dir, "sub", "fresh.flac")
	writeFile(t, fresh, "x")
	got, ok := NewestAudioSince(dir, start)
	if !ok || got != fresh {
		t.Errorf("NewestAudioSince() = %q, %v, want %q", got, ok, fresh)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.m3u")
	if err := WriteFile(path, []byte("a.mp3\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "a.mp3\n" {
		t.Errorf("ReadFile() = %q, %v", got, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestImageService_PrepareCover(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		src.Set(x, x%200, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	out, err := NewImageService(0).PrepareCover(context.Background(), buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("PrepareCover() error = %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}

	if _, err := NewImageService(0).PrepareCover(context.Background(), []byte("junk"), 100); err == nil {
		t.Error("PrepareCover(junk) should fail")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1500, 1000, 1000, 1000, 666},
		{800, 600, 1000, 800, 600},
		{600, 1200, 300, 150, 300},
		{600, 1200, 0, 600, 1200},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
