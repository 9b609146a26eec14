package interactive

import (
	"errors"
	"testing"

	"github.com/handiism/dmx/internal/session"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"", Command{Kind: CmdEmpty}},
		{"   ", Command{Kind: CmdEmpty}},
		{"q", Command{Kind: CmdQuit}},
		{"QUIT", Command{Kind: CmdQuit}},
		{"h", Command{Kind: CmdHelp}},
		{"status", Command{Kind: CmdStatus}},
		{"l", Command{Kind: CmdList}},
		{"b", Command{Kind: CmdBack}},
		{"back", Command{Kind: CmdBack}},
		{"play", Command{Kind: CmdPlay}},
		{"stop", Command{Kind: CmdStop}},
		{"m", Command{Kind: CmdMode}},
		{"m Albums", Command{Kind: CmdMode, Arg: "albums"}},
		{"3", Command{Kind: CmdSelect, Selection: "3"}},
		{"1999", Command{Kind: CmdSelect, Selection: "1999"}},
		{"1,3-5", Command{Kind: CmdSelect, Selection: "1,3-5"}},
		{"[1, 3-5, 8]", Command{Kind: CmdSelect, Selection: "1, 3-5, 8"}},
		{"all", Command{Kind: CmdSelect, All: true}},
		{"*", Command{Kind: CmdSelect, All: true}},
		{"p 2", Command{Kind: CmdPreview, Index: 2}},
		{"t3", Command{Kind: CmdTopPreview, Index: 3}},
		{"s Get Lucky", Command{Kind: CmdSearch, Query: "Get Lucky", Mode: session.ModeTracks, HasMode: true}},
		{"sa Discovery", Command{Kind: CmdSearch, Query: "Discovery", Mode: session.ModeAlbums, HasMode: true}},
		{"st daft punk", Command{Kind: CmdSearch, Query: "daft punk", Mode: session.ModeArtists, HasMode: true}},
		{"Daft Punk", Command{Kind: CmdSearch, Query: "Daft Punk"}},
		{"stop making sense", Command{Kind: CmdSearch, Query: "stop making sense"}},
		{"back in black", Command{Kind: CmdSearch, Query: "back in black"}},
		{"[Untitled]", Command{Kind: CmdSearch, Query: "[Untitled]"}},
		{"[1] Intro", Command{Kind: CmdSearch, Query: "[1] Intro"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Parse(tt.line)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"[1,2", ErrMalformedRange},
		{"s", ErrInvalidCommand},
		{"sa   ", ErrInvalidCommand},
		{"p", ErrInvalidCommand},
		{"p two", ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Parse(tt.line)
			if got.Kind != CmdInvalid {
				t.Fatalf("Parse(%q).Kind = %v, want %v", tt.line, got.Kind, CmdInvalid)
			}
			if !errors.Is(got.Err, tt.want) {
				t.Errorf("Parse(%q).Err = %v, want %v", tt.line, got.Err, tt.want)
			}
		})
	}
}
