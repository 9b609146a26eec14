package interactive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/dmx/internal/session"
)

// CommandKind classifies an input line.
type CommandKind int

const (
	CmdEmpty CommandKind = iota
	CmdInvalid
	CmdQuit
	CmdHelp
	CmdStatus
	CmdMode
	CmdSearch
	CmdList
	CmdBack
	CmdSelect
	CmdPreview
	CmdTopPreview
	CmdPlay
	CmdStop
)

var commandNames = map[CommandKind]string{
	CmdEmpty:      "empty",
	CmdInvalid:    "invalid",
	CmdQuit:       "quit",
	CmdHelp:       "help",
	CmdStatus:     "status",
	CmdMode:       "mode",
	CmdSearch:     "search",
	CmdList:       "list",
	CmdBack:       "back",
	CmdSelect:     "select",
	CmdPreview:    "preview",
	CmdTopPreview: "top-preview",
	CmdPlay:       "play",
	CmdStop:       "stop",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a classified input line.
type Command struct {
	Kind CommandKind

	// Query is the search text with its original case (CmdSearch).
	Query string

	// Mode is the explicit search mode when HasMode is set (CmdSearch).
	Mode    session.Mode
	HasMode bool

	// Arg is the raw argument of CmdMode; empty asks for the current mode.
	Arg string

	// Selection is the index list without brackets (CmdSelect). All is set
	// for "all" and "*".
	Selection string
	All       bool

	// Index is the 1-based target of CmdPreview and CmdTopPreview.
	Index int

	// Err explains a CmdInvalid line.
	Err error
}

var (
	bareSelection  = regexp.MustCompile(`^[\d,\-\s]+$`)
	selectionChars = regexp.MustCompile(`^[\d,\-\s]*$`)
	topPreview     = regexp.MustCompile(`^t(\d+)$`)
)

// searchModes maps the explicit search commands to their mode.
var searchModes = map[string]session.Mode{
	"s":      session.ModeTracks,
	"search": session.ModeTracks,
	"sa":     session.ModeAlbums,
	"st":     session.ModeArtists,
}

// Parse classifies one input line. Command words are case-insensitive;
// search text keeps its case.
//
// Navigation words (q, h, l, b, back, play, stop, status) only count as
// commands on their own: "stop making sense" is a search.
func Parse(line string) Command {
	text := strings.TrimSpace(line)
	if text == "" {
		return Command{Kind: CmdEmpty}
	}
	lower := strings.ToLower(text)

	switch {
	case lower == "all" || lower == "*":
		return Command{Kind: CmdSelect, All: true}
	case strings.HasPrefix(lower, "["):
		// "[Untitled]" is a search, "[1,3-5]" a selection
		inner, closed := strings.CutSuffix(text[1:], "]")
		if !selectionChars.MatchString(inner) {
			break
		}
		if !closed {
			return invalid("%w: unclosed bracket in %q", ErrMalformedRange, text)
		}
		return Command{Kind: CmdSelect, Selection: strings.TrimSpace(inner)}
	case bareSelection.MatchString(lower):
		return Command{Kind: CmdSelect, Selection: text}
	}
	if m := topPreview.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return invalid("%w: %q", ErrMalformedRange, text)
		}
		return Command{Kind: CmdTopPreview, Index: n}
	}

	word, args, _ := strings.Cut(text, " ")
	word = strings.ToLower(word)
	args = strings.TrimSpace(args)

	if mode, ok := searchModes[word]; ok {
		if args == "" {
			return invalid("%w: usage: %s <query>", ErrInvalidCommand, word)
		}
		return Command{Kind: CmdSearch, Query: args, Mode: mode, HasMode: true}
	}

	switch word {
	case "m", "mode":
		return Command{Kind: CmdMode, Arg: strings.ToLower(args)}
	case "p":
		n, err := strconv.Atoi(args)
		if err != nil {
			return invalid("%w: usage: p <number>", ErrInvalidCommand)
		}
		return Command{Kind: CmdPreview, Index: n}
	}

	if args == "" {
		switch word {
		case "q", "quit":
			return Command{Kind: CmdQuit}
		case "h", "help":
			return Command{Kind: CmdHelp}
		case "status":
			return Command{Kind: CmdStatus}
		case "l", "list":
			return Command{Kind: CmdList}
		case "b", "back":
			return Command{Kind: CmdBack}
		case "play":
			return Command{Kind: CmdPlay}
		case "stop":
			return Command{Kind: CmdStop}
		}
	}

	return Command{Kind: CmdSearch, Query: text}
}

func invalid(format string, args ...any) Command {
	return Command{Kind: CmdInvalid, Err: fmt.Errorf(format, args...)}
}
