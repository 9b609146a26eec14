package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/handiism/dmx/internal/model"
	"go.uber.org/zap"
)

// Engine performs the actual download of a catalog link.
//
// The engine owns authentication, decryption and the on-disk layout of
// what it writes below dir; the Dispatcher only verifies that an audio
// file appeared.
type Engine interface {
	Download(ctx context.Context, link string, q model.Quality, dir string) error
	Available() bool
}

// qualityMarkers are lowercased fragments of deemix output that mean the
// requested bitrate is not offered for the track or account.
var qualityMarkers = []string{
	"bitrate",
	"quality",
	"not available",
	"desired",
}

// DeemixEngine runs the deemix command line downloader.
//
//	engine := NewDeemixEngine("deemix", settings.ARL, logger)
//	err := engine.Download(ctx, "https://www.deezer.com/track/3135556", model.QualityFLAC, "/music")
//
// The ARL is written to deemix's own config folder before every run;
// deemix reads it from there.
type DeemixEngine struct {
	path      string
	arl       string
	configDir string
	logger    *zap.Logger

	// command builds the process; replaced in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewDeemixEngine creates an engine running the deemix binary at path
// (looked up in PATH when not absolute).
func NewDeemixEngine(path, arl string, logger *zap.Logger) *DeemixEngine {
	if path == "" {
		path = "deemix"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	configDir, err := os.UserConfigDir()
	if err == nil {
		configDir = filepath.Join(configDir, "deemix")
	}
	return &DeemixEngine{
		path:      path,
		arl:       strings.TrimSpace(arl),
		configDir: configDir,
		logger:    logger,
		command:   exec.CommandContext,
	}
}

// Available reports whether the deemix binary can be found.
func (e *DeemixEngine) Available() bool {
	_, err := exec.LookPath(e.path)
	return err == nil
}

// HasARL reports whether an ARL token is configured.
func (e *DeemixEngine) HasARL() bool {
	return e.arl != ""
}

// Download runs deemix for link at quality q, writing below dir.
//
// Returns ErrNoARL without running anything when no ARL is configured,
// and ErrQualityUnavailable when deemix rejects the bitrate.
func (e *DeemixEngine) Download(ctx context.Context, link string, q model.Quality, dir string) error {
	if e.arl == "" {
		return ErrNoARL
	}
	if err := e.writeARL(); err != nil {
		return fmt.Errorf("failed to store ARL for deemix: %w", err)
	}

	args := []string{"-b", q.Bitrate(), "-p", dir, link}
	e.logger.Debug("running deemix", zap.String("link", link), zap.Strings("args", args))

	var out bytes.Buffer
	cmd := e.command(ctx, e.path, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := out.String()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if mentionsQuality(output) {
			return fmt.Errorf("%w: %s", ErrQualityUnavailable, lastLine(output))
		}
		return fmt.Errorf("deemix failed: %w: %s", err, lastLine(output))
	}
	return nil
}

func (e *DeemixEngine) writeARL() error {
	if e.configDir == "" {
		return fmt.Errorf("no user config directory")
	}
	if err := os.MkdirAll(e.configDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.configDir, ".arl"), []byte(e.arl), 0600)
}

func mentionsQuality(output string) bool {
	lower := strings.ToLower(output)
	for _, m := range qualityMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// lastLine returns the last non-empty line of output, usually the error.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no output"
}
