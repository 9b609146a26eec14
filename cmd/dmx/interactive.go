package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/handiism/dmx/internal/interactive"
	"github.com/handiism/dmx/internal/preview"
	"github.com/handiism/dmx/internal/session"
	"github.com/handiism/dmx/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewInteractiveCmd creates the interactive command
func NewInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive [query]",
		Aliases: []string{"i"},
		Short:   "Start the interactive client",
		Long: `Start the interactive client, optionally running a first search.

Type h inside the client for the command list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func runInteractive(ctx context.Context, query string) error {
	feed := tui.NewFeed()
	a, err := newApp(settings, feed.Event)
	if err != nil {
		return err
	}
	defer a.Close()

	player := preview.NewPlayer(a.http, &preview.Speaker{}, a.logger.Named("preview"))
	defer func() {
		if err := player.Close(); err != nil {
			a.logger.Warn("preview cleanup failed", zap.Error(err))
		}
	}()

	interp := interactive.NewInterpreter(session.New(), a.catalog, a.dispatcher, player, interactive.Config{
		OutputDir:     settings.Output,
		Qualities:     settings.Qualities(),
		DownloadDelay: settings.DownloadDelay(),
	}, a.logger.Named("interactive"))
	defer interp.Close()
	interp.SetStatusProvider(a)
	interp.OnProgress(feed.Progress)

	banner := []string{fmt.Sprintf("Output: %s | Quality: %s", settings.Output, settings.Quality)}
	if !a.dispatcher.Available() {
		banner = append(banner, fmt.Sprintf("deemix not found (%s): downloads will fail", settings.DeemixPath))
	}

	return tui.Run(ctx, interp, feed, tui.Options{
		InitialQuery: query,
		Verbose:      verbose,
		Banner:       banner,
	})
}
