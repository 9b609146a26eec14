package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/handiism/dmx/internal/deezer"
	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewDownloadCmd creates the download command
func NewDownloadCmd() *cobra.Command {
	var (
		quality string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a track or album from a deezer.com link",
		Example: `  dmx download https://www.deezer.com/track/3135556
  dmx download --quality flac https://www.deezer.com/album/302127`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := deezer.ResolveURL(args[0])
			if err != nil {
				return err
			}
			if kind == model.KindArtist {
				return fmt.Errorf("artist links cannot be downloaded directly; use: dmx interactive")
			}

			qualities := settings.Qualities()
			if quality != "" {
				q, err := model.ParseQuality(quality)
				if err != nil {
					return err
				}
				qualities = q.Fallback()
			}
			if output == "" {
				output = settings.Output
			}

			// Handle interrupts
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var bar *progressbar.ProgressBar
			a, err := newApp(settings, func(event download.ProgressEvent) {
				printEvent(bar, event)
			})
			if err != nil {
				return err
			}
			defer a.Close()

			album, tracks, err := resolveTracks(ctx, a, kind, id)
			if err != nil {
				return err
			}

			bar = progressbar.NewOptions(len(tracks),
				progressbar.OptionSetDescription("Downloading"),
				progressbar.OptionShowCount(),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish())

			var tally struct{ ok, skipped, failed int }
			for _, track := range tracks {
				if ctx.Err() != nil {
					break
				}
				bar.Describe(fmt.Sprintf("%s - %s", track.Artist, track.Title))
				status, err := a.dispatcher.Download(ctx, track, output, qualities)
				switch {
				case err != nil:
					tally.failed++
					a.logger.Warn("download failed", zap.Int64("track_id", track.ID), zap.Error(err))
				case status == download.StatusAlreadyExists:
					tally.skipped++
				default:
					tally.ok++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			if album != nil && ctx.Err() == nil {
				if _, err := a.dispatcher.WritePlaylist(ctx, album, tracks, output); err != nil {
					color.Yellow("Playlist not written: %v", err)
				}
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Printf("✨ Complete! %d downloaded, %d already present, %d failed\n", tally.ok, tally.skipped, tally.failed)
			if tally.failed > 0 {
				return fmt.Errorf("%d of %d tracks failed", tally.failed, len(tracks))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&quality, "quality", "q", "", "preferred quality: 128, 320 or flac (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config)")
	return cmd
}

// resolveTracks expands a resolved link into the tracks to download. The
// album is nil for single tracks.
func resolveTracks(ctx context.Context, a *app, kind model.Kind, id int64) (*model.Album, []*model.Track, error) {
	if kind == model.KindTrack {
		track, err := a.catalog.Track(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return nil, []*model.Track{track}, nil
	}

	album, err := a.catalog.Album(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tracks, err := a.catalog.AlbumTracks(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(tracks) == 0 {
		return nil, nil, errors.New("album has no tracks")
	}
	color.Cyan("%s - %s (%d tracks)", album.Artist, album.Title, len(tracks))
	return album, tracks, nil
}

func printEvent(bar *progressbar.ProgressBar, event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !verbose {
		return
	}
	if bar != nil {
		_ = bar.Clear()
	}

	switch event.Level {
	case download.LevelError:
		color.Red("✗ %s", event.Message)
	case download.LevelWarning:
		color.Yellow("! %s", event.Message)
	case download.LevelSuccess:
		color.Green("✓ %s", event.Message)
	case download.LevelInfo:
		color.Cyan("› %s", event.Message)
	default:
		fmt.Println("  " + event.Message)
	}
}
