package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/handiism/dmx/internal/interactive"
	"github.com/handiism/dmx/internal/model"
	"github.com/handiism/dmx/internal/session"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog and print the results",
		Example: `  dmx search daft punk
  dmx search --type albums discovery`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := session.ParseMode(kind)
			if err != nil {
				return err
			}

			a, err := newApp(settings, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			var items []model.Item
			switch mode {
			case session.ModeAlbums:
				albums, err := a.catalog.SearchAlbums(cmd.Context(), query)
				if err != nil {
					return err
				}
				items = model.AlbumItems(albums)
			case session.ModeArtists:
				artists, err := a.catalog.SearchArtists(cmd.Context(), query)
				if err != nil {
					return err
				}
				items = model.ArtistItems(artists)
			default:
				tracks, err := a.catalog.SearchTracks(cmd.Context(), query)
				if err != nil {
					return err
				}
				items = model.TrackItems(tracks)
			}

			if len(items) == 0 {
				color.Yellow("No %s found for %q", mode, query)
				return nil
			}
			printResults(items, mode)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "tracks", "result type: tracks, albums or artists")
	return cmd
}

func printResults(items []model.Item, mode session.Mode) {
	state := session.New()
	state.Replace(mode, items)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Name", "Details", "Link"})
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetHeaderColor(tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgRedColor, tablewriter.Bold},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgBlackColor})
	table.SetColumnColor(tablewriter.Colors{tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold},
		tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgBlackColor})

	for i, e := range interactive.Listing(state) {
		table.Append([]string{strconv.Itoa(e.Index), e.Label, e.Detail, itemURL(items[i])})
	}
	table.Render()
	fmt.Printf("%d %s\n", len(items), mode)
}

func itemURL(item model.Item) string {
	switch item.Kind {
	case model.KindTrack:
		return item.Track.URL()
	case model.KindAlbum:
		return item.Album.URL()
	case model.KindArtist:
		return item.Artist.URL()
	}
	return ""
}
