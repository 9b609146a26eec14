package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/handiism/dmx/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Key", "Value"})
			table.SetAutoWrapText(false)
			table.SetColumnColor(tablewriter.Colors{tablewriter.FgCyanColor}, tablewriter.Colors{})
			for _, key := range settings.Keys() {
				value, err := settings.Get(key)
				if err != nil {
					return err
				}
				if key == "arl" {
					value = maskSecret(value)
				}
				table.Append([]string{key, value})
			}
			table.Render()
			fmt.Println(settings.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one setting and save it",
		Example: "  dmx config set quality flac\n  dmx config set output ~/Music",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ %s updated", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	return cmd
}

// initConfig asks for the settings a first run needs.
func initConfig() error {
	answers := struct {
		Output         string
		Quality        string
		ARL            string
		CreatePlaylist bool
	}{}

	questions := []*survey.Question{
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Download directory:", Default: settings.Output},
			Validate: survey.Required,
		},
		{
			Name: "quality",
			Prompt: &survey.Select{
				Message: "Preferred quality:",
				Options: []string{model.Quality128.String(), model.Quality320.String(), model.QualityFLAC.String()},
				Default: settings.PreferredQuality().String(),
			},
		},
		{
			Name:   "arl",
			Prompt: &survey.Password{Message: "Deezer ARL (leave empty to keep):"},
		},
		{
			Name:   "createplaylist",
			Prompt: &survey.Confirm{Message: "Create playlists for albums?", Default: settings.CreatePlaylist},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	values := map[string]string{
		"output":          answers.Output,
		"quality":         answers.Quality,
		"create_playlist": fmt.Sprint(answers.CreatePlaylist),
	}
	if arl := strings.TrimSpace(answers.ARL); arl != "" {
		values["arl"] = arl
	}
	for key, value := range values {
		if err := settings.Set(key, value); err != nil {
			return err
		}
	}
	if err := settings.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	color.Green("✓ Saved %s", settings.Path())
	return nil
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
