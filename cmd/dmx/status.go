package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the catalog API, deemix and the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(settings, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			bold := color.New(color.Bold)
			bold.Println("dmx status")
			fmt.Printf("  Config: %s\n", settings.Path())
			fmt.Printf("  Output: %s\n", settings.Output)
			fmt.Printf("  Quality: %s\n", settings.Quality)

			for _, line := range a.StatusLines(cmd.Context()) {
				switch {
				case strings.Contains(line, "unreachable"), strings.Contains(line, "not found"):
					color.Red("  ✗ %s", line)
				case strings.Contains(line, "not set"), strings.Contains(line, "disabled"):
					color.Yellow("  ! %s", line)
				default:
					color.Green("  ✓ %s", line)
				}
			}
			return nil
		},
	}
}
