package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

func locationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "locations <keyword>",
		Short:   "List destinations matching a keyword",
		Example: "  hotelctl locations amsterdam\n  hotelctl locations \"new york\" --json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := strings.Join(args, " ")
			locations, err := newClient(cmd).Locations(cmd.Context(), keyword)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, locations)
			}
			return renderLocations(out, locations)
		},
	}
}

func renderLocations(w io.Writer, locations []types.Location) error {
	if len(locations) == 0 {
		_, err := fmt.Fprintln(w, "No matching destinations.")
		return err
	}
	for _, l := range locations {
		line := l.Name
		if l.Country != "" {
			line += ", " + l.Country
		}
		if l.CityCode != "" {
			line += " [" + l.CityCode + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, d := range l.Districts {
			if _, err := fmt.Fprintf(w, "  - %s\n", d.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
