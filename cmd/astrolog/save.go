package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"astrolog/internal/app"
	"astrolog/internal/store"
	"astrolog/internal/theme"
)

func newSaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Rewrite every collection with the current schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.SaveState(cmd.Context(), app.StateUpdate{})
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderSaveReport(report, theme.DefaultStyles()))
			}
			return err
		},
	}
}

func renderSaveReport(r *store.SaveReport, styles theme.Styles) string {
	rows := make([][]string, 0, len(store.Collections()))
	for _, id := range r.Saved {
		rows = append(rows, []string{string(id), styles.Success.Render("saved"), ""})
	}

	failed := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		failed = append(failed, string(id))
	}
	sort.Strings(failed)
	for _, id := range failed {
		rows = append(rows, []string{id, styles.Error.Render("failed"), r.Failed[store.CollectionID(id)].Error()})
	}

	for _, id := range r.Skipped {
		rows = append(rows, []string{string(id), styles.Muted.Render("skipped"), ""})
	}
	return styles.Table([]string{"Collection", "Result", "Error"}, rows).Render()
}
