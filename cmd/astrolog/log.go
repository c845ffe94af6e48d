package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"astrolog/internal/store"
	"astrolog/internal/theme"
)

func newLogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the session and calibration logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.FrontendView()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLog(view, theme.DefaultStyles()))
			return nil
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderLog draws the session log, the calibration log and any rows that
// could not be resolved.
func renderLog(view store.FrontendView, styles theme.Styles) string {
	var b strings.Builder

	sessions := make([][]string, 0, len(view.LogData))
	for _, r := range view.LogData {
		sessions = append(sessions, []string{
			r.Date, r.Target,
			formatFloat(r.SubLength), strconv.Itoa(r.TotalSubs), strconv.Itoa(r.IntegratedSubs),
			r.Filter, strconv.Itoa(r.Gain), strconv.Itoa(r.Offset), formatFloat(r.CameraTemp),
			r.Telescope, r.Camera, r.Mount,
		})
	}
	b.WriteString(styles.Section(
		fmt.Sprintf("Sessions (%d)", len(sessions)),
		styles.Table([]string{"Date", "Target", "Sub", "Subs", "Integrated", "Filter", "Gain", "Offset", "Temp", "Telescope", "Camera", "Mount"}, sessions).Render(),
	))
	b.WriteString("\n")

	calibration := make([][]string, 0, len(view.CalibrationData))
	for _, r := range view.CalibrationData {
		calibration = append(calibration, []string{
			string(r.CalibrationType), r.Camera, strconv.Itoa(r.Gain),
			r.SubLength.String(), r.CameraTemp.String(), strconv.Itoa(r.TotalSubs),
		})
	}
	b.WriteString(styles.Section(
		fmt.Sprintf("Calibration (%d)", len(calibration)),
		styles.Table([]string{"Type", "Camera", "Gain", "Sub", "Temp", "Subs"}, calibration).Render(),
	))

	for _, e := range view.RowErrors {
		b.WriteString("\n")
		b.WriteString(styles.Warning.Render("skipped: " + e.Error()))
	}
	return b.String()
}
