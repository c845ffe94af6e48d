package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"astrolog/internal/db"
	"astrolog/internal/theme"
)

func newBackupCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage the backup journal",
	}
	cmd.AddCommand(
		newBackupListCmd(opts),
		newBackupCreateCmd(opts),
		newBackupRestoreCmd(opts),
	)
	return cmd
}

func newBackupListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBackups(list, theme.DefaultStyles()))
			return nil
		},
	}
}

func newBackupCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Record the current documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.Backup(cmd.Context(), db.ReasonManual)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup %d recorded (%d documents, %s)\n", b.ID, b.Documents, humanize.Bytes(uint64(b.Size)))
			return nil
		},
	}
}

func newBackupRestoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore the documents recorded in a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid backup id %q", args[0])
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.RestoreBackup(cmd.Context(), id)
			styles := theme.DefaultStyles()
			if report != nil && !report.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), renderSaveReport(report, styles))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render(fmt.Sprintf("restored backup %d", id)))
			return nil
		},
	}
}

func renderBackups(list []db.Backup, styles theme.Styles) string {
	if len(list) == 0 {
		return styles.Muted.Render("no backups")
	}
	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Reason,
			humanize.Time(b.CreatedAt),
			strconv.Itoa(b.Documents),
			humanize.Bytes(uint64(b.Size)),
		})
	}
	return styles.Table([]string{"ID", "Reason", "Taken", "Docs", "Size"}, rows).Render()
}
