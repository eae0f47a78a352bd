package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timeplus/internal/config"
	"timeplus/internal/fileutil"
	"timeplus/internal/session"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export every stored bookmark list as one JSON blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, false, func(c context.Context, run storeRun) error {
				blob, err := session.Backup(c, run.kv, run.cfg.Storage.KeyPrefix)
				if err != nil {
					return err
				}
				target := strings.TrimSpace(output)
				if target == "" || target == "-" {
					fmt.Fprint(cmd.OutOrStdout(), blob)
					return nil
				}
				target, err = config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := fileutil.WriteFileAtomic(target, []byte(blob), 0o600); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote backup to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the backup to a file instead of stdout")
	return cmd
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file|->",
		Short: "Write every entry of a backup blob back to storage",
		Long: "Restore parses the whole blob before writing. A malformed blob, or one with\n" +
			"keys outside the configured prefix, is rejected without changing anything.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if source != "-" {
				expanded, err := config.ExpandPath(source)
				if err != nil {
					return fmt.Errorf("resolve backup path: %w", err)
				}
				source = expanded
			}
			data, err := fileutil.ReadSource(source, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, true, func(c context.Context, run storeRun) error {
				n, err := session.Restore(c, run.kv, run.cfg.Storage.KeyPrefix, string(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d key(s)\n", n)
				return nil
			})
		},
	}
}
