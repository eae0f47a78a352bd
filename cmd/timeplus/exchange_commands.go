package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"timeplus/internal/fileutil"
	"timeplus/internal/session"
)

func newExchangeCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newExportCommand(ctx),
		newImportCommand(ctx),
		newShareCommand(ctx),
		newOpenCommand(ctx),
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <page-url>",
		Short: "Print bookmarks in text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], sessionSetup{}, func(_ context.Context, s *session.Session) error {
				text, err := s.ExportText()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <page-url> [text|-]",
		Short: "Merge bookmarks from text form",
		Long: "Parse entries like \"1:02:03 - memo, 0:30\" and merge them into the stored\n" +
			"bookmarks. Existing memos win unless --replace discards the current list.\n" +
			"Without a text argument, or with \"-\", the text is read from stdin.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 2 && args[1] != "-" {
				text = args[1]
			} else {
				data, err := fileutil.ReadSource("-", cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				before, err := s.Markers()
				if err != nil {
					return err
				}
				skipped, err := s.ImportText(c, text, replace)
				if err != nil {
					return err
				}
				after, err := s.Markers()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Bookmarks: %d (was %d)\n", len(after), len(before))
				for _, tokErr := range skipped {
					fmt.Fprintf(out, "Skipped: %s\n", strings.TrimSpace(tokErr.Token))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Discard current bookmarks instead of merging")
	return cmd
}

func newShareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "share <page-url>",
		Short: "Print a URL that carries the bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], sessionSetup{}, func(_ context.Context, s *session.Session) error {
				link, err := s.ShareURL()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "open <share-url>",
		Short: "Import bookmarks from a shared URL",
		Long: "Read the bookmarks embedded in a shared URL and, after confirmation, merge\n" +
			"them into the stored bookmarks. Existing memos win. The URL without the\n" +
			"share parameter is printed either way.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				confirm := func(n int) bool {
					if assumeYes {
						return true
					}
					return promptYesNo(cmd.InOrStdin(), cmd.ErrOrStderr(),
						fmt.Sprintf("Import %d shared bookmark(s) into %s?", n, s.MediaKey()))
				}
				clean, accepted, err := s.OpenShared(c, args[0], confirm)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported: %s\n", yesNo(accepted))
				fmt.Fprintln(out, clean)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Accept shared bookmarks without asking")
	return cmd
}

// promptYesNo asks on an interactive terminal only; anything else declines.
func promptYesNo(in io.Reader, out io.Writer, question string) bool {
	file, ok := in.(*os.File)
	if !ok || !(isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())) {
		fmt.Fprintln(out, "Not a terminal; declining shared bookmarks (use --yes to accept)")
		return false
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
