package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"timeplus/internal/autoadd"
	"timeplus/internal/config"
	"timeplus/internal/session"
)

func newAutoAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "auto-add <page-url> [on|off]",
		Short:     "Show or set automatic bookmarking of starred comments",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return ctx.withSession(cmd, args[0], sessionSetup{}, func(_ context.Context, s *session.Session) error {
					fmt.Fprintf(cmd.OutOrStdout(), "Auto-add: %s\n", onOff(s.AutoAdd()))
					return nil
				})
			}
			var enabled bool
			switch strings.ToLower(strings.TrimSpace(args[1])) {
			case "on", "true", "yes":
				enabled = true
			case "off", "false", "no":
			default:
				return fmt.Errorf("auto-add: expected on or off, got %q", args[1])
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				if err := s.SetAutoAdd(c, enabled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Auto-add: %s\n", onOff(enabled))
				return nil
			})
		},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ingest <page-url> <comments-file>",
		Short: "Bookmark starred comments from a comment file",
		Long: "Read \"<MM:SS|H:MM:SS> <text>\" lines and bookmark every comment containing\n" +
			"the configured glyph, one second before its timestamp. With --watch the\n" +
			"file is rescanned on the configured interval until interrupted.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve comments path: %w", err)
			}
			setup := sessionSetup{
				mutate: true,
				feeds: func(string) autoadd.Feed {
					return autoadd.FileFeed{Path: path}
				},
			}
			return ctx.withSession(cmd, args[0], setup, func(c context.Context, s *session.Session) error {
				out := cmd.OutOrStdout()
				if !watch {
					n, err := s.IngestOnce(c)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Bookmarked %d starred comment(s)\n", n)
					return nil
				}

				before, err := s.Markers()
				if err != nil {
					return err
				}
				watchCtx, stop := signal.NotifyContext(c, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)
				if err := s.Watch(watchCtx); err != nil {
					return err
				}
				after, err := s.Markers()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Bookmarks: %d (was %d)\n", len(after), len(before))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep rescanning until interrupted")
	return cmd
}
