package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"timeplus/internal/marker"
	"timeplus/internal/session"
	"timeplus/internal/timecode"
)

func newMarkerCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddCommand(ctx),
		newRemoveCommand(ctx),
		newMemoCommand(ctx),
		newNudgeCommand(ctx),
		newListCommand(ctx),
		newStatusCommand(ctx),
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <page-url> <time> [memo]",
		Short: "Bookmark a time",
		Long: "Add a bookmark at <time> (seconds, MM:SS or H:MM:SS). When a bookmark\n" +
			"already exists there, the memo is only applied if it never had one.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(args[1])
			if err != nil {
				return err
			}
			var memo *string
			if len(args) == 3 {
				memo = &args[2]
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				if err := s.Add(c, t, memo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s\n", timecode.Format(t))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <page-url> <time>",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(args[1])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				markers, err := s.Markers()
				if err != nil {
					return err
				}
				if _, ok := marker.Index(markers, t); !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No bookmark at %s\n", timecode.Format(t))
					return nil
				}
				if err := s.Remove(c, t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", timecode.Format(t))
				return nil
			})
		},
	}
}

func newMemoCommand(ctx *commandContext) *cobra.Command {
	var clearMemo bool

	cmd := &cobra.Command{
		Use:   "memo <page-url> <time> [memo]",
		Short: "Set or clear the memo of a bookmark",
		Long: "Overwrite the memo of the bookmark at <time>. Without a memo argument the\n" +
			"memo is set to empty; --clear removes it entirely.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(args[1])
			if err != nil {
				return err
			}
			var memo *string
			switch {
			case clearMemo && len(args) == 3:
				return fmt.Errorf("--clear cannot be combined with a memo")
			case clearMemo:
			case len(args) == 3:
				memo = &args[2]
			default:
				empty := ""
				memo = &empty
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				markers, err := s.Markers()
				if err != nil {
					return err
				}
				if _, ok := marker.Index(markers, t); !ok {
					return fmt.Errorf("no bookmark at %s", timecode.Format(t))
				}
				if err := s.SetMemo(c, t, memo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated memo at %s\n", timecode.Format(t))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearMemo, "clear", false, "Remove the memo instead of setting it")
	return cmd
}

func newNudgeCommand(ctx *commandContext) *cobra.Command {
	var by int

	cmd := &cobra.Command{
		Use:   "nudge <page-url> <time>",
		Short: "Move a bookmark one second earlier or later",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(args[1])
			if err != nil {
				return err
			}
			if by == 0 {
				return fmt.Errorf("--by must be +1 or -1")
			}
			return ctx.withSession(cmd, args[0], sessionSetup{mutate: true}, func(c context.Context, s *session.Session) error {
				before, err := s.Markers()
				if err != nil {
					return err
				}
				if _, ok := marker.Index(before, t); !ok {
					return fmt.Errorf("no bookmark at %s", timecode.Format(t))
				}
				if err := s.Nudge(c, t, by); err != nil {
					return err
				}
				after, err := s.Markers()
				if err != nil {
					return err
				}
				if _, ok := marker.Index(after, t); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Bookmark at %s unchanged\n", timecode.Format(t))
					return nil
				}
				target := max(t+int64(sign(by)), 0)
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", timecode.Format(t), timecode.Format(target))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "Direction to move: positive for later, negative for earlier")
	return cmd
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <page-url>",
		Aliases: []string{"ls"},
		Short:   "Show bookmarks for a media item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], sessionSetup{}, func(_ context.Context, s *session.Session) error {
				markers, err := s.Markers()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, markers)
				}
				out := cmd.OutOrStdout()
				if len(markers) == 0 {
					fmt.Fprintf(out, "No bookmarks for %s\n", s.MediaKey())
					return nil
				}
				rows := make([][]string, 0, len(markers))
				for i, m := range markers {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						timecode.Format(m.Time),
						strconv.FormatInt(m.Time, 10),
						memoCell(m),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Time", "Seconds", "Memo"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func memoCell(m marker.Marker) string {
	if !m.HasMemo() {
		return ""
	}
	memo := strings.ReplaceAll(m.MemoText(), "\n", " ⏎ ")
	if memo == "" {
		return "(empty)"
	}
	return memo
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <page-url>",
		Short: "Print the session snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], sessionSetup{}, func(_ context.Context, s *session.Session) error {
				return writeJSON(cmd, s.Snapshot())
			})
		},
	}
}
