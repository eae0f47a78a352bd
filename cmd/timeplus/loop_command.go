package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timeplus/internal/media"
	"timeplus/internal/session"
	"timeplus/internal/timecode"
)

func newLoopCommand(ctx *commandContext) *cobra.Command {
	var startAt string
	var runFor time.Duration

	cmd := &cobra.Command{
		Use:   "loop <page-url> <a> <b>",
		Short: "Play a simulated playhead between two bookmarks",
		Long: "Bookmark <a> and <b> if needed, arm A-B repeat on them and run a wall-clock\n" +
			"playhead until interrupted or --for elapses. Useful to check a loop range.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseTime(args[1])
			if err != nil {
				return err
			}
			b, err := parseTime(args[2])
			if err != nil {
				return err
			}
			if b <= a {
				return errors.New("loop: <b> must be after <a>")
			}
			start := a
			if startAt != "" {
				if start, err = parseTime(startAt); err != nil {
					return err
				}
			}

			player := media.NewPlayhead()
			setup := sessionSetup{mutate: true, player: player}
			return ctx.withSession(cmd, args[0], setup, func(c context.Context, s *session.Session) error {
				if err := s.Add(c, a, nil); err != nil {
					return err
				}
				if err := s.Add(c, b, nil); err != nil {
					return err
				}
				if _, err := s.ToggleRepeat(); err != nil {
					return err
				}
				if err := s.Click(a); err != nil {
					return err
				}
				if err := s.Click(b); err != nil {
					return err
				}
				if err := player.Seek(float64(start)); err != nil {
					return err
				}
				if err := player.Play(); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Looping %s-%s (%s)\n", timecode.Format(a), timecode.Format(b), s.Repeat().State())

				runCtx, stop := signal.NotifyContext(c, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				if runFor > 0 {
					var cancel context.CancelFunc
					runCtx, cancel = context.WithTimeout(runCtx, runFor)
					defer cancel()
				}
				<-runCtx.Done()

				player.Pause()
				pos := int64(player.Position())
				fmt.Fprintf(out, "Stopped at %s\n", timecode.Format(pos))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&startAt, "start", "", "Initial playhead position (defaults to <a>)")
	cmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this long (default: until interrupted)")
	return cmd
}
