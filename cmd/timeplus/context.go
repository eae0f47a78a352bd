package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"timeplus/internal/config"
	"timeplus/internal/kvstore"
	"timeplus/internal/logging"
	"timeplus/internal/media"
	"timeplus/internal/session"
	"timeplus/internal/timecode"
)

const lockWait = 10 * time.Second

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.File,
		Output:   cmd.ErrOrStderr(),
	})
}

// storeRun carries what a command needs to touch persisted state.
type storeRun struct {
	cfg    *config.Config
	kv     kvstore.Store
	logger *slog.Logger
}

// withStore opens the configured backend for the duration of fn. When mutate
// is set the cross-process lock is held as well.
func (c *commandContext) withStore(cmd *cobra.Command, mutate bool, fn func(context.Context, storeRun) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if mutate {
		unlock, err := acquireLock(ctx, cfg.LockPath())
		if err != nil {
			return err
		}
		defer unlock()
	}

	kv, err := kvstore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Warn("closing store failed", logging.Error(err))
		}
	}()

	return fn(ctx, storeRun{cfg: cfg, kv: kv, logger: logger})
}

// sessionSetup customizes the session a command attaches.
type sessionSetup struct {
	mutate bool
	player media.Player
	feeds  session.FeedFactory
}

// withSession attaches a session for pageURL, runs fn and detaches.
func (c *commandContext) withSession(cmd *cobra.Command, pageURL string, setup sessionSetup, fn func(context.Context, *session.Session) error) error {
	return c.withStore(cmd, setup.mutate, func(ctx context.Context, run storeRun) error {
		player := setup.player
		if player == nil {
			player = media.NewPlayhead()
		}
		manager, err := session.NewManager(session.OptionsFromConfig(run.cfg, run.kv, player, setup.feeds, run.logger))
		if err != nil {
			return err
		}
		defer manager.Close(ctx)

		s, err := manager.Attach(ctx, pageURL)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

func acquireLock(ctx context.Context, path string) (func(), error) {
	lock := flock.New(path)
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	ok, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire lock %s: another timeplus command is still running", path)
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire lock %s: another timeplus command is still running", path)
	}
	return func() { _ = lock.Unlock() }, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseTime(arg string) (int64, error) {
	t, err := timecode.Parse(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", arg, err)
	}
	return t, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
