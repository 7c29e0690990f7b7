package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/config"
	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
	"github.com/CWuestefeld/plex-rating-utils/internal/plexlib"
	"github.com/CWuestefeld/plex-rating-utils/internal/statestore"
)

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
		c.config = cfg
	})
	return c.config, c.configErr
}

// runnerOverrides carries per-command flag adjustments on top of the
// configured engine parameters.
type runnerOverrides struct {
	dryRun             bool
	allowStampMismatch bool
}

// withRunner builds the full stack for one command invocation: config,
// logger, state store, Plex client bound to the configured library,
// and the engine runner. The store lock is released when fn returns.
//
// The first SIGINT requests a graceful stop at the next commit
// boundary; the second cancels outright.
func (c *commandContext) withRunner(ov runnerOverrides, fn func(ctx context.Context, r *engine.Runner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := statestore.Open(cfg.State.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	client := plexlib.NewClient(cfg.Plex.URL, cfg.Plex.Token, &http.Client{Timeout: 2 * time.Minute})

	params := engine.ParamsFromConfig(cfg)
	if ov.dryRun {
		params.DryRun = true
	}
	params.AllowStampMismatch = ov.allowStampMismatch

	runner := engine.New(store, client, client, params, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
		case <-ctx.Done():
			return
		}
		fmt.Fprintln(os.Stderr, "stopping at next commit boundary (interrupt again to abort)")
		runner.RequestStop()
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := client.Connect(ctx, cfg.Plex.Library); err != nil {
		return fmt.Errorf("connect to plex: %w", err)
	}

	return fn(ctx, runner)
}
