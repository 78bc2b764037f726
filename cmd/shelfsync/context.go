package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/handiism/shelfsync/internal/abs"
	"github.com/handiism/shelfsync/internal/config"
	"github.com/handiism/shelfsync/internal/logging"
	"github.com/handiism/shelfsync/internal/match"
	"github.com/handiism/shelfsync/internal/reconcile"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	settings   *config.Settings
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Settings, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		settings, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			settings.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.settings = settings
		c.configPath = resolved
	})
	return c.settings, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		settings, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromSettings(settings)
	})
	return c.logger, c.loggerErr
}

// client creates the API client of a configured server.
func (c *commandContext) client(name string) (*abs.Client, error) {
	settings, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return settings.NewClient(name, logger, abs.WithUserAgent("shelfsync/"+version))
}

// service builds the reconcile service from the configuration. extra options
// are applied last.
func (c *commandContext) service(extra ...reconcile.Option) (*reconcile.Service, error) {
	settings, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := []reconcile.Option{
		reconcile.WithMatcher(match.New(settings.Normalizer())),
		reconcile.WithDownloadOptions(settings.DownloadOptions()),
		reconcile.WithLogger(logger),
	}
	return reconcile.NewService(append(opts, extra...)...), nil
}
