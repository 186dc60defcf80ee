package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"griddle/internal/config"
	"griddle/internal/framerange"
	"griddle/internal/logging"
	"griddle/internal/services/hostbridge"
	"griddle/internal/session"
)

// sessionFactory builds the host-backed session; tests substitute a fake.
var sessionFactory = bridgeSession

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

func (c *commandContext) buildLogger(output io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: output,
	})
}

func (c *commandContext) buildSession(logOutput io.Writer) (*session.Session, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.buildLogger(logOutput)
	if err != nil {
		return nil, nil, err
	}
	s, err := sessionFactory(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

func bridgeSession(cfg *config.Config, logger *slog.Logger) (*session.Session, error) {
	opts := []hostbridge.Option{hostbridge.WithLogger(logger)}
	if cfg.Host.TimeoutSeconds > 0 {
		opts = append(opts, hostbridge.WithTimeout(time.Duration(cfg.Host.TimeoutSeconds)*time.Second))
	}
	bridge, err := hostbridge.New(cfg.Host.BridgeCommand, opts...)
	if err != nil {
		return nil, err
	}
	return session.New(session.Collaborators{
		Inventory:    bridge,
		Processor:    bridge,
		Candidates:   hostbridge.CandidateSource{Client: bridge},
		Reader:       framerange.Chain{bridge},
		Window:       bridge,
		WindowSetter: bridge,
		Scanner:      bridge,
		Editor:       bridge,
		Cleaner:      bridge,
	}, logger), nil
}

// runLockPath returns where the single-instance run lock lives. The config
// directory is preferred so concurrent invocations against the same host
// contend on the same file.
func runLockPath() string {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		return filepath.Join(os.TempDir(), "griddle-run.lock")
	}
	return filepath.Join(filepath.Dir(configPath), "run.lock")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// confirm asks the operator a yes/no question on the command's streams.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
