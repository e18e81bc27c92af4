package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"discdb/internal/blob"
	"discdb/internal/config"
	"discdb/internal/contribution"
	"discdb/internal/identity"
	"discdb/internal/logging"
	"discdb/internal/store"
	"discdb/internal/workflow"
)

type commandContext struct {
	configFlag *string
	userFlag   *string
	roleFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	managerOnce sync.Once
	manager     *workflow.Manager
	store       *store.Store
	managerErr  error
}

func newCommandContext(configFlag, userFlag, roleFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		userFlag:   userFlag,
		roleFlag:   roleFlag,
	}
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

// ensureManager opens the catalog and blob store and wires the workflow
// manager. Log output goes to stderr so stdout stays parseable.
func (c *commandContext) ensureManager(stderr io.Writer) (*workflow.Manager, error) {
	c.managerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.managerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, stderr)
		if err != nil {
			c.managerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		st, err := store.Open(cfg)
		if err != nil {
			c.managerErr = err
			return
		}
		blobs, err := blob.New(cfg)
		if err != nil {
			_ = st.Close()
			c.managerErr = err
			return
		}
		mgr, err := workflow.NewManager(cfg, st, blobs, nil, logger)
		if err != nil {
			_ = st.Close()
			c.managerErr = err
			return
		}
		logger.Debug("catalog opened",
			logging.String("database", st.Path()),
			logging.String("blob_backend", cfg.Blob.Backend))
		c.store = st
		c.manager = mgr
	})
	return c.manager, c.managerErr
}

// withManager runs fn with the manager and a context carrying the caller
// chosen by --as and --role.
func (c *commandContext) withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *workflow.Manager) error) error {
	mgr, err := c.ensureManager(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx, err := c.callerContext(cmd.Context())
	if err != nil {
		return err
	}
	return fn(ctx, mgr)
}

func (c *commandContext) callerContext(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var user, role string
	if c.userFlag != nil {
		user = strings.TrimSpace(*c.userFlag)
	}
	if c.roleFlag != nil {
		role = strings.TrimSpace(*c.roleFlag)
	}
	if user == "" && role == "" {
		return ctx, nil
	}
	caller := identity.Caller{UserID: user}
	if role != "" {
		parsed, ok := contribution.ParseRole(role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q (want owner, administrator or system)", role)
		}
		caller.Role = parsed
	}
	if caller.UserID == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		caller.UserID = cfg.Identity.UserID
	}
	if caller.UserID == "" {
		return nil, errors.New("--role needs a caller; pass --as or set identity.user_id")
	}
	return identity.WithCaller(ctx, caller), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
