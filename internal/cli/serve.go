package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/server"
	"github.com/matzehuels/jsonflow/pkg/session"
)

// cleanupInterval is how often expired sessions are swept.
const cleanupInterval = 10 * time.Minute

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	store   string
	noCache bool
}

// serveCommand runs the HTTP editing API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session-based graph editing API over HTTP",
		Long: `Serve starts an HTTP server that keeps one graph per session. Clients create
a session from a JSON document, edit its graph and read back the JSON value.

Sessions are kept in memory by default; set server.store in the config file
(or --store) to file, sqlite, redis or mongo to keep them across restarts.`,
		Example: `  jsonflow serve --addr :9000
  curl -X POST --data-binary @data.json localhost:9000/sessions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.store, "store", "", "session store: memory, file, sqlite, redis or mongo")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg := c.Config.Server
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stopCleanup := session.StartCleanup(store, cleanupInterval, func(err error) {
		c.Logger.Warn("session cleanup failed", "err", err)
	})
	defer stopCleanup()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(store, runner, c.Logger,
		server.WithSessionTTL(cfg.SessionTTL.Duration),
		server.WithLayouts(c.Config.Layout.Build, c.Config.Layout.Reorganize),
	)

	printInfo("Serving on %s (%s sessions)", StyleHighlight.Render(cfg.Addr), cfg.Store)
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// openStore opens the session store named by cfg.Store.
func (c *CLI) openStore(ctx context.Context, cfg ServerConfig) (session.Store, error) {
	switch cfg.Store {
	case "", backendMemory:
		return session.NewMemoryStore(cfg.MaxSessions), nil
	case backendFile:
		return session.NewFileStore(cfg.SessionDir)
	case backendRedis:
		return session.NewRedisStore(ctx, c.Config.Redis)
	case backendMongo:
		return session.NewMongoStore(ctx, c.Config.Mongo)
	case backendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			p, err := configPath()
			if err != nil {
				return nil, fmt.Errorf("sqlite path: %w", err)
			}
			path = filepath.Join(filepath.Dir(p), "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
		return session.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown session store %q (want memory, file, sqlite, redis or mongo)", cfg.Store)
	}
}
