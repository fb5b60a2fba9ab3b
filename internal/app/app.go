package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/cryodl/cryodl/internal/ctxlog"
	"github.com/cryodl/cryodl/internal/deps"
	"github.com/cryodl/cryodl/internal/fasta"
	"github.com/cryodl/cryodl/internal/launch"
	"github.com/cryodl/cryodl/internal/slurm"
)

// envKeyPrefix marks environment variables that override api_keys entries for
// the session. CRYODL_API_KEY_PDB becomes api_keys.pdb.
const envKeyPrefix = "CRYODL_API_KEY_"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	store    *configstore.Store
	registry *deps.Registry
	slurm    *slurm.Builder
	launcher *launch.Launcher
	fasta    *fasta.Builder
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, an opened
// configuration store, and every component wired to that store.
func NewApp(outW, errW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return nil, err
	}

	store, err := configstore.Open(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("opening configuration at %s: %w", cfg.ConfigPath, err)
	}
	logger.Debug("Configuration store opened.", "path", store.Path())

	if n := applyEnvOverrides(store.Document(), os.Environ()); n > 0 {
		logger.Debug("Applied API key overrides from the environment.", "count", n)
	}

	return &App{
		outW:     outW,
		errW:     errW,
		logger:   logger,
		store:    store,
		registry: deps.New(store),
		slurm:    slurm.New(store),
		launcher: launch.New(store, outW, errW),
		fasta:    fasta.New(),
	}, nil
}

// Context returns a background context carrying the application logger.
func (a *App) Context() context.Context {
	return ctxlog.WithLogger(context.Background(), a.logger)
}

func (a *App) Logger() *slog.Logger       { return a.logger }
func (a *App) OutW() io.Writer            { return a.outW }
func (a *App) Store() *configstore.Store  { return a.store }
func (a *App) Registry() *deps.Registry   { return a.registry }
func (a *App) Slurm() *slurm.Builder      { return a.slurm }
func (a *App) Launcher() *launch.Launcher { return a.launcher }
func (a *App) Fasta() *fasta.Builder      { return a.fasta }

// loadEnvFile populates the process environment from a dotenv file. A missing
// default file is not an error; a named file must exist.
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides writes CRYODL_API_KEY_* variables into the api_keys
// section of the live document. Overrides are session-only; they are not
// persisted unless a later command saves the store.
func applyEnvOverrides(doc *configstore.Document, environ []string) int {
	applied := 0
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envKeyPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, envKeyPrefix))
		if name == "" {
			continue
		}
		if err := doc.Set("api_keys."+name, cty.StringVal(value)); err != nil {
			continue
		}
		applied++
	}
	return applied
}
