package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/purelink-labs/purelink/config"
	"github.com/purelink-labs/purelink/oracle"
	"github.com/purelink-labs/purelink/store"
	"github.com/purelink-labs/purelink/verify"
	"github.com/purelink-labs/purelink/workflow"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg        config.Config
	engine     *workflow.Engine
	candidates store.CandidateStore
	logger     *slog.Logger

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// newApp loads configuration and wires the stores, gateway, verifier, and
// engine from the command's persistent flags.
func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, exitError(exitValidation, "%v", err)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	var candidates store.CandidateStore
	var methods store.MethodStore
	methodOpts := store.MethodStoreOptions{TTL: cfg.MethodTTL()}

	switch cfg.Backend {
	case "sqlite":
		db, err := store.NewSQLiteStore(filepath.Join(dataDir, "purelink.db"), logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		candidates = db.Candidates()
		methods = db.Methods(methodOpts)
	default:
		fc, err := store.NewFileCandidateStore(dataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening candidate store: %w", err)
		}
		a.closers = append(a.closers, fc.Close)
		fm, err := store.NewFileMethodStore(dataDir, methodOpts, logger)
		if err != nil {
			return nil, fmt.Errorf("opening method store: %w", err)
		}
		a.closers = append(a.closers, fm.Close)
		candidates = fc
		methods = fm
	}
	a.candidates = candidates

	gateway, err := oracle.NewIrisGateway(cfg.Oracle.Provider, cfg.Oracle.APIKey(), cfg.OracleOptions(), logger)
	if err != nil {
		a.Close()
		return nil, exitError(exitProvider, "%v", err)
	}

	var judge verify.RelevanceJudge
	if cfg.Verify.ContentPass {
		judge = gateway
	}
	verifier := verify.NewVerifier(cfg.VerifyOptions(), nil, judge, logger)

	a.engine = workflow.NewEngine(candidates, methods, gateway, verifier, workflow.Options{
		Model:  cfg.Oracle.Model,
		Logger: logger,
	})
	return a, nil
}
