// Package cli implements the dkp command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/okian/dkp/internal/adapters/ingest"
	"github.com/okian/dkp/internal/adapters/repository"
	service "github.com/okian/dkp/internal/app"
	"github.com/okian/dkp/internal/config"
	"github.com/okian/dkp/internal/render"
	"github.com/okian/dkp/pkg/logger"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// rootOptions holds the persistent flags.
type rootOptions struct {
	storage string
	dbPath  string
	asJSON  bool
	color   bool
	verbose bool
}

// NewRootCommand builds the dkp command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "dkp",
		Short: "Score kingdom governors from two scanner exports",
		Long: `dkp diffs a start and an end export of a kingdom, scores every governor
with weighted T4/T5 kills and deaths, and compares the result against a
target derived from starting power.

Profiles are stored in SQLite by default; set DKP_STORAGE=memory or use
--storage to change that.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.storage, "storage", "", "profile store: sqlite or memory (default from config)")
	pf.StringVar(&o.dbPath, "db", "", "SQLite database file (default from config)")
	pf.BoolVar(&o.asJSON, "json", false, "print JSON instead of tables")
	pf.BoolVar(&o.color, "color", false, "highlight best and worst values")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newComputeCommand(o),
		newProfileCommand(o),
		newCompareCommand(o),
		newGenerateCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dkp %s\n", Version)
		},
	}
}

// session is a started service plus the output helpers of one command.
type session struct {
	cfg    *config.Config
	svc    *service.Service
	out    io.Writer
	render *render.Renderer
	asJSON bool
}

// open loads configuration, applies flag overrides and starts the service.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if o.storage != "" {
		cfg.Storage = o.storage
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithPretty(true)); err != nil {
		return nil, err
	}
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.Storage, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage, err)
	}

	svc := service.New(
		service.WithStore(store, cfg.Storage),
		service.WithParser(ingest.NewParser(ingest.WithColumns(cfg.Columns))),
		service.WithDefaultSettings(cfg.Scoring()),
		service.WithFighterMinPower(cfg.FighterMinPower),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &session{
		cfg:    cfg,
		svc:    svc,
		out:    out,
		render: render.New(out, render.WithColor(o.color)),
		asJSON: o.asJSON,
	}, nil
}

func (s *session) close() {
	s.svc.Stop()
}

// emit prints v as indented JSON.
func (s *session) emit(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, string(b))
	return err
}

// withSession runs fn against a freshly opened session.
func (o *rootOptions) withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, s, args)
	}
}
