package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/config"
	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/geo"
	"github.com/zahid-01/Running-Tracker/internal/logging"
	"github.com/zahid-01/Running-Tracker/internal/snapshot"
)

type storeOpener func(context.Context, config.Config, *zap.Logger) (snapshot.Store, func(), error)

type cli struct {
	out     io.Writer
	open    storeOpener
	backend string
	key     string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
	repo   *snapshot.Repository
	close  func()
}

func newRootCmd(out io.Writer, open storeOpener) *cobra.Command {
	c := &cli{out: out, open: open}

	root := &cobra.Command{
		Use:           "snapshotctl",
		Short:         "Inspect the persisted workout snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "Snapshot backend (memory, file, redis, postgres); defaults to SNAPSHOT_BACKEND")
	root.PersistentFlags().StringVar(&c.key, "key", "", "Snapshot key; defaults to SNAPSHOT_KEY")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Operation timeout")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored workouts",
		Args:  cobra.NoArgs,
		RunE: c.session(func(ctx context.Context) error {
			workouts, err := c.load(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, workouts)
			}
			return writeTable(c.out, workouts)
		}),
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot encoding")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: c.session(func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			if err := c.repo.Clear(ctx); err != nil {
				return fmt.Errorf("clear snapshot: %w", err)
			}
			c.logger.Info("snapshot cleared", zap.String("key", c.repo.Key()))
			_, err := fmt.Fprintf(c.out, "cleared %s\n", c.repo.Key())
			return err
		}),
	}

	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Print the route joining the stored workouts",
		Args:  cobra.NoArgs,
		RunE: c.session(func(ctx context.Context) error {
			workouts, err := c.load(ctx)
			if err != nil {
				return err
			}
			summary := geo.Route(workouts)
			_, err = fmt.Fprintf(c.out, "%d points, %.2f km\n", len(summary.Points), summary.DistanceKm)
			return err
		}),
	}

	root.AddCommand(showCmd, resetCmd, routeCmd)
	return root
}

// session opens the store around fn and releases it whether or not fn fails.
func (c *cli) session(fn func(ctx context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer c.teardown()
		if err := c.setup(ctx); err != nil {
			return err
		}
		return fn(ctx)
	}
}

func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}
	if backend := config.NormalizeBackend(c.backend); backend != "" {
		cfg.SnapshotBackend = backend
	}
	if c.key != "" {
		cfg.SnapshotKey = c.key
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	store, closeStore, err := c.open(openCtx, cfg, c.logger)
	if err != nil {
		return err
	}
	c.close = closeStore
	c.repo = snapshot.NewRepository(store, cfg.SnapshotKey, c.logger.Named("snapshot"))
	return nil
}

func (c *cli) teardown() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) load(ctx context.Context) ([]domain.Workout, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	workouts, err := c.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return workouts, nil
}

func writeJSON(out io.Writer, workouts []domain.Workout) error {
	raw, err := snapshot.Encode(workouts)
	if err != nil {
		return err
	}
	var pretty interface{}
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

func writeTable(out io.Writer, workouts []domain.Workout) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION\tDISTANCE\tDURATION\tMETRIC\tCLICKS")
	for _, w := range workouts {
		m := w.Metric()
		fmt.Fprintf(tw, "%s\t%s\t%g km\t%g min\t%d %s\t%d\n",
			w.ID, w.Description, w.Distance, w.Duration, m.Value, m.Unit, w.InteractionCount)
	}
	return tw.Flush()
}
