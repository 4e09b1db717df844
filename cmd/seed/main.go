// Command seed loads a YAML fight dataset into the sqlite database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fight-timeline/internal/config"
	"fight-timeline/internal/database"
	"fight-timeline/internal/dataset"
	"fight-timeline/internal/logger"
	"fight-timeline/internal/repository"

	"github.com/spf13/cobra"
)

type options struct {
	dbPath string
	sample bool
	dryRun bool
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "seed [dataset.yaml]",
		Short: "Load a fight dataset into the database",
		Long: `Load promotions, events, fighters and fights from a YAML dataset.
Records are upserted by id, so loading the same file twice is safe.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Path to the sqlite database (default DB_PATH)")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "Load the bundled demo dataset")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the dataset without writing it")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	if opts.sample == (len(args) == 1) {
		return errors.New("pass either a dataset file or --sample")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	log := logger.New(cfg)

	var ds *dataset.Dataset
	if opts.sample {
		ds, err = dataset.Sample()
	} else {
		ds, err = dataset.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		if err := ds.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(out, "dataset is valid: %d events, %d fighters, %d fights\n", len(ds.Events), len(ds.Fighters), len(ds.Fights))
		return nil
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	loader := dataset.NewLoader(
		repository.NewPromotionRepository(db, log),
		repository.NewEventRepository(db, log),
		repository.NewFighterRepository(db, log),
		repository.NewFightRepository(db, log),
		log,
	)
	stats, err := loader.Load(cmd.Context(), ds)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "loaded %d promotions, %d events, %d fighters, %d fights into %s\n",
		stats.Promotions, stats.Events, stats.Fighters, stats.Fights, cfg.DBPath)
	return nil
}

func main() {
	if err := newCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}
