package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"pencilsketch/core"
	"pencilsketch/db"
)

func runHistory(args []string, stdout, stderr io.Writer) int {
	cfg, ok := loadConfig(stderr)
	if !ok {
		return core.ExitCodeError
	}

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("n", 20, "number of renders to show")
	prune := fs.Bool("prune", false, "delete renders older than HISTORY_RETENTION_DAYS first")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		return core.ExitCodeError
	}

	if cfg.HistoryDB == "" {
		printConfigError(stderr, core.ErrMissingConfig("HISTORY_DB"))
		return core.ExitCodeError
	}

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}
	defer database.Close()

	ctx := context.Background()
	if *prune {
		result, err := database.Cleanup(ctx, cfg.HistoryRetentionDays)
		if err != nil {
			fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
			return core.ExitCodeError
		}
		fmt.Fprintf(stdout, "Pruned %d renders older than %d days\n\n", result.RendersDeleted, cfg.HistoryRetentionDays)
	}

	repo := db.NewRepository(database, nil)
	records, err := repo.RecentRenders(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}
	stats, err := repo.Stats(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}
	stages, err := repo.StageAverages(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}

	printHistory(stdout, records, stats, stages)
	return core.ExitCodeSuccess
}

func runPresets(args []string, stdout, stderr io.Writer) int {
	cfg, ok := loadConfig(stderr)
	if !ok {
		return core.ExitCodeError
	}

	headerColor.Fprintln(stdout, "Presets")
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  name\tgaussian\tsigma\tbilateral\tsigma_c\tsigma_s\tgamma\thue\tsaturation")
	for _, name := range cfg.Presets.Names() {
		p := cfg.Presets[name]
		marker := " "
		if name == cfg.PresetName {
			marker = successColor.Sprint("*")
		}
		fmt.Fprintf(tw, "%s %s\t%d\t%g\t%d\t%g\t%g\t%g\t%g\t%g\n",
			marker, name, p.GaussianSize, p.Sigma, p.BilateralSize, p.SigmaC, p.SigmaS, p.Gamma, p.Hue, p.Saturation)
	}
	tw.Flush()
	return core.ExitCodeSuccess
}
