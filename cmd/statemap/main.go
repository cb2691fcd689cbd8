package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"statemap/internal/classify"
	"statemap/internal/config"
	"statemap/internal/logs"
	"statemap/internal/mapgen"
	"statemap/internal/palette"
	"statemap/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statemap MODE PROVINCES DEFINITION STATES OUTPUT",
		Short: "Render HOI4 state maps from provinces.bmp, definition.csv and state files",
		Long: `statemap repaints a province bitmap so that every state gets one colour
chosen by MODE, labels each state with its id and writes a PNG.
Numeric modes also write OUTPUT_legend.png.

Run "statemap modes" for the list of modes.`,
		Version:       version.Version,
		Args:          cobra.ExactArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMap,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(newModesCmd(), newChangesCmd())
	return cmd
}

func runMap(cmd *cobra.Command, args []string) error {
	// a bad mode fails before any file is read
	mode, err := classify.ParseMode(args[0])
	if err != nil {
		return err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger := logs.New("statemap", cfg.Log)
	defer func() { _ = logger.Sync() }()

	opts := cfg.Options()
	opts.Mode = mode
	opts.Provinces = args[1]
	opts.Definition = args[2]
	opts.States = args[3]
	opts.Output = args[4]

	report, err := mapgen.Run(cmd.Context(), opts, logger)
	if err != nil {
		logger.Debug("run failed", zap.Error(err))
		return err
	}

	logger.Info("map generated",
		zap.String("mode", report.Mode.Name),
		zap.Int("states", report.StatesLoaded),
		zap.Int("skipped", report.StatesSkipped),
		zap.Int("colors_generated", report.ColorsGenerated),
		zap.Int("missing_provinces", report.MissingProvinces),
		zap.Strings("unmapped_owners", report.UnmappedOwners),
		zap.Duration("elapsed", report.Elapsed),
	)
	for _, path := range report.Outputs {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List display modes and colour ramps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tNAME\tSHOWS")
			for _, info := range classify.Modes() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", int(info.Mode), info.Name, info.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nramps: %v (default %s)\n", palette.RampNames(), palette.DefaultRamp)
			return nil
		},
	}
}

func newChangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changes",
		Short: "Show the changes of this release",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statemap %s\n", version.Version)
			for _, line := range version.Changes {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", line)
			}
		},
	}
}
