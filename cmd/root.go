package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"geotagger/internal"

	"github.com/spf13/cobra"
)

// Version is overridden at build time or from the embedded VERSION file.
var Version = "dev"

var (
	windowFlag   int
	writerFlag   string
	dryRunFlag   bool
	manifestFlag string
	logFileFlag  string
	verboseFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "geotagger [folder]",
	Short: "Copy GPS locations to photos taken nearby in time",
	Long: `Scan a folder of JPEG photos. Photos without GPS tags receive the location
of the geotagged photo closest in time, within the match window, and every
photo's file times are set to its capture time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		if err := internal.ValidateRoot(folder); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		applyFlags(cmd, conf)
		if err := conf.Validate(); err != nil {
			return err
		}

		logger, err := internal.NewLogger(conf.LogFile, verboseFlag)
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res, err := propagate(ctx, folder, conf, dryRunFlag, logger)
		if res != nil {
			printSummary(cmd, res)
		}
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion copies Version onto the root command.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	rootCmd.Flags().IntVar(&windowFlag, "window", int(internal.DefaultMatchWindow/time.Minute), "Match window in minutes")
	rootCmd.Flags().StringVar(&writerFlag, "writer", internal.WriterNative, "Geotag writer: native, exiftool")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would change without touching files")
	rootCmd.Flags().StringVar(&manifestFlag, "manifest", "", "Write a JSONL event log of the run to this path")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Also write JSON logs to this path")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log every photo")
	ApplyVersion()
}

// applyFlags lets explicitly set flags win over config and environment.
func applyFlags(cmd *cobra.Command, conf *internal.Config) {
	flags := cmd.Flags()
	if flags.Changed("window") {
		conf.MatchWindow = windowFlag
	}
	if flags.Changed("writer") {
		conf.Writer = writerFlag
	}
	if flags.Changed("manifest") {
		conf.Manifest = manifestFlag
	}
	if flags.Changed("log-file") {
		conf.LogFile = logFileFlag
	}
}

func propagate(ctx context.Context, folder string, conf *internal.Config, dryRun bool, logger *internal.Logger) (*internal.RunResult, error) {
	files, err := internal.ScanFiles(folder)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("root", folder).Int("files", len(files)).Msg("Starting to process files")

	writer, closeWriter, err := newWriter(conf, dryRun, logger)
	if err != nil {
		return nil, err
	}
	defer closeWriter()

	p := internal.NewPropagator(writer, conf.Window(), logger)
	if dryRun {
		p.SyncTimes = internal.DryRunSyncTimes(logger)
	}

	if conf.Manifest != "" {
		m, err := internal.NewRunManifest(conf.Manifest, folder)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		p.Manifest = m
	}

	res, err := p.Run(ctx, files)
	if err != nil {
		return res, fmt.Errorf("run interrupted: %w", err)
	}

	logger.Info().
		Int("assigned", res.Assigned).
		Int("reassigned", res.Reassigned).
		Msg("Finished processing")
	return res, nil
}

func newWriter(conf *internal.Config, dryRun bool, logger *internal.Logger) (internal.GeotagWriter, func(), error) {
	if dryRun {
		return internal.DryRunWriter{Log: logger}, func() {}, nil
	}

	switch conf.Writer {
	case internal.WriterExifTool:
		w, err := internal.NewExifToolWriter(conf.ExifToolPath, conf.TempSuffix)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { w.Close() }, nil
	default:
		return internal.NewNativeWriter(conf.TempSuffix), func() {}, nil
	}
}

func printSummary(cmd *cobra.Command, res *internal.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d files: %d geotagged, %d untagged, %d skipped\n",
		res.Scanned, len(res.Tagged), len(res.Untagged), len(res.Skipped))
	if dryRunFlag {
		fmt.Fprintln(out, "Dry run mode: no files were changed")
	}
	fmt.Fprintf(out, "Processed untagged image files with geotags: %d\n", res.Assigned)
	fmt.Fprintf(out, "Reassigned dates for files: %d\n", res.Reassigned)
	if res.Errors.Total > 0 {
		fmt.Fprint(out, res.Errors.GenerateReport())
	}
}
