package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/sepia/internal/config"
	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// flags holds the values bound to the root command's flags.
type flags struct {
	interval        int
	verbose         bool
	dir             string
	motionTriggered bool
	sensitivity     int
	hash            string
	logFile         string
	monitorAddr     string
	grpcAddr        string
	configFile      string
}

// RootCmd is the root command for sepia
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "sepia",
		Short: "Record every display at a fixed interval, keeping only frames that changed",
		Long: `sepia captures all attached displays once per interval and writes each
capture to disk as a PNG.

With --motion-triggered, every capture is compared against the last image kept
for its display using a perceptual hash. Captures closer than --sensitivity to
that image are deleted; the rest replace it.

Press q (then Enter, in a line-buffered terminal) or Ctrl+C to stop.`,
		Example: `  # Capture every second into the current directory
  sepia

  # Capture every 5 seconds, keeping only changed frames
  sepia -t 5 -m -s 10 -d ./captures

  # Serve status and a decision stream while recording
  sepia -m --monitor-addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return runRecord(cmd.Context(), cfg, defaultEnvironment())
		},
	}

	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	defaults := config.Load()
	fl := cmd.Flags()
	fl.IntVarP(&f.interval, "time", "t", defaults.IntervalSeconds, "seconds between captures")
	fl.BoolVarP(&f.verbose, "verbose", "v", defaults.Verbose, "enable debug logging")
	fl.StringVarP(&f.dir, "dir", "d", defaults.Dir, "directory to write captures to (default: current directory)")
	fl.BoolVarP(&f.motionTriggered, "motion-triggered", "m", defaults.MotionTriggered, "discard captures that barely differ from the last kept one")
	fl.IntVarP(&f.sensitivity, "sensitivity", "s", defaults.Sensitivity, "minimum hash distance for a capture to count as changed (requires --motion-triggered)")
	fl.StringVar(&f.hash, "hash", defaults.HashKind, "perceptual hash: phash, dhash or ahash")
	fl.StringVar(&f.logFile, "log-file", defaults.LogFile, "log file path (empty disables file logging)")
	fl.StringVar(&f.monitorAddr, "monitor-addr", defaults.MonitorAddr, "serve HTTP status and WebSocket decisions on this address")
	fl.StringVar(&f.grpcAddr, "grpc-addr", defaults.GRPCAddr, "serve gRPC health on this address")
	fl.StringVar(&f.configFile, "config", "", "YAML config file")
}

// Execute runs the root command
func Execute() error {
	return RootCmd.ExecuteContext(context.Background())
}

// resolveConfig layers environment defaults, the config file and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Load()
	if f.configFile != "" {
		if err := cfg.MergeFile(f.configFile); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("time") {
		cfg.IntervalSeconds = f.interval
	}
	if fl.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fl.Changed("dir") {
		cfg.Dir = f.dir
	}
	if fl.Changed("motion-triggered") {
		cfg.MotionTriggered = f.motionTriggered
	}
	if fl.Changed("sensitivity") {
		if !cfg.MotionTriggered {
			return nil, apperr.New(apperr.CodeConfig, "--sensitivity requires --motion-triggered")
		}
		cfg.Sensitivity = f.sensitivity
	}
	if fl.Changed("hash") {
		cfg.HashKind = f.hash
	}
	if fl.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if fl.Changed("monitor-addr") {
		cfg.MonitorAddr = f.monitorAddr
	}
	if fl.Changed("grpc-addr") {
		cfg.GRPCAddr = f.grpcAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
