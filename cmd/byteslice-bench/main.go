// Command byteslice-bench loads random codes into a column and times a
// less-than scan at a chosen selectivity.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BYTESLICE"

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "byteslice-bench",
		Short:        "Benchmark byte-sliced column scans",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile := v.GetString("config")
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("config", "", "config file (yaml, toml or json)")
	f.StringP("type", "t", "bs", "column type: na, bs or bsl")
	f.StringP("size", "s", "16Mi", "number of rows, accepts unit suffixes like 16Mi")
	f.IntP("bits", "b", 12, "code bit width (1..32)")
	f.Float64P("selectivity", "y", 0.1, "fraction of rows matching the scan")
	f.IntP("repeat", "r", 3, "number of timed scans")
	f.Int64("seed", 0, "random seed, 0 picks one from the clock")
	f.Int("parallelism", 0, "block scan fan-out, 0 uses GOMAXPROCS")
	f.Bool("verify", false, "cross-check the result against a naive column")
	f.Bool("trace", false, "print OpenTelemetry spans to stdout")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2112")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("snapshot-dir", "", "save a snapshot of the column under this directory")
	f.String("s3-bucket", "", "save a snapshot of the column to this S3 bucket")
	f.String("s3-prefix", "byteslice-bench", "key prefix inside the S3 bucket")
	f.String("compression", "lz4", "snapshot compression: none, lz4 or zstd")

	_ = v.BindPFlags(f)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
