package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/byteslice"
	"github.com/hupe1980/byteslice/internal/conv"
	"github.com/hupe1980/byteslice/persistence"
	"github.com/spf13/viper"
)

type config struct {
	Type        byteslice.ColumnType
	Size        int
	Bits        int
	Selectivity float64
	Repeat      int
	Seed        int64
	Parallelism int
	Verify      bool
	Trace       bool
	MetricsAddr string
	LogLevel    slog.Level
	SnapshotDir string
	S3Bucket    string
	S3Prefix    string
	Compression persistence.Compression
}

func loadConfig(v *viper.Viper) (*config, error) {
	typ, err := byteslice.ParseColumnType(v.GetString("type"))
	if err != nil {
		return nil, err
	}

	size, err := humanize.ParseBytes(v.GetString("size"))
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", v.GetString("size"), err)
	}
	rows, err := conv.Uint64ToInt(size)
	if err != nil || rows == 0 || size > 1<<34 {
		return nil, fmt.Errorf("size %d out of range", size)
	}

	bits := v.GetInt("bits")
	if bits < 1 || bits > byteslice.MaxBitWidth {
		return nil, fmt.Errorf("bits %d out of range [1, %d]", bits, byteslice.MaxBitWidth)
	}

	sel := v.GetFloat64("selectivity")
	if sel < 0 || sel > 1 {
		return nil, fmt.Errorf("selectivity %v out of range [0, 1]", sel)
	}

	repeat := v.GetInt("repeat")
	if repeat < 1 {
		return nil, fmt.Errorf("repeat must be positive, got %d", repeat)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v.GetString("log-level")))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	comp, err := persistence.ParseCompression(v.GetString("compression"))
	if err != nil {
		return nil, err
	}

	return &config{
		Type:        typ,
		Size:        rows,
		Bits:        bits,
		Selectivity: sel,
		Repeat:      repeat,
		Seed:        v.GetInt64("seed"),
		Parallelism: v.GetInt("parallelism"),
		Verify:      v.GetBool("verify"),
		Trace:       v.GetBool("trace"),
		MetricsAddr: v.GetString("metrics-addr"),
		LogLevel:    level,
		SnapshotDir: v.GetString("snapshot-dir"),
		S3Bucket:    v.GetString("s3-bucket"),
		S3Prefix:    v.GetString("s3-prefix"),
		Compression: comp,
	}, nil
}
