// Command orcrow inspects and dumps flat Parquet files through the batch
// decoder.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rawbytedev/orcrow"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "orcrow:", err)
		os.Exit(1)
	}
}

// env is what every command runs with once flags and config are merged.
type env struct {
	cfg     Config
	log     *logrus.Entry
	metrics *orcrow.Metrics
	stdout  io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	app := kingpin.New("orcrow", "Reads stripe-columnar files batch by batch.")
	app.HelpFlag.Short('h')
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.Terminate(nil)

	configPath := app.Flag("config", "YAML config file").String()
	logLevel := app.Flag("log-level", "panic, fatal, error, warn, info, debug or trace").String()

	schema := app.Command("schema", "print the type string, row count and stripe count")
	schemaFile := schema.Arg("file", "parquet file").Required().ExistingFile()

	dump := app.Command("dump", "write rows as JSON lines")
	dumpFile := dump.Arg("file", "parquet file").Required().ExistingFile()
	columns := dump.Flag("columns", "comma separated top-level columns").String()
	batchSize := dump.Flag("batch-size", "rows per batch").Int()
	pretty := dump.Flag("pretty", "indent every row").Bool()
	compression := dump.Flag("compression", "none or zstd").String()
	output := dump.Flag("output", "output path, stdout when empty").Short('o').String()

	stat := app.Command("stat", "print row and null counts per column")
	statFile := stat.Arg("file", "parquet file").Required().ExistingFile()
	statBatchSize := stat.Flag("batch-size", "rows per batch").Int()

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		if cfg, err = LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *columns != "" {
		cfg.Columns = strings.Split(*columns, ",")
	}
	if *batchSize != 0 {
		cfg.BatchSize = *batchSize
	}
	if *statBatchSize != 0 {
		cfg.BatchSize = *statBatchSize
	}
	if *pretty {
		cfg.Pretty = true
	}
	if *compression != "" {
		cfg.Compression = *compression
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e := env{cfg: cfg, log: cfg.Logger(stderr).WithField("component", "orcrow"), stdout: stdout}
	reg := prometheus.NewRegistry()
	e.metrics = orcrow.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr, reg, e.log)
	}

	switch cmd {
	case schema.FullCommand():
		return e.schema(*schemaFile)
	case dump.FullCommand():
		return e.dump(*dumpFile, *output)
	case stat.FullCommand():
		return e.stat(*statFile)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.WithField("addr", addr).Info("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
}
