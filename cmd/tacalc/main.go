// cmd/tacalc computes technical indicators (Daily Log Return, On-balance
// Volume, Mass Index) over one instrument's stored bars and writes the
// series to the configured sinks.
//
// Usage:
//
//	go run ./cmd/tacalc -instrument=AAPL -source=csv -in=data/aapl.csv \
//	    -indicators=mi:ema_period=9:sum_period=25,obv,dlr:price_key=close -sinks=stdout,parquet
//
//	go run ./cmd/tacalc -import -instrument=AAPL -source=csv -in=data/aapl.csv
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"technical-analysis/config"
	"technical-analysis/internal/logger"
	"technical-analysis/internal/taengine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// Flags
	cfgPath := flag.String("config", "tacalc.yaml", "Path to YAML config (optional)")
	source := flag.String("source", "", "Bar source: sqlite, csv or parquet")
	in := flag.String("in", "", "Input file for csv/parquet sources")
	instrument := flag.String("instrument", "", "Instrument to compute")
	from := flag.String("from", "", "First bar to read (RFC3339 or 2006-01-02)")
	to := flag.String("to", "", "Last bar to read (RFC3339 or 2006-01-02)")
	indicators := flag.String("indicators", "", "Indicator specs: SYMBOL[:key=value...],... (default: dlr,obv,mi)")
	sinks := flag.String("sinks", "", "Comma-separated sinks: stdout, sqlite, redis, csv, parquet")
	out := flag.String("out", "", "Base path for csv/parquet result files")
	db := flag.String("db", "", "Path to SQLite database")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	importOnly := flag.Bool("import", false, "Copy bars from the csv/parquet source into SQLite and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[tacalc] config: %v", err)
	}

	// Flags override file and env
	setIf(&cfg.Source.Kind, *source)
	setIf(&cfg.Source.Path, *in)
	setIf(&cfg.Source.From, *from)
	setIf(&cfg.Source.To, *to)
	setIf(&cfg.Instrument, *instrument)
	setIf(&cfg.OutPath, *out)
	setIf(&cfg.SQLitePath, *db)
	setIf(&cfg.LogLevel, *logLevel)
	if *indicators != "" {
		specs, err := config.ParseIndicatorSpecs(*indicators)
		if err != nil {
			log.Fatalf("[tacalc] -indicators: %v", err)
		}
		cfg.Indicators = specs
	}
	if *sinks != "" {
		cfg.Sinks = config.ParseList(*sinks)
	}

	slogger := logger.Init("tacalc", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if *importOnly {
		n, err := taengine.ImportBars(ctx, cfg)
		if err != nil {
			log.Fatalf("[tacalc] import failed: %v", err)
		}
		log.Printf("[tacalc] imported %d bars", n)
		return
	}

	svc, err := taengine.New(cfg, slogger, os.Stdout)
	if err != nil {
		log.Fatalf("[tacalc] init failed: %v", err)
	}

	runErr := svc.Run(ctx)
	if err := svc.Close(); err != nil {
		log.Printf("[tacalc] close: %v", err)
	}
	if runErr != nil {
		log.Printf("[tacalc] run finished with errors: %v", runErr)
		os.Exit(1)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
