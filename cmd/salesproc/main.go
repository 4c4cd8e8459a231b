package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/internal/config"
	"github.com/rajpat739407/Sales-Data-Processor/internal/metrics"
	"github.com/rajpat739407/Sales-Data-Processor/internal/metrics/datadog"
	"github.com/rajpat739407/Sales-Data-Processor/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/rajpat739407/Sales-Data-Processor/internal/storage/all"
)

// main is the entry point for the salesproc binary. It loads the pipeline
// config, optionally initializes a metrics backend, and executes the run.
func main() {
	var (
		cfgPath           string
		inputFlg          string
		outFlg            string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path (optional; flags can drive a default run)")
	flag.StringVar(&inputFlg, "input", "", "input file path or http(s) URL (overrides config)")
	flag.StringVar(&outFlg, "out", "", "output directory for the cleaned CSV and report (overrides config)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (prometheus, datadog, none; overrides config)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config and env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p := defaultPipeline()
	if cfgPath != "" {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			f.Close()
			fatalf("decode config: %v", err)
		}
		f.Close()
	}
	applyOverrides(&p, inputFlg, outFlg)

	// Validate pipeline config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → config → env → none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = p.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "prometheus", "pushgateway":
		// Decide Pushgateway URL: flag → config → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = p.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(p.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job=%v", gwURL, backendName, p.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		ns := p.Metrics.Namespace
		if ns == "" {
			ns = "salesproc."
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.StatsdAddr,
			Namespace:  ns,
			GlobalTags: []string{"service:salesproc"},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v, backend=%v, job=%v", p.Metrics.StatsdAddr, backendName, p.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s input=%s format=%s storage=%s out=%s",
			p.Job, p.Input.Kind, p.Input.Format, p.Storage.Kind, p.Output.Dir)
	}

	if err := run(ctx, p, *verbose); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// defaultPipeline returns the pipeline used when no config file is given. It
// mirrors the classic single-file run: read sales_data.csv next to the
// binary, write the cleaned CSV and report to the current directory.
func defaultPipeline() config.Pipeline {
	return config.Pipeline{
		Job: "salesproc",
		Input: config.Input{
			Kind: "file",
			File: config.InputFile{Path: "sales_data.csv"},
		},
	}
}

// applyOverrides folds the -input and -out flags into the pipeline. An input
// starting with http:// or https:// selects the http source kind.
func applyOverrides(p *config.Pipeline, input, out string) {
	if input != "" {
		if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
			p.Input.Kind = "http"
			p.Input.HTTP.URL = input
			p.Input.File.Path = ""
		} else {
			p.Input.Kind = "file"
			p.Input.File.Path = input
			p.Input.HTTP.URL = ""
		}
	}
	if out != "" {
		p.Output.Dir = out
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
