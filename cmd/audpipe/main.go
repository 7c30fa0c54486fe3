// SPDX-License-Identifier: EPL-2.0

// Command audpipe converts audio files to MP3 and splits large results into
// parts.
//
//	audpipe [-config file] [-category any|ogg|other] [-split] [-out dir] [-jobs n] files...
//	audpipe -analyze files...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audpipe/analyze"
	"github.com/ik5/audpipe/config"
	"github.com/ik5/audpipe/decode"
	"github.com/ik5/audpipe/encoder"
	"github.com/ik5/audpipe/media"
	"github.com/ik5/audpipe/pipeline"
)

const serviceName = "audpipe"

var errJobsFailed = errors.New("one or more jobs failed")

type options struct {
	configPath string
	category   string
	split      bool
	splitSet   bool
	outDir     string
	jobs       int
	timeout    time.Duration
	analyze    bool
	files      []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&o.category, "category", "any", "Conversion category: any, ogg or other")
	fs.BoolVar(&o.split, "split", false, "Split output larger than the ceiling (overrides chunking.split)")
	fs.StringVar(&o.outDir, "out", ".", "Output directory")
	fs.IntVar(&o.jobs, "jobs", runtime.NumCPU(), "Number of files converted at once")
	fs.DurationVar(&o.timeout, "timeout", 0, "Per file time limit, 0 for none")
	fs.BoolVar(&o.analyze, "analyze", false, "Print file metadata instead of converting")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] files...\n", serviceName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "split" {
			o.splitSet = true
		}
	})

	o.files = fs.Args()
	if len(o.files) == 0 {
		fs.Usage()
		return nil, errors.New("no input files")
	}
	if o.jobs < 1 {
		return nil, fmt.Errorf("-jobs must be at least 1, got %d", o.jobs)
	}

	return o, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) && !errors.Is(err, errJobsFailed) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.splitSet {
		cfg.Chunking.Split = opts.split
	}

	category, err := pipeline.ParseCategory(opts.category)
	if err != nil {
		return err
	}

	logger, closeLog := initLogger(cfg.Logging, stderr)
	defer closeLog()

	dec := decode.New(decode.Options{
		FFmpegPath:  cfg.Decoder.FFmpegPath,
		FFprobePath: cfg.Decoder.FFprobePath,
		Logger:      logger,
	})

	if opts.analyze {
		return analyzeFiles(ctx, analyze.New(dec, logger), opts.files, stdout)
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.ListenAddress != "" {
		stopMetrics, err := serveMetrics(ctx, cfg.Metrics.ListenAddress, reg, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer stopMetrics()
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	p := pipeline.New(pipeline.Options{
		Encoder: encoder.Options{
			BitrateKbps: cfg.Encoder.BitrateKbps,
			SampleRate:  cfg.Encoder.SampleRate,
			Mono:        cfg.Encoder.Mono,
		},
		MaxChunkBytes: cfg.Chunking.MaxChunkBytes,
		CeilingBytes:  cfg.Chunking.CeilingBytes,
		Decoder:       dec,
		Metrics:       pipeline.NewMetrics(reg),
		Logger:        logger,
		Observer: func(j pipeline.Job) {
			logger.Debug("progress",
				slog.String("job_id", j.ID),
				slog.String("file", j.OriginalName),
				slog.String("state", string(j.State)),
				slog.Int("progress", j.Progress),
			)
		},
	})

	logger.Info("starting",
		slog.Int("files", len(opts.files)),
		slog.Int("jobs", opts.jobs),
		slog.String("category", category.String()),
		slog.Bool("split", cfg.Chunking.Split),
		slog.String("out", opts.outDir),
	)

	req := pipeline.Request{Category: category, Split: cfg.Chunking.Split}

	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(opts.jobs)

	for _, path := range opts.files {
		g.Go(func() error {
			if err := convertFile(ctx, p, req, path, opts); err != nil {
				failed.Add(1)
				logger.Error("conversion failed", slog.String("file", path), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		logger.Error("finished with failures", slog.Int("failed", int(n)), slog.Int("total", len(opts.files)))
		return errJobsFailed
	}
	logger.Info("finished", slog.Int("total", len(opts.files)))
	return nil
}

func convertFile(ctx context.Context, p *pipeline.Pipeline, req pipeline.Request, path string, opts *options) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	f, err := media.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	job, err := p.Run(ctx, f, req)
	if err != nil {
		return errors.New(job.ErrorDetail)
	}

	return writeResult(opts.outDir, path, job.Result)
}

// writeResult stores the result, or each of its parts, in dir. A pass-through
// result is not written over its own source.
func writeResult(dir, source string, res *pipeline.Result) error {
	if len(res.Parts) == 0 {
		dst := filepath.Join(dir, filepath.Base(res.Name))
		if sameFile(dst, source) {
			return nil
		}
		return os.WriteFile(dst, res.Payload, 0o644)
	}

	for _, c := range res.Parts {
		dst := filepath.Join(dir, filepath.Base(c.Name(res.Name)))
		if err := os.WriteFile(dst, c.Payload, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func sameFile(a, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

func analyzeFiles(ctx context.Context, a *analyze.Analyzer, files []string, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFORMAT\tSIZE\tDURATION\tCONVERT")

	var errs []error
	for _, path := range files {
		f, err := media.Open(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		md, err := a.Analyze(ctx, f)
		_ = f.Close()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		duration := "unknown"
		if md.HasDuration() {
			duration = md.Duration.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%t\n", filepath.Base(path), md.Format, md.Size, duration, md.NeedsConversion)
	}

	if err := tw.Flush(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
