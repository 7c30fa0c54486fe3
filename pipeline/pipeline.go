// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audpipe/analyze"
	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/chunk"
	"github.com/ik5/audpipe/decode"
	"github.com/ik5/audpipe/encoder"
	"github.com/ik5/audpipe/media"
)

type Options struct {
	Encoder encoder.Options

	// MaxChunkBytes is the size of each part, DefaultMaxChunkBytes when 0.
	MaxChunkBytes int
	// CeilingBytes is the largest output left in one piece,
	// DefaultCeilingBytes when 0.
	CeilingBytes int

	// Decoder defaults to decode.New with no ffmpeg overrides.
	Decoder *decode.Decoder
	// Metrics defaults to an unregistered set.
	Metrics  *Metrics
	Observer Observer
	Logger   *slog.Logger
}

// Pipeline runs conversion jobs. It holds no per-job state and can be used
// from several goroutines at once.
type Pipeline struct {
	opts     Options
	decoder  *decode.Decoder
	metrics  *Metrics
	observer Observer
	logger   *slog.Logger
}

func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxChunkBytes <= 0 {
		opts.MaxChunkBytes = chunk.DefaultMaxChunkBytes
	}
	if opts.CeilingBytes <= 0 {
		opts.CeilingBytes = chunk.DefaultCeilingBytes
	}
	if opts.Decoder == nil {
		opts.Decoder = decode.New(decode.Options{Logger: opts.Logger})
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Encoder.Logger == nil {
		opts.Encoder.Logger = opts.Logger
	}

	observer := opts.Observer
	if observer == nil {
		observer = func(Job) {}
	}

	return &Pipeline{
		opts:     opts,
		decoder:  opts.Decoder,
		metrics:  opts.Metrics,
		observer: observer,
		logger:   opts.Logger,
	}
}

// run is the state of one job while it executes.
type run struct {
	p      *Pipeline
	job    Job
	logger *slog.Logger
}

func (r *run) set(state State, progress int) {
	r.job.State = state
	r.job.Progress = progress
	r.logger.Debug("job state", slog.String("state", string(state)), slog.Int("progress", progress))
	r.p.observer(r.snapshot())
}

// snapshot copies the job so observers cannot reach into the run.
func (r *run) snapshot() Job {
	j := r.job
	if j.Result != nil {
		res := *j.Result
		j.Result = &res
	}
	return j
}

func (r *run) fail(err error) (Job, error) {
	r.job.Err = err
	r.job.ErrorDetail = fmt.Sprintf("%s: %v", r.job.OriginalName, err)
	r.job.FinishedAt = time.Now()
	r.p.metrics.JobsFailed.WithLabelValues(failureReason(err)).Inc()
	r.logger.Warn("job failed", slog.String("error", err.Error()))
	r.set(StateError, r.job.Progress)
	return r.snapshot(), err
}

func (r *run) complete(res *Result, outcome string) (Job, error) {
	r.job.Result = res
	r.job.FinishedAt = time.Now()
	r.p.metrics.JobsCompleted.WithLabelValues(outcome).Inc()
	r.logger.Info("job completed",
		slog.String("outcome", outcome),
		slog.String("result", res.Name),
		slog.Int("bytes", len(res.Payload)),
		slog.Int("parts", len(res.Parts)),
		slog.Duration("took", r.job.FinishedAt.Sub(r.job.StartedAt)),
	)
	r.set(StateCompleted, ProgressCompleted)
	return r.snapshot(), nil
}

// stage times fn under the stage label.
func (r *run) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return err
}

// Run converts f according to req. The returned Job is final: completed with
// Result set, or error with Err and ErrorDetail set, in which case the error
// is also returned.
func (p *Pipeline) Run(ctx context.Context, f media.File, req Request) (Job, error) {
	id := uuid.NewString()
	r := &run{
		p: p,
		job: Job{
			ID:           id,
			OriginalName: f.Name(),
			Category:     req.Category,
			State:        StatePending,
			Progress:     ProgressPending,
			Metadata:     analyze.Metadata{Duration: analyze.DurationUnknown},
			StartedAt:    time.Now(),
		},
		logger: p.logger.With(slog.String("job_id", id), slog.String("file", f.Name())),
	}

	p.metrics.JobsStarted.Inc()
	p.metrics.JobsInFlight.Inc()
	defer p.metrics.JobsInFlight.Dec()

	p.observer(r.snapshot())

	if f.Size() == 0 {
		return r.fail(chunk.ErrEmptyPayload)
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	r.set(StateAnalyzing, ProgressAnalyzing)

	var md analyze.Metadata
	err := r.stage("analyze", func() error {
		var err error
		md, err = analyze.Inspect(f)
		return err
	})
	if err != nil {
		return r.fail(err)
	}
	r.job.Metadata = md

	if !md.NeedsConversion {
		payload, err := media.ReadAll(f)
		if err != nil {
			return r.fail(err)
		}
		return r.complete(&Result{
			Name:        f.Name(),
			Format:      media.MP3,
			Payload:     payload,
			PassThrough: true,
		}, outcomePassThrough)
	}

	if !req.Category.Accepts(md.Format) {
		return r.fail(fmt.Errorf("%w: %s is %s, want %s", ErrCategoryMismatch, f.Name(), md.Format, req.Category))
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	r.set(StateConverting, ProgressConverting)

	var pcm *audio.PCMBuffer
	err = r.stage("decode", func() error {
		var err error
		pcm, err = p.decoder.DecodeFormat(ctx, f, md.Format)
		return err
	})
	if err != nil {
		return r.fail(err)
	}
	r.job.Metadata.Duration = pcm.Duration()

	var enc *encoder.Encoded
	err = r.stage("encode", func() error {
		var err error
		enc, err = encoder.Encode(ctx, pcm, p.opts.Encoder)
		return err
	})
	if err != nil {
		return r.fail(err)
	}

	payload := enc.Bytes()
	p.metrics.EncodedBytes.Observe(float64(len(payload)))
	r.set(StateConverting, ProgressEncoded)

	res := &Result{
		Name:    mp3Name(f.Name()),
		Format:  media.MP3,
		Payload: payload,
	}

	if !req.Split || len(payload) <= p.opts.CeilingBytes {
		return r.complete(res, outcomeConverted)
	}

	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}
	r.set(StateChunking, ProgressChunking)

	err = r.stage("chunk", func() error {
		var err error
		res.Parts, err = chunk.Split(payload, p.opts.MaxChunkBytes)
		return err
	})
	if err != nil {
		return r.fail(err)
	}
	p.metrics.PartsProduced.Add(float64(len(res.Parts)))

	return r.complete(res, outcomeSplit)
}

// mp3Name replaces the extension of name with .mp3.
func mp3Name(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + media.MP3.Extension()
}
