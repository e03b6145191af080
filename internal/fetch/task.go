// Package fetch runs directory requests off the presentation goroutine and
// hands the result back through a dispatcher. Only the newest request may
// ever deliver; anything it superseded is dropped.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/directory"
	"github.com/babycommando/afroradio/internal/station"
)

// Dispatcher runs fn on the context that is allowed to consume results,
// typically the UI loop. It must run fn exactly once, eventually.
type Dispatcher func(fn func())

// Immediate runs fn on the calling goroutine.
func Immediate(fn func()) { fn() }

// Request identifies one Start call.
type Request struct {
	ID      string
	Seq     uint64
	Country string
}

// Result is what a completed request delivers.
type Result struct {
	Request
	Stations []station.Station
	Elapsed  time.Duration
}

// Task owns at most one outstanding request at a time.
type Task struct {
	dir        directory.Directory
	dispatch   Dispatcher
	onComplete func(Result)
	log        *zap.Logger

	mu      sync.Mutex
	seq     uint64
	pending bool
	cancel  context.CancelFunc
}

func New(dir directory.Directory, dispatch Dispatcher, onComplete func(Result), logger *zap.Logger) *Task {
	if dispatch == nil {
		dispatch = Immediate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{
		dir:        dir,
		dispatch:   dispatch,
		onComplete: onComplete,
		log:        logger.Named("fetch"),
	}
}

// Start begins fetching country, superseding any outstanding request.
func (t *Task) Start(country string) Request {
	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	req := Request{ID: uuid.NewString(), Seq: t.seq, Country: country}
	t.pending = true
	t.cancel = cancel
	t.mu.Unlock()

	t.log.Debug("fetch started", zap.String("request", req.ID), zap.String("country", country))

	go func() {
		started := time.Now()
		stations := t.dir.Fetch(ctx, country)
		if stations == nil {
			stations = []station.Station{}
		}
		res := Result{Request: req, Stations: stations, Elapsed: time.Since(started)}
		t.dispatch(func() { t.deliver(res) })
	}()

	return req
}

// deliver runs on the dispatcher's context. The currency check happens here,
// not on the fetching goroutine, so a request superseded while its result was
// queued is still discarded.
func (t *Task) deliver(res Result) {
	t.mu.Lock()
	current := t.pending && res.Seq == t.seq
	if current {
		t.pending = false
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	if !current {
		t.log.Debug("discarding superseded result",
			zap.String("request", res.ID),
			zap.String("country", res.Country),
			zap.Int("stations", len(res.Stations)))
		return
	}

	t.log.Info("fetch completed",
		zap.String("request", res.ID),
		zap.String("country", res.Country),
		zap.Int("stations", len(res.Stations)),
		zap.Duration("elapsed", res.Elapsed))
	if t.onComplete != nil {
		t.onComplete(res)
	}
}

// Cancel drops the outstanding request, if any. Its completion will not fire.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending {
		return
	}
	t.pending = false
	t.seq++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.log.Debug("fetch cancelled")
}

// Pending reports whether a request is outstanding.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
