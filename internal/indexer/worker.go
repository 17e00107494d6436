package indexer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrQueueFull     = errors.New("index queue is full")
	ErrWorkerStopped = errors.New("index worker stopped")
)

// WorkerStore is the store handle owned by a Worker.
type WorkerStore interface {
	Store
	ClearAll(ctx context.Context) error
}

type JobKind string

const (
	JobScan  JobKind = "scan"
	JobClear JobKind = "clear"
)

type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Job is a snapshot of a queued or finished unit of work.
type Job struct {
	ID       string    `json:"id"`
	Kind     JobKind   `json:"kind"`
	Request  Request   `json:"request,omitzero"`
	State    JobState  `json:"state"`
	Summary  *Summary  `json:"summary,omitempty"`
	Error    string    `json:"error,omitempty"`
	Queued   time.Time `json:"queued"`
	Started  time.Time `json:"started,omitzero"`
	Finished time.Time `json:"finished,omitzero"`
}

// Worker owns the indexing connection and runs scan and clear jobs one at
// a time, so the store sees a single writer.
type Worker struct {
	store   WorkerStore
	indexer *Indexer
	queue   chan string

	mu      sync.Mutex
	jobs    map[string]*Job
	stopped bool
}

const defaultQueueSize = 16

func NewWorker(store WorkerStore, opts Options) *Worker {
	return &Worker{
		store:   store,
		indexer: New(store, opts),
		queue:   make(chan string, defaultQueueSize),
		jobs:    make(map[string]*Job),
	}
}

// SubmitScan queues a directory scan.
func (w *Worker) SubmitScan(req Request) (Job, error) {
	return w.submit(JobScan, req)
}

// SubmitClear queues a full clear of the index.
func (w *Worker) SubmitClear() (Job, error) {
	return w.submit(JobClear, Request{})
}

func (w *Worker) submit(kind JobKind, req Request) (Job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return Job{}, ErrWorkerStopped
	}

	job := &Job{ID: uuid.NewString(), Kind: kind, Request: req, State: JobQueued, Queued: time.Now()}
	select {
	case w.queue <- job.ID:
	default:
		return Job{}, ErrQueueFull
	}
	w.jobs[job.ID] = job
	return *job, nil
}

// Job returns a snapshot of the job with id.
func (w *Worker) Job(id string) (Job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Run processes jobs until ctx is done. A job that has started always runs
// to completion.
func (w *Worker) Run(ctx context.Context) error {
	defer func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-w.queue:
			w.run(context.WithoutCancel(ctx), id)
		}
	}
}

func (w *Worker) run(ctx context.Context, id string) {
	job := w.update(id, func(j *Job) {
		j.State = JobRunning
		j.Started = time.Now()
	})

	var sum *Summary
	var err error
	switch job.Kind {
	case JobScan:
		var s Summary
		if s, err = w.indexer.Scan(ctx, job.Request); err == nil {
			sum = &s
		}
	case JobClear:
		err = w.store.ClearAll(ctx)
	}

	w.update(id, func(j *Job) {
		j.Finished = time.Now()
		j.Summary = sum
		if err != nil {
			j.State = JobFailed
			j.Error = err.Error()
			return
		}
		j.State = JobDone
	})
	if err != nil {
		log.Error("index job failed", "id", id, "kind", job.Kind, "err", err)
	}
}

func (w *Worker) update(id string, fn func(*Job)) Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	job := w.jobs[id]
	fn(job)
	return *job
}
