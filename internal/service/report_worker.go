package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"push-notifications-relay/internal/metrics"
	"push-notifications-relay/internal/queue"
)

const dequeueTimeout = 1 * time.Second

// ReportWorker is the deferred-execution side of the relay: a small pool of
// consumers that pop encoded records off the queue, run the report job and
// apply the retry decision the job hands back.
type ReportWorker struct {
	queue       queue.Queue
	job         Job
	workers     int
	maxAttempts int
	backoff     time.Duration
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewReportWorker constructs a ReportWorker. maxAttempts bounds the total
// number of tries per report, backoff scales linearly with the attempt count.
func NewReportWorker(q queue.Queue, job Job, workers, maxAttempts int, backoff time.Duration) *ReportWorker {
	return &ReportWorker{
		queue:       q,
		job:         job,
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Run starts the consumer pool.
func (w *ReportWorker) Run(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	logrus.Infof("starting %d report workers", w.workers)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.runLoop(ctx, i)
	}
}

// Shutdown stops the consumers and waits for in-flight jobs to settle.
// Records still in flight are pushed back onto the queue.
func (w *ReportWorker) Shutdown() {
	logrus.Info("report worker shutting down, waiting for in-flight jobs")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	logrus.Info("report worker stopped")
}

func (w *ReportWorker) runLoop(ctx context.Context, id int) {
	defer w.wg.Done()

	for {
		env, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.Errorf("worker %d: dequeue: %v", id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if env == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		w.execute(ctx, env)
	}
}

// execute runs one job and settles its outcome. The done channel is buffered
// so a finish that arrives after preemption does not leak the goroutine.
func (w *ReportWorker) execute(ctx context.Context, env *queue.Envelope) {
	done := make(chan bool, 1)

	launched := w.job.Start(ctx, env.Record, func(retry bool) {
		done <- retry
	})
	if !launched {
		return
	}

	select {
	case retry := <-done:
		if retry {
			w.reschedule(ctx, env)
		}
	case <-ctx.Done():
		if w.job.Stop() {
			w.requeue(env)
		}
	}
}

func (w *ReportWorker) reschedule(ctx context.Context, env *queue.Envelope) {
	env.Attempt++
	if env.Attempt >= w.maxAttempts {
		logrus.Warnf("dropping report %s after %d attempts", env.ID, w.maxAttempts)
		metrics.ReportsDroppedTotal.Inc()
		return
	}

	// The queue has no delayed delivery, so the wait happens here. A
	// shutdown mid-backoff skips the wait and requeues immediately.
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff * time.Duration(env.Attempt)):
	}

	w.requeue(env)
	metrics.ReportsRetriedTotal.Inc()
}

func (w *ReportWorker) requeue(env *queue.Envelope) {
	// Detached context: the requeue must survive the cancellation that may
	// have stopped the run loop.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.queue.Enqueue(ctx, *env); err != nil {
		logrus.Errorf("requeue report %s: %v", env.ID, err)
	}
}
