package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"push-notifications-relay/internal/client"
	"push-notifications-relay/internal/metrics"
	"push-notifications-relay/internal/model"
	"push-notifications-relay/internal/record"
)

// Job is one unit of deferred work. Start must return quickly: true means a
// submission is in flight and finish will be called with the retry decision,
// false means nothing was launched and the record must not be retried.
// Stop answers whether a preempted job is safe to reschedule.
type Job interface {
	Start(ctx context.Context, rec record.Record, finish func(retry bool)) bool
	Stop() bool
}

// ReportJob performs one decode, submit and classify cycle for an encoded
// report record.
type ReportJob struct {
	client        client.ReportsClient
	overrideHost  string
	submitTimeout time.Duration
}

// NewReportJob constructs a ReportJob.
func NewReportJob(c client.ReportsClient, overrideHost string, submitTimeout time.Duration) *ReportJob {
	return &ReportJob{
		client:        c,
		overrideHost:  overrideHost,
		submitTimeout: submitTimeout,
	}
}

// Start decodes rec and dispatches the submission on its own goroutine. It
// declines to launch, returning false without calling finish, when there is
// nothing to decode, the record has no instance id, or the record carries an
// unknown event type: none of those get better on retry. Reporting is best
// effort, so a panic out of the decode path is logged and folded into the
// same no-launch answer instead of crashing the caller.
func (j *ReportJob) Start(ctx context.Context, rec record.Record, finish func(retry bool)) (launched bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("report job: recovered from panic: %v", r)
			metrics.ReportsDroppedTotal.Inc()
			launched = false
		}
	}()

	if len(rec) == 0 {
		logrus.Warn("report job: started without a record")
		metrics.ReportsDroppedTotal.Inc()
		return false
	}

	event, err := record.Decode(rec)
	if err != nil {
		logrus.Errorf("report job: %v", err)
		metrics.ReportsDroppedTotal.Inc()
		return false
	}
	if event == nil {
		logrus.Warn("report job: record has no instance id, dropping")
		metrics.ReportsDroppedTotal.Inc()
		return false
	}

	var once sync.Once
	go j.submit(ctx, event, func(retry bool) {
		once.Do(func() { finish(retry) })
	})

	return true
}

// Stop is called when the scheduler preempts a job that already launched.
// An in-flight submission is always safe to run again.
func (j *ReportJob) Stop() bool {
	return true
}

func (j *ReportJob) submit(ctx context.Context, event model.ReportEvent, finish func(retry bool)) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("report submission: recovered from panic: %v", r)
			finish(false)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, j.submitTimeout)
	defer cancel()

	start := time.Now()
	err := j.client.SubmitEvent(ctx, event.Instance(), j.overrideHost, event)
	metrics.ReportSubmitDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.ReportsSubmittedTotal.Inc()
		finish(false)
	case client.IsUnrecoverable(err):
		logrus.Warnf("report for instance %s permanently rejected: %v", event.Instance(), err)
		metrics.ReportsRejectedTotal.Inc()
		finish(false)
	default:
		logrus.Infof("report submission failed, will retry: %v", err)
		finish(true)
	}
}
