package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"push-notifications-relay/internal/metrics"
	"push-notifications-relay/internal/model"
	"push-notifications-relay/internal/queue"
	"push-notifications-relay/internal/record"
)

// ValidationError represents user input issues.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// reportService turns incoming lifecycle reports into typed events and hands
// their encoded records to the queue.
type reportService struct {
	queue queue.Queue
	now   func() time.Time
}

type ReportService interface {
	BuildDeliveryEvent(req model.DeliveryRequest) (model.DeliveryEvent, error)
	BuildOpenEvent(req model.OpenRequest) (model.OpenEvent, error)
	Report(ctx context.Context, event model.ReportEvent) (model.ReportResult, error)
}

// NewReportService constructs a reportService.
func NewReportService(q queue.Queue) ReportService {
	return &reportService{
		queue: q,
		now:   time.Now,
	}
}

// BuildDeliveryEvent validates and constructs a DeliveryEvent from an
// incoming request.
func (s *reportService) BuildDeliveryEvent(req model.DeliveryRequest) (model.DeliveryEvent, error) {
	if req.Pusher.InstanceID == "" {
		return model.DeliveryEvent{}, &ValidationError{Message: "pusher.instanceId is required"}
	}

	ts := req.TimestampSecs
	if ts == 0 {
		ts = s.now().Unix()
	}

	event := model.DeliveryEvent{
		InstanceID:            req.Pusher.InstanceID,
		DeviceID:              req.DeviceID,
		UserID:                req.UserID,
		PublishID:             req.Pusher.PublishID,
		TimestampSecs:         ts,
		AppInBackground:       req.AppInBackground,
		HasDisplayableContent: req.Pusher.HasDisplayableContent,
		HasData:               req.Pusher.HasData,
	}

	return event, nil
}

// BuildOpenEvent validates and constructs an OpenEvent from an incoming
// request.
func (s *reportService) BuildOpenEvent(req model.OpenRequest) (model.OpenEvent, error) {
	if req.Pusher.InstanceID == "" {
		return model.OpenEvent{}, &ValidationError{Message: "pusher.instanceId is required"}
	}

	ts := req.TimestampSecs
	if ts == 0 {
		ts = s.now().Unix()
	}

	event := model.OpenEvent{
		InstanceID:    req.Pusher.InstanceID,
		DeviceID:      req.DeviceID,
		UserID:        req.UserID,
		PublishID:     req.Pusher.PublishID,
		TimestampSecs: ts,
	}

	return event, nil
}

// Report encodes the event and enqueues it for deferred submission. The
// report is durable once this returns: delivery to the backend happens later
// on the worker side.
func (s *reportService) Report(ctx context.Context, event model.ReportEvent) (model.ReportResult, error) {
	rec, err := record.Encode(event)
	if err != nil {
		return model.ReportResult{}, err
	}

	env := queue.Envelope{
		ID:           uuid.New().String(),
		Record:       rec,
		EnqueuedAtMs: s.now().UnixMilli(),
	}

	if err := s.queue.Enqueue(ctx, env); err != nil {
		return model.ReportResult{}, err
	}

	metrics.ReportsEnqueuedTotal.Inc()
	logrus.Debugf("queued %s report %s for instance %s", event.EventType(), env.ID, event.Instance())

	return model.ReportResult{ReportID: env.ID, Status: "queued"}, nil
}
