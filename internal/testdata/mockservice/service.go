package mockservice

import (
	"context"

	"github.com/stretchr/testify/mock"

	"push-notifications-relay/internal/model"
	"push-notifications-relay/internal/service"
)

type Service struct {
	mock.Mock
}

// Interface compliance check
var _ service.ReportService = &Service{}

func (m *Service) BuildDeliveryEvent(req model.DeliveryRequest) (model.DeliveryEvent, error) {
	args := m.Called(req)
	return args.Get(0).(model.DeliveryEvent), args.Error(1)
}

func (m *Service) BuildOpenEvent(req model.OpenRequest) (model.OpenEvent, error) {
	args := m.Called(req)
	return args.Get(0).(model.OpenEvent), args.Error(1)
}

func (m *Service) Report(ctx context.Context, event model.ReportEvent) (model.ReportResult, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(model.ReportResult), args.Error(1)
}
