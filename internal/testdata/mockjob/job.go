package mockjob

import (
	"context"

	"github.com/stretchr/testify/mock"

	"push-notifications-relay/internal/record"
)

type Job struct {
	mock.Mock
}

func (m *Job) Start(ctx context.Context, rec record.Record, finish func(retry bool)) bool {
	args := m.Called(ctx, rec, finish)
	return args.Bool(0)
}

func (m *Job) Stop() bool {
	args := m.Called()
	return args.Bool(0)
}
