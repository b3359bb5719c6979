package mockqueue

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"push-notifications-relay/internal/queue"
)

type Queue struct {
	mock.Mock
}

// Interface compliance check
var _ queue.Queue = &Queue{}

func (m *Queue) Enqueue(ctx context.Context, env queue.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*queue.Envelope, error) {
	args := m.Called(ctx, timeout)
	if env := args.Get(0); env != nil {
		return env.(*queue.Envelope), args.Error(1)
	}
	return nil, args.Error(1)
}
