package mockclient

import (
	"context"

	"github.com/stretchr/testify/mock"

	"push-notifications-relay/internal/client"
	"push-notifications-relay/internal/model"
)

type Client struct {
	mock.Mock
}

// Interface compliance check
var _ client.ReportsClient = &Client{}

func (m *Client) SubmitEvent(ctx context.Context, instanceID, overrideHost string, event model.ReportEvent) error {
	args := m.Called(ctx, instanceID, overrideHost, event)
	return args.Error(0)
}
