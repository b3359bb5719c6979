// Package client provides the transport-agnostic interface to the push
// notifications reporting backend and an HTTP/JSON implementation of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"push-notifications-relay/internal/model"
)

// defaultHostPattern is the per-instance reporting host used when the SDK has
// no host override configured.
const defaultHostPattern = "https://%s.pushnotifications.pusher.com"

// ReportsClient submits decoded report events to the backend. The optional
// host override travels as an argument so callers never read ambient state.
type ReportsClient interface {
	SubmitEvent(ctx context.Context, instanceID, overrideHost string, ev model.ReportEvent) error
}

// APIError is a non-2xx response from the reporting backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsUnrecoverable reports whether err is a permanent rejection: the backend
// answered with a 4xx status, so resubmitting the same payload can never
// succeed. 408 and 429 stay transient because those requests may pass later.
func IsUnrecoverable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// HTTPReportsClient implements ReportsClient against the reporting REST API.
type HTTPReportsClient struct {
	httpClient *http.Client
}

// NewHTTPReportsClient creates a reports client. The timeout bounds each
// submission end to end, including connection setup.
func NewHTTPReportsClient(timeout time.Duration) *HTTPReportsClient {
	return &HTTPReportsClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitEvent posts one event to the reporting endpoint of its instance.
func (c *HTTPReportsClient) SubmitEvent(ctx context.Context, instanceID, overrideHost string, ev model.ReportEvent) error {
	body, err := json.Marshal(wirePayload(ev))
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(instanceID, overrideHost), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return nil
}

// endpointURL resolves the events endpoint for an instance. Without an
// override the host derives from the instance id itself.
func endpointURL(instanceID, overrideHost string) string {
	host := overrideHost
	if host == "" {
		host = fmt.Sprintf(defaultHostPattern, instanceID)
	}
	host = strings.TrimRight(host, "/")
	return host + "/reporting_api/v2/instances/" + url.PathEscape(instanceID) + "/events"
}

// eventPayload is the wire form the reporting API expects. Field names follow
// the backend contract, not this module's own JSON conventions.
type eventPayload struct {
	Event                 string `json:"event"`
	InstanceID            string `json:"instanceId"`
	DeviceID              string `json:"deviceId,omitempty"`
	UserID                string `json:"userId,omitempty"`
	PublishID             string `json:"publishId,omitempty"`
	TimestampSecs         int64  `json:"timestampSecs"`
	AppInBackground       *bool  `json:"appInBackground,omitempty"`
	HasDisplayableContent *bool  `json:"hasDisplayableContent,omitempty"`
	HasData               *bool  `json:"hasData,omitempty"`
}

func wirePayload(ev model.ReportEvent) eventPayload {
	switch e := ev.(type) {
	case model.DeliveryEvent:
		return eventPayload{
			Event:                 "DELIVERY",
			InstanceID:            e.InstanceID,
			DeviceID:              e.DeviceID,
			UserID:                e.UserID,
			PublishID:             e.PublishID,
			TimestampSecs:         e.TimestampSecs,
			AppInBackground:       &e.AppInBackground,
			HasDisplayableContent: &e.HasDisplayableContent,
			HasData:               &e.HasData,
		}
	case model.OpenEvent:
		return eventPayload{
			Event:         "OPEN",
			InstanceID:    e.InstanceID,
			DeviceID:      e.DeviceID,
			UserID:        e.UserID,
			PublishID:     e.PublishID,
			TimestampSecs: e.TimestampSecs,
		}
	default:
		return eventPayload{
			Event:      strings.ToUpper(string(ev.EventType())),
			InstanceID: ev.Instance(),
		}
	}
}
