package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"push-notifications-relay/internal/model"
)

type ClientTestSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type capturedRequest struct {
	method      string
	path        string
	contentType string
	body        map[string]any
	raw         []byte
}

// newServer returns a test backend answering every request with the given
// status and body, recording the last request it saw.
func (s *ClientTestSuite) newServer(status int, respBody string, captured *capturedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.contentType = r.Header.Get("Content-Type")
		captured.raw = raw
		_ = json.Unmarshal(raw, &captured.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
}

func (s *ClientTestSuite) TestSubmitDelivery() {
	var captured capturedRequest
	server := s.newServer(http.StatusOK, "", &captured)
	defer server.Close()

	c := NewHTTPReportsClient(5 * time.Second)
	event := model.DeliveryEvent{
		InstanceID:            "inst-1",
		DeviceID:              "dev-1",
		UserID:                "user-1",
		PublishID:             "pub-1",
		TimestampSecs:         1700000000,
		AppInBackground:       true,
		HasDisplayableContent: true,
	}

	err := c.SubmitEvent(context.Background(), "inst-1", server.URL, event)

	s.NoError(err)
	s.Equal(http.MethodPost, captured.method)
	s.Equal("/reporting_api/v2/instances/inst-1/events", captured.path)
	s.Equal("application/json", captured.contentType)
	s.Equal("DELIVERY", captured.body["event"])
	s.Equal("inst-1", captured.body["instanceId"])
	s.Equal("dev-1", captured.body["deviceId"])
	s.Equal("pub-1", captured.body["publishId"])
	s.Equal(float64(1700000000), captured.body["timestampSecs"])
	s.Equal(true, captured.body["appInBackground"])
	s.Equal(false, captured.body["hasData"])
}

// Open events must not carry the delivery-only flags, not even as false.
func (s *ClientTestSuite) TestSubmitOpen() {
	var captured capturedRequest
	server := s.newServer(http.StatusOK, "", &captured)
	defer server.Close()

	c := NewHTTPReportsClient(5 * time.Second)
	event := model.OpenEvent{InstanceID: "inst-1", DeviceID: "dev-1", TimestampSecs: 1700000000}

	err := c.SubmitEvent(context.Background(), "inst-1", server.URL, event)

	s.NoError(err)
	s.Equal("OPEN", captured.body["event"])
	s.NotContains(string(captured.raw), "appInBackground")
	s.NotContains(string(captured.raw), "hasDisplayableContent")
	s.NotContains(string(captured.raw), "hasData")
}

func (s *ClientTestSuite) TestSubmitParsesErrorBody() {
	var captured capturedRequest
	server := s.newServer(http.StatusBadRequest, `{"error":"instance not found"}`, &captured)
	defer server.Close()

	c := NewHTTPReportsClient(5 * time.Second)
	err := c.SubmitEvent(context.Background(), "inst-1", server.URL, model.OpenEvent{InstanceID: "inst-1"})

	var apiErr *APIError
	s.ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
	s.Equal("instance not found", apiErr.Message)
	s.True(IsUnrecoverable(err))
}

func (s *ClientTestSuite) TestSubmitServerError() {
	var captured capturedRequest
	server := s.newServer(http.StatusServiceUnavailable, "upstream down", &captured)
	defer server.Close()

	c := NewHTTPReportsClient(5 * time.Second)
	err := c.SubmitEvent(context.Background(), "inst-1", server.URL, model.OpenEvent{InstanceID: "inst-1"})

	var apiErr *APIError
	s.ErrorAs(err, &apiErr)
	s.Equal(http.StatusServiceUnavailable, apiErr.StatusCode)
	s.Equal("upstream down", apiErr.Message)
	s.False(IsUnrecoverable(err))
}

func (s *ClientTestSuite) TestSubmitConnectionError() {
	server := s.newServer(http.StatusOK, "", &capturedRequest{})
	url := server.URL
	server.Close()

	c := NewHTTPReportsClient(time.Second)
	err := c.SubmitEvent(context.Background(), "inst-1", url, model.OpenEvent{InstanceID: "inst-1"})

	s.Error(err)
	s.False(IsUnrecoverable(err))
}

func (s *ClientTestSuite) TestEndpointURL() {
	tests := []struct {
		name         string
		instanceID   string
		overrideHost string
		want         string
	}{
		{
			name:       "default host derives from instance",
			instanceID: "inst-1",
			want:       "https://inst-1.pushnotifications.pusher.com/reporting_api/v2/instances/inst-1/events",
		},
		{
			name:         "override host wins",
			instanceID:   "inst-1",
			overrideHost: "http://localhost:9000",
			want:         "http://localhost:9000/reporting_api/v2/instances/inst-1/events",
		},
		{
			name:         "trailing slash trimmed",
			instanceID:   "inst-1",
			overrideHost: "http://localhost:9000/",
			want:         "http://localhost:9000/reporting_api/v2/instances/inst-1/events",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, endpointURL(tt.instanceID, tt.overrideHost))
		})
	}
}

func (s *ClientTestSuite) TestIsUnrecoverable() {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "bad request", err: &APIError{StatusCode: 400}, want: true},
		{name: "not found", err: &APIError{StatusCode: 404}, want: true},
		{name: "unprocessable wrapped", err: fmt.Errorf("submit: %w", &APIError{StatusCode: 422}), want: true},
		{name: "request timeout stays transient", err: &APIError{StatusCode: 408}, want: false},
		{name: "rate limited stays transient", err: &APIError{StatusCode: 429}, want: false},
		{name: "server error", err: &APIError{StatusCode: 500}, want: false},
		{name: "transport error", err: errors.New("connection refused"), want: false},
		{name: "no error", err: nil, want: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, IsUnrecoverable(tt.err))
		})
	}
}
