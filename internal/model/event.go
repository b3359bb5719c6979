package model

// EventType is the discriminator written into every encoded report record.
type EventType string

const (
	EventTypeDelivery EventType = "Delivery"
	EventTypeOpen     EventType = "Open"
)

// ReportEvent is the closed set of notification lifecycle events the relay
// reports to the backend. Every variant names its discriminator and the
// instance the report is submitted against; the instance id anchors an
// encoded record, and a record without it cannot be reported at all.
type ReportEvent interface {
	EventType() EventType
	Instance() string
}

// DeliveryEvent records that a notification reached a device.
type DeliveryEvent struct {
	InstanceID            string
	DeviceID              string
	UserID                string
	PublishID             string
	TimestampSecs         int64
	AppInBackground       bool
	HasDisplayableContent bool
	HasData               bool
}

func (e DeliveryEvent) EventType() EventType { return EventTypeDelivery }

func (e DeliveryEvent) Instance() string { return e.InstanceID }

// OpenEvent records that a user opened a delivered notification.
type OpenEvent struct {
	InstanceID    string
	DeviceID      string
	UserID        string
	PublishID     string
	TimestampSecs int64
}

func (e OpenEvent) EventType() EventType { return EventTypeOpen }

func (e OpenEvent) Instance() string { return e.InstanceID }

// DeliveryRequest is the ingest payload reporting a delivered notification.
type DeliveryRequest struct {
	DeviceID        string         `json:"device_id"`
	UserID          string         `json:"user_id"`
	AppInBackground bool           `json:"app_in_background"`
	TimestampSecs   int64          `json:"timestamp_secs"`
	Pusher          PusherMetadata `json:"pusher"`
}

// OpenRequest is the ingest payload reporting an opened notification.
type OpenRequest struct {
	DeviceID      string         `json:"device_id"`
	UserID        string         `json:"user_id"`
	TimestampSecs int64          `json:"timestamp_secs"`
	Pusher        PusherMetadata `json:"pusher"`
}

// ReportResult is returned to ingest callers once a report is queued.
type ReportResult struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}
