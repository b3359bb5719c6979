package record

import (
	"errors"
	"fmt"

	"push-notifications-relay/internal/model"
)

// ErrNoEventType marks a record that carries no discriminator at all.
var ErrNoEventType = errors.New("record has no event type")

// UnknownEventTypeError reports a discriminator outside the supported set.
// With a closed variant set this means version skew between the writer and
// this reader, not a data condition a retry could fix.
type UnknownEventTypeError struct {
	EventType string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.EventType)
}

// Encode flattens a report event into its record form, discriminator first,
// then every field of the variant under its fixed key. The only failure is an
// event outside the closed variant set, which is a programming error on the
// producing side, never a data condition.
func Encode(ev model.ReportEvent) (Record, error) {
	switch e := ev.(type) {
	case model.DeliveryEvent:
		return Record{
			KeyEventType:             string(model.EventTypeDelivery),
			KeyInstanceID:            e.InstanceID,
			KeyDeviceID:              e.DeviceID,
			KeyUserID:                e.UserID,
			KeyPublishID:             e.PublishID,
			KeyTimestamp:             e.TimestampSecs,
			KeyAppInBackground:       e.AppInBackground,
			KeyHasDisplayableContent: e.HasDisplayableContent,
			KeyHasData:               e.HasData,
		}, nil
	case model.OpenEvent:
		return Record{
			KeyEventType:  string(model.EventTypeOpen),
			KeyInstanceID: e.InstanceID,
			KeyDeviceID:   e.DeviceID,
			KeyUserID:     e.UserID,
			KeyPublishID:  e.PublishID,
			KeyTimestamp:  e.TimestampSecs,
		}, nil
	default:
		return nil, fmt.Errorf("encode: unreportable event type %T", ev)
	}
}

// Decode rebuilds the typed event from a record. A missing or unrecognized
// discriminator is an error. A record without the instance id decodes to
// (nil, nil): records written before the key existed must be dropped, not
// failed, because the silent loss is the compatibility contract. Every other
// field is optional and falls back to its type's natural missing value.
func Decode(rec Record) (model.ReportEvent, error) {
	if !rec.Has(KeyEventType) {
		return nil, ErrNoEventType
	}
	eventType := rec.String(KeyEventType)
	switch model.EventType(eventType) {
	case model.EventTypeDelivery:
		return decodeDelivery(rec), nil
	case model.EventTypeOpen:
		return decodeOpen(rec), nil
	default:
		return nil, &UnknownEventTypeError{EventType: eventType}
	}
}

func decodeDelivery(rec Record) model.ReportEvent {
	instance := rec.String(KeyInstanceID)
	if instance == "" {
		return nil
	}
	return model.DeliveryEvent{
		InstanceID:            instance,
		DeviceID:              rec.String(KeyDeviceID),
		UserID:                rec.String(KeyUserID),
		PublishID:             rec.String(KeyPublishID),
		TimestampSecs:         rec.Int64(KeyTimestamp),
		AppInBackground:       rec.Bool(KeyAppInBackground),
		HasDisplayableContent: rec.Bool(KeyHasDisplayableContent),
		HasData:               rec.Bool(KeyHasData),
	}
}

func decodeOpen(rec Record) model.ReportEvent {
	instance := rec.String(KeyInstanceID)
	if instance == "" {
		return nil
	}
	return model.OpenEvent{
		InstanceID:    instance,
		DeviceID:      rec.String(KeyDeviceID),
		UserID:        rec.String(KeyUserID),
		PublishID:     rec.String(KeyPublishID),
		TimestampSecs: rec.Int64(KeyTimestamp),
	}
}
