// Package record implements the flat key/value form a report event travels in
// between the ingest side and the deferred submission job, plus the codec
// between that form and the typed event model.
package record

// Record is a flat string-keyed bag of primitive values (strings, 64-bit
// integers, booleans). It has no identity beyond its keys: the ingest side
// builds one per event, the queue carries it, and the consuming job decodes
// and discards it.
type Record map[string]any

// Fixed key schema of an encoded report event.
const (
	KeyEventType             = "EventType"
	KeyInstanceID            = "InstanceId"
	KeyDeviceID              = "DeviceId"
	KeyUserID                = "UserId"
	KeyPublishID             = "PublishId"
	KeyTimestamp             = "Timestamp"
	KeyAppInBackground       = "AppInBackground"
	KeyHasDisplayableContent = "HasDisplayableContent"
	KeyHasData               = "HasData"
)

// Has reports whether key is present in the record.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value under key, or the empty string when the key is
// absent or holds a non-string value.
func (r Record) String(key string) string {
	v, _ := r[key].(string)
	return v
}

// Int64 returns the value under key, or zero when it is absent. Integer widths
// are normalized: the msgpack trip through the queue hands integers back in
// the narrowest type that fits them.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	default:
		return 0
	}
}

// Bool returns the value under key, or false when the key is absent or holds
// a non-boolean value.
func (r Record) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}
