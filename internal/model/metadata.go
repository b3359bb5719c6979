package model

import (
	"encoding/json"
	"fmt"
)

// PusherMetadata is the side channel the push gateway embeds in every message
// payload under the "pusher" key. Older gateways omit the boolean fields, so
// absent values decode to false rather than failing the whole payload.
type PusherMetadata struct {
	InstanceID            string `json:"instanceId"`
	PublishID             string `json:"publishId"`
	ClickAction           string `json:"clickAction,omitempty"`
	HasDisplayableContent bool   `json:"hasDisplayableContent"`
	HasData               bool   `json:"hasData"`
}

// ParseMetadata decodes the raw pusher block of a push payload.
func ParseMetadata(raw []byte) (PusherMetadata, error) {
	var m PusherMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return PusherMetadata{}, fmt.Errorf("parse pusher metadata: %w", err)
	}
	return m, nil
}
