package webhooks

import (
	"encoding/json"
	"time"

	"hash402/internal/platform/models"
)

type Delivery struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	Signature string `json:"signature"`
}

type testPayload struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// BuildTestDeliveries signs a test event for every endpoint subscribed
// to it. Returns the deliveries plus the IDs of the endpoints that
// matched, so the caller can stamp their last-delivered time. No
// network I/O happens here; a production dispatcher would post the
// payloads.
func BuildTestDeliveries(endpoints []*models.WebhookEndpoint, event string, data interface{}, now time.Time) ([]Delivery, []string, error) {
	payload, err := json.Marshal(testPayload{
		Event:     event,
		Data:      data,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, nil, err
	}

	deliveries := []Delivery{}
	var matched []string

	for _, endpoint := range endpoints {
		if !subscribed(endpoint.Events, event) {
			continue
		}

		sig := Sign(endpoint.Secret, payload)
		deliveries = append(deliveries, Delivery{
			URL:       endpoint.URL,
			Status:    "sent",
			Signature: SignatureHeader(now.UnixMilli(), sig),
		})
		matched = append(matched, endpoint.ID)
	}

	return deliveries, matched, nil
}

func subscribed(events []string, event string) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
