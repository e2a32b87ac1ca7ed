package observability

// EventEnvelope wraps every event published to the platform exchange. The
// notification subsystem consumes message.sent events from here; ws lifecycle
// events feed the session analytics pipeline.
type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt string      `json:"occurred_at,omitempty"`
	Payload    interface{} `json:"payload"`
}

// BuildHeaders assembles the correlation headers attached to each publish.
// Empty values are left out so consumers can rely on header presence.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
