package dto

// AcceptedResponse is returned once a batch is staged and enqueued
type AcceptedResponse struct {
	TrackingID string `json:"tracking_id"`
	Received   int    `json:"received"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// QueueStatus reports in-memory queue occupancy
type QueueStatus struct {
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Queue   QueueStatus       `json:"queue"`
	Checks  map[string]string `json:"checks,omitempty"`
}
