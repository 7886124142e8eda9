package dto

// HealthData is the payload of every health envelope
type HealthData struct {
	Status  string            `json:"status" example:"ok"`
	Details map[string]string `json:"details"`
}

// HealthErrorDetails is the envelope details of a health check that could not run
type HealthErrorDetails struct {
	Error   string            `json:"error" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
	Details map[string]string `json:"details"`
}

// HealthEnvelope documents the health response shape for swagger
type HealthEnvelope struct {
	Code      int                 `json:"code" example:"200"`
	Status    string              `json:"status" example:"success"`
	Message   string              `json:"message" example:"Full system health check completed"`
	Timestamp string              `json:"timestamp" example:"2025-03-01T05:30:00.123456Z"`
	Data      *HealthData         `json:"data"`
	Details   *HealthErrorDetails `json:"details"`
}

// MessageResponse is a bare message body
type MessageResponse struct {
	Message string `json:"message" example:"Hello World!"`
}
