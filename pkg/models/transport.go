package models

// ScreenshotRequest carries a browser capture as a data URI
type ScreenshotRequest struct {
	Image string `json:"image" binding:"required"`
}

// ScreenshotResponse is returned by the upload endpoint.
// Analysis holds the message of the AnalysisResult, which is what the capture page displays.
type ScreenshotResponse struct {
	Message    string     `json:"message"`
	Filename   string     `json:"filename"`
	Analysis   string     `json:"analysis"`
	Kind       ResultKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	RequestID  string     `json:"request_id,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
