package dto

// Response is the envelope of the versioned API
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed versioned API call
type ErrorInfo struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, RequestID: requestID},
	}
}

// NewValidationErrorResponse creates a validation error carrying per-field messages
func NewValidationErrorResponse(message, requestID string, fields map[string]string) Response {
	r := NewErrorResponse(ErrCodeValidation, message, requestID)
	r.Error.Fields = fields
	return r
}

// FormResponse is the flat envelope of the public form endpoints: a success
// flag plus either a message or a plain error string
type FormResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// FormAccepted builds a successful form response
func FormAccepted(message string, data any) FormResponse {
	return FormResponse{Success: true, Message: message, Data: data}
}

// FormRejected builds a failed form response
func FormRejected(err string) FormResponse {
	return FormResponse{Success: false, Error: err}
}

// ErrorOnly is the bare {"error": "..."} body used by the messages endpoint
type ErrorOnly struct {
	Error string `json:"error"`
}
