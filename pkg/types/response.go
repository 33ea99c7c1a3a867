package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Outcome is the body of the mutation routes that report a boolean result.
type Outcome struct {
	Success bool `json:"success"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
