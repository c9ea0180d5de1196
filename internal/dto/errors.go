package dto

// ErrorResponse is the body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
