package http

// APIResponse is the error envelope written by the response helpers.
type APIResponse struct {
	Status  int         `json:"status" example:"400"`
	Message string      `json:"message" example:"Bad Request"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"feature1"`
	Message string                 `json:"message,omitempty" example:"feature1 is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
