package serverutils

// Envelope is the shared response shape for all JSON endpoints.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
}

func SuccessResponse[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(code string, message string) Envelope[any] {
	return Envelope[any]{Success: false, Message: message, Code: code}
}
