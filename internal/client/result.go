package client

// Result is what every backend wrapper hands back. Failures never escape as Go
// errors: Success is false and Error carries a message fit for display.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ok wraps a successful payload
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Err wraps a failure message
func Err[T any](message string) Result[T] {
	return Result[T]{Error: message}
}

// Unwrap returns the payload or the error message as a Go error
func (r Result[T]) Unwrap() (T, error) {
	if !r.Success {
		return r.Data, &Error{Message: r.Error}
	}
	return r.Data, nil
}

// Error is the Go error form of a failed Result
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
