package response

// Response represents the JSON envelope every gateway route answers with
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    []string    `json:"details,omitempty"`
	Redirect   string      `json:"redirect,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Invalid is an error response listing every problem found in the input
func Invalid(statusCode int, err string, details []string) Response {
	r := Error(statusCode, err)
	r.Details = details
	return r
}

// Redirect tells the browser which page to navigate to instead
func Redirect(statusCode int, location string) Response {
	return Response{
		Status:     "redirect",
		StatusCode: statusCode,
		Redirect:   location,
	}
}
