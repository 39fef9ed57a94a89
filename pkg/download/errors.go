package download

import "fmt"

// HTTPStatusError is returned when a download host answers with a non-2xx
// status code.
type HTTPStatusError struct {
	StatusCode int
}

func ErrUnexpectedHTTPStatus(statusCode int) error {
	return &HTTPStatusError{StatusCode: statusCode}
}

var _ error = &HTTPStatusError{}

func (c *HTTPStatusError) Error() string {
	return fmt.Sprintf("Status code %d", c.StatusCode)
}
