package httputil

import (
	"fmt"
	"io"
	"net/http"
)

// HTTPStatusError represents a response whose status was not the expected one.
// Body holds the response body verbatim.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (err HTTPStatusError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("unexpected status: %d", err.StatusCode)
	}
	return err.Body
}

// StatusError reads the whole body of a failed response into an
// HTTPStatusError. The body is consumed.
func StatusError(response *http.Response) error {
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read %d response: %w", response.StatusCode, err)
	}
	return HTTPStatusError{StatusCode: response.StatusCode, Body: string(body)}
}
