package contents

import (
	"fmt"
	"net/http"
)

// NetworkError is returned when a read from the contents server fails,
// either in transport or with a non-2xx status.
type NetworkError struct {
	Op         string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, statusText(e.StatusCode, e.Body))
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SaveError is returned when a write to the contents server fails.
type SaveError struct {
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *SaveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("save %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("save %s: %s", e.Path, statusText(e.StatusCode, e.Body))
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a response or a notebook cannot be parsed.
type DecodeError struct {
	Path string
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("decode %s of %s: %v", e.What, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func statusText(code int, body []byte) string {
	msg := fmt.Sprintf("status %d %s", code, http.StatusText(code))
	if len(body) > 0 {
		const max = 200
		if len(body) > max {
			body = append(body[:max:max], "..."...)
		}
		msg += ": " + string(body)
	}
	return msg
}
