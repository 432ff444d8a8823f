package provider

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing credential. It is returned before
// any network call is made.
type ConfigurationError struct {
	Provider string
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s is not set", e.Provider, e.Variable)
}

// RequestError is a single failed backend call.
type RequestError struct {
	Provider   string
	Model      string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *RequestError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s request failed", e.Provider)
	if e.Model != "" {
		fmt.Fprintf(&sb, " (model %s)", e.Model)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Attempt records the outcome of one candidate model.
type Attempt struct {
	Model string
	Err   error
}

// ExhaustedError is returned when every candidate model failed.
type ExhaustedError struct {
	Provider string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	models := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		models[i] = a.Model
	}
	msg := fmt.Sprintf("%s: all %d candidate models failed [%s]", e.Provider, len(e.Attempts), strings.Join(models, ", "))
	if last := e.Unwrap(); last != nil {
		msg += ": " + last.Error()
	}
	return msg
}

// Unwrap returns the last observed error.
func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
