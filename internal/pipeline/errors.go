package pipeline

import "fmt"

// InputError means the request names neither a URL nor a company.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Message)
}

// ConfigError means a required setting, such as the model credential, is missing.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
