package hdlc

import "fmt"

// ConfigurationError is raised synchronously from New when a required
// collaborator (transport, codec) is missing.
type ConfigurationError struct {
	reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hdlc: configuration error: %s", e.reason)
}

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{reason: fmt.Sprintf(format, args...)}
}

// Callback is the capability an application installs to observe outbound
// DATA transmissions (the send callback) or inbound DATA receptions (the
// receive callback). It must not block or panic; doing so stalls the
// sender or receiver that invokes it.
type Callback func(payload []byte)
