package meross

import (
	"fmt"
)

// DeviceUnreachableError is returned when a device did not answer in time or
// the connection could not be made.
type DeviceUnreachableError struct {
	Address string
	Err     error
}

func (e *DeviceUnreachableError) Error() string {
	return fmt.Sprintf("device at %s unreachable: %v", e.Address, e.Err)
}

func (e *DeviceUnreachableError) Unwrap() error {
	return e.Err
}

// DeviceRejectedError is returned for any non-2xx response
type DeviceRejectedError struct {
	Address    string
	StatusCode int
	Body       string
}

func (e *DeviceRejectedError) Error() string {
	return fmt.Sprintf("device at %s rejected request: status %d: %s", e.Address, e.StatusCode, e.Body)
}
