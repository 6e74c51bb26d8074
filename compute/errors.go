package compute

import (
	"errors"
	"fmt"
)

var ErrInvalidDevicePath = errors.New("invalid device path")
var ErrDevicePathInUse = errors.New("device path already in use")
var ErrNoAvailableDevice = errors.New("no available device names")
var ErrMissingRootDevice = errors.New("instance has no root device")
var ErrInstanceNotFound = errors.New("instance not found")
var ErrMappingNotFound = errors.New("block device mapping not found")

// DevicePathError ties a failure to the device path that caused it.
type DevicePathError struct {
	Path string
	Err  error
}

func (e *DevicePathError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Path)
}

func (e *DevicePathError) Unwrap() error {
	return e.Err
}
