package compute

import (
	"regexp"
	"strings"
)

const DevicePathRoot = "/dev/"

// ubd is tried first so /dev/ubda splits as {"/dev/ubd", "a"}.
var devicePathRe = regexp.MustCompile(`^(/dev/(?:ubd|x?[a-z]?d?))([a-z]+)([0-9]*)$`)
var busPrefixRe = regexp.MustCompile(`^(ubd|(x?v|s|h)d)`)
var digitsRe = regexp.MustCompile(`[0-9]+`)

// DevicePath is a guest block device path split into its parts,
// e.g. /dev/xvdb2 is {"/dev/xvd", "b", "2"}.
type DevicePath struct {
	Prefix    string
	Letters   string
	Partition string
}

func (p DevicePath) String() string {
	return p.Prefix + p.Letters + p.Partition
}

// ParseDevicePath splits path into prefix, letter sequence and partition
// number. Paths outside of /dev/ or without a letter sequence are rejected.
func ParseDevicePath(path string) (DevicePath, error) {
	match := devicePathRe.FindStringSubmatch(path)
	if match == nil {
		return DevicePath{}, &DevicePathError{Path: path, Err: ErrInvalidDevicePath}
	}
	return DevicePath{Prefix: match[1], Letters: match[2], Partition: match[3]}, nil
}

// StripPrefix returns the letter sequence of a stored device name. Unlike
// ParseDevicePath it accepts names without /dev/ ("vdb") and never fails.
func StripPrefix(path string) string {
	name := strings.TrimPrefix(path, DevicePathRoot)
	name = busPrefixRe.ReplaceAllString(name, "")
	return digitsRe.ReplaceAllString(name, "")
}
