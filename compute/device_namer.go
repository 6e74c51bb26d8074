package compute

import (
	"github.com/rs/zerolog"
)

// DeviceNamer validates requested device names and picks free ones.
// It holds no state between calls. Two calls for the same instance are
// not coordinated, callers must serialize allocation and persistence.
type DeviceNamer struct {
	logger zerolog.Logger
}

func NewDeviceNamer(logger zerolog.Logger) *DeviceNamer {
	return &DeviceNamer{logger: logger}
}

// ValidateOrDefault returns requested rewritten onto the prefix of the
// instance root device, or the first free device name if requested is
// empty.
func (namer *DeviceNamer) ValidateOrDefault(requested string, mapping CanonicalMapping, policy DeviceNamingPolicy) (string, error) {
	var req DevicePath
	if requested != "" {
		parsed, err := ParseDevicePath(requested)
		if err != nil {
			return "", err
		}
		req = parsed
	}

	rootPath, ok := mapping[MappingKeyRoot]
	if !ok {
		return "", ErrMissingRootDevice
	}
	root, err := ParseDevicePath(rootPath)
	if err != nil {
		return "", err
	}
	prefix := root.Prefix
	if prefix != policy.Prefix {
		namer.logger.Debug().
			Str("root_prefix", prefix).
			Str("policy_prefix", policy.Prefix).
			Str("policy", policy.Name).
			Msg("root device prefix differs from driver convention, keeping root prefix")
	}
	if requested != "" && req.Prefix != prefix {
		namer.logger.Debug().
			Str("prefix", prefix).
			Str("requested_prefix", req.Prefix).
			Msg("rewriting requested device onto root prefix")
	}

	used := mapping.UsedLetters()
	for letters := range policy.ReservedLetters() {
		used[letters] = struct{}{}
	}

	if requested == "" {
		letters, err := UnusedLetters(used)
		if err != nil {
			namer.logger.Warn().Strs("used", SortedLetters(used)).Msg("device names exhausted")
			return "", err
		}
		return prefix + letters, nil
	}
	if _, taken := used[req.Letters]; taken {
		return "", &DevicePathError{Path: requested, Err: ErrDevicePathInUse}
	}
	return prefix + req.Letters, nil
}
