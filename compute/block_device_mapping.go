package compute

import (
	"fmt"
	"regexp"
	"sort"
)

const (
	MappingKeyRoot = "root"
	MappingKeySwap = "swap"
)

var ephemeralNameRe = regexp.MustCompile(`^ephemeral(\d+)$`)

// BlockDeviceMapping is a single device attached to an instance as stored
// by a mapping repository. Role may be left unknown, it is inferred from
// the other fields then.
type BlockDeviceMapping struct {
	InstanceId  string     `json:"instance_id"`
	DeviceName  string     `json:"device_name"`
	Role        DeviceRole `json:"role,omitempty"`
	VirtualName string     `json:"virtual_name,omitempty"`
	VolumeId    string     `json:"volume_id,omitempty"`
	SnapshotId  string     `json:"snapshot_id,omitempty"`
	Source      string     `json:"source,omitempty"`
	BootIndex   *int       `json:"boot_index,omitempty"`
	NoDevice    bool       `json:"no_device,omitempty"`
}

func (bdm *BlockDeviceMapping) IsEphemeral() bool {
	return ephemeralNameRe.MatchString(bdm.VirtualName)
}

func (bdm *BlockDeviceMapping) InferRole() DeviceRole {
	switch {
	case bdm.Role != DeviceRoleUnknown:
		return bdm.Role
	case bdm.BootIndex != nil && *bdm.BootIndex == 0:
		return DeviceRoleRoot
	case bdm.VirtualName == "swap":
		return DeviceRoleSwap
	case bdm.IsEphemeral():
		return DeviceRoleEphemeral
	case bdm.VolumeId != "" || bdm.SnapshotId != "":
		return DeviceRoleData
	}
	return DeviceRoleUnknown
}

type BlockDeviceMappingRepository interface {
	List(instanceId string) ([]*BlockDeviceMapping, error)
	Save(bdm *BlockDeviceMapping) error
	Delete(instanceId, deviceName string) error
}

// CanonicalMapping maps a role key (root, swap, ephemeral0, ebs0 ...) to
// a device path.
type CanonicalMapping map[string]string

func (m CanonicalMapping) Root() string {
	return m[MappingKeyRoot]
}

// UsedLetters returns letter sequences of all mapped devices.
func (m CanonicalMapping) UsedLetters() map[string]struct{} {
	used := map[string]struct{}{}
	for _, devicePath := range m {
		used[StripPrefix(devicePath)] = struct{}{}
	}
	return used
}

// SortedLetters returns letters in allocation order.
func SortedLetters(letters map[string]struct{}) []string {
	result := make([]string, 0, len(letters))
	for letter := range letters {
		result = append(result, letter)
	}
	sort.Slice(result, func(i, j int) bool {
		return LetterSequenceLess(result[i], result[j])
	})
	return result
}

// InstanceBlockMapping builds the canonical mapping for instance from its
// raw mappings. If several records claim the root role the first one wins;
// without any root record the instance root device name is used.
func InstanceBlockMapping(instance *Instance, bdms []*BlockDeviceMapping) (CanonicalMapping, error) {
	mapping := CanonicalMapping{}
	ebsCount := 0
	for _, bdm := range bdms {
		if bdm.NoDevice || bdm.DeviceName == "" {
			continue
		}
		switch bdm.InferRole() {
		case DeviceRoleRoot:
			if _, exists := mapping[MappingKeyRoot]; !exists {
				mapping[MappingKeyRoot] = bdm.DeviceName
			}
		case DeviceRoleSwap:
			mapping[MappingKeySwap] = bdm.DeviceName
		case DeviceRoleEphemeral:
			key := bdm.VirtualName
			if !bdm.IsEphemeral() {
				key = nextEphemeralKey(mapping)
			}
			mapping[key] = bdm.DeviceName
		default:
			// Anything else holding a device name still occupies its slot.
			mapping[fmt.Sprintf("ebs%d", ebsCount)] = bdm.DeviceName
			ebsCount++
		}
	}
	if instance != nil {
		if _, exists := mapping[MappingKeyRoot]; !exists && instance.RootDeviceName != "" {
			mapping[MappingKeyRoot] = instance.RootDeviceName
		}
		if instance.DefaultSwapDevice != "" {
			if _, exists := mapping[MappingKeySwap]; !exists {
				mapping[MappingKeySwap] = instance.DefaultSwapDevice
			}
		}
		if instance.DefaultEphemeralDevice != "" && countEphemeral(mapping) == 0 {
			mapping["ephemeral0"] = instance.DefaultEphemeralDevice
		}
	}
	if _, exists := mapping[MappingKeyRoot]; !exists {
		return nil, ErrMissingRootDevice
	}
	return mapping, nil
}

func countEphemeral(mapping CanonicalMapping) int {
	count := 0
	for key := range mapping {
		if ephemeralNameRe.MatchString(key) {
			count++
		}
	}
	return count
}

func nextEphemeralKey(mapping CanonicalMapping) string {
	for idx := 0; ; idx++ {
		key := fmt.Sprintf("ephemeral%d", idx)
		if _, exists := mapping[key]; !exists {
			return key
		}
	}
}
