package compute

import "fmt"

const (
	DriverGeneric = "generic"
	DriverXen     = "xen"
	DriverLibvirt = "libvirt"
)

// DeviceNamingPolicy is the device naming convention of a hypervisor
// driver: the nominal path prefix and letters it keeps for itself.
type DeviceNamingPolicy struct {
	Name     string
	Prefix   string
	Reserved []string
}

func GenericNamingPolicy() DeviceNamingPolicy {
	return DeviceNamingPolicy{Name: DriverGeneric, Prefix: "/dev/sd"}
}

// XenNamingPolicy keeps "b" for the ephemeral disk and "c" for swap when
// the flavor has them, xenapi attaches those without recording a mapping.
func XenNamingPolicy(flavor Flavor) DeviceNamingPolicy {
	policy := DeviceNamingPolicy{Name: DriverXen, Prefix: "/dev/xvd"}
	if flavor.EphemeralGb > 0 {
		policy.Reserved = append(policy.Reserved, "b")
	}
	if flavor.SwapMb > 0 {
		policy.Reserved = append(policy.Reserved, "c")
	}
	return policy
}

func BusNamingPolicy(bus DeviceBus) (DeviceNamingPolicy, error) {
	prefix := bus.Prefix()
	if prefix == "" {
		return DeviceNamingPolicy{}, fmt.Errorf("bus %s has no device names", bus)
	}
	return DeviceNamingPolicy{Name: DriverLibvirt, Prefix: DevicePathRoot + prefix}, nil
}

// NewNamingPolicy picks the policy of the active driver.
func NewNamingPolicy(driver string, bus DeviceBus, flavor Flavor) (DeviceNamingPolicy, error) {
	switch driver {
	default:
		return DeviceNamingPolicy{}, fmt.Errorf("unknown driver '%s'", driver)
	case DriverGeneric, "":
		return GenericNamingPolicy(), nil
	case DriverXen:
		return XenNamingPolicy(flavor), nil
	case DriverLibvirt:
		return BusNamingPolicy(bus)
	}
}

func (policy DeviceNamingPolicy) ReservedLetters() map[string]struct{} {
	reserved := map[string]struct{}{}
	for _, letters := range policy.Reserved {
		reserved[letters] = struct{}{}
	}
	return reserved
}
