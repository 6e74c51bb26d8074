package compute

type DeviceRole int

const (
	DeviceRoleUnknown   = DeviceRole(0)
	DeviceRoleRoot      = DeviceRole(1)
	DeviceRoleEphemeral = DeviceRole(2)
	DeviceRoleSwap      = DeviceRole(3)
	DeviceRoleData      = DeviceRole(4)
)

func (role DeviceRole) String() string {
	switch role {
	default:
		return "unknown"
	case DeviceRoleRoot:
		return "root"
	case DeviceRoleEphemeral:
		return "ephemeral"
	case DeviceRoleSwap:
		return "swap"
	case DeviceRoleData:
		return "data"
	}
}

func NewDeviceRole(input string) DeviceRole {
	switch input {
	default:
		return DeviceRoleUnknown
	case "root":
		return DeviceRoleRoot
	case "ephemeral":
		return DeviceRoleEphemeral
	case "swap":
		return DeviceRoleSwap
	case "data":
		return DeviceRoleData
	}
}

func (role DeviceRole) MarshalText() ([]byte, error) {
	if role == DeviceRoleUnknown {
		return []byte{}, nil
	}
	return []byte(role.String()), nil
}

func (role *DeviceRole) UnmarshalText(text []byte) error {
	*role = NewDeviceRole(string(text))
	return nil
}
