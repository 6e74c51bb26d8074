package compute

type DeviceBus int

const (
	DeviceBusUnknown DeviceBus = iota
	DeviceBusVirtio
	DeviceBusIde
	DeviceBusScsi
	DeviceBusXen
	DeviceBusUsb
	DeviceBusUml
	DeviceBusLxc
)

func (bus DeviceBus) String() string {
	switch bus {
	default:
		return "unknown"
	case DeviceBusVirtio:
		return "virtio"
	case DeviceBusIde:
		return "ide"
	case DeviceBusScsi:
		return "scsi"
	case DeviceBusXen:
		return "xen"
	case DeviceBusUsb:
		return "usb"
	case DeviceBusUml:
		return "uml"
	case DeviceBusLxc:
		return "lxc"
	}
}

// Prefix returns the guest dev prefix used for disks on this bus, e.g.
// "hd" for ide. Xen disks are interchangeable between xvda and sda, sd is
// used. Empty string means the bus has no device names at all (lxc).
func (bus DeviceBus) Prefix() string {
	switch bus {
	default:
		return ""
	case DeviceBusVirtio:
		return "vd"
	case DeviceBusIde:
		return "hd"
	case DeviceBusScsi, DeviceBusXen, DeviceBusUsb:
		return "sd"
	case DeviceBusUml:
		return "ubd"
	}
}

func NewDeviceBus(input string) DeviceBus {
	switch input {
	default:
		return DeviceBusUnknown
	case "virtio":
		return DeviceBusVirtio
	case "ide":
		return DeviceBusIde
	case "scsi":
		return DeviceBusScsi
	case "xen":
		return DeviceBusXen
	case "usb":
		return DeviceBusUsb
	case "uml":
		return DeviceBusUml
	case "lxc":
		return DeviceBusLxc
	}
}
