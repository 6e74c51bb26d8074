package libvirt

import (
	"strings"
	"subuk/devname/compute"

	libvirtxml "github.com/libvirt/libvirt-go-xml"
)

// BlockDeviceMappingsFromDisks turns domain disks into block device
// mappings. The disk with boot order 1 is the root device, or the first
// plain disk if no disk has a boot order.
func BlockDeviceMappingsFromDisks(instanceId string, disks []libvirtxml.DomainDisk) []*compute.BlockDeviceMapping {
	rootIdx := -1
	for idx, disk := range disks {
		if disk.Target == nil || disk.Target.Dev == "" {
			continue
		}
		if disk.Boot != nil && disk.Boot.Order == 1 {
			rootIdx = idx
			break
		}
		if rootIdx < 0 && (disk.Device == "" || disk.Device == "disk") {
			rootIdx = idx
		}
	}

	bdms := []*compute.BlockDeviceMapping{}
	for idx, disk := range disks {
		if disk.Target == nil || disk.Target.Dev == "" {
			continue
		}
		bdm := &compute.BlockDeviceMapping{
			InstanceId: instanceId,
			DeviceName: compute.DevicePathRoot + disk.Target.Dev,
			Role:       compute.DeviceRoleData,
			VolumeId:   disk.Serial,
			Source:     diskSourcePath(disk),
		}
		if idx == rootIdx {
			bootIndex := 0
			bdm.Role = compute.DeviceRoleRoot
			bdm.BootIndex = &bootIndex
		}
		bdms = append(bdms, bdm)
	}
	return bdms
}

func diskSourcePath(disk libvirtxml.DomainDisk) string {
	if disk.Source == nil {
		return ""
	}
	if disk.Source.File != nil {
		return disk.Source.File.File
	}
	if disk.Source.Block != nil {
		return disk.Source.Block.Dev
	}
	return ""
}

// DeviceBusForPath guesses the libvirt bus from the device prefix.
func DeviceBusForPath(path string) compute.DeviceBus {
	parsed, err := compute.ParseDevicePath(path)
	if err != nil {
		return compute.DeviceBusUnknown
	}
	switch strings.TrimPrefix(parsed.Prefix, compute.DevicePathRoot) {
	default:
		return compute.DeviceBusUnknown
	case "vd":
		return compute.DeviceBusVirtio
	case "sd":
		return compute.DeviceBusScsi
	case "hd":
		return compute.DeviceBusIde
	case "xvd":
		return compute.DeviceBusXen
	case "ubd":
		return compute.DeviceBusUml
	}
}

// DomainDiskFromMapping builds the disk definition hot-plugged for bdm.
// Sources under /dev/ are attached as block devices, anything else as a
// file.
func DomainDiskFromMapping(bdm *compute.BlockDeviceMapping) libvirtxml.DomainDisk {
	disk := libvirtxml.DomainDisk{
		Device: "disk",
		Driver: &libvirtxml.DomainDiskDriver{Name: "qemu", Type: "raw"},
		Target: &libvirtxml.DomainDiskTarget{
			Dev: strings.TrimPrefix(bdm.DeviceName, compute.DevicePathRoot),
		},
		Serial: bdm.VolumeId,
	}
	if bus := DeviceBusForPath(bdm.DeviceName); bus != compute.DeviceBusUnknown {
		disk.Target.Bus = bus.String()
	}
	if strings.HasPrefix(bdm.Source, compute.DevicePathRoot) {
		disk.Source = &libvirtxml.DomainDiskSource{
			Block: &libvirtxml.DomainDiskSourceBlock{Dev: bdm.Source},
		}
	} else {
		disk.Source = &libvirtxml.DomainDiskSource{
			File: &libvirtxml.DomainDiskSourceFile{File: bdm.Source},
		}
	}
	return disk
}
