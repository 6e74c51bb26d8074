package libvirt

import (
	"subuk/devname/compute"
	"subuk/devname/util"

	libvirt "github.com/libvirt/libvirt-go"
)

// BlockDeviceMappingRepository treats the disks defined in a domain as its
// block device mappings.
type BlockDeviceMappingRepository struct {
	pool *ConnectionPool
}

func NewBlockDeviceMappingRepository(pool *ConnectionPool) *BlockDeviceMappingRepository {
	return &BlockDeviceMappingRepository{pool: pool}
}

func (repo *BlockDeviceMappingRepository) List(instanceId string) ([]*compute.BlockDeviceMapping, error) {
	conn, err := repo.pool.Acquire()
	if err != nil {
		return nil, util.NewError(err, "cannot acquire libvirt connection")
	}
	defer repo.pool.Release(conn)

	domain, err := lookupDomain(conn, instanceId)
	if err != nil {
		return nil, err
	}
	defer domain.Free()
	config, err := domainConfig(domain)
	if err != nil {
		return nil, err
	}
	return BlockDeviceMappingsFromDisks(instanceId, domainDisks(config)), nil
}

func modifyFlags(domain *libvirt.Domain) (libvirt.DomainDeviceModifyFlags, error) {
	flags := libvirt.DOMAIN_DEVICE_MODIFY_CONFIG
	running, err := domain.IsActive()
	if err != nil {
		return 0, util.NewError(err, "cannot check if domain is running")
	}
	if running {
		flags |= libvirt.DOMAIN_DEVICE_MODIFY_LIVE
	}
	return flags, nil
}

// Save attaches the disk described by bdm to the domain, live as well if
// the domain is running.
func (repo *BlockDeviceMappingRepository) Save(bdm *compute.BlockDeviceMapping) error {
	conn, err := repo.pool.Acquire()
	if err != nil {
		return util.NewError(err, "cannot acquire libvirt connection")
	}
	defer repo.pool.Release(conn)

	domain, err := lookupDomain(conn, bdm.InstanceId)
	if err != nil {
		return err
	}
	defer domain.Free()
	disk := DomainDiskFromMapping(bdm)
	diskXml, err := disk.Marshal()
	if err != nil {
		return util.NewError(err, "cannot marshal disk xml")
	}
	flags, err := modifyFlags(domain)
	if err != nil {
		return err
	}
	if err := domain.AttachDeviceFlags(diskXml, flags); err != nil {
		return util.NewError(err, "cannot attach disk %s", bdm.DeviceName)
	}
	return nil
}

func (repo *BlockDeviceMappingRepository) Delete(instanceId, deviceName string) error {
	conn, err := repo.pool.Acquire()
	if err != nil {
		return util.NewError(err, "cannot acquire libvirt connection")
	}
	defer repo.pool.Release(conn)

	domain, err := lookupDomain(conn, instanceId)
	if err != nil {
		return err
	}
	defer domain.Free()
	config, err := domainConfig(domain)
	if err != nil {
		return err
	}
	for _, disk := range domainDisks(config) {
		if disk.Target == nil || compute.DevicePathRoot+disk.Target.Dev != deviceName {
			continue
		}
		diskXml, err := disk.Marshal()
		if err != nil {
			return util.NewError(err, "cannot marshal disk xml")
		}
		flags, err := modifyFlags(domain)
		if err != nil {
			return err
		}
		if err := domain.DetachDeviceFlags(diskXml, flags); err != nil {
			return util.NewError(err, "cannot detach disk %s", deviceName)
		}
		return nil
	}
	return compute.ErrMappingNotFound
}
