package libvirt

import (
	"subuk/devname/compute"
	"subuk/devname/util"
)

type InstanceRepository struct {
	pool *ConnectionPool
}

func NewInstanceRepository(pool *ConnectionPool) *InstanceRepository {
	return &InstanceRepository{pool: pool}
}

func (repo *InstanceRepository) Get(id string) (*compute.Instance, error) {
	conn, err := repo.pool.Acquire()
	if err != nil {
		return nil, util.NewError(err, "cannot acquire libvirt connection")
	}
	defer repo.pool.Release(conn)

	domain, err := lookupDomain(conn, id)
	if err != nil {
		return nil, err
	}
	defer domain.Free()
	config, err := domainConfig(domain)
	if err != nil {
		return nil, err
	}
	instance := &compute.Instance{Id: config.Name}
	if config.VCPU != nil {
		instance.Flavor.VCpus = config.VCPU.Value
	}
	if config.Memory != nil {
		instance.Flavor.MemoryMb = memoryMb(config.Memory.Unit, uint64(config.Memory.Value))
	}
	for _, bdm := range BlockDeviceMappingsFromDisks(id, domainDisks(config)) {
		if bdm.Role == compute.DeviceRoleRoot {
			instance.RootDeviceName = bdm.DeviceName
		}
	}
	return instance, nil
}

func memoryMb(unit string, value uint64) uint64 {
	switch unit {
	default:
		return value / 1024
	case "b", "bytes":
		return value / 1024 / 1024
	case "MiB", "M":
		return value
	case "GiB", "G":
		return value * 1024
	}
}
