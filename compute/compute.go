package compute

import (
	"subuk/devname/util"

	"github.com/im7mortal/kmutex"
	"github.com/rs/zerolog"
)

type ServiceSettings struct {
	Driver string
	Bus    DeviceBus
}

type Service struct {
	instances InstanceRepository
	bdms      BlockDeviceMappingRepository
	epub      EventPublisher
	namer     *DeviceNamer
	settings  ServiceSettings
	locks     *kmutex.Kmutex
	logger    zerolog.Logger
}

func New(instances InstanceRepository, bdms BlockDeviceMappingRepository, epub EventPublisher, settings ServiceSettings, logger zerolog.Logger) *Service {
	return &Service{
		instances: instances,
		bdms:      bdms,
		epub:      epub,
		namer:     NewDeviceNamer(logger.With().Str("component", "device-namer").Logger()),
		settings:  settings,
		locks:     kmutex.New(),
		logger:    logger,
	}
}

func (service *Service) load(instanceId string) (*Instance, CanonicalMapping, error) {
	instance, err := service.instances.Get(instanceId)
	if err != nil {
		return nil, nil, util.NewError(err, "cannot get instance %s", instanceId)
	}
	bdms, err := service.bdms.List(instanceId)
	if err != nil {
		return nil, nil, util.NewError(err, "cannot list block device mappings")
	}
	mapping, err := InstanceBlockMapping(instance, bdms)
	if err != nil {
		return nil, nil, err
	}
	return instance, mapping, nil
}

func (service *Service) InstanceMapping(instanceId string) (CanonicalMapping, error) {
	_, mapping, err := service.load(instanceId)
	return mapping, err
}

func (service *Service) allocate(instanceId, requested string) (*Instance, string, error) {
	instance, mapping, err := service.load(instanceId)
	if err != nil {
		return nil, "", err
	}
	policy, err := NewNamingPolicy(service.settings.Driver, service.settings.Bus, instance.Flavor)
	if err != nil {
		return nil, "", util.NewError(err, "cannot select naming policy")
	}
	deviceName, err := service.namer.ValidateOrDefault(requested, mapping, policy)
	if err != nil {
		return nil, "", err
	}
	return instance, deviceName, nil
}

// AllocateDeviceName validates requested, or picks a free device name when
// it is empty, for the instance. Nothing is persisted.
func (service *Service) AllocateDeviceName(instanceId, requested string) (string, error) {
	_, deviceName, err := service.allocate(instanceId, requested)
	return deviceName, err
}

type VolumeAttachmentParams struct {
	InstanceId string
	DeviceName string
	VolumeId   string
	SnapshotId string
	Source     string
}

// AttachVolume allocates a device name and saves the new mapping while no
// other attachment to the same instance is in progress.
func (service *Service) AttachVolume(params VolumeAttachmentParams) (*BlockDeviceMapping, error) {
	service.locks.Lock(params.InstanceId)
	defer service.locks.Unlock(params.InstanceId)

	instance, deviceName, err := service.allocate(params.InstanceId, params.DeviceName)
	if err != nil {
		return nil, err
	}
	bdm := &BlockDeviceMapping{
		InstanceId: params.InstanceId,
		DeviceName: deviceName,
		Role:       DeviceRoleData,
		VolumeId:   params.VolumeId,
		SnapshotId: params.SnapshotId,
		Source:     params.Source,
	}
	if err := service.bdms.Save(bdm); err != nil {
		return nil, util.NewError(err, "cannot save block device mapping")
	}
	if err := service.epub.Publish(NewEventDeviceAttached(instance, bdm)); err != nil {
		service.bdms.Delete(bdm.InstanceId, bdm.DeviceName) // Ignore error
		return nil, util.NewError(err, "cannot publish event device attached")
	}
	service.logger.Info().
		Str("instance", params.InstanceId).
		Str("device", deviceName).
		Str("volume", params.VolumeId).
		Msg("volume attached")
	return bdm, nil
}

func (service *Service) DetachVolume(instanceId, deviceName string) error {
	service.locks.Lock(instanceId)
	defer service.locks.Unlock(instanceId)

	_, mapping, err := service.load(instanceId)
	if err != nil {
		return err
	}
	if StripPrefix(mapping.Root()) == StripPrefix(deviceName) {
		return util.NewError(ErrDevicePathInUse, "cannot detach root device %s", deviceName)
	}
	if err := service.bdms.Delete(instanceId, deviceName); err != nil {
		return util.NewError(err, "cannot delete block device mapping")
	}
	if err := service.epub.Publish(NewEventDeviceDetached(instanceId, deviceName)); err != nil {
		return util.NewError(err, "cannot publish event device detached")
	}
	return nil
}
