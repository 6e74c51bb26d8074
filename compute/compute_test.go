package compute

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type stubInstanceRepository struct {
	instances map[string]*Instance
}

func (repo *stubInstanceRepository) Get(id string) (*Instance, error) {
	instance, ok := repo.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return instance, nil
}

type stubMappingRepository struct {
	mu   sync.Mutex
	bdms []*BlockDeviceMapping
}

func (repo *stubMappingRepository) List(instanceId string) ([]*BlockDeviceMapping, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	result := []*BlockDeviceMapping{}
	for _, bdm := range repo.bdms {
		if bdm.InstanceId == instanceId {
			result = append(result, bdm)
		}
	}
	return result, nil
}

func (repo *stubMappingRepository) Save(bdm *BlockDeviceMapping) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.bdms = append(repo.bdms, bdm)
	return nil
}

func (repo *stubMappingRepository) Delete(instanceId, deviceName string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for idx, bdm := range repo.bdms {
		if bdm.InstanceId == instanceId && bdm.DeviceName == deviceName {
			repo.bdms = append(repo.bdms[:idx], repo.bdms[idx+1:]...)
			return nil
		}
	}
	return ErrMappingNotFound
}

type stubPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *stubPublisher) Publish(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type ServiceTestSuite struct {
	suite.Suite
	Instances *stubInstanceRepository
	Mappings  *stubMappingRepository
	Publisher *stubPublisher
	Service   *Service
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.Instances = &stubInstanceRepository{instances: map[string]*Instance{
		"vm1":    {Id: "vm1", RootDeviceName: "/dev/vda"},
		"broken": {Id: "broken"},
		"xen1": {
			Id:             "xen1",
			RootDeviceName: "/dev/xvda",
			Flavor:         Flavor{Name: "m1.small", EphemeralGb: 20, SwapMb: 1024},
		},
	}}
	suite.Mappings = &stubMappingRepository{bdms: []*BlockDeviceMapping{
		{InstanceId: "vm1", DeviceName: "/dev/vda", BootIndex: bootIndex(0)},
		{InstanceId: "vm1", DeviceName: "/dev/vdb", VolumeId: "vol-1"},
		{InstanceId: "xen1", DeviceName: "/dev/xvda", BootIndex: bootIndex(0)},
	}}
	suite.Publisher = &stubPublisher{}
	suite.Service = New(suite.Instances, suite.Mappings, suite.Publisher, ServiceSettings{Driver: DriverGeneric}, zerolog.Nop())
}

func (suite *ServiceTestSuite) TestAllocateDeviceName() {
	name, err := suite.Service.AllocateDeviceName("vm1", "")
	suite.Require().NoError(err)
	suite.Equal("/dev/vdc", name)
	suite.Len(suite.Mappings.bdms, 3, "allocation must not persist anything")
}

func (suite *ServiceTestSuite) TestAllocateDeviceNameRequested() {
	name, err := suite.Service.AllocateDeviceName("vm1", "/dev/sdf")
	suite.Require().NoError(err)
	suite.Equal("/dev/vdf", name)

	_, err = suite.Service.AllocateDeviceName("vm1", "/dev/vdb")
	suite.ErrorIs(err, ErrDevicePathInUse)
}

func (suite *ServiceTestSuite) TestAllocateDeviceNameXen() {
	suite.Service.settings.Driver = DriverXen
	name, err := suite.Service.AllocateDeviceName("xen1", "")
	suite.Require().NoError(err)
	suite.Equal("/dev/xvdd", name)
}

func (suite *ServiceTestSuite) TestAllocateDeviceNameUnknownDriver() {
	suite.Service.settings.Driver = "hyperv"
	_, err := suite.Service.AllocateDeviceName("vm1", "")
	suite.Error(err)
}

func (suite *ServiceTestSuite) TestAllocateDeviceNameErrors() {
	_, err := suite.Service.AllocateDeviceName("missing", "")
	suite.ErrorIs(err, ErrInstanceNotFound)

	_, err = suite.Service.AllocateDeviceName("broken", "")
	suite.ErrorIs(err, ErrMissingRootDevice)
}

func (suite *ServiceTestSuite) TestInstanceMapping() {
	mapping, err := suite.Service.InstanceMapping("vm1")
	suite.Require().NoError(err)
	suite.Equal(CanonicalMapping{"root": "/dev/vda", "ebs0": "/dev/vdb"}, mapping)
}

func (suite *ServiceTestSuite) TestAttachVolume() {
	bdm, err := suite.Service.AttachVolume(VolumeAttachmentParams{InstanceId: "vm1", VolumeId: "vol-2"})
	suite.Require().NoError(err)
	suite.Equal("/dev/vdc", bdm.DeviceName)
	suite.Equal(DeviceRoleData, bdm.Role)

	bdm, err = suite.Service.AttachVolume(VolumeAttachmentParams{InstanceId: "vm1", VolumeId: "vol-3"})
	suite.Require().NoError(err)
	suite.Equal("/dev/vdd", bdm.DeviceName)

	suite.Require().Len(suite.Publisher.events, 2)
	suite.Equal("device_attached", suite.Publisher.events[0].Name())
	suite.Equal("/dev/vdc", suite.Publisher.events[0].Plain()["device_name"])
}

func (suite *ServiceTestSuite) TestAttachVolumeConcurrent() {
	const attachments = 20
	wg := sync.WaitGroup{}
	errs := make(chan error, attachments)
	for i := 0; i < attachments; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.Service.AttachVolume(VolumeAttachmentParams{InstanceId: "vm1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.NoError(err)
	}
	seen := map[string]bool{}
	for _, bdm := range suite.Mappings.bdms {
		if bdm.InstanceId != "vm1" {
			continue
		}
		suite.False(seen[bdm.DeviceName], "duplicate device %s", bdm.DeviceName)
		seen[bdm.DeviceName] = true
	}
	suite.Len(seen, attachments+2)
}

func (suite *ServiceTestSuite) TestAttachVolumePublishFailureRollsBack() {
	suite.Publisher.err = errors.New("script failed")
	_, err := suite.Service.AttachVolume(VolumeAttachmentParams{InstanceId: "vm1", VolumeId: "vol-2"})
	suite.Error(err)
	suite.Len(suite.Mappings.bdms, 3)
}

func (suite *ServiceTestSuite) TestDetachVolume() {
	suite.Require().NoError(suite.Service.DetachVolume("vm1", "/dev/vdb"))
	suite.Len(suite.Mappings.bdms, 2)
	suite.Equal("device_detached", suite.Publisher.events[0].Name())

	name, err := suite.Service.AllocateDeviceName("vm1", "")
	suite.Require().NoError(err)
	suite.Equal("/dev/vdb", name)
}

func (suite *ServiceTestSuite) TestDetachRootRefused() {
	err := suite.Service.DetachVolume("vm1", "/dev/vda")
	suite.ErrorIs(err, ErrDevicePathInUse)
	suite.Len(suite.Mappings.bdms, 3)
}

func (suite *ServiceTestSuite) TestDetachRootPartitionRefused() {
	err := suite.Service.DetachVolume("vm1", "/dev/vda1")
	suite.ErrorIs(err, ErrDevicePathInUse)
	suite.Len(suite.Mappings.bdms, 3)
}

func (suite *ServiceTestSuite) TestDetachUnknown() {
	err := suite.Service.DetachVolume("vm1", "/dev/vdz")
	suite.ErrorIs(err, ErrMappingNotFound)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
