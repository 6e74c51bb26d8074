package filesystem

import (
	"io/ioutil"
	"subuk/devname/compute"
	"subuk/devname/util"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"
)

type instanceFlavorRecord struct {
	Name      string `yaml:"name"`
	VCpus     int    `yaml:"vcpus"`
	Memory    string `yaml:"memory"`
	Root      string `yaml:"root"`
	Ephemeral string `yaml:"ephemeral"`
	Swap      string `yaml:"swap"`
}

type instanceRecord struct {
	Id                     string               `yaml:"id"`
	RootDeviceName         string               `yaml:"root_device_name"`
	DefaultEphemeralDevice string               `yaml:"default_ephemeral_device"`
	DefaultSwapDevice      string               `yaml:"default_swap_device"`
	Flavor                 instanceFlavorRecord `yaml:"flavor"`
}

type instanceInventory struct {
	Instances []instanceRecord `yaml:"instances"`
}

// InstanceStorage reads instances from a yaml inventory file. Flavor sizes
// are human readable, e.g. "20GiB" or "512MiB".
type InstanceStorage struct {
	filename string
}

func NewInstanceStorage(filename string) *InstanceStorage {
	return &InstanceStorage{filename: util.ExpandHomeDir(filename)}
}

func parseSize(value string, unit uint64) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	return size / unit, nil
}

func (record instanceRecord) instance() (*compute.Instance, error) {
	instance := &compute.Instance{
		Id:                     record.Id,
		RootDeviceName:         record.RootDeviceName,
		DefaultEphemeralDevice: record.DefaultEphemeralDevice,
		DefaultSwapDevice:      record.DefaultSwapDevice,
		Flavor: compute.Flavor{
			Name:  record.Flavor.Name,
			VCpus: record.Flavor.VCpus,
		},
	}
	var err error
	if instance.Flavor.MemoryMb, err = parseSize(record.Flavor.Memory, humanize.MiByte); err != nil {
		return nil, util.NewError(err, "invalid memory size for instance %s", record.Id)
	}
	if instance.Flavor.RootGb, err = parseSize(record.Flavor.Root, humanize.GiByte); err != nil {
		return nil, util.NewError(err, "invalid root size for instance %s", record.Id)
	}
	if instance.Flavor.EphemeralGb, err = parseSize(record.Flavor.Ephemeral, humanize.GiByte); err != nil {
		return nil, util.NewError(err, "invalid ephemeral size for instance %s", record.Id)
	}
	if instance.Flavor.SwapMb, err = parseSize(record.Flavor.Swap, humanize.MiByte); err != nil {
		return nil, util.NewError(err, "invalid swap size for instance %s", record.Id)
	}
	return instance, nil
}

func (repo *InstanceStorage) Get(id string) (*compute.Instance, error) {
	content, err := ioutil.ReadFile(repo.filename)
	if err != nil {
		return nil, util.NewError(err, "cannot read inventory file")
	}
	inventory := instanceInventory{}
	if err := yaml.Unmarshal(content, &inventory); err != nil {
		return nil, util.NewError(err, "cannot parse inventory file")
	}
	for _, record := range inventory.Instances {
		if record.Id == id {
			return record.instance()
		}
	}
	return nil, compute.ErrInstanceNotFound
}
