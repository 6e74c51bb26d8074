package config

import (
	"fmt"
	"io/ioutil"
	"subuk/devname/compute"
	"subuk/devname/util"

	"github.com/hashicorp/hcl"
	"github.com/imdario/mergo"
)

const (
	BackendFilesystem = "filesystem"
	BackendLibvirt    = "libvirt"
)

type UserWebConfig struct {
	Id             string `hcl:",key"`
	HashedPassword string `hcl:"hashed_password"`
}

type WebConfig struct {
	Listen         string          `hcl:"listen"`
	TrustedProxies []string        `hcl:"trusted_proxies"`
	Users          []UserWebConfig `hcl:"user"`
}

type SubscribeConfig struct {
	Event     string `hcl:",key"`
	Script    string `hcl:"script"`
	Mandatory bool   `hcl:"mandatory"`
}

type LibvirtConfig struct {
	Uri string `hcl:"uri"`
}

type Config struct {
	LogLevel     string            `hcl:"log_level"`
	Driver       string            `hcl:"driver"`
	DiskBus      string            `hcl:"disk_bus"`
	Backend      string            `hcl:"backend"`
	InstanceFile string            `hcl:"instance_file"`
	MappingFile  string            `hcl:"mapping_file"`
	Libvirt      LibvirtConfig     `hcl:"libvirt"`
	Web          WebConfig         `hcl:"web"`
	Subscribes   []SubscribeConfig `hcl:"subscribe"`
}

func Default() *Config {
	return &Config{
		LogLevel:     "info",
		Driver:       compute.DriverGeneric,
		DiskBus:      compute.DeviceBusVirtio.String(),
		Backend:      BackendFilesystem,
		InstanceFile: "~/.devname/instances.yaml",
		MappingFile:  "~/.devname/mappings.json",
		Libvirt: LibvirtConfig{
			Uri: "qemu:///system",
		},
		Web: WebConfig{
			Listen: ":8080",
		},
	}
}

func Parse(filename string) (*Config, error) {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, util.NewError(err, "cannot read configuration file")
	}
	return ParseString(string(content))
}

func ParseString(content string) (*Config, error) {
	config := &Config{}
	if err := hcl.Decode(config, content); err != nil {
		return nil, util.NewError(err, "invalid configuration format")
	}
	if err := mergo.Merge(config, Default()); err != nil {
		return nil, util.NewError(err, "cannot apply default configuration value")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *Config) Bus() compute.DeviceBus {
	return compute.NewDeviceBus(config.DiskBus)
}

func (config *Config) validate() error {
	switch config.Driver {
	default:
		return fmt.Errorf("unknown driver '%s'", config.Driver)
	case compute.DriverGeneric, compute.DriverXen:
	case compute.DriverLibvirt:
		if config.Bus().Prefix() == "" {
			return fmt.Errorf("disk bus '%s' cannot be used for device naming", config.DiskBus)
		}
	}
	switch config.Backend {
	default:
		return fmt.Errorf("unknown backend '%s'", config.Backend)
	case BackendFilesystem:
	case BackendLibvirt:
		if config.Libvirt.Uri == "" {
			return fmt.Errorf("no uri specified for libvirt backend")
		}
	}
	userIds := map[string]struct{}{}
	for _, user := range config.Web.Users {
		if _, exists := userIds[user.Id]; exists {
			return fmt.Errorf("duplicate user '%s'", user.Id)
		}
		userIds[user.Id] = struct{}{}
		if user.HashedPassword == "" {
			return fmt.Errorf("no hashed_password specified for user '%s'", user.Id)
		}
	}
	for _, sub := range config.Subscribes {
		if sub.Script == "" {
			return fmt.Errorf("no script specified for '%s' subscription", sub.Event)
		}
	}
	return nil
}
