package bootstrap

import (
	"fmt"
	"net/http"
	"os"
	"subuk/devname/compute"
	"subuk/devname/config"
	"subuk/devname/filesystem"
	"subuk/devname/libvirt"
	"subuk/devname/web"

	"github.com/rs/zerolog"
)

func setup(configFilename string) (*config.Config, zerolog.Logger, *compute.Service) {
	cfg, err := config.Parse(configFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: invalid log level '%s'\n", cfg.LogLevel)
		os.Exit(1)
	}
	logger = logger.Level(level)

	var instances compute.InstanceRepository
	var bdms compute.BlockDeviceMappingRepository
	switch cfg.Backend {
	case config.BackendLibvirt:
		pool := libvirt.NewConnectionPool(cfg.Libvirt.Uri, logger.With().Str("component", "libvirt-connection-pool").Logger())
		instances = libvirt.NewInstanceRepository(pool)
		bdms = libvirt.NewBlockDeviceMappingRepository(pool)
	default:
		storage, err := filesystem.NewBlockDeviceMappingStorage(cfg.MappingFile)
		if err != nil {
			logger.Error().Err(err).Msg("cannot initialize mapping storage")
			os.Exit(1)
		}
		instances = filesystem.NewInstanceStorage(cfg.InstanceFile)
		bdms = storage
	}

	epub := filesystem.NewScriptedComputeEventBroker(logger.With().Str("component", "event-broker").Logger())
	for _, sub := range cfg.Subscribes {
		epub.Subscribe(sub.Event, sub.Script, sub.Mandatory)
	}

	settings := compute.ServiceSettings{Driver: cfg.Driver, Bus: cfg.Bus()}
	service := compute.New(instances, bdms, epub, settings, logger.With().Str("component", "compute").Logger())
	return cfg, logger, service
}

func Web(configFilename string) {
	cfg, logger, service := setup(configFilename)
	server := http.Server{
		Addr:    cfg.Web.Listen,
		Handler: web.New(cfg, logger.With().Str("component", "web").Logger(), service),
	}
	logger.Info().Str("addr", server.Addr).Str("driver", cfg.Driver).Str("backend", cfg.Backend).Msg("starting server")
	if err := server.ListenAndServe(); err != nil {
		logger.Error().Err(err).Msg("serve failed")
		os.Exit(1)
	}
}

// Allocate prints the device name that would be given to the next volume
// of the instance.
func Allocate(configFilename, instanceId, device string) {
	_, logger, service := setup(configFilename)
	name, err := service.AllocateDeviceName(instanceId, device)
	if err != nil {
		logger.Error().Err(err).Str("instance", instanceId).Msg("allocation failed")
		os.Exit(1)
	}
	fmt.Println(name)
}

func Attach(configFilename, instanceId, device, volumeId, source string) {
	_, logger, service := setup(configFilename)
	bdm, err := service.AttachVolume(compute.VolumeAttachmentParams{
		InstanceId: instanceId,
		DeviceName: device,
		VolumeId:   volumeId,
		Source:     source,
	})
	if err != nil {
		logger.Error().Err(err).Str("instance", instanceId).Msg("attach failed")
		os.Exit(1)
	}
	fmt.Println(bdm.DeviceName)
}
