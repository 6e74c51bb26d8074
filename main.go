package main

import (
	"fmt"
	"os"
	"subuk/devname/bootstrap"
	"subuk/devname/util"

	"github.com/akamensky/argparse"
)

func main() {
	parser := argparse.NewParser("devname", "Block device name allocator")
	configFilename := parser.String("c", "config", &argparse.Options{
		Default: util.GetenvDefault("DEVNAME_CONFIG", "devname.conf"),
		Help:    "Configuration file path",
	})
	serveCmd := parser.NewCommand("serve", "Run http api server")
	allocateCmd := parser.NewCommand("allocate", "Print device name for the next volume of an instance")
	allocateInstance := allocateCmd.String("i", "instance", &argparse.Options{Required: true, Help: "Instance id"})
	allocateDevice := allocateCmd.String("d", "device", &argparse.Options{Help: "Requested device path, e.g. /dev/vdc"})
	attachCmd := parser.NewCommand("attach", "Attach volume to an instance")
	attachInstance := attachCmd.String("i", "instance", &argparse.Options{Required: true, Help: "Instance id"})
	attachDevice := attachCmd.String("d", "device", &argparse.Options{Help: "Requested device path"})
	attachVolume := attachCmd.String("v", "volume", &argparse.Options{Help: "Volume id"})
	attachSource := attachCmd.String("s", "source", &argparse.Options{Help: "Volume source path on the host"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}
	switch {
	case serveCmd.Happened():
		bootstrap.Web(*configFilename)
	case allocateCmd.Happened():
		bootstrap.Allocate(*configFilename, *allocateInstance, *allocateDevice)
	case attachCmd.Happened():
		bootstrap.Attach(*configFilename, *attachInstance, *attachDevice, *attachVolume, *attachSource)
	}
}
