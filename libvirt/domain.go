package libvirt

import (
	"subuk/devname/compute"
	"subuk/devname/util"

	libvirt "github.com/libvirt/libvirt-go"
	libvirtxml "github.com/libvirt/libvirt-go-xml"
)

func lookupDomain(conn *libvirt.Connect, id string) (*libvirt.Domain, error) {
	domain, err := conn.LookupDomainByName(id)
	if err != nil {
		if lverr, ok := err.(libvirt.Error); ok && lverr.Code == libvirt.ERR_NO_DOMAIN {
			return nil, compute.ErrInstanceNotFound
		}
		return nil, util.NewError(err, "domain lookup failed")
	}
	return domain, nil
}

func domainConfig(domain *libvirt.Domain) (*libvirtxml.Domain, error) {
	domainXml, err := domain.GetXMLDesc(0)
	if err != nil {
		return nil, util.NewError(err, "cannot get domain xml")
	}
	config := &libvirtxml.Domain{}
	if err := config.Unmarshal(domainXml); err != nil {
		return nil, util.NewError(err, "cannot unmarshal domain xml")
	}
	return config, nil
}

func domainDisks(config *libvirtxml.Domain) []libvirtxml.DomainDisk {
	if config.Devices == nil {
		return nil
	}
	return config.Devices.Disks
}
