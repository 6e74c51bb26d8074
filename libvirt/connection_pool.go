package libvirt

import (
	"fmt"
	"subuk/devname/util"
	"sync"

	"github.com/rs/zerolog"

	libvirt "github.com/libvirt/libvirt-go"
)

// ConnectionPool hands out a single cached libvirt connection, one user at
// a time. Acquire blocks until the previous user calls Release.
type ConnectionPool struct {
	uri    string
	mutex  *sync.Mutex
	logger zerolog.Logger
	cached *libvirt.Connect
}

func NewConnectionPool(uri string, logger zerolog.Logger) *ConnectionPool {
	return &ConnectionPool{
		uri:    uri,
		mutex:  &sync.Mutex{},
		logger: logger,
	}
}

func (p *ConnectionPool) Acquire() (*libvirt.Connect, error) {
	p.mutex.Lock()
	if p.cached == nil {
		p.logger.Debug().Str("uri", p.uri).Msg("establishing new connection")
		conn, err := libvirt.NewConnect(p.uri)
		if err != nil {
			p.mutex.Unlock()
			return nil, util.NewError(err, "cannot open libvirt connection")
		}
		p.cached = conn
	}
	alive, err := p.cached.IsAlive()
	if err != nil || !alive {
		p.logger.Warn().Err(err).Msg("dropping dead libvirt connection")
		p.cached.Close()
		p.cached = nil
		p.mutex.Unlock()
		if err != nil {
			return nil, util.NewError(err, "libvirt connection is not alive")
		}
		return nil, fmt.Errorf("libvirt connection is not alive")
	}
	return p.cached, nil
}

func (p *ConnectionPool) Release(conn *libvirt.Connect) {
	p.mutex.Unlock()
}
