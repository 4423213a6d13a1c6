// Package secure reports the identity and trust material of established
// mail server connections without exposing the transport itself.
package secure

import (
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/brettbedarf/mailfs/internal/util"
)

// Session is an opaque secured session, e.g. a TLS configuration shared by
// every connection of a transport.
type Session interface {
	io.Closer
}

// Socket is an opaque secured socket.
type Socket interface {
	io.Closer
	// PeerCertificates returns the chain presented by the peer, completing
	// the handshake first if needed.
	PeerCertificates() ([]*x509.Certificate, error)
}

// ConnectionInfo identifies the remote end of a transport connection.
type ConnectionInfo interface {
	Host() string
	Port() uint16
}

// DefaultConnectionInfo describes a plain, unsecured connection.
type DefaultConnectionInfo struct {
	host string
	port uint16
}

func NewDefaultConnectionInfo(host string, port uint16) *DefaultConnectionInfo {
	return &DefaultConnectionInfo{host: host, port: port}
}

func (i *DefaultConnectionInfo) Host() string { return i.host }
func (i *DefaultConnectionInfo) Port() uint16 { return i.port }

// SecuredConnectionInfo describes a secured connection. It holds a reference
// on the session and socket for its lifetime; the transport keeps its own.
// Whichever holder releases last closes the resource.
type SecuredConnectionInfo struct {
	host    string
	port    uint16
	session *Handle[Session]
	socket  *Handle[Socket]
	logger  util.Logger

	mu       sync.Mutex
	fetched  bool
	chain    CertificateChain
	chainErr error
	released bool
}

// NewSecuredConnectionInfo retains session and socket on behalf of the info.
// Call Release when the info is no longer needed.
func NewSecuredConnectionInfo(host string, port uint16, session *Handle[Session], socket *Handle[Socket]) (*SecuredConnectionInfo, error) {
	if err := session.Retain(); err != nil {
		return nil, fmt.Errorf("retain session: %w", err)
	}
	if err := socket.Retain(); err != nil {
		_ = session.Release()
		return nil, fmt.Errorf("retain socket: %w", err)
	}
	return &SecuredConnectionInfo{
		host:    host,
		port:    port,
		session: session,
		socket:  socket,
		logger:  util.GetLogger("secure"),
	}, nil
}

func (i *SecuredConnectionInfo) Host() string { return i.host }
func (i *SecuredConnectionInfo) Port() uint16 { return i.port }

// Session returns the shared session handle.
func (i *SecuredConnectionInfo) Session() *Handle[Session] {
	return i.session
}

// Socket returns the shared socket handle.
func (i *SecuredConnectionInfo) Socket() *Handle[Socket] {
	return i.socket
}

// PeerCertificates asks the socket for the peer chain on the first call and
// returns that same chain, or the same error, on every later call. After
// Release it only answers if the chain was already obtained.
func (i *SecuredConnectionInfo) PeerCertificates() (CertificateChain, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fetched {
		return i.chain, i.chainErr
	}
	if i.released {
		return CertificateChain{}, ErrReleased
	}

	certs, err := i.socket.Value().PeerCertificates()
	i.fetched = true
	if err != nil {
		i.chainErr = fmt.Errorf("peer certificates of %s:%d: %w", i.host, i.port, err)
		return CertificateChain{}, i.chainErr
	}
	i.chain = NewCertificateChain(certs)
	i.logger.Debug().Str("host", i.host).Uint16("port", i.port).Int("certs", i.chain.Len()).Msg("Peer certificates obtained")
	return i.chain, nil
}

// Release drops the info's references on the session and socket. It is
// safe to call more than once.
func (i *SecuredConnectionInfo) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.released {
		return nil
	}
	i.released = true
	return errors.Join(i.socket.Release(), i.session.Release())
}

var (
	_ ConnectionInfo = (*DefaultConnectionInfo)(nil)
	_ ConnectionInfo = (*SecuredConnectionInfo)(nil)
)
