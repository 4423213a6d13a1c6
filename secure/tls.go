package secure

import (
	"crypto/tls"
	"crypto/x509"
	"net"
)

// TLSSession carries the TLS configuration every socket of a transport is
// opened with.
type TLSSession struct {
	config *tls.Config
}

// NewTLSSession keeps a private copy of cfg.
func NewTLSSession(cfg *tls.Config) *TLSSession {
	return &TLSSession{config: cfg.Clone()}
}

// Client wraps an established connection as the client side. The handshake
// runs on first I/O or on PeerCertificates.
func (s *TLSSession) Client(conn net.Conn) *TLSSocket {
	return &TLSSocket{conn: tls.Client(conn, s.config)}
}

// Server wraps an established connection as the server side.
func (s *TLSSession) Server(conn net.Conn) *TLSSocket {
	return &TLSSocket{conn: tls.Server(conn, s.config)}
}

// Close is a no-op; a session holds no OS resource of its own.
func (s *TLSSession) Close() error {
	return nil
}

// TLSSocket is a Socket over crypto/tls.
type TLSSocket struct {
	conn *tls.Conn
}

func NewTLSSocket(conn *tls.Conn) *TLSSocket {
	return &TLSSocket{conn: conn}
}

// Conn exposes the TLS connection for the protocol layer.
func (s *TLSSocket) Conn() *tls.Conn {
	return s.conn
}

// Handshake completes the handshake if it has not run yet.
func (s *TLSSocket) Handshake() error {
	return s.conn.Handshake()
}

func (s *TLSSocket) PeerCertificates() ([]*x509.Certificate, error) {
	if err := s.conn.Handshake(); err != nil {
		return nil, err
	}
	return s.conn.ConnectionState().PeerCertificates, nil
}

func (s *TLSSocket) Close() error {
	return s.conn.Close()
}

var (
	_ Session = (*TLSSession)(nil)
	_ Socket  = (*TLSSocket)(nil)
)
