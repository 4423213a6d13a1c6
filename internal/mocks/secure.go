package mocks

import (
	"crypto/x509"

	"github.com/brettbedarf/mailfs/secure"
	"github.com/stretchr/testify/mock"
)

// MockSocket implements secure.Socket for testing across packages
type MockSocket struct {
	mock.Mock
}

func (m *MockSocket) PeerCertificates() ([]*x509.Certificate, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*x509.Certificate), args.Error(1)
}

func (m *MockSocket) Close() error {
	return m.Called().Error(0)
}

var _ secure.Socket = (*MockSocket)(nil)

// MockSession implements secure.Session for testing across packages
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}

var _ secure.Session = (*MockSession)(nil)
