package secure_test

import (
	"crypto/x509"
	"errors"
	"math/big"
	"testing"

	"github.com/brettbedarf/mailfs/internal/mocks"
	"github.com/brettbedarf/mailfs/secure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChain() []*x509.Certificate {
	return []*x509.Certificate{
		{Raw: []byte("leaf"), SerialNumber: big.NewInt(1)},
		{Raw: []byte("intermediate"), SerialNumber: big.NewInt(2)},
	}
}

func newInfo(t *testing.T, sock *mocks.MockSocket, sess *mocks.MockSession) (*secure.SecuredConnectionInfo, *secure.Handle[secure.Session], *secure.Handle[secure.Socket]) {
	t.Helper()
	sessH := secure.NewHandle[secure.Session](sess)
	sockH := secure.NewHandle[secure.Socket](sock)
	info, err := secure.NewSecuredConnectionInfo("smtp.example.org", 465, sessH, sockH)
	require.NoError(t, err)
	return info, sessH, sockH
}

func TestDefaultConnectionInfo(t *testing.T) {
	t.Parallel()
	var info secure.ConnectionInfo = secure.NewDefaultConnectionInfo("mx.example.org", 25)
	assert.Equal(t, "mx.example.org", info.Host())
	assert.Equal(t, uint16(25), info.Port())
}

func TestPeerCertificatesIdempotent(t *testing.T) {
	t.Parallel()
	sock := &mocks.MockSocket{}
	sock.On("PeerCertificates").Return(fakeChain(), nil).Once()
	info, _, _ := newInfo(t, sock, &mocks.MockSession{})

	first, err := info.PeerCertificates()
	require.NoError(t, err)
	second, err := info.PeerCertificates()
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, []byte("leaf"), first.Leaf().Raw)
	sock.AssertNumberOfCalls(t, "PeerCertificates", 1)
	assert.Equal(t, "smtp.example.org", info.Host())
	assert.Equal(t, uint16(465), info.Port())
}

func TestPeerCertificatesErrorIsCached(t *testing.T) {
	t.Parallel()
	handshakeErr := errors.New("handshake failure")
	sock := &mocks.MockSocket{}
	sock.On("PeerCertificates").Return(nil, handshakeErr).Once()
	info, _, _ := newInfo(t, sock, &mocks.MockSession{})

	_, err1 := info.PeerCertificates()
	_, err2 := info.PeerCertificates()

	assert.ErrorIs(t, err1, handshakeErr)
	assert.Equal(t, err1, err2)
	sock.AssertNumberOfCalls(t, "PeerCertificates", 1)
}

func TestInfoNeverClosesWhileTransportHolds(t *testing.T) {
	t.Parallel()
	sock := &mocks.MockSocket{}
	sess := &mocks.MockSession{}
	info, sessH, sockH := newInfo(t, sock, sess)
	assert.Equal(t, 2, sockH.Refs())
	assert.Same(t, sessH, info.Session())
	assert.Same(t, sockH, info.Socket())

	require.NoError(t, info.Release())
	require.NoError(t, info.Release(), "second release is a no-op")
	sock.AssertNotCalled(t, "Close")
	sess.AssertNotCalled(t, "Close")
	assert.Equal(t, 1, sockH.Refs())

	_, err := info.PeerCertificates()
	assert.ErrorIs(t, err, secure.ErrReleased)

	sock.On("Close").Return(nil).Once()
	sess.On("Close").Return(nil).Once()
	require.NoError(t, sockH.Release())
	require.NoError(t, sessH.Release())
	sock.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestInfoOutlivesTransport(t *testing.T) {
	t.Parallel()
	sock := &mocks.MockSocket{}
	sess := &mocks.MockSession{}
	sock.On("PeerCertificates").Return(fakeChain(), nil).Once()
	info, sessH, sockH := newInfo(t, sock, sess)

	// transport tears down first
	require.NoError(t, sockH.Release())
	require.NoError(t, sessH.Release())
	sock.AssertNotCalled(t, "Close")

	chain, err := info.PeerCertificates()
	require.NoError(t, err)
	assert.Equal(t, 2, chain.Len())

	closeErr := errors.New("close failed")
	sock.On("Close").Return(closeErr).Once()
	sess.On("Close").Return(nil).Once()
	err = info.Release()
	assert.ErrorIs(t, err, closeErr)
	sock.AssertExpectations(t)
	sess.AssertExpectations(t)

	cached, err := info.PeerCertificates()
	require.NoError(t, err, "an obtained chain stays available")
	assert.True(t, cached.Equal(chain))
}

func TestNewInfoOnReleasedHandle(t *testing.T) {
	t.Parallel()
	sess := &mocks.MockSession{}
	sock := &mocks.MockSocket{}
	sock.On("Close").Return(nil).Once()
	sessH := secure.NewHandle[secure.Session](sess)
	sockH := secure.NewHandle[secure.Socket](sock)
	require.NoError(t, sockH.Release())

	_, err := secure.NewSecuredConnectionInfo("h", 1, sessH, sockH)

	assert.ErrorIs(t, err, secure.ErrReleased)
	assert.Equal(t, 1, sessH.Refs(), "session reference must be given back")
	sess.AssertNotCalled(t, "Close")
}

func TestHandle(t *testing.T) {
	t.Parallel()
	sess := &mocks.MockSession{}
	h := secure.NewHandle[secure.Session](sess)

	require.NoError(t, h.Retain())
	assert.Equal(t, 2, h.Refs())
	require.NoError(t, h.Release())
	sess.AssertNotCalled(t, "Close")

	sess.On("Close").Return(nil).Once()
	require.NoError(t, h.Release())
	sess.AssertExpectations(t)

	assert.ErrorIs(t, h.Retain(), secure.ErrReleased)
	assert.ErrorIs(t, h.Release(), secure.ErrReleased)
	assert.Zero(t, h.Refs())
}

func TestCertificateChain(t *testing.T) {
	t.Parallel()
	certs := fakeChain()
	chain := secure.NewCertificateChain(certs)
	certs[0] = nil

	require.Equal(t, 2, chain.Len())
	assert.NotNil(t, chain.At(0), "chain keeps its own copy")
	assert.Equal(t, []byte("intermediate"), chain.At(1).Raw)

	out := chain.Certificates()
	out[1] = nil
	assert.NotNil(t, chain.At(1))

	assert.True(t, chain.Equal(secure.NewCertificateChain(fakeChain())))
	assert.False(t, chain.Equal(secure.NewCertificateChain(fakeChain()[:1])))
	assert.Nil(t, secure.CertificateChain{}.Leaf())
	assert.True(t, secure.CertificateChain{}.Equal(secure.NewCertificateChain(nil)))
}
