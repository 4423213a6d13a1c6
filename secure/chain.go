package secure

import (
	"crypto/x509"
	"slices"
)

// CertificateChain is the ordered chain a peer presented during the
// handshake, leaf first. It is not validated here.
type CertificateChain struct {
	certs []*x509.Certificate
}

// NewCertificateChain copies certs.
func NewCertificateChain(certs []*x509.Certificate) CertificateChain {
	return CertificateChain{certs: slices.Clone(certs)}
}

func (c CertificateChain) Len() int {
	return len(c.certs)
}

// At returns the i-th certificate; 0 is the leaf.
func (c CertificateChain) At(i int) *x509.Certificate {
	return c.certs[i]
}

// Leaf returns the peer's own certificate, or nil for an empty chain.
func (c CertificateChain) Leaf() *x509.Certificate {
	if len(c.certs) == 0 {
		return nil
	}
	return c.certs[0]
}

// Certificates returns a copy of the chain, e.g. to build
// x509.VerifyOptions.Intermediates.
func (c CertificateChain) Certificates() []*x509.Certificate {
	return slices.Clone(c.certs)
}

// Equal compares the chains certificate by certificate.
func (c CertificateChain) Equal(o CertificateChain) bool {
	return slices.EqualFunc(c.certs, o.certs, func(a, b *x509.Certificate) bool {
		return a.Equal(b)
	})
}
