package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"maildir", "sendmail", "smtp", "smtps"}, Names())

	d, ok := Lookup("sendmail")
	require.True(t, ok)
	assert.Same(t, Sendmail, d)

	_, ok = Lookup("pop3")
	assert.False(t, ok)
}

func TestSendmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "transport.sendmail.", Sendmail.PropertyPrefix())
	props := Sendmail.AvailableProperties()
	require.Len(t, props, 1)
	assert.Equal(t, "transport.sendmail.binpath", Key(Sendmail, props[0]))
	assert.Equal(t, DefaultSendmailPath, props[0].Default)
	assert.False(t, props[0].Required())
}

func TestSMTPDescriptors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		info   *Info
		prefix string
		port   string
	}{
		{SMTP, "transport.smtp.", "25"},
		{SMTPS, "transport.smtps.", "465"},
	}
	for _, tt := range tests {
		t.Run(tt.info.Name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.prefix, tt.info.PropertyPrefix())

			port, ok := tt.info.Property(PropServerPort)
			require.True(t, ok)
			assert.Equal(t, Port, port.Type)
			assert.Equal(t, tt.port, port.Default)

			addr, ok := tt.info.Property(PropServerAddress)
			require.True(t, ok)
			assert.True(t, addr.Required())

			pass, ok := tt.info.Property(PropPassword)
			require.True(t, ok)
			assert.True(t, pass.Hidden())
			assert.False(t, pass.Required())

			sasl, _ := tt.info.Property(PropSASL)
			assert.Equal(t, "true", sasl.Default)
		})
	}
}

func TestPropertiesKeepDeclarationOrder(t *testing.T) {
	t.Parallel()
	props := SMTP.AvailableProperties()
	require.NotEmpty(t, props)
	assert.Equal(t, PropNeedAuthentication, props[0].Name)
	assert.Equal(t, PropServerPort, props[len(props)-1].Name)

	props[0].Name = "mutated"
	again, ok := SMTP.Property(PropNeedAuthentication)
	assert.True(t, ok, "callers must not be able to alter the declaration")
	assert.Equal(t, Boolean, again.Type)
}

func TestTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "port", Port.String())
	assert.Equal(t, "boolean", Boolean.String())
	assert.Equal(t, "unknown", Type(42).String())
}
