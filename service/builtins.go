package service

// Property names shared by the network transports.
const (
	PropNeedAuthentication = "options.need-authentication"
	PropSASL               = "options.sasl"
	PropSASLFallback       = "options.sasl.fallback"
	PropUsername           = "auth.username"
	PropPassword           = "auth.password"
	PropTLS                = "connection.tls"
	PropTLSRequired        = "connection.tls.required"
	PropServerAddress      = "server.address"
	PropServerPort         = "server.port"
	PropServerRootPath     = "server.rootpath"
	PropBinPath            = "binpath"
)

const DefaultSendmailPath = "/usr/sbin/sendmail"

// Sendmail hands messages to the local MTA binary.
var Sendmail = register(&Info{
	Name:   "sendmail",
	Prefix: "transport.sendmail.",
	Properties: []Property{
		{Name: PropBinPath, Type: String, Default: DefaultSendmailPath},
	},
})

func smtpProperties(port string) []Property {
	return []Property{
		{Name: PropNeedAuthentication, Type: Boolean, Default: "false"},
		{Name: PropSASL, Type: Boolean, Default: "true"},
		{Name: PropSASLFallback, Type: Boolean, Default: "false"},
		{Name: PropUsername, Type: String},
		{Name: PropPassword, Type: String, Flags: Hidden},
		{Name: PropTLS, Type: Boolean, Default: "false"},
		{Name: PropTLSRequired, Type: Boolean, Default: "false"},
		{Name: PropServerAddress, Type: String, Flags: Required},
		{Name: PropServerPort, Type: Port, Default: port},
	}
}

// SMTP is plain SMTP, optionally upgraded with STARTTLS.
var SMTP = register(&Info{
	Name:       "smtp",
	Prefix:     "transport.smtp.",
	Properties: smtpProperties("25"),
})

// SMTPS is SMTP over a dedicated TLS port.
var SMTPS = register(&Info{
	Name:       "smtps",
	Prefix:     "transport.smtps.",
	Properties: smtpProperties("465"),
})

// Maildir is a local maildir store rooted at server.rootpath.
var Maildir = register(&Info{
	Name:   "maildir",
	Prefix: "store.maildir.",
	Properties: []Property{
		{Name: PropServerRootPath, Type: String, Flags: Required},
	},
})
