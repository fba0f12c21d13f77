package model

// SNMPVersion is the SNMP protocol version a device speaks.
type SNMPVersion string

const (
	SNMPv1  SNMPVersion = "v1"
	SNMPv2c SNMPVersion = "v2c"
	SNMPv3  SNMPVersion = "v3"
)

func (v SNMPVersion) IsValid() bool {
	switch v {
	case SNMPv1, SNMPv2c, SNMPv3:
		return true
	default:
		return false
	}
}

// SNMPTransport is the underlying socket transport.
type SNMPTransport string

const (
	SNMPTransportUDP SNMPTransport = "udp"
	SNMPTransportTCP SNMPTransport = "tcp"
)

func (t SNMPTransport) IsValid() bool {
	switch t {
	case SNMPTransportUDP, SNMPTransportTCP:
		return true
	default:
		return false
	}
}

// AuthLevel is the SNMPv3 security level.
type AuthLevel string

const (
	AuthLevelNone     AuthLevel = "none"
	AuthLevelAuth     AuthLevel = "auth"
	AuthLevelAuthPriv AuthLevel = "authPriv"
)

func (l AuthLevel) IsValid() bool {
	switch l {
	case AuthLevelNone, AuthLevelAuth, AuthLevelAuthPriv, "":
		return true
	default:
		return false
	}
}

// AuthProtocol is the SNMPv3 authentication protocol.
type AuthProtocol string

const (
	AuthProtocolMD5    AuthProtocol = "MD5"
	AuthProtocolSHA    AuthProtocol = "SHA"
	AuthProtocolSHA224 AuthProtocol = "SHA224"
	AuthProtocolSHA256 AuthProtocol = "SHA256"
	AuthProtocolSHA384 AuthProtocol = "SHA384"
	AuthProtocolSHA512 AuthProtocol = "SHA512"
)

func (p AuthProtocol) IsValid() bool {
	switch p {
	case AuthProtocolMD5, AuthProtocolSHA, AuthProtocolSHA224, AuthProtocolSHA256, AuthProtocolSHA384, AuthProtocolSHA512, "":
		return true
	default:
		return false
	}
}

// PrivProtocol is the SNMPv3 privacy (encryption) protocol.
type PrivProtocol string

const (
	PrivProtocolDES    PrivProtocol = "DES"
	PrivProtocolAES    PrivProtocol = "AES"
	PrivProtocolAES192 PrivProtocol = "AES192"
	PrivProtocolAES256 PrivProtocol = "AES256"
	PrivProtocol3DES   PrivProtocol = "3DES"
)

func (p PrivProtocol) IsValid() bool {
	switch p {
	case PrivProtocolDES, PrivProtocolAES, PrivProtocolAES192, PrivProtocolAES256, PrivProtocol3DES, "":
		return true
	default:
		return false
	}
}

// SNMPConfig is the per-device SNMP credential and transport config.
type SNMPConfig struct {
	Version   SNMPVersion
	Port      int
	TimeoutMS int
	Retries   int
	Transport SNMPTransport

	// v1/v2c
	Community string

	// v3
	Username     string
	AuthLevel    AuthLevel
	AuthProtocol AuthProtocol
	AuthSecret   string
	PrivProtocol PrivProtocol
	PrivSecret   string
	Context      string
}

// CredentialsComplete reports whether the version-specific credential
// requirements hold: v1/v2c require a community string; v3 with auth
// requires an auth protocol and an 8+ character secret; authPriv
// additionally requires priv_protocol and priv_secret.
func (c SNMPConfig) CredentialsComplete() bool {
	switch c.Version {
	case SNMPv1, SNMPv2c:
		return c.Community != ""
	case SNMPv3:
		if c.AuthLevel == AuthLevelNone || c.AuthLevel == "" {
			return true
		}
		if c.AuthProtocol == "" || len(c.AuthSecret) < 8 {
			return false
		}
		if c.AuthLevel == AuthLevelAuthPriv {
			return c.PrivProtocol != "" && c.PrivSecret != ""
		}
		return true
	default:
		return false
	}
}
