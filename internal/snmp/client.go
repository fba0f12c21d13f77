// Package snmp implements the SNMP Transport: session reuse,
// GET/GETNEXT/WALK/GETBULK/SET, and value parsing into the tagged-union
// Varbind representation. Generalized from the teacher's
// internal/snmp/client.go (SNMPClient/SNMPClientConfig/NewClient) from a
// single-shot client into a reusable, session-table-backed transport.
package snmp

import (
	"errors"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/ymonitor/ymonitor/internal/model"
)

// ClientConfig mirrors the teacher's SNMPClientConfig, generalized to
// take a model.SNMPConfig plus a target hostname.
type ClientConfig struct {
	Target         string
	Port           uint16
	Version        gosnmp.SnmpVersion
	Auth           Auth
	Timeout        time.Duration
	Retries        int
	MaxRepetitions uint32
}

// Auth holds SNMP v2c community or v3 authentication parameters,
// mirroring the teacher's SNMPAuth.
type Auth struct {
	Community      string
	Username       string
	AuthProtocol   gosnmp.SnmpV3AuthProtocol
	AuthPassphrase string
	PrivProtocol   gosnmp.SnmpV3PrivProtocol
	PrivPassphrase string
	SecurityLevel  gosnmp.SnmpV3MsgFlags
}

// ConfigFromDevice converts a model.SNMPConfig + hostname into the
// gosnmp-facing ClientConfig.
func ConfigFromDevice(hostname string, cfg model.SNMPConfig) ClientConfig {
	c := ClientConfig{
		Target:         hostname,
		Port:           uint16(cfg.Port),
		Timeout:        time.Duration(cfg.TimeoutMS) * time.Millisecond,
		Retries:        cfg.Retries,
		MaxRepetitions: 20,
	}
	switch cfg.Version {
	case model.SNMPv1:
		c.Version = gosnmp.Version1
	case model.SNMPv3:
		c.Version = gosnmp.Version3
	default:
		c.Version = gosnmp.Version2c
	}
	if cfg.Version == model.SNMPv3 {
		c.Auth = Auth{
			Username:       cfg.Username,
			AuthPassphrase: cfg.AuthSecret,
			PrivPassphrase: cfg.PrivSecret,
			AuthProtocol:   authProtocolOf(cfg.AuthProtocol),
			PrivProtocol:   privProtocolOf(cfg.PrivProtocol),
			SecurityLevel:  securityLevelOf(cfg.AuthLevel),
		}
	} else {
		c.Auth = Auth{Community: cfg.Community}
	}
	return c
}

func authProtocolOf(p model.AuthProtocol) gosnmp.SnmpV3AuthProtocol {
	switch p {
	case model.AuthProtocolMD5:
		return gosnmp.MD5
	case model.AuthProtocolSHA:
		return gosnmp.SHA
	case model.AuthProtocolSHA224:
		return gosnmp.SHA224
	case model.AuthProtocolSHA256:
		return gosnmp.SHA256
	case model.AuthProtocolSHA384:
		return gosnmp.SHA384
	case model.AuthProtocolSHA512:
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func privProtocolOf(p model.PrivProtocol) gosnmp.SnmpV3PrivProtocol {
	switch p {
	case model.PrivProtocolDES:
		return gosnmp.DES
	case model.PrivProtocolAES:
		return gosnmp.AES
	case model.PrivProtocolAES192:
		return gosnmp.AES192
	case model.PrivProtocolAES256:
		return gosnmp.AES256
	case model.PrivProtocol3DES:
		return gosnmp.DES // gosnmp has no distinct 3DES const; DES transform is closest available
	default:
		return gosnmp.NoPriv
	}
}

func securityLevelOf(l model.AuthLevel) gosnmp.SnmpV3MsgFlags {
	switch l {
	case model.AuthLevelAuthPriv:
		return gosnmp.AuthPriv
	case model.AuthLevelAuth:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

// client wraps gosnmp.GoSNMP with the helper methods the transport needs,
// mirroring the teacher's SNMPClient.
type client struct {
	gs *gosnmp.GoSNMP
}

func newClient(cfg ClientConfig) (*client, error) {
	cfg = normalize(cfg)
	if cfg.Target == "" {
		return nil, errors.New("snmp: target is required")
	}

	gs := &gosnmp.GoSNMP{
		Target:         cfg.Target,
		Port:           cfg.Port,
		Version:        cfg.Version,
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		MaxRepetitions: cfg.MaxRepetitions,
	}

	switch cfg.Version {
	case gosnmp.Version3:
		if cfg.Auth.Username == "" {
			return nil, errors.New("snmp: v3 username is required")
		}
		gs.SecurityModel = gosnmp.UserSecurityModel
		gs.MsgFlags = cfg.Auth.SecurityLevel
		gs.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 cfg.Auth.Username,
			AuthenticationProtocol:   cfg.Auth.AuthProtocol,
			AuthenticationPassphrase: cfg.Auth.AuthPassphrase,
			PrivacyProtocol:          cfg.Auth.PrivProtocol,
			PrivacyPassphrase:        cfg.Auth.PrivPassphrase,
		}
	default:
		gs.Community = cfg.Auth.Community
	}

	if err := gs.Connect(); err != nil {
		return nil, fmt.Errorf("snmp: connect failed: %w", err)
	}

	return &client{gs: gs}, nil
}

func (c *client) close() {
	if c == nil || c.gs == nil || c.gs.Conn == nil {
		return
	}
	_ = c.gs.Conn.Close()
}

func normalize(cfg ClientConfig) ClientConfig {
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.Version == 0 {
		cfg.Version = gosnmp.Version2c
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 1
	}
	if cfg.MaxRepetitions == 0 {
		cfg.MaxRepetitions = 20
	}
	if cfg.Version != gosnmp.Version3 && cfg.Auth.Community == "" {
		cfg.Auth.Community = "public"
	}
	return cfg
}
