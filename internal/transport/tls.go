package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

var (
	ErrTLSCAFileRequired   = errors.New("transport: tls ca file required")
	ErrTLSCertFileRequired = errors.New("transport: tls cert file required")
	ErrTLSKeyFileRequired  = errors.New("transport: tls key file required")
	ErrTLSDisabled         = errors.New("transport: tls disabled")
)

// TLSSettings is the file-level TLS description shared by the client and the
// collector.
type TLSSettings struct {
	Enabled            bool
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
	InsecureSkipVerify bool
}

func (s TLSSettings) ValidateClient() error {
	if !s.Enabled {
		return nil
	}
	if strings.TrimSpace(s.CAFile) == "" && !s.InsecureSkipVerify {
		return ErrTLSCAFileRequired
	}
	if strings.TrimSpace(s.CertFile) != "" && strings.TrimSpace(s.KeyFile) == "" {
		return ErrTLSKeyFileRequired
	}
	if strings.TrimSpace(s.KeyFile) != "" && strings.TrimSpace(s.CertFile) == "" {
		return ErrTLSCertFileRequired
	}
	return nil
}

func (s TLSSettings) ValidateServer() error {
	if !s.Enabled {
		return nil
	}
	if strings.TrimSpace(s.CertFile) == "" {
		return ErrTLSCertFileRequired
	}
	if strings.TrimSpace(s.KeyFile) == "" {
		return ErrTLSKeyFileRequired
	}
	return nil
}

// ClientConfig builds the dial-side config for addr. It returns nil when TLS
// is disabled.
func (s TLSSettings) ClientConfig(addr string) (*tls.Config, error) {
	if !s.Enabled {
		return nil, nil
	}
	if err := s.ValidateClient(); err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}

	serverName := strings.TrimSpace(s.ServerName)
	if serverName == "" && addr != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		serverName = host
	}
	cfg.ServerName = serverName

	if caPath := strings.TrimSpace(s.CAFile); caPath != "" {
		pool, err := loadPool(caPath)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if strings.TrimSpace(s.CertFile) != "" {
		cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// ServerConfig builds the listener config. A CA file turns on client
// certificate verification.
func (s TLSSettings) ServerConfig() (*tls.Config, error) {
	if !s.Enabled {
		return nil, ErrTLSDisabled
	}
	if err := s.ValidateServer(); err != nil {
		return nil, err
	}
	cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
	}
	if caPath := strings.TrimSpace(s.CAFile); caPath != "" {
		pool, err := loadPool(caPath)
		if err != nil {
			return nil, err
		}
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		cfg.ClientCAs = pool
	}
	return cfg, nil
}

func loadPool(path string) (*x509.CertPool, error) {
	caPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caPEM); !ok {
		return nil, fmt.Errorf("transport: parse tls ca bundle: %s", path)
	}
	return pool, nil
}
