// Package keyspaces owns the single TLS session to AWS Keyspaces that the
// whole process shares. It is created once at startup and handed to the
// tenant store; request handlers never touch it directly.
package keyspaces

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/gocql/gocql"

	"github.com/tenantops/appset-keyspaces-plugin/internal/config"
)

// Keyspaces exposes the Cassandra wire protocol on a fixed regional
// endpoint; there is no service discovery.
const tlsPort = 9142

// Connect opens the long-lived session used by every request. Any failure
// here (unreadable certificate, missing credentials, handshake error) is
// fatal for the process: there is no retry and no degraded mode.
func Connect(cfg config.KeyspacesConfig) (*gocql.Session, error) {
	pool := x509.NewCertPool()
	pem, err := readRootCert(cfg.RootCert)
	if err != nil {
		return nil, err
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates parsed from %s", cfg.RootCert)
	}

	host := fmt.Sprintf("cassandra.%s.amazonaws.com", cfg.Region)
	cluster := gocql.NewCluster(host)
	cluster.Port = tlsPort
	cluster.SslOpts = &gocql.SslOptions{
		// Trust only the root in the mounted file, not the system pool.
		Config: &tls.Config{RootCAs: pool, ServerName: host},
	}
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	// Keyspaces requires LOCAL_QUORUM and does not publish peers the way a
	// self-hosted cluster would, so stick to the contact point.
	cluster.Consistency = gocql.LocalQuorum
	cluster.DisableInitialHostLookup = true
	cluster.ProtoVersion = 4
	cluster.ConnectTimeout = 10 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create keyspaces session: %w", err)
	}
	return session, nil
}

func readRootCert(path string) ([]byte, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read root certificate: %w", err)
	}
	return pem, nil
}
