package tenant

import (
	"context"
	"fmt"
)

// Config is one row of tenant_ops.tenant_configs: where and how to deploy a
// single tenant from the shared template.
type Config struct {
	TenantID      string
	Namespace     string
	TargetCluster string
	RepoURL       string
	RepoPath      string
	// Labels is used only for request-time filtering and echoed back when
	// present. Params carries arbitrary template parameters.
	Labels map[string]string
	Params map[string]string
}

// Validate rejects rows with a missing mandatory column. The drivers scan a
// null text column as the empty string, so emptiness is the signal.
func (c Config) Validate() error {
	for _, col := range []struct{ name, value string }{
		{"tenant_id", c.TenantID},
		{"namespace", c.Namespace},
		{"target_cluster", c.TargetCluster},
		{"repo_url", c.RepoURL},
		{"repo_path", c.RepoPath},
	} {
		if col.value == "" {
			return fmt.Errorf("tenant row missing mandatory column %s", col.name)
		}
	}
	return nil
}

// Store lists the tenant rows eligible for generation. Implementations must
// be safe for concurrent use; the HTTP layer calls ListEnabled from one
// goroutine per request against a single shared instance.
type Store interface {
	ListEnabled(ctx context.Context) ([]Config, error)
}
