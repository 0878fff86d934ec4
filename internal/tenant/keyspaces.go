package tenant

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
)

// listEnabledCQL is the one query this service runs. The enabled predicate
// is evaluated server-side; rows come back in whatever order Keyspaces
// returns them and that order is preserved all the way to the response.
const listEnabledCQL = `SELECT tenant_id, namespace, target_cluster, repo_url, repo_path, labels, params
FROM tenant_ops.tenant_configs
WHERE enabled = true ALLOW FILTERING`

// KeyspacesStore reads tenant configuration over the shared session created
// at startup. The table is owned elsewhere; this store only ever reads.
type KeyspacesStore struct {
	session *gocql.Session
}

var _ Store = (*KeyspacesStore)(nil)

func NewKeyspacesStore(session *gocql.Session) *KeyspacesStore {
	return &KeyspacesStore{session: session}
}

// ListEnabled materializes the whole enabled set in one unpaged fetch. The
// table holds control-plane data and stays small; this is a known scaling
// limit, not an oversight. A row that fails decoding or is missing a
// mandatory column fails the entire call.
func (s *KeyspacesStore) ListEnabled(ctx context.Context) ([]Config, error) {
	iter := s.session.Query(listEnabledCQL).WithContext(ctx).PageSize(0).Iter()

	var out []Config
	for {
		var c Config
		if !iter.Scan(&c.TenantID, &c.Namespace, &c.TargetCluster, &c.RepoURL, &c.RepoPath, &c.Labels, &c.Params) {
			break
		}
		if err := c.Validate(); err != nil {
			iter.Close()
			return nil, err
		}
		out = append(out, c)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("query tenant configs: %w", err)
	}
	return out, nil
}
