// Package generator turns tenant configuration rows into the parameter maps
// the ApplicationSet plugin protocol expects.
package generator

import "github.com/tenantops/appset-keyspaces-plugin/internal/tenant"

// LabelFilter narrows the generated set to tenants carrying a specific
// label value.
type LabelFilter struct {
	Key   string
	Value string
}

// FilterFromParams extracts the optional label filter from the request's
// parameter bag. Both filterLabelKey and filterLabelValue must be present
// as JSON strings; anything else (missing, half-specified, wrong type)
// means no filtering. Unknown parameters are ignored.
func FilterFromParams(params map[string]any) *LabelFilter {
	key, ok := params["filterLabelKey"].(string)
	if !ok {
		return nil
	}
	value, ok := params["filterLabelValue"].(string)
	if !ok {
		return nil
	}
	return &LabelFilter{Key: key, Value: value}
}

// Project filters and flattens tenant rows into one map per tenant,
// preserving row order. With a filter set, a row survives only if its
// labels contain the key with a byte-equal value; rows without labels are
// dropped.
//
// Params are written over the fixed keys, so a tenant param may shadow
// tenantId, namespace, cluster, repoURL, path or labels, and a param named
// "params" is itself shadowed by the nested map. Downstream templates
// depend on this precedence; do not reorder.
func Project(records []tenant.Config, filter *LabelFilter) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if filter != nil {
			v, ok := rec.Labels[filter.Key]
			if !ok || v != filter.Value {
				continue
			}
		}

		m := map[string]any{
			"tenantId":  rec.TenantID,
			"namespace": rec.Namespace,
			"cluster":   rec.TargetCluster,
			"repoURL":   rec.RepoURL,
			"path":      rec.RepoPath,
		}
		if len(rec.Labels) > 0 {
			m["labels"] = rec.Labels
		}
		if len(rec.Params) > 0 {
			// Double representation: each param both flattened to the top
			// level and kept nested under "params", so templates can use
			// either {{.foo}} or {{.params.foo}}.
			for k, v := range rec.Params {
				m[k] = v
			}
			m["params"] = rec.Params
		}
		out = append(out, m)
	}
	return out
}

// Response is the envelope the ApplicationSet controller expects from a
// generator plugin.
type Response struct {
	Output Output `json:"output"`
}

type Output struct {
	// Parameters holds one map per tenant, in query order.
	Parameters []map[string]any `json:"parameters"`
}

// Assemble wraps the projected maps in the plugin response envelope. No
// validation, deduplication or size limiting happens here.
func Assemble(maps []map[string]any) Response {
	return Response{Output: Output{Parameters: maps}}
}
