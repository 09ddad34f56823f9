package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// ExportJSON renders the launch specs of the given servers as formatted JSON,
// keyed by identifier.
func ExportJSON(r *launch.Registry, ids ...string) ([]byte, error) {
	specs, err := resolveAll(r, ids)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(specs, "", "  ")
}

// ExportYAML renders the same document as ExportJSON in YAML.
func ExportYAML(r *launch.Registry, ids ...string) ([]byte, error) {
	specs, err := resolveAll(r, ids)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(specs)
}

// resolveAll resolves ids, or every registered server when ids is empty.
// All unknown identifiers are reported together.
func resolveAll(r *launch.Registry, ids []string) (map[string]launch.LaunchSpec, error) {
	if len(ids) == 0 {
		ids = r.IDs()
	}
	specs := make(map[string]launch.LaunchSpec, len(ids))
	var errs []error
	for _, id := range ids {
		spec, err := r.Resolve(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs[id] = spec
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("exporting servers: %w", errors.Join(errs...))
	}
	return specs, nil
}
