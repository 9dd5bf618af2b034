package institutions

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"dario.cat/mergo"

	"unisync-backend/lib/configutil"
)

// ConfigName is the optional override file for institution profiles.
// University sites redesign without notice, so selector lists must be
// swappable in a deployment without rebuilding the binary.
const ConfigName = "institutions.json5"

var ErrUnknownInstitution = fmt.Errorf("unknown institution")

// Registry holds all institution profiles: builtins merged with any
// overrides from institutions.json5. Safe for concurrent use; Reload
// re-applies overrides in place so long-running workers pick up selector
// fixes without a restart.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewRegistry() (*Registry, error) {
	r := &Registry{}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func builtins() map[string]Profile {
	out := map[string]Profile{}
	for _, p := range []Profile{bguProfile(), tauProfile(), hujiProfile()} {
		out[p.ID] = p
	}
	return out
}

// Reload rebuilds the profile table from builtins plus the override file.
// Overrides merge field-wise on top of the builtin profile; an override
// with an unknown id defines a whole new institution.
func (r *Registry) Reload() error {
	profiles := builtins()

	overrides, err := configutil.ReadRecursively[map[string]Profile](ConfigName)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read institution overrides: %w", err)
	}
	for id, override := range overrides {
		base, ok := profiles[id]
		if !ok {
			override.ID = id
			profiles[id] = override
			slog.Info("registered institution from config", "institution", id)
			continue
		}
		err = mergo.Merge(&base, override, mergo.WithOverride)
		if err != nil {
			return fmt.Errorf("failed to merge overrides for %s: %w", id, err)
		}
		profiles[id] = base
		slog.Info("applied institution overrides", "institution", id)
	}

	r.mu.Lock()
	r.profiles = profiles
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the profile for the given institution id.
func (r *Registry) Get(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownInstitution, id)
	}
	return profile, nil
}

// IDs returns all registered institution ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids
}
