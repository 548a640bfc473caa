package reconciler

import (
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/pkg/logging"
)

// Reconcile computes the mutations that bring existing in line with desired.
//
// Configs are matched by key. The key function must only read fields that
// identify a config, never display or tuning fields. Desired configs without an existing match are
// added, existing configs without a desired match are deleted, and matched
// pairs produce an update that fully replaces the existing config while
// keeping its UUID. Added and updated configs follow the order of desired,
// deleted configs the order of existing.
//
// Reconcile never fails and never mutates its inputs. When two existing
// configs share a key, the later one wins. Desired configs must have unique
// keys; see CheckKeys.
func Reconcile[K comparable](desired, existing []cvconfig.CVConfig, key func(cvconfig.CVConfig) K) MutationSet {
	existingByKey := make(map[K]int, len(existing))
	for i, c := range existing {
		k := key(c)
		if prev, dup := existingByKey[k]; dup {
			logging.Debug("Reconciler", "Existing configs %q and %q share key %v, keeping the latter",
				existing[prev].UUID, c.UUID, k)
		}
		existingByKey[k] = i
	}

	result := MutationSet{
		Added:   []cvconfig.CVConfig{},
		Updated: []cvconfig.CVConfig{},
		Deleted: []cvconfig.CVConfig{},
	}

	desiredKeys := make(map[K]struct{}, len(desired))
	for _, c := range desired {
		k := key(c)
		desiredKeys[k] = struct{}{}
		if i, ok := existingByKey[k]; ok {
			result.Updated = append(result.Updated, c.WithUUID(existing[i].UUID))
			continue
		}
		result.Added = append(result.Added, c.WithUUID(""))
	}

	for i, c := range existing {
		k := key(c)
		if _, ok := desiredKeys[k]; ok {
			continue
		}
		// A shadowed duplicate is neither updated nor deleted.
		if existingByKey[k] != i {
			continue
		}
		result.Deleted = append(result.Deleted, c)
	}

	logging.Debug("Reconciler", "Reconciled %d desired against %d existing: %d added, %d updated, %d deleted",
		len(desired), len(existing), len(result.Added), len(result.Updated), len(result.Deleted))
	return result
}

// KeyCollisionError reports desired configs that map to the same key.
type KeyCollisionError struct {
	Key    string
	First  string
	Second string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("configs %q and %q share the key %s", e.First, e.Second, e.Key)
}

// CheckKeys returns a *KeyCollisionError when two configs in desired share a key.
func CheckKeys[K comparable](desired []cvconfig.CVConfig, key func(cvconfig.CVConfig) K) error {
	seen := make(map[K]cvconfig.CVConfig, len(desired))
	for _, c := range desired {
		k := key(c)
		if prev, ok := seen[k]; ok {
			return &KeyCollisionError{Key: fmt.Sprintf("%+v", k), First: prev.Label(), Second: c.Label()}
		}
		seen[k] = c
	}
	return nil
}
