package permissions

import (
	"sort"
	"strings"

	"github.com/nordwerk/teamdesk/app/models"
)

// Set holds "app:scope" keys. The zero value is not usable; call NewSet.
type Set map[string]struct{}

func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s Set) Add(appKey, scopeKey string) {
	s[models.PermissionKey(appKey, scopeKey)] = struct{}{}
}

func (s Set) Remove(appKey, scopeKey string) {
	delete(s, models.PermissionKey(appKey, scopeKey))
}

func (s Set) Has(appKey, scopeKey string) bool {
	_, ok := s[models.PermissionKey(appKey, scopeKey)]
	return ok
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Keys returns the sorted "app:scope" strings.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnabledApps returns the distinct app keys with at least one scope present,
// sorted. An app never appears here with zero surviving scopes.
func (s Set) EnabledApps() []string {
	seen := make(map[string]struct{})
	for k := range s {
		if idx := strings.IndexByte(k, ':'); idx > 0 {
			seen[k[:idx]] = struct{}{}
		}
	}
	apps := make([]string, 0, len(seen))
	for a := range seen {
		apps = append(apps, a)
	}
	sort.Strings(apps)
	return apps
}
