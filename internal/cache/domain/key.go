// Package domain defines cache keys, entries and the Handle abstraction the
// synchronizer mutates.
package domain

import (
	"fmt"
	"maps"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached query: an entity type plus its filter parameters.
// Distinct parameter sets always produce distinct keys.
type Key struct {
	Entity string
	Params map[string]string
}

// NewKey builds a key from alternating name/value pairs.
func NewKey(entity string, pairs ...string) Key {
	k := Key{Entity: entity}
	if len(pairs) > 0 {
		k.Params = make(map[string]string, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			k.Params[pairs[i]] = pairs[i+1]
		}
	}
	return k
}

// With returns a copy of the key with one more parameter.
func (k Key) With(name, value string) Key {
	params := make(map[string]string, len(k.Params)+1)
	maps.Copy(params, k.Params)
	params[name] = value
	return Key{Entity: k.Entity, Params: params}
}

// String renders the canonical form "entity?a=1&b=2" with parameters sorted by name.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return url.PathEscape(k.Entity)
	}
	return url.PathEscape(k.Entity) + "?" + encodeParams(k.Params)
}

// Pattern returns a pattern that matches exactly this key's entity and parameters.
func (k Key) Pattern() Pattern {
	return Pattern(k)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	entityPart, query, _ := strings.Cut(s, "?")
	entity, err := url.PathUnescape(entityPart)
	if err != nil || entity == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	k := Key{Entity: entity}
	if query == "" {
		return k, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: %w", ErrInvalidKey, s, err)
	}
	k.Params = make(map[string]string, len(values))
	for name, v := range values {
		if len(v) > 0 {
			k.Params[name] = v[0]
		}
	}
	return k, nil
}

// Pattern selects keys for invalidation: same entity, and every pattern parameter present
// with the same value. An empty parameter set matches every key of the entity.
type Pattern struct {
	Entity string
	Params map[string]string
}

// EntityPattern matches every key of an entity.
func EntityPattern(entity string) Pattern {
	return Pattern{Entity: entity}
}

// Matches reports whether key is selected by the pattern.
func (p Pattern) Matches(key Key) bool {
	if p.Entity != key.Entity {
		return false
	}
	for name, value := range p.Params {
		if v, ok := key.Params[name]; !ok || v != value {
			return false
		}
	}
	return true
}

// String renders the pattern in the key form.
func (p Pattern) String() string {
	return Key(p).String()
}

func encodeParams(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[name]))
	}
	return b.String()
}
