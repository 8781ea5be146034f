// Package filter reduces records to an allow-listed set of attributes before export.
package filter

import (
	"github.com/Velocidex/ordereddict"
	deepcopy "github.com/tiendc/go-deepcopy"
)

// ValuesKey names the attribute holding a record's cell values. Its mapping
// gets an extra cleanup pass: entries whose value is the empty string are
// removed, one level deep.
const ValuesKey = "values"

// AllowList is the set of attribute names that survive filtering.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from attribute names.
func NewAllowList(names ...string) AllowList {
	allow := make(AllowList, len(names))
	for _, name := range names {
		allow[name] = struct{}{}
	}
	return allow
}

// Contains reports whether name is allowed.
func (a AllowList) Contains(name string) bool {
	_, ok := a[name]
	return ok
}

// Records filters every record through Record. The input slice and its
// records are never modified.
func Records(records []*ordereddict.Dict, allow AllowList) []*ordereddict.Dict {
	filtered := make([]*ordereddict.Dict, 0, len(records))
	for _, record := range records {
		filtered = append(filtered, Record(record, allow))
	}
	return filtered
}

// Record returns a filtered copy of record. Attributes not named in allow are
// removed. The values mapping, when present and non-nil, is copied without
// its empty string entries. Any remaining top level attribute whose value is
// nil or the empty string is dropped. Attribute order follows the input.
func Record(record *ordereddict.Dict, allow AllowList) *ordereddict.Dict {
	filtered := ordereddict.NewDict()
	if record == nil {
		return filtered
	}

	for _, name := range record.Keys() {
		if !allow.Contains(name) {
			continue
		}

		value, _ := record.Get(name)
		if name == ValuesKey {
			value = scrubValues(value)
		}
		if value == nil || value == "" {
			continue
		}
		filtered.Set(name, value)
	}
	return filtered
}

// scrubValues copies a mapping without its empty string entries. Anything
// that is not a mapping (including nil) passes through unchanged so the top
// level empty check can still see it.
func scrubValues(value interface{}) interface{} {
	switch mapping := value.(type) {
	case *ordereddict.Dict:
		clean := ordereddict.NewDict()
		for _, key := range mapping.Keys() {
			entry, _ := mapping.Get(key)
			if entry == "" {
				continue
			}
			clean.Set(key, entry)
		}
		return clean

	case map[string]interface{}:
		clean := make(map[string]interface{}, len(mapping))
		if err := deepcopy.Copy(&clean, mapping); err != nil {
			for key, entry := range mapping {
				clean[key] = entry
			}
		}
		for key, entry := range clean {
			if entry == "" {
				delete(clean, key)
			}
		}
		return clean

	default:
		return value
	}
}
