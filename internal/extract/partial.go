package extract

// Partial is a tentative, loosely-typed result. Any field may be missing.
type Partial struct {
	Fields map[string]any
	Tier   Tier
}

// NewPartial wraps fields, copying the top level.
func NewPartial(fields map[string]any, tier Tier) Partial {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Partial{Fields: cp, Tier: tier}
}

// Get returns the first present, non-nil value among keys.
func (p Partial) Get(keys ...string) (any, bool) {
	return lookup(p.Fields, keys...)
}

// Map returns the first value among keys that is an object.
func (p Partial) Map(keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if m, ok := p.Fields[k].(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

// String returns the first non-empty string value among keys.
func (p Partial) String(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := p.Fields[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
