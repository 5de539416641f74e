package codec

// Metadata is an insertion-ordered collection of frontmatter fields.
// Keys are unique; values are scalars (string, int, bool, float64),
// ordered lists, or nested *Metadata. Unknown fields survive a
// decode/encode round-trip with their order intact.
type Metadata struct {
	fields []field
	index  map[string]int
}

type field struct {
	key   string
	value any
}

// NewMetadata returns an empty metadata collection.
func NewMetadata() *Metadata {
	return &Metadata{index: make(map[string]int)}
}

// Len returns the number of fields.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Keys returns the field keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.key
	}
	return keys
}

// Get returns the value for key and whether it is present.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.fields[i].value, true
}

// Set stores value under key, replacing an existing field in place or
// appending a new one at the end.
func (m *Metadata) Set(key string, value any) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.fields[i].value = value
		return
	}
	m.index[key] = len(m.fields)
	m.fields = append(m.fields, field{key: key, value: value})
}

// Delete removes key if present.
func (m *Metadata) Delete(key string) {
	if m == nil {
		return
	}
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.fields = append(m.fields[:i], m.fields[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.fields); j++ {
		m.index[m.fields[j].key] = j
	}
}

// Clone returns a deep copy. List values are copied; nested Metadata is
// cloned recursively.
func (m *Metadata) Clone() *Metadata {
	out := NewMetadata()
	if m == nil {
		return out
	}
	for _, f := range m.fields {
		out.Set(f.key, cloneValue(f.value))
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case *Metadata:
		return val.Clone()
	case []string:
		return append([]string(nil), val...)
	case []any:
		cp := make([]any, len(val))
		for i, e := range val {
			cp[i] = cloneValue(e)
		}
		return cp
	default:
		return v
	}
}

// String returns the value for key as a string. Missing or non-string
// values yield the zero value.
func (m *Metadata) String(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int returns the value for key as an int. Missing or non-numeric values
// yield zero.
func (m *Metadata) Int(key string) int {
	v, ok := m.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// StringList returns the value for key as a string slice. Scalar string
// elements of an []any list are included; anything else is skipped.
func (m *Metadata) StringList(key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Equal reports deep equality of two metadata collections including
// field order.
func (m *Metadata) Equal(other *Metadata) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, f := range m.fields {
		of := other.fields[i]
		if f.key != of.key || !valueEqual(f.value, of.value) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Metadata:
		bv, ok := b.(*Metadata)
		return ok && av.Equal(bv)
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
