package resources

// Tag is a user-assigned key/value label on a cloud resource
type Tag struct {
	Key   string
	Value string
}

// Tags is the normalised tag list of a resource
type Tags []Tag

// Get returns the value of the first tag named key, or "" if there is none
func (t Tags) Get(key string) string {
	v, _ := t.Lookup(key)
	return v
}

// Lookup is like Get but also reports whether the tag exists
func (t Tags) Lookup(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

// NewTags converts an SDK tag list into Tags. Every AWS service ships its own
// tag struct with *string fields, so callers pass accessors for key and value.
// Entries without a key are dropped.
func NewTags[T any](in []T, key, value func(T) *string) Tags {
	if len(in) == 0 {
		return nil
	}
	out := make(Tags, 0, len(in))
	for _, t := range in {
		k := key(t)
		if k == nil {
			continue
		}
		tag := Tag{Key: *k}
		if v := value(t); v != nil {
			tag.Value = *v
		}
		out = append(out, tag)
	}
	return out
}

// Record is one item returned by a resource-listing call
type Record struct {
	// Fields holds the direct attributes of the resource keyed by logical name
	Fields map[string]any
	Tags   Tags
}

var fieldAliases = map[string]string{
	"ip":         "ip_address",
	"private_ip": "private_ip_address",
}

// Get resolves a logical key against the record: the aliased key is looked up
// in Fields first, then the key is tried as a tag name ("name" maps to the
// "Name" tag). It returns nil when neither exists.
func (r Record) Get(key string) any {
	field := key
	if alias, ok := fieldAliases[key]; ok {
		field = alias
	}
	if v, ok := r.Fields[field]; ok {
		return v
	}

	tagKey := key
	if key == "name" {
		tagKey = "Name"
	}
	if v, ok := r.Tags.Lookup(tagKey); ok {
		return v
	}
	return nil
}

// Project returns the record's values for the given columns
func (r Record) Project(columns Columns) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		row[i] = r.Get(col)
	}
	return row
}
