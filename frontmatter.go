package pagemill

import "fmt"

// Frontmatter is the metadata block of a content item, keyed by the field
// names of the leading YAML block. An item without a block has an empty map.
type Frontmatter map[string]interface{}

// Title returns the raw, unrendered title value, or "" if unset.
func (f Frontmatter) Title() string {
	v, ok := f["title"]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// Bool reports whether key is set to a true value.
func (f Frontmatter) Bool(key string) bool {
	v, ok := f[key].(bool)
	return ok && v
}

// normalize rewrites the map[interface{}]interface{} values produced by YAML
// decoding into map[string]interface{} so nested fields stay addressable from
// templates.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}
