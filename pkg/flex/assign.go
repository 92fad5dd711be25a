package flex

import "sort"

// Assign applies a batch of attributes to owner. Names that are not flex
// attributes of the model are skipped without error. Keys are applied in
// sorted order so the pending buffer is deterministic.
func (c *Config) Assign(owner Owner, attrs map[string]interface{}) (Owner, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !c.IsFlexAttribute(owner, name) {
			continue
		}
		if err := c.Write(owner, name, attrs[name]); err != nil {
			return owner, err
		}
	}
	return owner, nil
}

// Assign mass-assigns attrs on owner using the default registry.
func Assign(owner Owner, attrs map[string]interface{}) (Owner, error) {
	cfg, err := configOf(owner)
	if err != nil {
		return owner, err
	}
	return cfg.Assign(owner, attrs)
}
