package flex

// Classifier lets a model replace flex classification with its own rule.
// When implemented, the allow-list and FieldEnumerator are not consulted.
// Native columns are never flex, whatever the classifier answers.
type Classifier interface {
	FlexAttribute(name string) bool
}

// FieldEnumerator lets a model list its flex attribute names. A configured
// allow-list takes precedence.
type FieldEnumerator interface {
	FlexAttributeFields() []string
}

// IsFlexAttribute reports whether name is stored as a flex attribute of
// owner. owner is only used for the Classifier and FieldEnumerator hooks
// and may be a zero value of the model.
func (c *Config) IsFlexAttribute(owner interface{}, name string) bool {
	if name == "" || c.IsColumn(name) {
		return false
	}

	if classifier, ok := owner.(Classifier); ok {
		return classifier.FlexAttribute(name)
	}

	if c.fieldSet != nil {
		return c.fieldSet[name]
	}

	if enumerator, ok := owner.(FieldEnumerator); ok {
		for _, f := range enumerator.FlexAttributeFields() {
			if f == name {
				return true
			}
		}
		return false
	}

	return true
}

// IsFlexAttribute classifies name for owner using the default registry.
// Models that were never enabled have no flex attributes.
func IsFlexAttribute(owner Owner, name string) bool {
	cfg, ok := defaultRegistry.ConfigFor(owner)
	if !ok {
		return false
	}
	return cfg.IsFlexAttribute(owner, name)
}
