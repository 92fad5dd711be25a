package flex

import (
	"strings"

	"github.com/jinzhu/inflection"
	"gorm.io/gorm/schema"
)

// Options configures flex attributes for one model. Zero values take the
// defaults described on each field.
type Options struct {
	// Companion names the companion model. Default: model name + "Attribute".
	Companion string `yaml:"companion,omitempty" json:"companion,omitempty"`

	// Table is the companion table. Default: the naming strategy's table
	// name for Companion, or the registered companion model's table.
	Table string `yaml:"table,omitempty" json:"table,omitempty"`

	// Relationship is the name of the owner -> companion collection.
	// Default: pluralised snake case of Companion.
	Relationship string `yaml:"relationship,omitempty" json:"relationship,omitempty"`

	// ForeignKey is the companion column referencing the owner.
	// Default: snake case model name + "_id".
	ForeignKey string `yaml:"foreign_key,omitempty" json:"foreign_key,omitempty"`

	// ForeignKeyType is the SQL type used when creating the companion
	// table. Default: BIGINT.
	ForeignKeyType string `yaml:"foreign_key_type,omitempty" json:"foreign_key_type,omitempty"`

	// BaseForeignKey is the owner's own foreign-key convention, used for
	// the companion -> owner link. Default: snake case model name + "_id".
	BaseForeignKey string `yaml:"base_foreign_key,omitempty" json:"base_foreign_key,omitempty"`

	NameField  string `yaml:"name_field,omitempty" json:"name_field,omitempty"`
	ValueField string `yaml:"value_field,omitempty" json:"value_field,omitempty"`

	// Versioned scopes every attribute set by the owner's version column.
	Versioned     bool   `yaml:"versioned,omitempty" json:"versioned,omitempty"`
	VersionColumn string `yaml:"version_column,omitempty" json:"version_column,omitempty"`

	// Fields is an explicit allow-list of flex attribute names.
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`

	// LockOwner takes a row lock on the owner before the companion rows
	// of its scope are replaced.
	LockOwner bool `yaml:"lock_owner,omitempty" json:"lock_owner,omitempty"`
}

const (
	defaultNameField      = "name"
	defaultValueField     = "value"
	defaultVersionColumn  = "version"
	defaultForeignKeyType = "BIGINT"
)

// WithDefaults returns a copy of o with every empty setting filled in for
// the model named modelName. A nil namer means gorm's default naming
// strategy.
func (o Options) WithDefaults(modelName string, namer schema.Namer) Options {
	if namer == nil {
		namer = schema.NamingStrategy{}
	}

	if o.Companion == "" {
		o.Companion = modelName + "Attribute"
	}
	if o.Table == "" {
		o.Table = namer.TableName(o.Companion)
	}
	if o.Relationship == "" {
		o.Relationship = inflection.Plural(namer.ColumnName("", o.Companion))
	}
	if o.ForeignKey == "" {
		o.ForeignKey = namer.ColumnName("", modelName) + "_id"
	}
	if o.ForeignKeyType == "" {
		o.ForeignKeyType = defaultForeignKeyType
	}
	if o.BaseForeignKey == "" {
		o.BaseForeignKey = namer.ColumnName("", modelName) + "_id"
	}
	if o.NameField == "" {
		o.NameField = defaultNameField
	}
	if o.ValueField == "" {
		o.ValueField = defaultValueField
	}
	if o.VersionColumn == "" {
		o.VersionColumn = defaultVersionColumn
	}
	o.Fields = normalizeFields(o.Fields)

	return o
}

// normalizeFields trims names, drops empties and duplicates, keeping order.
func normalizeFields(fields []string) []string {
	if fields == nil {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		result = append(result, f)
	}
	return result
}

// CompanionTable returns the companion table descriptor these options describe,
// without consulting any registered companion model.
func (o Options) CompanionTable() Companion {
	return Companion{
		Name:           o.Companion,
		Table:          o.Table,
		PrimaryKey:     o.ForeignKey,
		ForeignKey:     o.ForeignKey,
		ForeignKeyType: o.ForeignKeyType,
		NameField:      o.NameField,
		ValueField:     o.ValueField,
		Versioned:      o.Versioned,
		VersionColumn:  o.VersionColumn,
		FullRowWrites:  true,
		Dynamic:        true,
	}
}
