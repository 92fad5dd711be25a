package flex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

func TestOptionsWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		opts     Options
		namer    schema.Namer
		expected Options
	}{
		{
			name:  "all defaults",
			model: "Paris",
			expected: Options{
				Companion:      "ParisAttribute",
				Table:          "paris_attributes",
				Relationship:   "paris_attributes",
				ForeignKey:     "paris_id",
				ForeignKeyType: "BIGINT",
				BaseForeignKey: "paris_id",
				NameField:      "name",
				ValueField:     "value",
				VersionColumn:  "version",
			},
		},
		{
			name:  "camel case model",
			model: "RecipeCard",
			expected: Options{
				Companion:      "RecipeCardAttribute",
				Table:          "recipe_card_attributes",
				Relationship:   "recipe_card_attributes",
				ForeignKey:     "recipe_card_id",
				ForeignKeyType: "BIGINT",
				BaseForeignKey: "recipe_card_id",
				NameField:      "name",
				ValueField:     "value",
				VersionColumn:  "version",
			},
		},
		{
			name:  "explicit settings are kept",
			model: "Paris",
			opts: Options{
				Companion:      "CityFact",
				ForeignKey:     "city_id",
				ForeignKeyType: "UUID",
				NameField:      "key",
				ValueField:     "val",
				Versioned:      true,
				VersionColumn:  "revision",
				Fields:         []string{"a", "", " b", "a"},
				LockOwner:      true,
			},
			expected: Options{
				Companion:      "CityFact",
				Table:          "city_facts",
				Relationship:   "city_facts",
				ForeignKey:     "city_id",
				ForeignKeyType: "UUID",
				BaseForeignKey: "paris_id",
				NameField:      "key",
				ValueField:     "val",
				Versioned:      true,
				VersionColumn:  "revision",
				Fields:         []string{"a", "b"},
				LockOwner:      true,
			},
		},
		{
			name:  "naming strategy prefix",
			model: "Paris",
			namer: schema.NamingStrategy{TablePrefix: "app_", SingularTable: true},
			expected: Options{
				Companion:      "ParisAttribute",
				Table:          "app_paris_attribute",
				Relationship:   "paris_attributes",
				ForeignKey:     "paris_id",
				ForeignKeyType: "BIGINT",
				BaseForeignKey: "paris_id",
				NameField:      "name",
				ValueField:     "value",
				VersionColumn:  "version",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.opts.WithDefaults(tt.model, tt.namer))
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	assert.Nil(t, normalizeFields(nil))
	assert.Equal(t, []string{}, normalizeFields([]string{" ", ""}))
	assert.Equal(t, []string{"x", "y"}, normalizeFields([]string{"x", "y", "x "}))
}

func TestCompanionTable(t *testing.T) {
	c := Options{Versioned: true}.WithDefaults("Document", nil).CompanionTable()

	assert.Equal(t, "DocumentAttribute", c.Name)
	assert.Equal(t, "document_attributes", c.Table)
	assert.Equal(t, "document_id", c.PrimaryKey)
	assert.Equal(t, "document_id", c.ForeignKey)
	assert.True(t, c.Versioned)
	assert.True(t, c.FullRowWrites)
	assert.True(t, c.Dynamic)
	assert.Nil(t, c.ModelType)
}
