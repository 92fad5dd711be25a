package flex

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Config is the flex configuration of one owner model. It is built once by
// Enable and shared, read-only, by every instance of the model.
type Config struct {
	Model     string
	Companion Companion

	// Relationship and BaseForeignKey are descriptive: they name the
	// owner's collection and foreign-key convention for callers and logs,
	// and nothing in this package queries through them.
	Relationship   string
	BaseForeignKey string

	// Fields is the allow-list, nil when none was configured.
	Fields    []string
	LockOwner bool

	fieldSet     map[string]bool
	schema       *schema.Schema
	primaryField *schema.Field
	versionField *schema.Field
	db           *gorm.DB
}

// Schema returns the owner model's parsed schema.
func (c *Config) Schema() *schema.Schema {
	return c.schema
}

// column returns the schema field backing a real column, matched by Go
// field name or column name. Ignored fields are not columns.
func (c *Config) column(name string) *schema.Field {
	f := c.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return nil
	}
	return f
}

// IsColumn reports whether name is a native column of the owner model.
func (c *Config) IsColumn(name string) bool {
	return c.column(name) != nil
}

func ownerValue(owner Owner) reflect.Value {
	return reflect.Indirect(reflect.ValueOf(owner))
}

func (c *Config) readColumn(ctx context.Context, owner Owner, f *schema.Field) interface{} {
	v, _ := f.ValueOf(ctx, ownerValue(owner))
	return v
}

func (c *Config) writeColumn(ctx context.Context, owner Owner, f *schema.Field, value interface{}) error {
	rv := ownerValue(owner)
	if !rv.CanAddr() {
		return errors.Newf("cannot assign %s on a non-addressable %s", f.Name, c.Model)
	}
	if err := f.Set(ctx, rv, value); err != nil {
		return errors.Wrapf(err, "failed to assign %s.%s", c.Model, f.Name)
	}
	return nil
}

// scope returns the owner's identity and, when versioned, its current
// version. A zero identity is reported as nil OwnerID.
func (c *Config) scope(ctx context.Context, owner Owner) (Scope, error) {
	rv := ownerValue(owner)

	var scope Scope
	if id, zero := c.primaryField.ValueOf(ctx, rv); !zero {
		scope.OwnerID = id
	}

	if c.versionField != nil {
		raw, _ := c.versionField.ValueOf(ctx, rv)
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return scope, errors.Wrapf(err, "invalid %s version", c.Model)
		}
		scope.Version = &v
	}
	return scope, nil
}
