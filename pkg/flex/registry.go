package flex

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

// Registry maps owner model types to their flex configuration and holds
// the companion models available for resolution. Configurations are
// written once by Enable and only read afterwards.
type Registry struct {
	mu         sync.RWMutex
	configs    map[reflect.Type]*Config
	companions map[string]reflect.Type
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		configs:    make(map[reflect.Type]*Config),
		companions: make(map[string]reflect.Type),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry {
	return defaultRegistry
}

// RegisterCompanion makes a companion model available under its type name.
// Enable uses it instead of a dynamic descriptor when the names match.
func (r *Registry) RegisterCompanion(model interface{}) {
	t := indirectType(model)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.companions[t.Name()] = t
}

// ConfigFor returns the configuration registered for the model's type.
func (r *Registry) ConfigFor(model interface{}) (*Config, bool) {
	if model == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[indirectType(model)]
	return cfg, ok
}

func (r *Registry) configForType(t reflect.Type) *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[t]
}

// Enable turns on flex attributes for the model's type. Enabling a type a
// second time returns the existing configuration untouched.
func (r *Registry) Enable(db *gorm.DB, model Owner, opts Options) (*Config, error) {
	if model == nil {
		return nil, ErrNotOwner
	}
	modelType := indirectType(model)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.configs[modelType]; ok {
		return cfg, nil
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", modelType.Name())
	}
	sch := stmt.Schema

	explicitTable := opts.Table
	opts = opts.WithDefaults(sch.Name, db.NamingStrategy)

	companion, err := r.resolveCompanion(db, opts, explicitTable)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Model:          sch.Name,
		Companion:      companion,
		Relationship:   opts.Relationship,
		BaseForeignKey: opts.BaseForeignKey,
		Fields:         opts.Fields,
		LockOwner:      opts.LockOwner,
		schema:         sch,
		db:             db,
	}
	if opts.Fields != nil {
		cfg.fieldSet = make(map[string]bool, len(opts.Fields))
		for _, f := range opts.Fields {
			cfg.fieldSet[f] = true
		}
	}

	cfg.primaryField = sch.PrioritizedPrimaryField
	if cfg.primaryField == nil && len(sch.PrimaryFields) > 0 {
		cfg.primaryField = sch.PrimaryFields[0]
	}
	if cfg.primaryField == nil {
		return nil, errors.Newf("%s has no primary key", sch.Name)
	}

	if companion.Versioned {
		cfg.versionField = cfg.column(opts.VersionColumn)
		if cfg.versionField == nil {
			return nil, errors.Newf("versioned %s has no %q column", sch.Name, opts.VersionColumn)
		}
	}

	if err := installCallbacks(db, r); err != nil {
		return nil, err
	}

	r.configs[modelType] = cfg

	logger.Logger.Debugw("flex attributes enabled",
		logger.FieldModel, cfg.Model,
		logger.FieldTable, companion.Table,
		"relationship", cfg.Relationship,
		"dynamic", companion.Dynamic,
		"versioned", companion.Versioned,
	)
	return cfg, nil
}

// resolveCompanion returns the descriptor of a registered companion model,
// or a dynamic descriptor when none is registered. Any failure other than
// not-found is returned.
func (r *Registry) resolveCompanion(db *gorm.DB, opts Options, explicitTable string) (Companion, error) {
	sch, err := r.lookupCompanion(db, opts.Companion)
	if errors.Is(err, ErrCompanionNotFound) {
		return opts.CompanionTable(), nil
	}
	if err != nil {
		return Companion{}, err
	}

	companion := opts.CompanionTable()
	companion.Dynamic = false
	companion.ModelType = sch.ModelType
	if explicitTable == "" {
		companion.Table = sch.Table
	}

	required := []string{opts.ForeignKey, opts.NameField, opts.ValueField}
	if opts.Versioned {
		required = append(required, opts.VersionColumn)
	}
	for _, column := range required {
		if _, ok := sch.FieldsByDBName[column]; !ok {
			return Companion{}, errors.Newf("companion %s has no %q column", sch.Name, column)
		}
	}
	return companion, nil
}

func (r *Registry) lookupCompanion(db *gorm.DB, name string) (*schema.Schema, error) {
	t, ok := r.companions[name]
	if !ok {
		return nil, errors.Wrapf(ErrCompanionNotFound, "%s", name)
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(reflect.New(t).Interface()); err != nil {
		return nil, errors.Wrapf(err, "failed to resolve companion %s", name)
	}
	return stmt.Schema, nil
}

func indirectType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Package-level shortcuts on the default registry.

// Enable turns on flex attributes for the model on the default registry.
func Enable(db *gorm.DB, model Owner, opts Options) (*Config, error) {
	return defaultRegistry.Enable(db, model, opts)
}

// RegisterCompanion registers a companion model on the default registry.
func RegisterCompanion(model interface{}) {
	defaultRegistry.RegisterCompanion(model)
}

// ConfigFor returns the default registry's configuration for the model.
func ConfigFor(model interface{}) (*Config, bool) {
	return defaultRegistry.ConfigFor(model)
}
