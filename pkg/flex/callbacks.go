package flex

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

const (
	callbackRebuildCreate = "flex:rebuild_after_create"
	callbackRebuildUpdate = "flex:rebuild_after_update"
	callbackCascadeDelete = "flex:cascade_delete"
)

// hookSet lists the registries served by the callbacks installed on one
// GORM callback set. Sessions copy *gorm.Config but share its callbacks,
// so every session of a database reaches the same hookSet.
type hookSet struct {
	mu         sync.RWMutex
	registries []*Registry
}

var (
	hookedMu sync.Mutex
	hooked   = map[interface{}]*hookSet{}
)

// installCallbacks hooks the rebuild and cascade callbacks into db. The
// rebuild runs after the owner's own statement and before the transaction
// is committed, so the companion rows commit or roll back with the owner.
func installCallbacks(db *gorm.DB, r *Registry) error {
	hookedMu.Lock()
	defer hookedMu.Unlock()

	if set, ok := hooked[db.Callback()]; ok {
		set.add(r)
		return nil
	}

	set := &hookSet{}
	err := db.Callback().Create().
		After("gorm:create").
		Before("gorm:commit_or_rollback_transaction").
		Register(callbackRebuildCreate, set.rebuild)
	if err != nil {
		return errors.Wrap(err, "failed to register create callback")
	}

	err = db.Callback().Update().
		After("gorm:update").
		Before("gorm:commit_or_rollback_transaction").
		Register(callbackRebuildUpdate, set.rebuild)
	if err != nil {
		return errors.Wrap(err, "failed to register update callback")
	}

	err = db.Callback().Delete().
		Before("gorm:delete").
		Register(callbackCascadeDelete, set.cascade)
	if err != nil {
		return errors.Wrap(err, "failed to register delete callback")
	}

	set.add(r)
	hooked[db.Callback()] = set
	return nil
}

func (s *hookSet) add(r *Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.registries {
		if existing == r {
			return
		}
	}
	s.registries = append(s.registries, r)
}

// configFor finds the configuration of the statement's model among the
// registries of the set.
func (s *hookSet) configFor(db *gorm.DB) *Config {
	if db.Error != nil || db.Statement.Schema == nil || db.DryRun {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.registries {
		if cfg := r.configForType(db.Statement.Schema.ModelType); cfg != nil {
			return cfg
		}
	}
	return nil
}

func (s *hookSet) rebuild(db *gorm.DB) {
	cfg := s.configFor(db)
	if cfg == nil {
		return
	}

	tx := db.Session(&gorm.Session{NewDB: true})
	err := eachOwner(db.Statement.ReflectValue, func(owner Owner) error {
		return cfg.rebuild(tx, owner)
	})
	if err != nil {
		_ = db.AddError(err)
	}
}

// cascade deletes the companion rows of the owners a delete statement is
// about to remove. Loaded owners are matched by primary key. When the
// statement carries conditions, the rows are matched through a subquery on
// the owner table using those conditions, so deletes by key or by query
// cascade too.
func (s *hookSet) cascade(db *gorm.DB) {
	cfg := s.configFor(db)
	if cfg == nil {
		return
	}

	var (
		ctx    = db.Statement.Context
		tx     = db.Session(&gorm.Session{NewDB: true})
		owners []Owner
		ids    []interface{}
	)
	err := eachOwner(db.Statement.ReflectValue, func(owner Owner) error {
		scope, err := cfg.scope(ctx, owner)
		if err != nil {
			return err
		}
		owners = append(owners, owner)
		if scope.OwnerID != nil {
			ids = append(ids, scope.OwnerID)
		}
		return nil
	})
	if err != nil {
		_ = db.AddError(err)
		return
	}

	where, conditional := db.Statement.Clauses["WHERE"]
	conditional = conditional && where.Expression != nil

	var n int64
	switch {
	case conditional || (len(ids) == 0 && db.AllowGlobalUpdate):
		query := tx.Model(reflect.New(cfg.schema.ModelType).Interface()).
			Table(db.Statement.Table).
			Select(cfg.primaryField.DBName)
		if conditional {
			query = query.Clauses(where.Expression)
		}
		if len(ids) > 0 {
			query = query.Where(clause.IN{Column: clause.PrimaryColumn, Values: ids})
		}
		n, err = cfg.Companion.DeleteMatching(tx, query)
	case len(ids) > 0:
		for _, id := range ids {
			deleted, err := cfg.Companion.DeleteOwner(tx, id)
			if err != nil {
				_ = db.AddError(err)
				return
			}
			n += deleted
		}
	default:
		return
	}
	if err != nil {
		_ = db.AddError(err)
		return
	}

	for _, owner := range owners {
		owner.FlexAttributes().invalidate()
	}

	logger.Logger.Debugw("flex attributes deleted with owner",
		logger.FieldModel, cfg.Model,
		logger.FieldTable, cfg.Companion.Table,
		logger.FieldOwnerID, ids,
		logger.FieldCount, n,
	)
}

// rebuild replaces the owner's companion rows in its current scope with
// the pending writes. Nothing happens when there are no pending writes and
// no purge was requested.
func (c *Config) rebuild(tx *gorm.DB, owner Owner) error {
	a := owner.FlexAttributes()
	if len(a.pending) == 0 && !a.purge {
		return nil
	}

	ctx := tx.Statement.Context
	scope, err := c.scope(ctx, owner)
	if err != nil {
		return err
	}
	if scope.OwnerID == nil {
		return errors.Newf("cannot save flex attributes of %s without a primary key", c.Model)
	}

	if c.LockOwner {
		if err := c.lockOwner(tx, scope); err != nil {
			return err
		}
	}

	if _, err := c.Companion.Replace(tx, scope, a.pending, true); err != nil {
		return err
	}

	logger.Logger.Debugw("flex attributes rebuilt",
		logger.FieldModel, c.Model,
		logger.FieldTable, c.Companion.Table,
		logger.FieldOwnerID, scope.OwnerID,
		logger.FieldVersion, scope.Version,
		logger.FieldCount, len(a.pending),
		"purge", a.purge,
	)

	a.invalidate()
	a.purge = false
	a.pending = nil
	return nil
}

// lockOwner takes a row lock on the owner for the rest of the transaction.
// Dialects without row locks ignore the locking clause.
func (c *Config) lockOwner(tx *gorm.DB, scope Scope) error {
	var rows []map[string]interface{}
	err := tx.Model(reflect.New(c.schema.ModelType).Interface()).
		Select(c.primaryField.DBName).
		Where(clause.Eq{Column: clause.Column{Name: c.primaryField.DBName}, Value: scope.OwnerID}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&rows).Error
	if err != nil {
		return errors.Wrapf(err, "failed to lock %s", c.Model)
	}
	return nil
}

// eachOwner calls fn for every addressable Owner in a statement's
// reflected value, which is a struct or a slice of structs or pointers.
func eachOwner(rv reflect.Value, fn func(Owner) error) error {
	if !rv.IsValid() {
		return nil
	}
	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := eachOwner(rv.Index(i), fn); err != nil {
				return err
			}
		}
	case reflect.Struct:
		if !rv.CanAddr() {
			return nil
		}
		if owner, ok := rv.Addr().Interface().(Owner); ok {
			return fn(owner)
		}
	}
	return nil
}
