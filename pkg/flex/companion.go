package flex

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Companion describes the key/value table that stores the flex attributes
// of one owner model.
//
// Rows are never updated in place: a scope is always replaced by deleting
// every row and inserting the new set, so each insert writes the full row.
// The primary key of a companion row is the owner foreign key; Migrate
// indexes it.
type Companion struct {
	Name           string
	Table          string
	PrimaryKey     string
	ForeignKey     string
	ForeignKeyType string
	NameField      string
	ValueField     string
	Versioned      bool
	VersionColumn  string

	// FullRowWrites is always true and only describes the write mode.
	FullRowWrites bool

	// Dynamic is set when no companion model was registered and the
	// descriptor was built from options alone. Dynamic descriptors are
	// static for the life of the process.
	Dynamic bool

	// ModelType is the registered companion model, nil when Dynamic.
	ModelType reflect.Type
}

// Record is one stored flex attribute.
type Record struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Version *int64 `json:"version,omitempty"`
}

// Pair is a pending (name, value) write.
type Pair struct {
	Name  string
	Value string
}

// Scope selects the companion rows owned by one owner, and when Version is
// set, by one version of that owner.
type Scope struct {
	OwnerID interface{}
	Version *int64
}

// Load returns every companion row of the owner, all versions included.
func (c Companion) Load(tx *gorm.DB, ownerID interface{}) ([]Record, error) {
	sql := "SELECT ?, ?"
	vars := []interface{}{
		clause.Column{Name: c.NameField, Alias: "name"},
		clause.Column{Name: c.ValueField, Alias: "value"},
	}
	if c.Versioned {
		sql += ", ?"
		vars = append(vars, clause.Column{Name: c.VersionColumn, Alias: "version"})
	}
	sql += " FROM ? WHERE ? = ?"
	vars = append(vars, clause.Table{Name: c.Table}, clause.Column{Name: c.ForeignKey}, ownerID)

	var records []Record
	if err := tx.Raw(sql, vars...).Scan(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", c.Table)
	}
	return records, nil
}

// DeleteScope removes every row of the scope in one statement and returns
// the number of rows removed.
func (c Companion) DeleteScope(tx *gorm.DB, scope Scope) (int64, error) {
	sql := "DELETE FROM ? WHERE ? = ?"
	vars := []interface{}{clause.Table{Name: c.Table}, clause.Column{Name: c.ForeignKey}, scope.OwnerID}
	if c.Versioned && scope.Version != nil {
		sql += " AND ? = ?"
		vars = append(vars, clause.Column{Name: c.VersionColumn}, *scope.Version)
	}

	result := tx.Exec(sql, vars...)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "failed to delete from %s", c.Table)
	}
	return result.RowsAffected, nil
}

// DeleteOwner removes the rows of every version of the owner.
func (c Companion) DeleteOwner(tx *gorm.DB, ownerID interface{}) (int64, error) {
	return c.DeleteScope(tx, Scope{OwnerID: ownerID})
}

// DeleteMatching removes the rows of every owner selected by owners, a
// query that selects the owner's primary key.
func (c Companion) DeleteMatching(tx *gorm.DB, owners *gorm.DB) (int64, error) {
	result := tx.Exec("DELETE FROM ? WHERE ? IN (?)",
		clause.Table{Name: c.Table}, clause.Column{Name: c.ForeignKey}, owners)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "failed to delete from %s", c.Table)
	}
	return result.RowsAffected, nil
}

// Insert writes one full companion row.
func (c Companion) Insert(tx *gorm.DB, scope Scope, name, value string) error {
	sql := "INSERT INTO ? (?, ?, ?"
	vars := []interface{}{
		clause.Table{Name: c.Table},
		clause.Column{Name: c.ForeignKey},
		clause.Column{Name: c.NameField},
		clause.Column{Name: c.ValueField},
	}
	values := []interface{}{scope.OwnerID, name, value}
	if c.Versioned {
		if scope.Version == nil {
			return errors.Newf("cannot insert into versioned %s without a version", c.Table)
		}
		sql += ", ?"
		vars = append(vars, clause.Column{Name: c.VersionColumn})
		values = append(values, *scope.Version)
	}
	sql += ") VALUES (?, ?, ?"
	if c.Versioned {
		sql += ", ?"
	}
	sql += ")"

	if err := tx.Exec(sql, append(vars, values...)...).Error; err != nil {
		return errors.Wrapf(err, "failed to insert %q into %s", name, c.Table)
	}
	return nil
}

// Replace performs the value-object rebuild of a scope: when there is
// anything to write, or purge is requested, every row of the scope is
// deleted and one row per pair is inserted. It reports whether the scope
// was touched.
func (c Companion) Replace(tx *gorm.DB, scope Scope, pairs []Pair, purge bool) (bool, error) {
	if len(pairs) == 0 && !purge {
		return false, nil
	}
	if c.Versioned && scope.Version == nil {
		return false, errors.Newf("cannot replace versioned %s without a version", c.Table)
	}

	if _, err := c.DeleteScope(tx, scope); err != nil {
		return false, err
	}
	for _, p := range pairs {
		if err := c.Insert(tx, scope, p.Name, p.Value); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Migrate creates the companion table and its owner index when missing.
func (c Companion) Migrate(tx *gorm.DB) error {
	fkType := c.ForeignKeyType
	if fkType == "" {
		fkType = defaultForeignKeyType
	}

	sql := "CREATE TABLE IF NOT EXISTS ? (? " + fkType + " NOT NULL, ? VARCHAR(255) NOT NULL, ? TEXT"
	vars := []interface{}{
		clause.Table{Name: c.Table},
		clause.Column{Name: c.ForeignKey},
		clause.Column{Name: c.NameField},
		clause.Column{Name: c.ValueField},
	}
	if c.Versioned {
		sql += ", ? BIGINT NOT NULL"
		vars = append(vars, clause.Column{Name: c.VersionColumn})
	}
	sql += ")"

	if err := tx.Exec(sql, vars...).Error; err != nil {
		return errors.Wrapf(err, "failed to create %s", c.Table)
	}

	key := c.PrimaryKey
	if key == "" {
		key = c.ForeignKey
	}
	index := "idx_" + c.Table + "_" + key
	err := tx.Exec("CREATE INDEX IF NOT EXISTS ? ON ? (?)",
		clause.Column{Name: index}, clause.Table{Name: c.Table}, clause.Column{Name: key},
	).Error
	if err != nil {
		return errors.Wrapf(err, "failed to index %s", c.Table)
	}
	return nil
}
