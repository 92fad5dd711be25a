package flex

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Owner is implemented by every model that embeds Attributes.
type Owner interface {
	FlexAttributes() *Attributes
}

// Attributes holds the per-instance flex state of an owner: the pending
// writes, the purge request and the cached companion rows. Embed it in the
// model with the `gorm:"-"` tag:
//
//	type Paris struct {
//		ID   uint
//		Name string
//		flex.Attributes `gorm:"-"`
//	}
type Attributes struct {
	pending []Pair
	purge   bool
	records []Record
	loaded  bool
}

// FlexAttributes implements Owner.
func (a *Attributes) FlexAttributes() *Attributes {
	return a
}

// HasPending reports whether writes are waiting for the next save.
func (a *Attributes) HasPending() bool {
	return len(a.pending) > 0
}

// PurgeRequested reports whether the next save deletes the owner's rows.
func (a *Attributes) PurgeRequested() bool {
	return a.purge
}

func (a *Attributes) invalidate() {
	a.records = nil
	a.loaded = false
}

// ensureLoaded loads the owner's companion rows once. Owners without an
// identity have no rows and are retried on the next read.
func (c *Config) ensureLoaded(ctx context.Context, owner Owner) error {
	a := owner.FlexAttributes()
	if a.loaded {
		return nil
	}

	scope, err := c.scope(ctx, owner)
	if err != nil {
		return err
	}
	if scope.OwnerID == nil {
		return nil
	}

	records, err := c.Companion.Load(c.db.WithContext(ctx), scope.OwnerID)
	if err != nil {
		return err
	}
	a.records = records
	a.loaded = true
	return nil
}

// lookup resolves a flex attribute: the latest pending write wins, then
// the stored rows of the owner's current version. Later rows win over
// earlier ones with the same name.
func (c *Config) lookup(ctx context.Context, owner Owner, name string) (string, bool, error) {
	a := owner.FlexAttributes()
	for i := len(a.pending) - 1; i >= 0; i-- {
		if a.pending[i].Name == name {
			return a.pending[i].Value, true, nil
		}
	}

	if err := c.ensureLoaded(ctx, owner); err != nil {
		return "", false, err
	}

	scope, err := c.scope(ctx, owner)
	if err != nil {
		return "", false, err
	}

	for i := len(a.records) - 1; i >= 0; i-- {
		r := a.records[i]
		if r.Name != name {
			continue
		}
		if c.Companion.Versioned && (r.Version == nil || scope.Version == nil || *r.Version != *scope.Version) {
			continue
		}
		return r.Value, true, nil
	}
	return "", false, nil
}

// Records returns the owner's stored rows, all versions included.
func (c *Config) Records(owner Owner) ([]Record, error) {
	if err := c.ensureLoaded(context.Background(), owner); err != nil {
		return nil, err
	}
	a := owner.FlexAttributes()
	return append([]Record(nil), a.records...), nil
}

// Reload drops the cached rows and loads them again.
func (c *Config) Reload(owner Owner) error {
	owner.FlexAttributes().invalidate()
	return c.ensureLoaded(context.Background(), owner)
}

// MarkForPurge makes the next save delete the owner's rows in its current
// scope even when nothing was written.
func (c *Config) MarkForPurge(owner Owner) {
	owner.FlexAttributes().purge = true
}

// Pending returns a copy of the writes waiting for the next save.
func (c *Config) Pending(owner Owner) []Pair {
	return append([]Pair(nil), owner.FlexAttributes().pending...)
}

func configOf(owner Owner) (*Config, error) {
	if owner == nil {
		return nil, ErrNotOwner
	}
	cfg, ok := defaultRegistry.ConfigFor(owner)
	if !ok {
		return nil, errors.Wrapf(ErrNotEnabled, "%s", indirectType(owner).Name())
	}
	return cfg, nil
}

// Records returns the stored rows of owner using the default registry.
func Records(owner Owner) ([]Record, error) {
	cfg, err := configOf(owner)
	if err != nil {
		return nil, err
	}
	return cfg.Records(owner)
}

// Reload reloads the stored rows of owner using the default registry.
func Reload(owner Owner) error {
	cfg, err := configOf(owner)
	if err != nil {
		return err
	}
	return cfg.Reload(owner)
}

// MarkForPurge requests a purge of owner's rows on its next save.
func MarkForPurge(owner Owner) {
	owner.FlexAttributes().purge = true
}

// Pending returns the writes of owner waiting for the next save.
func Pending(owner Owner) []Pair {
	return append([]Pair(nil), owner.FlexAttributes().pending...)
}
