package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/db"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

// companionFor resolves the companion table of a configured model.
func companionFor(cfg *config.FlexConfig, model string) (flex.Companion, error) {
	opts, ok := cfg.Model(model)
	if !ok {
		return flex.Companion{}, errors.Newf("model %q is not configured in %s", model, cfg.ConfigFilePath())
	}
	return opts.WithDefaults(model, schema.NamingStrategy{}).CompanionTable(), nil
}

// connect opens the configured database and validates the configuration.
func connect(cfg *config.FlexConfig) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
}

// parseOwnerID keeps numeric identities numeric so they compare against
// integer foreign keys on every dialect.
func parseOwnerID(raw string) interface{} {
	if id, err := cast.ToInt64E(raw); err == nil {
		return id
	}
	return raw
}

// parsePairs splits NAME=VALUE arguments. Later duplicates win when the
// set is read back.
func parsePairs(args []string) ([]flex.Pair, error) {
	pairs := make([]flex.Pair, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf("invalid attribute %q, expected NAME=VALUE", arg)
		}
		pairs = append(pairs, flex.Pair{Name: name, Value: value})
	}
	return pairs, nil
}

// versionScope builds the scope selected by the --version flag. A
// negative version means the flag was not given.
func versionScope(ownerID interface{}, version int64) flex.Scope {
	scope := flex.Scope{OwnerID: ownerID}
	if version >= 0 {
		scope.Version = &version
	}
	return scope
}

func filterRecords(records []flex.Record, version *int64) []flex.Record {
	if version == nil {
		return records
	}
	filtered := make([]flex.Record, 0, len(records))
	for _, r := range records {
		if r.Version != nil && *r.Version == *version {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
