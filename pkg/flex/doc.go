// Package flex adds open-ended "flex" attributes to GORM models.
//
// A flex attribute looks like an ordinary attribute of the model but is
// stored as a name/value row in a companion table instead of a column of
// the model's own table.
//
// # Enabling
//
// The model embeds flex.Attributes (ignored by GORM) and is enabled once,
// at startup:
//
//	type Paris struct {
//	    ID   uint
//	    Name string
//	    flex.Attributes `gorm:"-"`
//	}
//
//	cfg, err := flex.Enable(db, &Paris{}, flex.Options{})
//
// With default options the companion table is paris_attributes with the
// columns paris_id, name and value. Versioned models add a version column
// and keep one attribute set per owner version.
//
// # Reading and writing
//
//	_ = flex.Write(&paris, "has_brie_and_cheese", true)
//	v, _ := flex.Read(&paris, "has_brie_and_cheese") // "true"
//	_, _ = flex.Call(&paris, "is_smug=", false)
//	_, _ = flex.Assign(&paris, map[string]interface{}{"motto": "liberte"})
//
// Native columns always win over flex attributes. Names that are neither
// are reported as *UnknownAttributeError (Read, Write) or *NoMethodError
// (Call).
//
// # Persistence
//
// Writes are buffered on the instance. When the owner is created or updated
// through GORM, every companion row of the owner (and current version) is
// deleted and the buffered writes are inserted, inside the owner's
// transaction. Any write therefore replaces the whole attribute set.
// MarkForPurge forces the delete even when nothing was written.
//
// Two instances saving the same owner concurrently race on that replace;
// set Options.LockOwner to serialise them with a row lock where the
// database supports it.
package flex
