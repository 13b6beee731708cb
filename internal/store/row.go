package store

import "github.com/filipkocis/drumnbase/internal/dbvalue"

// tombstoneBit is the high bit of a record's flag byte; the remaining bits
// are reserved for future record metadata (§4.2/§6).
const tombstoneBit byte = 0x80

// Row is one in-memory record: the flag byte plus one Value per column, in
// column-declaration order.
type Row struct {
	Flag   byte
	Values []dbvalue.Value
}

// IsDeleted reports whether the row's tombstone bit is set.
func (r Row) IsDeleted() bool { return r.Flag&tombstoneBit != 0 }

// MarkDeleted sets the tombstone bit in memory; the caller must still sync
// the flag byte to disk (Table.SyncFlag) for the deletion to persist.
func (r *Row) MarkDeleted() { r.Flag |= tombstoneBit }
