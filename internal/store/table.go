// Package store implements the on-disk row format: contiguous fixed-width
// records, an append buffer fused into the committed set by SyncBuffer, and
// the concurrency Handle that replaces the reference implementation's
// per-thread reentrant lock with an explicit transaction object threaded
// through the evaluator (§4.2, §5, §9).
package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

// LoadMode selects how a Table's rows are held in memory. Disk is declared
// by the spec but left unimplemented; mutating queries against a Disk-mode
// table are refused by the runner.
type LoadMode int

const (
	Memory LoadMode = iota
	Disk
)

// Table is one table's row store: its column layout, backing file, and the
// in-memory committed/buffered row sets.
type Table struct {
	Name    string
	Columns []dbvalue.Column
	Mode    LoadMode

	recordSize int
	offsets    []int // byte offset of each column within a record, after the 1-byte flag prefix
	widths     []int

	path string
	file *os.File

	Committed []Row
	bufRows   []Row
}

// layout computes each column's fixed byte width and its offset within a
// record (after the leading flag byte), and the total record size.
func layout(columns []dbvalue.Column) (recordSize int, offsets, widths []int, err error) {
	offsets = make([]int, len(columns))
	widths = make([]int, len(columns))
	size := 1 // flag byte
	for i, col := range columns {
		w, err := col.Len()
		if err != nil {
			return 0, nil, nil, fmt.Errorf("store: column %q: %w", col.Name, err)
		}
		offsets[i] = size - 1
		widths[i] = w
		size += w
	}
	return size, offsets, widths, nil
}

// Create materialises a new, empty table file at path and returns a Table
// ready to accept rows.
func Create(path, name string, columns []dbvalue.Column, mode LoadMode) (*Table, error) {
	recordSize, offsets, widths, err := layout(columns)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: create table %q: %w", name, err)
	}
	return &Table{
		Name: name, Columns: columns, Mode: mode,
		recordSize: recordSize, offsets: offsets, widths: widths,
		path: path, file: f,
	}, nil
}

// Open opens an existing table file. In Memory mode the whole file is read
// into Committed immediately (§4.2 "Load modes").
func Open(path, name string, columns []dbvalue.Column, mode LoadMode) (*Table, error) {
	recordSize, offsets, widths, err := layout(columns)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open table %q: %w", name, err)
	}
	t := &Table{
		Name: name, Columns: columns, Mode: mode,
		recordSize: recordSize, offsets: offsets, widths: widths,
		path: path, file: f,
	}
	if mode == Memory {
		if err := t.loadAll(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) loadAll() error {
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("store: seek table %q: %w", t.Name, err)
	}
	raw, err := io.ReadAll(t.file)
	if err != nil {
		return fmt.Errorf("store: read table %q: %w", t.Name, err)
	}
	if len(raw)%t.recordSize != 0 {
		return fmt.Errorf("store: table %q file length %d is not a multiple of record size %d", t.Name, len(raw), t.recordSize)
	}
	n := len(raw) / t.recordSize
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := t.deserializeRow(raw[i*t.recordSize : (i+1)*t.recordSize])
		if err != nil {
			return fmt.Errorf("store: table %q row %d: %w", t.Name, i, err)
		}
		rows = append(rows, row)
	}
	t.Committed = rows
	return nil
}

// Close closes the underlying file handle.
func (t *Table) Close() error { return t.file.Close() }

func (t *Table) serializeRow(row Row) ([]byte, error) {
	buf := make([]byte, t.recordSize)
	buf[0] = row.Flag
	for i, col := range t.Columns {
		if i >= len(row.Values) {
			return nil, fmt.Errorf("store: row has %d values, table %q has %d columns", len(row.Values), t.Name, len(t.Columns))
		}
		raw, err := dbvalue.ToBytes(row.Values[i], col.Type, t.widths[i])
		if err != nil {
			return nil, fmt.Errorf("store: column %q: %w", col.Name, err)
		}
		copy(buf[1+t.offsets[i]:1+t.offsets[i]+t.widths[i]], raw)
	}
	return buf, nil
}

func (t *Table) deserializeRow(raw []byte) (Row, error) {
	row := Row{Flag: raw[0], Values: make([]dbvalue.Value, len(t.Columns))}
	for i, col := range t.Columns {
		start := 1 + t.offsets[i]
		v, err := dbvalue.FromBytes(raw[start:start+t.widths[i]], col.Type)
		if err != nil {
			return Row{}, fmt.Errorf("store: column %q: %w", col.Name, err)
		}
		row.Values[i] = v
	}
	return row, nil
}

// Append pushes row onto the in-memory buffer. It is not visible through
// Committed, and therefore not visible to an ordinary scan, until SyncBuffer
// fuses it in (§4.2).
func (t *Table) Append(row Row) {
	t.bufRows = append(t.bufRows, row)
}

// SyncBuffer serialises every buffered row, appends the bytes to the file,
// flushes, and only then moves the buffered rows into Committed — a failure
// partway through never leaves a row visible in memory without also being on
// disk.
func (t *Table) SyncBuffer() error {
	if len(t.bufRows) == 0 {
		return nil
	}
	if _, err := t.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("store: seek table %q: %w", t.Name, err)
	}
	w := bufio.NewWriter(t.file)
	for _, row := range t.bufRows {
		raw, err := t.serializeRow(row)
		if err != nil {
			return err
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("store: write table %q: %w", t.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("store: flush table %q: %w", t.Name, err)
	}
	t.Committed = append(t.Committed, t.bufRows...)
	t.bufRows = t.bufRows[:0]
	return nil
}

// SyncRowParts serialises just the named columns of the given committed row
// and writes each at its exact byte offset, one contiguous write per column.
// Column indices are sorted first so writes are forward-seeking.
func (t *Table) SyncRowParts(rowIndex int, columnIndices []int) error {
	if rowIndex < 0 || rowIndex >= len(t.Committed) {
		return fmt.Errorf("store: row index %d out of range for table %q", rowIndex, t.Name)
	}
	sorted := append([]int(nil), columnIndices...)
	sort.Ints(sorted)
	row := t.Committed[rowIndex]
	base := int64(rowIndex) * int64(t.recordSize)
	for _, ci := range sorted {
		if ci < 0 || ci >= len(t.Columns) {
			return fmt.Errorf("store: column index %d out of range for table %q", ci, t.Name)
		}
		raw, err := dbvalue.ToBytes(row.Values[ci], t.Columns[ci].Type, t.widths[ci])
		if err != nil {
			return fmt.Errorf("store: column %q: %w", t.Columns[ci].Name, err)
		}
		offset := base + 1 + int64(t.offsets[ci])
		if _, err := t.file.WriteAt(raw, offset); err != nil {
			return fmt.Errorf("store: write table %q column %q: %w", t.Name, t.Columns[ci].Name, err)
		}
	}
	return nil
}

// SyncFlag writes just the flag byte of rowIndex — used after MarkDeleted.
func (t *Table) SyncFlag(rowIndex int) error {
	if rowIndex < 0 || rowIndex >= len(t.Committed) {
		return fmt.Errorf("store: row index %d out of range for table %q", rowIndex, t.Name)
	}
	offset := int64(rowIndex) * int64(t.recordSize)
	if _, err := t.file.WriteAt([]byte{t.Committed[rowIndex].Flag}, offset); err != nil {
		return fmt.Errorf("store: write table %q flag byte: %w", t.Name, err)
	}
	return nil
}

// MarkDeleted sets the tombstone on the in-memory row at rowIndex. The
// caller must follow with SyncFlag to persist it.
func (t *Table) MarkDeleted(rowIndex int) error {
	if rowIndex < 0 || rowIndex >= len(t.Committed) {
		return fmt.Errorf("store: row index %d out of range for table %q", rowIndex, t.Name)
	}
	t.Committed[rowIndex].MarkDeleted()
	return nil
}

// ColumnIndex returns the index of the column named name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// CheckUnique scans non-tombstoned committed (and already-buffered) rows for
// a collision with newRow on any column flagged Unique, per §4.2.
func (t *Table) CheckUnique(newRow Row) error {
	for i, col := range t.Columns {
		if !col.Unique {
			continue
		}
		for _, existing := range t.Committed {
			if existing.IsDeleted() {
				continue
			}
			if existing.Values[i].Equal(newRow.Values[i]) {
				return fmt.Errorf("store: unique constraint violated on column %q of table %q", col.Name, t.Name)
			}
		}
		for _, existing := range t.bufRows {
			if existing.Values[i].Equal(newRow.Values[i]) {
				return fmt.Errorf("store: unique constraint violated on column %q of table %q", col.Name, t.Name)
			}
		}
	}
	return nil
}

// Purge drops tombstoned rows from Committed and rewrites the file from row
// 0, truncating to the new length. Memory mode only; it runs once at
// database load (§4.2).
func (t *Table) Purge() error {
	if t.Mode != Memory {
		return fmt.Errorf("store: purge is only supported in Memory mode for table %q", t.Name)
	}
	kept := t.Committed[:0]
	for _, row := range t.Committed {
		if !row.IsDeleted() {
			kept = append(kept, row)
		}
	}
	t.Committed = kept

	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("store: seek table %q: %w", t.Name, err)
	}
	w := bufio.NewWriter(t.file)
	for _, row := range t.Committed {
		raw, err := t.serializeRow(row)
		if err != nil {
			return err
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("store: write table %q: %w", t.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("store: flush table %q: %w", t.Name, err)
	}
	if err := t.file.Truncate(int64(len(t.Committed)) * int64(t.recordSize)); err != nil {
		return fmt.Errorf("store: truncate table %q: %w", t.Name, err)
	}
	return nil
}
