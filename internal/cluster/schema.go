package cluster

import (
	"bufio"
	"fmt"
	"os"

	"github.com/filipkocis/drumnbase/internal/store/filelock"
)

// schemaFile is the append-only SDL log for one database: held open for
// the lifetime of the Database, advisory-locked against a second process
// opening the same directory, and write-appended (then flushed) on every
// SDL mutation (§4.7, §5 "Resource policy").
type schemaFile struct {
	file *os.File
	w    *bufio.Writer
}

// createSchemaFile creates a fresh, empty schema file at path.
func createSchemaFile(path string) (*schemaFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cluster: create schema file %s: %w", path, err)
	}
	if err := filelock.Lock(f); err != nil {
		f.Close()
		return nil, err
	}
	return &schemaFile{file: f, w: bufio.NewWriter(f)}, nil
}

// openSchemaFile opens an existing schema file, returning its full
// contents for replay alongside the held, locked handle.
func openSchemaFile(path string) (*schemaFile, string, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("cluster: open schema file %s: %w", path, err)
	}
	if err := filelock.Lock(f); err != nil {
		f.Close()
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("cluster: read schema file %s: %w", path, err)
	}
	if _, err := f.Seek(0, os.SEEK_END); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("cluster: seek schema file %s: %w", path, err)
	}
	return &schemaFile{file: f, w: bufio.NewWriter(f)}, string(data), nil
}

// AppendSDL implements runner.SchemaWriter: it writes stmt followed by "\n"
// (the runner passes stringify.Stmt output, which already ends in ";") and
// flushes immediately, so the file always reflects every committed
// mutation (§6 "Schema file").
func (s *schemaFile) AppendSDL(stmt string) error {
	if _, err := s.w.WriteString(stmt + "\n"); err != nil {
		return fmt.Errorf("cluster: append schema: %w", err)
	}
	return s.w.Flush()
}

func (s *schemaFile) Close() error {
	if err := filelock.Unlock(s.file); err != nil {
		return err
	}
	return s.file.Close()
}
