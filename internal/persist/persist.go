// Package persist implements the primary/backup file scheme shared by the
// sample history and the device config.
//
// The default strategy deletes the old backup, renames the primary onto the
// backup name and then writes a fresh primary. Power loss between the rename
// and the end of the write leaves only the backup, which Load falls back to;
// power loss while the backup is being removed can lose one generation.
// StrategyAtomic writes the new record to a temporary file first, so the
// only step that touches the current data is a rename.
package persist

import (
	"errors"
	"fmt"

	"temp_monitor/internal/csvfield"
	"temp_monitor/internal/store"
)

// ErrNoState means neither the primary nor the backup file exists.
var ErrNoState = errors.New("no persisted state")

// Strategy selects how Save replaces the primary file.
type Strategy string

const (
	StrategyBackup Strategy = "backup"
	StrategyAtomic Strategy = "atomic"
)

const tempSuffix = ".tmp"

// Record is one persisted record with its primary and backup file names.
type Record struct {
	Store    store.Store
	Primary  string
	Backup   string
	Strategy Strategy
}

// Save writes a new generation of the record. encode receives the writer and
// must emit every field in the fixed order Load expects.
func (r Record) Save(encode func(w *csvfield.Writer)) error {
	if r.Strategy == StrategyAtomic {
		return r.saveAtomic(encode)
	}
	if err := r.rotate(); err != nil {
		return err
	}
	return r.write(r.Primary, encode)
}

// Load opens the primary file, or the backup if the primary is missing.
// It returns ErrNoState when neither exists.
func (r Record) Load() (*csvfield.Reader, error) {
	name := ""
	switch {
	case r.Store.Exists(r.Primary):
		name = r.Primary
	case r.Store.Exists(r.Backup):
		name = r.Backup
	default:
		return nil, ErrNoState
	}

	f, err := r.Store.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := csvfield.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return rd, nil
}

func (r Record) saveAtomic(encode func(w *csvfield.Writer)) error {
	tmp := r.Primary + tempSuffix
	if err := r.write(tmp, encode); err != nil {
		_ = r.Store.Remove(tmp)
		return err
	}
	if err := r.rotate(); err != nil {
		return err
	}
	return r.Store.Rename(tmp, r.Primary)
}

// rotate moves the current primary onto the backup name.
func (r Record) rotate() error {
	if !r.Store.Exists(r.Primary) {
		return nil
	}
	if err := r.Store.Remove(r.Backup); err != nil {
		return err
	}
	return r.Store.Rename(r.Primary, r.Backup)
}

func (r Record) write(name string, encode func(w *csvfield.Writer)) error {
	f, err := r.Store.Create(name)
	if err != nil {
		return err
	}
	w := csvfield.NewWriter(f)
	encode(w)
	if err := w.Err(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", name, err)
	}
	return nil
}
