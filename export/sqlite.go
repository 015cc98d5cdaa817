package export

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE meta (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE strings (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		utf16 INTEGER NOT NULL,
		text TEXT NOT NULL
	)`,
	`CREATE TABLE functions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		name_id INTEGER NOT NULL,
		form TEXT NOT NULL,
		byte_offset INTEGER NOT NULL,
		size INTEGER NOT NULL,
		param_count INTEGER NOT NULL,
		frame_size INTEGER NOT NULL,
		environment_size INTEGER NOT NULL,
		prohibit_invoke TEXT NOT NULL,
		strict_mode INTEGER NOT NULL,
		error TEXT
	)`,
	`CREATE TABLE instructions (
		function_id INTEGER NOT NULL REFERENCES functions(id),
		byte_offset INTEGER NOT NULL,
		opcode TEXT NOT NULL,
		label INTEGER,
		target_label INTEGER,
		text TEXT NOT NULL,
		PRIMARY KEY (function_id, byte_offset)
	)`,
	`CREATE TABLE handlers (
		function_id INTEGER NOT NULL REFERENCES functions(id),
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		target_offset INTEGER NOT NULL
	)`,
}

// WriteSQLite writes img to a new SQLite database at path. The file must
// not already contain the export tables.
func WriteSQLite(ctx context.Context, path string, img *Image) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := insertImage(ctx, tx, img); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

func insertImage(ctx context.Context, tx *sql.Tx, img *Image) error {
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}

	meta := map[string]string{
		"version":           strconv.FormatUint(uint64(img.Version), 10),
		"source_hash":       img.Header.SourceHash,
		"global_code_index": strconv.FormatUint(uint64(img.Header.GlobalCodeIndex), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (name, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("saving meta %s: %w", k, err)
		}
	}

	for _, s := range img.Strings {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO strings (id, kind, utf16, text) VALUES (?, ?, ?, ?)",
			s.ID, s.Kind, s.UTF16, s.Text)
		if err != nil {
			return fmt.Errorf("saving string %d: %w", s.ID, err)
		}
	}

	insertIns, err := tx.PrepareContext(ctx,
		"INSERT INTO instructions (function_id, byte_offset, opcode, label, target_label, text) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing instruction insert: %w", err)
	}
	defer insertIns.Close()

	for _, fn := range img.Functions {
		var fnErr any
		if fn.Error != "" {
			fnErr = fn.Error
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO functions (id, name, name_id, form, byte_offset, size, param_count,
				frame_size, environment_size, prohibit_invoke, strict_mode, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fn.ID, fn.Name, fn.NameID, fn.Form, fn.Offset, fn.Size, fn.ParamCount,
			fn.FrameSize, fn.EnvironmentSize, fn.ProhibitInvoke, fn.Strict, fnErr)
		if err != nil {
			return fmt.Errorf("saving function %d: %w", fn.ID, err)
		}
		for _, ins := range fn.Instructions {
			_, err := insertIns.ExecContext(ctx, fn.ID, ins.Offset, ins.Opcode,
				nullInt(ins.Label), nullInt(ins.TargetLabel), ins.Text)
			if err != nil {
				return fmt.Errorf("saving instruction %d of function %d: %w", ins.Offset, fn.ID, err)
			}
		}
		for _, h := range fn.Handlers {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO handlers (function_id, start_offset, end_offset, target_offset) VALUES (?, ?, ?, ?)",
				fn.ID, h.Start, h.End, h.Target)
			if err != nil {
				return fmt.Errorf("saving handler of function %d: %w", fn.ID, err)
			}
		}
	}
	return nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
