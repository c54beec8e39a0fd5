package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"reqmap/internal/logging"
)

// Store caches the code index in a SQLite database so repeated mapping
// runs skip re-reading the index JSON.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// OpenStore opens or creates the SQLite cache at .reqmap/reqmap.db.
func OpenStore(repoRoot string, logger *logging.Logger) (*Store, error) {
	dir := filepath.Join(repoRoot, ".reqmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .reqmap directory: %w", err)
	}

	dbPath := filepath.Join(dir, "reqmap.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS indexed_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT UNIQUE NOT NULL,
			language TEXT,
			raw_text TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS code_elements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id INTEGER NOT NULL REFERENCES indexed_files(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			line INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_file ON code_elements(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_name ON code_elements(name)`,
	}
	for _, stmt := range schema {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// Put replaces the cached index with idx in one transaction.
func (s *Store) Put(idx *CodeIndex) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM indexed_files`); err != nil {
		return err
	}

	fileStmt, err := tx.Prepare(`INSERT INTO indexed_files (path, language, raw_text) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fileStmt.Close()

	elemStmt, err := tx.Prepare(`INSERT INTO code_elements (file_id, name, kind, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer elemStmt.Close()

	for i := range idx.Files {
		f := &idx.Files[i]
		res, err := fileStmt.Exec(f.Path, f.Language, strings.Join(f.RawTextLines, "\n"))
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, e := range f.Elements {
			if _, err := elemStmt.Exec(fileID, e.Name, e.Kind, e.Line); err != nil {
				return fmt.Errorf("failed to insert element %s: %w", e.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debug("Index cached", map[string]interface{}{
			"files":    len(idx.Files),
			"elements": idx.TotalElements(),
		})
	}
	return nil
}

// Get loads the cached index. An empty cache returns an index with no files.
func (s *Store) Get() (*CodeIndex, error) {
	rows, err := s.conn.Query(`SELECT id, path, language, raw_text FROM indexed_files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := &CodeIndex{}
	ids := make([]int64, 0)

	for rows.Next() {
		var id int64
		var f IndexedFile
		var raw string
		if err := rows.Scan(&id, &f.Path, &f.Language, &raw); err != nil {
			return nil, err
		}
		if raw != "" {
			f.RawTextLines = strings.Split(raw, "\n")
		}
		idx.Files = append(idx.Files, f)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		elems, err := s.elementsFor(id)
		if err != nil {
			return nil, err
		}
		idx.Files[i].Elements = elems
	}

	return idx, nil
}

func (s *Store) elementsFor(fileID int64) ([]CodeElement, error) {
	rows, err := s.conn.Query(
		`SELECT name, kind, line FROM code_elements WHERE file_id = ? ORDER BY line, name`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elems []CodeElement
	for rows.Next() {
		var e CodeElement
		if err := rows.Scan(&e.Name, &e.Kind, &e.Line); err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, rows.Err()
}
