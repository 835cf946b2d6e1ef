package history

import "database/sql"

// DB exposes the internal *sql.DB for test helpers in history_test.
func (s *Store) DB() *sql.DB {
	return s.db
}
