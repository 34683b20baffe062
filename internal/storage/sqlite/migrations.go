package sqlite

// addedLogColumns lists request_logs columns introduced after the first
// schema, with their SQLite type.
var addedLogColumns = []struct {
	name string
	typ  string
}{
	{"backend_model", "TEXT"},
	{"outcome", "TEXT"},
}

// migrateRequestLogs adds columns missing from a database created by an
// older build. SQLite's ADD COLUMN keeps existing rows.
func (s *Storage) migrateRequestLogs() error {
	for _, col := range addedLogColumns {
		var count int
		err := s.db.QueryRow(`
			SELECT COUNT(*) FROM pragma_table_info('request_logs') WHERE name = ?
		`, col.name).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if _, err := s.db.Exec("ALTER TABLE request_logs ADD COLUMN " + col.name + " " + col.typ); err != nil {
			return err
		}
	}
	return nil
}
