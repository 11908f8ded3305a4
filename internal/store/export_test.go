package store

// Truncate empties every table so a shared database starts clean.
func (s *Store) Truncate() error {
	if s.driver == DriverPostgres {
		_, err := s.db.Exec(`TRUNCATE messages, friends, users RESTART IDENTITY CASCADE`)
		return err
	}
	for _, table := range []string{"messages", "friends", "users"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return nil
}
