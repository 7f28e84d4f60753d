package database

import "database/sql"

// GetSettings reads the entire settings table.
func GetSettings(db Queryer) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}

	return result, rows.Err()
}

// PutSetting upserts a single settings key.
func PutSetting(db Queryer, key, value string) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO settings (key, value)
		VALUES (?, ?)`, key, value)
	return err
}

// PutSettings upserts all given keys in one transaction; either every key
// is written or none are.
func PutSettings(db *sql.DB, values map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for key, value := range values {
		if err := PutSetting(tx, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
