package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"smartfraud/features"
)

var database *sql.DB

// InitDB opens the SQLite reference database and creates its schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS states (
        name TEXT PRIMARY KEY,
        abbreviation TEXT NOT NULL,
        population INTEGER NOT NULL DEFAULT 0,
        in_model INTEGER NOT NULL DEFAULT 0
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SeedStates fills an empty states table from the given directory. It
// reports whether anything was written.
func SeedStates(table *features.StateTable) (bool, error) {
	if database == nil {
		return false, errors.New("database not initialized")
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM states`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	tx, err := database.Begin()
	if err != nil {
		return false, err
	}
	stmt, err := tx.Prepare(`
        INSERT INTO states (name, abbreviation, population, in_model)
        VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	defer stmt.Close()

	for name, info := range table.Primary() {
		if _, err := stmt.Exec(name, info.Abbreviation, info.Population, 1); err != nil {
			tx.Rollback()
			return false, err
		}
	}
	for name, pop := range table.Secondary() {
		if _, err := stmt.Exec(name, features.OthersAbbreviation, pop, 0); err != nil {
			tx.Rollback()
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// LoadStates builds a state directory from the states table. Rows flagged
// in_model form the primary table, the rest only contribute populations.
func LoadStates() (*features.StateTable, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := database.Query(`SELECT name, abbreviation, population, in_model FROM states`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	primary := make(map[string]features.StateInfo)
	secondary := make(map[string]int64)
	for rows.Next() {
		var (
			name, abbreviation string
			population         int64
			inModel            bool
		)
		if err := rows.Scan(&name, &abbreviation, &population, &inModel); err != nil {
			return nil, err
		}
		if inModel {
			primary[name] = features.StateInfo{Abbreviation: abbreviation, Population: population}
		} else {
			secondary[name] = population
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(primary) == 0 {
		return nil, errors.New("states table has no in-model rows")
	}
	return features.NewStateTable(primary, secondary), nil
}
