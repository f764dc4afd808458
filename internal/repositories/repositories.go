package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/tunesync/internal/shared"
)

// sequenced lists the tables that carry a "<table>_sequence" counter row.
var sequenced = map[string]bool{"runs": true}

// NextSequence increments and returns the run number counter of table.
//
// Run numbers are what the history command shows (e.g. run #42); ids stay UUIDs.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("%w: table %q has no sequence", shared.ErrInvalidInput, table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
