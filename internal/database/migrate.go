package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/localnerve/ascom-demandas/data"
	"gorm.io/gorm"
)

// Migrate runs the dialect init scripts around AutoMigrate.
func Migrate(db *gorm.DB) error {
	dialect := db.Dialector.Name()

	if dialect == "mysql" {
		if err := ExecuteScript(db, data.InitdbMySQLDatabase); err != nil {
			return fmt.Errorf("failed to run mysql init script: %w", err)
		}
	}

	if err := AutoMigrate(db); err != nil {
		return err
	}

	switch dialect {
	case "postgres":
		if err := ExecuteScript(db, data.InitdbPostgresIndexes); err != nil {
			return fmt.Errorf("failed to run postgres index script: %w", err)
		}
	case "sqlite":
		if err := ExecuteScript(db, data.InitdbSQLiteIndexes); err != nil {
			return fmt.Errorf("failed to run sqlite index script: %w", err)
		}
	}

	log.Printf("Migrations complete for %s", dialect)
	return nil
}

// ExecuteScript runs each ';' terminated statement of script in order.
// Line comments outside of quotes are dropped first.
func ExecuteScript(db *gorm.DB, script string) error {
	for _, stmt := range SplitStatements(script) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}
	return nil
}

// SplitStatements strips "--" comments and splits script on ';'. Text after
// the last ';' is ignored.
func SplitStatements(script string) []string {
	lines := strings.Split(script, "\n")
	for i, l := range lines {
		lines[i] = excludeComment(l)
	}

	parts := strings.Split(strings.Join(lines, "\n"), ";")
	parts = parts[:len(parts)-1]

	var stmts []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			stmts = append(stmts, p)
		}
	}
	return stmts
}

// excludeComment cuts line at the first "--" that is not inside a quoted
// string.
func excludeComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '-' && i+1 < len(line) && line[i+1] == '-':
			return line[:i]
		}
	}
	return line
}
