package sqldb

import (
	"database/sql"
	"strconv"
	"strings"
)

// dialect captures the differences between the supported databases.
// Queries are written once with ? placeholders and RETURNING clauses, which
// both SQLite (3.35+) and PostgreSQL understand.
type dialect interface {
	name() string
	open(dsn string) (*sql.DB, error)
	schema() string
	rebind(query string) string

	// classify maps a driver error onto errUnique, errForeignKey, errCheck or
	// storage.ErrTransient. It returns nil for anything else.
	classify(err error) error
}

// rebindDollar rewrites ? placeholders into $1, $2, ...
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
