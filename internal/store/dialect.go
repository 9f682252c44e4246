package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Dialect is the SQL flavour queries are rendered for.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// ParseDialect maps a configured dialect name to a Dialect. Empty means mysql.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", s)
}

func (d Dialect) driverName() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "mysql"
}

// sqliteTimeLayout is what datetime() yields, so bound arguments compare as
// text against normalized columns.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// dsn adds the driver options the sqlite dialect depends on: time values are
// written in a format sqlite date functions parse, and foreign keys are
// enforced so deleted products null out order item references.
func (d Dialect) dsn(dsn string) string {
	if d != DialectSQLite {
		return dsn
	}
	base, query, _ := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	if values.Get("_time_format") == "" {
		values.Set("_time_format", "sqlite")
	}
	if !strings.Contains(query, "foreign_keys") {
		values.Add("_pragma", "foreign_keys(1)")
	}
	return base + "?" + values.Encode()
}

// timeColumn wraps a timestamp column for range comparison. sqlite keeps
// timestamps as text in mixed layouts and offsets; datetime() normalizes
// them to UTC.
func (d Dialect) timeColumn(col string) string {
	if d == DialectSQLite {
		return "datetime(" + col + ")"
	}
	return col
}

// timeArg renders a range bound for comparison with timeColumn.
func (d Dialect) timeArg(t time.Time) any {
	if d == DialectSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

func (d Dialect) migrateDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return "mysql"
}

// txOptions returns serializable isolation where the engine honours it.
// sqlite transactions are serialized by the engine itself.
func (d Dialect) txOptions() *sql.TxOptions {
	if d == DialectSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// lockForUpdate is appended to row reads inside write transactions.
func (d Dialect) lockForUpdate() string {
	if d == DialectSQLite {
		return ""
	}
	return "FOR UPDATE"
}

// periodExpr renders a bucketing expression over a timestamp column. The
// resulting labels are day YYYY-MM-DD, week YYYY-Www, month YYYY-MM,
// season YYYY-Qn and year YYYY. Unknown granularities bucket by month.
func periodExpr(d Dialect, g entity.MetricsGranularity, col string) string {
	if d == DialectSQLite {
		switch g {
		case entity.MetricsGranularityDay:
			return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
		case entity.MetricsGranularityWeek:
			// ISO week: the week's Thursday decides both year and number.
			thursday := fmt.Sprintf("date(%s, '-3 days', 'weekday 4')", col)
			return fmt.Sprintf("(strftime('%%Y', %s) || '-W' || printf('%%02d', (CAST(strftime('%%j', %s) AS INTEGER) - 1) / 7 + 1))", thursday, thursday)
		case entity.MetricsGranularitySeason:
			return fmt.Sprintf("(strftime('%%Y', %s) || '-Q' || ((CAST(strftime('%%m', %s) AS INTEGER) + 2) / 3))", col, col)
		case entity.MetricsGranularityYear:
			return fmt.Sprintf("strftime('%%Y', %s)", col)
		default:
			return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
		}
	}

	switch g {
	case entity.MetricsGranularityDay:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", col)
	case entity.MetricsGranularityWeek:
		// %x-%v is the ISO year and Monday-based week number.
		return fmt.Sprintf("DATE_FORMAT(%s, '%%x-W%%v')", col)
	case entity.MetricsGranularitySeason:
		return fmt.Sprintf("CONCAT(YEAR(%s), '-Q', QUARTER(%s))", col, col)
	case entity.MetricsGranularityYear:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y')", col)
	default:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", col)
	}
}
