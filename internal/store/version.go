package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

const (
	// versionTimeLayout is fixed width so tokens compare lexicographically.
	versionTimeLayout = "20060102150405.000000"
	versionNone       = "none"
)

// dbTime scans a nullable timestamp. Aggregates such as MAX(updated_at)
// come back as time.Time from mysql with parseTime, as text from sqlite and
// as bytes from mysql without parseTime.
type dbTime struct {
	Time  time.Time
	Valid bool
}

var dbTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("can't scan %T into timestamp", src)
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range dbTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("can't parse timestamp %q", s)
}

// token renders the timestamp for a version string, "none" when null.
func (t dbTime) token() string {
	if !t.Valid {
		return versionNone
	}
	return t.Time.UTC().Format(versionTimeLayout)
}

// latestToken returns the greatest of the given timestamp tokens. Absent
// timestamps never win, so "none" is only returned when all are absent.
func latestToken(tokens ...string) string {
	latest := versionNone
	for _, tok := range tokens {
		if tok == versionNone || tok == "" {
			continue
		}
		if latest == versionNone || tok > latest {
			latest = tok
		}
	}
	return latest
}

type freshnessRow struct {
	Count  int64  `db:"cnt"`
	Latest dbTime `db:"latest"`
}

type latestRow struct {
	Latest dbTime `db:"latest"`
}

// SalesSeriesVersion summarizes the freshness of the rows q aggregates:
// the number of in-scope orders and the latest updated_at among in-scope
// orders and in-scope order items. Deletions that leave both untouched are
// not detected; the cache TTL bounds that staleness.
func (ms *analyticsStore) SalesSeriesVersion(ctx context.Context, q entity.SalesSeriesQuery) (string, error) {
	params := ms.seriesParams(q)
	createdAt := ms.dialect.timeColumn("o.created_at")

	ordersQuery := fmt.Sprintf(`
		SELECT COUNT(*) AS cnt, MAX(o.updated_at) AS latest
		FROM orders o
		WHERE o.status IN (:statuses)
		AND %s BETWEEN :from AND :to
	`, createdAt)
	orders, err := QueryNamedOne[freshnessRow](ctx, ms.DB(), ordersQuery, params)
	if err != nil {
		return "", fmt.Errorf("orders freshness: %w", err)
	}

	join, filter := ms.scopeClauses(q)
	itemsQuery := fmt.Sprintf(`
		SELECT MAX(oi.updated_at) AS latest
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		%s
		WHERE o.status IN (:statuses)
		AND %s BETWEEN :from AND :to
		%s
	`, join, createdAt, filter)
	items, err := QueryNamedOne[latestRow](ctx, ms.DB(), itemsQuery, params)
	if err != nil {
		return "", fmt.Errorf("order items freshness: %w", err)
	}

	return fmt.Sprintf("%d:%s", orders.Count, latestToken(orders.Latest.token(), items.Latest.token())), nil
}
