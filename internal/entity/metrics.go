package entity

import (
	"strconv"
	"strings"
	"time"
)

// MetricsGranularity controls the time bucket size of a sales series.
type MetricsGranularity string

const (
	MetricsGranularityDay    MetricsGranularity = "day"
	MetricsGranularityWeek   MetricsGranularity = "week"
	MetricsGranularityMonth  MetricsGranularity = "month"
	MetricsGranularitySeason MetricsGranularity = "season"
	MetricsGranularityYear   MetricsGranularity = "year"
)

// MetricsScope is the dimension a sales series is computed along.
type MetricsScope string

const (
	MetricsScopeOverall  MetricsScope = "overall"
	MetricsScopeCategory MetricsScope = "category"
	MetricsScopeProduct  MetricsScope = "product"
)

// MetricsMetric selects which numeric field of a series row is charted.
type MetricsMetric string

const (
	MetricsMetricRevenue MetricsMetric = "revenue"
	MetricsMetricUnits   MetricsMetric = "units"
	MetricsMetricOrders  MetricsMetric = "orders"
)

// MetricsRange is a trailing window size such as "30d".
type MetricsRange string

const (
	MetricsRange7d   MetricsRange = "7d"
	MetricsRange15d  MetricsRange = "15d"
	MetricsRange30d  MetricsRange = "30d"
	MetricsRange60d  MetricsRange = "60d"
	MetricsRange90d  MetricsRange = "90d"
	MetricsRange180d MetricsRange = "180d"
	MetricsRange360d MetricsRange = "360d"
)

// Days returns the number of calendar days covered by the range, 0 if malformed.
func (r MetricsRange) Days() int {
	n, err := strconv.Atoi(strings.TrimSuffix(string(r), "d"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Window returns the inclusive window of r.Days() calendar days ending on the day of now.
func (r MetricsRange) Window(now time.Time) TimeRange {
	days := r.Days()
	if days == 0 {
		days = 1
	}
	loc := now.Location()
	from := time.Date(now.Year(), now.Month(), now.Day()-(days-1), 0, 0, 0, 0, loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return TimeRange{From: from, To: to}
}

type TimeRange struct {
	From time.Time
	To   time.Time
}

// SalesSeriesQuery is a normalized request for one sales series.
// ScopeID is ignored for the overall scope; a nil ScopeID on a scoped
// request means "no dimension filter".
type SalesSeriesQuery struct {
	Scope       MetricsScope
	ScopeID     *int
	Granularity MetricsGranularity
	Period      TimeRange
}

// SalesSeriesRow is one period bucket of a sales series. Money is integer cents.
type SalesSeriesRow struct {
	Period       string
	RevenueCents int64
	Orders       int64
	Units        int64
}
