// Package store keeps the imported sales snapshot in a sqlite database and
// answers the dashboard's aggregation queries with plain GROUP BY SQL.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/types"
)

const dateLayout = "2006-01-02"

// Bucket calendars. Weekday labels follow the CSV's short names; the API
// reports full names, Monday first, and keeps zero-sales days in the series.
var (
	weekdayShort = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekdayFull  = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	monthNames   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	timesOfDay   = []string{"Morning", "Afternoon", "Evening", "Night"}
)

const schema = `
CREATE TABLE IF NOT EXISTS sales (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_date TEXT NOT NULL,
	money REAL NOT NULL,
	product TEXT NOT NULL,
	hour INTEGER NOT NULL,
	time_of_day TEXT NOT NULL,
	weekday TEXT NOT NULL,
	month_name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product);
`

// Store wraps the sqlite handle holding the current sales snapshot.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sales schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ImportSales replaces the current snapshot with the given records in a
// single transaction.
func (s *Store) ImportSales(sales []types.Sale) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sales"); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sales
		(sale_date, money, product, hour, time_of_day, weekday, month_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sale := range sales {
		_, err := stmt.Exec(
			sale.Date.Format(dateLayout),
			sale.Money,
			sale.Product,
			sale.Hour,
			sale.TimeOfDay,
			sale.Weekday,
			sale.MonthName,
		)
		if err != nil {
			return fmt.Errorf("inserting sale: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	logrus.WithField("rows", len(sales)).Info("Imported sales snapshot")
	return nil
}

// buildWhere translates a filter into a WHERE clause and its arguments.
func buildWhere(f types.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if !f.From.IsZero() {
		conds = append(conds, "sale_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "sale_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if len(f.Products) > 0 {
		placeholders := strings.Repeat(",?", len(f.Products))[1:]
		conds = append(conds, "product IN ("+placeholders+")")
		for _, p := range f.Products {
			args = append(args, p)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Metrics returns the KPI block for the filtered snapshot.
func (s *Store) Metrics(f types.Filter) (types.Metrics, error) {
	where, args := buildWhere(f)

	var m types.Metrics
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(money), 0), COUNT(*), COALESCE(AVG(money), 0) FROM sales"+where,
		args...,
	)
	if err := row.Scan(&m.TotalSales, &m.Transactions, &m.AverageTicket); err != nil {
		return m, fmt.Errorf("querying metrics: %w", err)
	}

	m.TopProduct = "N/A"
	row = s.db.QueryRow(
		"SELECT product FROM sales"+where+" GROUP BY product ORDER BY COUNT(*) DESC, product ASC LIMIT 1",
		args...,
	)
	var top string
	switch err := row.Scan(&top); err {
	case nil:
		m.TopProduct = top
	case sql.ErrNoRows:
		// empty snapshot, keep N/A
	default:
		return m, fmt.Errorf("querying top product: %w", err)
	}

	return m, nil
}

// Products returns the distinct product names in alphabetical order.
func (s *Store) Products() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT product FROM sales ORDER BY product")
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// querySeries runs a GROUP BY query returning label/total pairs.
func (s *Store) querySeries(query string, args []interface{}) ([]types.SeriesPoint, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var series []types.SeriesPoint
	for rows.Next() {
		var p types.SeriesPoint
		if err := rows.Scan(&p.Label, &p.Total); err != nil {
			return nil, fmt.Errorf("scanning series point: %w", err)
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

// groupTotals collects the totals of a GROUP BY query into a label map.
func (s *Store) groupTotals(column string, f types.Filter) (map[string]float64, error) {
	where, args := buildWhere(f)
	rows, err := s.db.Query(
		"SELECT "+column+", SUM(money) FROM sales"+where+" GROUP BY "+column,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s totals: %w", column, err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var label string
		var total float64
		if err := rows.Scan(&label, &total); err != nil {
			return nil, fmt.Errorf("scanning %s total: %w", column, err)
		}
		totals[label] = total
	}
	return totals, rows.Err()
}

// SalesByProduct returns total sales per product, highest first.
func (s *Store) SalesByProduct(f types.Filter) ([]types.SeriesPoint, error) {
	where, args := buildWhere(f)
	return s.querySeries(
		"SELECT product, SUM(money) FROM sales"+where+" GROUP BY product ORDER BY SUM(money) DESC",
		args,
	)
}

// SalesByHour returns total sales per hour of day in ascending hour order.
func (s *Store) SalesByHour(f types.Filter) ([]types.SeriesPoint, error) {
	where, args := buildWhere(f)
	rows, err := s.db.Query(
		"SELECT hour, SUM(money) FROM sales"+where+" GROUP BY hour ORDER BY hour",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sales by hour: %w", err)
	}
	defer rows.Close()

	var series []types.SeriesPoint
	for rows.Next() {
		var hour int
		var total float64
		if err := rows.Scan(&hour, &total); err != nil {
			return nil, fmt.Errorf("scanning hour total: %w", err)
		}
		series = append(series, types.SeriesPoint{Label: strconv.Itoa(hour), Total: total})
	}
	return series, rows.Err()
}

// SalesByTimeOfDay returns totals in the fixed Morning/Afternoon/Evening/Night
// order; buckets with no sales are left out.
func (s *Store) SalesByTimeOfDay(f types.Filter) ([]types.SeriesPoint, error) {
	totals, err := s.groupTotals("time_of_day", f)
	if err != nil {
		return nil, err
	}

	var series []types.SeriesPoint
	for _, tod := range timesOfDay {
		if total, ok := totals[tod]; ok {
			series = append(series, types.SeriesPoint{Label: tod, Total: total})
		}
	}
	return series, nil
}

// SalesByWeekday returns totals for every weekday, Monday first, with zero
// totals for days without sales.
func (s *Store) SalesByWeekday(f types.Filter) ([]types.SeriesPoint, error) {
	totals, err := s.groupTotals("weekday", f)
	if err != nil {
		return nil, err
	}

	series := make([]types.SeriesPoint, 0, len(weekdayShort))
	for i, short := range weekdayShort {
		series = append(series, types.SeriesPoint{Label: weekdayFull[i], Total: totals[short]})
	}
	return series, nil
}

// SalesByMonth returns totals for every calendar month, January first, with
// zero totals for months without sales.
func (s *Store) SalesByMonth(f types.Filter) ([]types.SeriesPoint, error) {
	totals, err := s.groupTotals("month_name", f)
	if err != nil {
		return nil, err
	}

	series := make([]types.SeriesPoint, 0, len(monthNames))
	for _, month := range monthNames {
		series = append(series, types.SeriesPoint{Label: month, Total: totals[month]})
	}
	return series, nil
}

// DailySales returns total sales per day in chronological order.
func (s *Store) DailySales(f types.Filter) ([]types.SeriesPoint, error) {
	where, args := buildWhere(f)
	return s.querySeries(
		"SELECT sale_date, SUM(money) FROM sales"+where+" GROUP BY sale_date ORDER BY sale_date",
		args,
	)
}

// MonthlySales returns total sales per calendar month (YYYY-MM) in
// chronological order.
func (s *Store) MonthlySales(f types.Filter) ([]types.SeriesPoint, error) {
	where, args := buildWhere(f)
	return s.querySeries(
		"SELECT substr(sale_date, 1, 7), SUM(money) FROM sales"+where+
			" GROUP BY substr(sale_date, 1, 7) ORDER BY substr(sale_date, 1, 7)",
		args,
	)
}
