package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shadowcyng/ecomlytics/models"
)

// AnalyticsStore runs the fixed analytical queries over an ingested
// snapshot. Every query is a stateless aggregation; divisions whose
// denominator can be zero are NULL-guarded in SQL and surface as nil
// pointers in the result rows.
type AnalyticsStore struct {
	DB *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{DB: db}
}

// SnapshotNow resolves the reference "now" for trailing-window queries:
// the latest order date in the snapshot, so a historical dataset always
// has a populated trailing window. Falls back to wall clock on an empty
// snapshot.
func (s *AnalyticsStore) SnapshotNow(ctx context.Context) (time.Time, error) {
	var max sql.NullTime
	err := s.DB.QueryRowContext(ctx, `SELECT MAX(order_date) FROM orders`).Scan(&max)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve snapshot reference time: %w", err)
	}
	if !max.Valid {
		return time.Now().UTC(), nil
	}
	return max.Time, nil
}

const customerLifetimeValueSQL = `
WITH customer_orders AS (
    SELECT o.customer_id,
           COUNT(*)                                    AS order_count,
           SUM(o.total_amount)                         AS revenue,
           AVG(o.total_amount)                         AS avg_order_value,
           MAX(o.order_date)::date - MIN(o.order_date)::date AS tenure_days
    FROM customers c
    JOIN orders o ON o.customer_id = c.customer_id
    WHERE o.status <> 'cancelled'
    GROUP BY o.customer_id
),
customer_clv AS (
    SELECT order_count,
           revenue,
           avg_order_value,
           CASE WHEN tenure_days > 0
                THEN revenue / tenure_days * 365
                ELSE NULL
           END AS estimated_annual_clv,
           CASE WHEN order_count >= 5 THEN 'VIP'
                WHEN order_count >= 2 THEN 'Regular'
                ELSE 'New'
           END AS segment
    FROM customer_orders
)
SELECT segment,
       COUNT(*)              AS customers,
       AVG(revenue)          AS avg_revenue,
       AVG(estimated_annual_clv) AS avg_annual_clv,
       AVG(avg_order_value)  AS avg_order_value,
       AVG(order_count)      AS avg_orders_per_user
FROM customer_clv
GROUP BY segment
ORDER BY CASE segment WHEN 'VIP' THEN 0 WHEN 'Regular' THEN 1 ELSE 2 END`

// CustomerLifetimeValue segments customers by non-cancelled order count
// and reports per-segment revenue and annualized CLV. Customers whose
// orders all fall on one day have no tenure and a NULL CLV.
func (s *AnalyticsStore) CustomerLifetimeValue(ctx context.Context) ([]models.SegmentStats, error) {
	rows, err := s.DB.QueryContext(ctx, customerLifetimeValueSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer lifetime value: %w", err)
	}
	defer rows.Close()

	var results []models.SegmentStats
	for rows.Next() {
		var r models.SegmentStats
		var clv sql.NullFloat64
		if err := rows.Scan(&r.Segment, &r.Customers, &r.AvgRevenue, &clv, &r.AvgOrderValue, &r.AvgOrdersPerUser); err != nil {
			return nil, fmt.Errorf("failed to scan customer segment row: %w", err)
		}
		r.AvgAnnualCLV = nullableFloat(clv)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error in customer lifetime value query: %w", err)
	}
	return results, nil
}

const productPerformanceSQL = `
WITH product_sales AS (
    SELECT p.product_id,
           p.product_name,
           p.category,
           p.stock_quantity,
           COALESCE(SUM(s.quantity), 0)               AS units_sold,
           COALESCE(SUM(s.subtotal), 0)               AS revenue,
           COALESCE(SUM(s.quantity), 0) * p.cost_price AS cost
    FROM products p
    LEFT JOIN (
        SELECT oi.product_id, oi.quantity, oi.subtotal
        FROM order_items oi
        JOIN orders o ON o.order_id = oi.order_id
        WHERE o.status <> 'cancelled'
    ) s ON s.product_id = p.product_id
    GROUP BY p.product_id, p.product_name, p.category, p.stock_quantity, p.cost_price
),
ranked AS (
    SELECT *,
           MAX(units_sold) OVER (PARTITION BY category) AS category_max_units
    FROM product_sales
)
SELECT product_id,
       product_name,
       category,
       units_sold,
       revenue,
       cost,
       revenue - cost AS profit,
       CASE WHEN revenue > 0 THEN (revenue - cost) / revenue ELSE NULL END AS profit_margin,
       CASE WHEN category_max_units > 0
            THEN stock_quantity::numeric / category_max_units * 30
            ELSE NULL
       END AS days_of_supply,
       CASE WHEN revenue > 0 AND (revenue - cost) / revenue >= 0.4 THEN 'High'
            WHEN revenue > 0 AND (revenue - cost) / revenue >= 0.2 THEN 'Medium'
            ELSE 'Low'
       END AS margin_class,
       CASE WHEN category_max_units > 0 AND stock_quantity::numeric / category_max_units * 30 < 15 THEN 'Low Stock'
            WHEN category_max_units > 0 AND stock_quantity::numeric / category_max_units * 30 > 60 THEN 'Overstocked'
            ELSE 'Optimal'
       END AS stock_class,
       stock_quantity
FROM ranked
ORDER BY revenue DESC
LIMIT 20`

// ProductPerformance reports units, revenue, profit and stock posture
// for the top 20 products by revenue. Days of supply scales stock
// against the best seller in the product's category; a category with no
// sales yields NULL.
func (s *AnalyticsStore) ProductPerformance(ctx context.Context) ([]models.ProductPerformance, error) {
	rows, err := s.DB.QueryContext(ctx, productPerformanceSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query product performance: %w", err)
	}
	defer rows.Close()

	var results []models.ProductPerformance
	for rows.Next() {
		var r models.ProductPerformance
		var margin, supply sql.NullFloat64
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Category, &r.UnitsSold,
			&r.Revenue, &r.Cost, &r.Profit, &margin, &supply, &r.MarginClass,
			&r.StockClass, &r.StockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan product performance row: %w", err)
		}
		r.ProfitMargin = nullableFloat(margin)
		r.DaysOfSupply = nullableFloat(supply)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error in product performance query: %w", err)
	}
	return results, nil
}

const dailySeasonalitySQL = `
WITH daily_orders AS (
    SELECT order_date::date            AS day,
           COUNT(*)                    AS orders,
           COUNT(DISTINCT customer_id) AS customers,
           SUM(total_amount)           AS revenue
    FROM orders
    GROUP BY order_date::date
),
daily_failures AS (
    SELECT o.order_date::date AS day,
           COUNT(*)           AS failed_payments
    FROM payments p
    JOIN orders o ON o.order_id = p.order_id
    WHERE p.payment_status = 'failed'
    GROUP BY o.order_date::date
),
daily AS (
    SELECT d.day,
           d.orders,
           d.customers,
           d.revenue,
           COALESCE(f.failed_payments, 0) AS failed_payments
    FROM daily_orders d
    LEFT JOIN daily_failures f ON f.day = d.day
),
trended AS (
    SELECT day,
           orders,
           customers,
           revenue,
           failed_payments,
           AVG(revenue) OVER w        AS revenue_ma7,
           AVG(orders)  OVER w        AS orders_ma7,
           LAG(revenue, 7) OVER (ORDER BY day) AS revenue_prev_week
    FROM daily
    WINDOW w AS (ORDER BY day ROWS BETWEEN 6 PRECEDING AND CURRENT ROW)
)
SELECT day,
       orders,
       customers,
       revenue,
       failed_payments,
       revenue_ma7,
       orders_ma7,
       CASE WHEN revenue_prev_week > 0
            THEN (revenue - revenue_prev_week) / revenue_prev_week * 100
            ELSE NULL
       END AS wow_growth_pct
FROM trended
WHERE day > $1::date - 30
ORDER BY day`

// DailySeasonality returns the latest 30 days of daily volume with
// trailing 7-row moving averages and week-over-week growth. The moving
// average window is anchored before the 30-day cut, so early rows still
// average over their six preceding days.
func (s *AnalyticsStore) DailySeasonality(ctx context.Context, asOf time.Time) ([]models.DailyTrend, error) {
	rows, err := s.DB.QueryContext(ctx, dailySeasonalitySQL, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily seasonality: %w", err)
	}
	defer rows.Close()

	var results []models.DailyTrend
	for rows.Next() {
		var r models.DailyTrend
		var wow sql.NullFloat64
		if err := rows.Scan(&r.Day, &r.Orders, &r.Customers, &r.Revenue,
			&r.FailedPayments, &r.RevenueMA7, &r.OrdersMA7, &wow); err != nil {
			return nil, fmt.Errorf("failed to scan daily trend row: %w", err)
		}
		r.WoWGrowthPct = nullableFloat(wow)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error in daily seasonality query: %w", err)
	}
	return results, nil
}

const cohortRetentionSQL = `
WITH cohorts AS (
    SELECT customer_id,
           date_trunc('month', signup_date)::date AS cohort_month
    FROM customers
),
activity AS (
    SELECT co.cohort_month,
           date_trunc('month', o.order_date)::date AS activity_month,
           COUNT(DISTINCT o.customer_id)           AS active_customers,
           SUM(o.total_amount)                     AS revenue
    FROM orders o
    JOIN cohorts co ON co.customer_id = o.customer_id
    WHERE o.status <> 'cancelled'
    GROUP BY co.cohort_month, date_trunc('month', o.order_date)::date
)
SELECT cohort_month,
       activity_month,
       active_customers,
       revenue,
       active_customers::numeric
           / NULLIF(FIRST_VALUE(active_customers) OVER (
                 PARTITION BY cohort_month ORDER BY activity_month), 0)
           * 100 AS retention_pct
FROM activity
WHERE cohort_month >= DATE '2023-01-01'
ORDER BY cohort_month, activity_month`

// CohortRetention groups customers by signup month and measures how
// each cohort's activity holds up against its first active month.
func (s *AnalyticsStore) CohortRetention(ctx context.Context) ([]models.CohortRetention, error) {
	rows, err := s.DB.QueryContext(ctx, cohortRetentionSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohort retention: %w", err)
	}
	defer rows.Close()

	var results []models.CohortRetention
	for rows.Next() {
		var r models.CohortRetention
		var retention sql.NullFloat64
		if err := rows.Scan(&r.CohortMonth, &r.ActivityMonth, &r.ActiveCustomers, &r.Revenue, &retention); err != nil {
			return nil, fmt.Errorf("failed to scan cohort retention row: %w", err)
		}
		r.RetentionPct = nullableFloat(retention)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error in cohort retention query: %w", err)
	}
	return results, nil
}

const paymentRiskSQL = `
WITH method_status AS (
    SELECT payment_method,
           payment_status,
           COUNT(*)        AS cnt,
           SUM(amount)     AS amount,
           AVG(risk_score) AS avg_risk
    FROM payments
    GROUP BY payment_method, payment_status
)
SELECT payment_method,
       COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'completed'), 0)    AS completed,
       COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'failed'), 0)       AS failed,
       COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'refunded'), 0)     AS refunded,
       COALESCE(SUM(amount) FILTER (WHERE payment_status = 'completed'), 0) AS total_processed,
       SUM(cnt * avg_risk) / NULLIF(SUM(cnt), 0)                            AS avg_risk_score,
       COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'failed'), 0)::numeric
           / NULLIF(COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'failed'), 0)
                  + COALESCE(SUM(cnt) FILTER (WHERE payment_status = 'completed'), 0), 0)
           * 100 AS failure_rate_pct,
       CASE WHEN SUM(cnt * avg_risk) / NULLIF(SUM(cnt), 0) > 0.3 THEN 'High'
            WHEN SUM(cnt * avg_risk) / NULLIF(SUM(cnt), 0) > 0.1 THEN 'Medium'
            ELSE 'Low'
       END AS risk_category
FROM method_status
GROUP BY payment_method
ORDER BY total_processed DESC`

// PaymentRisk aggregates payments by method and status, then rolls each
// method up into success/failure counts, processed volume, and a risk
// category from the method's average risk score.
func (s *AnalyticsStore) PaymentRisk(ctx context.Context) ([]models.PaymentMethodRisk, error) {
	rows, err := s.DB.QueryContext(ctx, paymentRiskSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment risk: %w", err)
	}
	defer rows.Close()

	var results []models.PaymentMethodRisk
	for rows.Next() {
		var r models.PaymentMethodRisk
		var avgRisk, failureRate sql.NullFloat64
		if err := rows.Scan(&r.Method, &r.Completed, &r.Failed, &r.Refunded,
			&r.TotalProcessed, &avgRisk, &failureRate, &r.RiskCategory); err != nil {
			return nil, fmt.Errorf("failed to scan payment risk row: %w", err)
		}
		r.AvgRiskScore = nullableFloat(avgRisk)
		r.FailureRatePct = nullableFloat(failureRate)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error in payment risk query: %w", err)
	}
	return results, nil
}

// Each KPI is an independent scalar subquery; an unfiltered join across
// the tables would multiply row counts combinatorially.
const executiveKPIsSQL = `
WITH metrics AS (
    SELECT
        (SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled')                                   AS total_revenue,
        (SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled' AND order_date >= $1::date - 30)   AS revenue_30d,
        (SELECT COUNT(*) FROM orders)                                                                                     AS total_orders,
        (SELECT COUNT(*) FROM orders WHERE status <> 'cancelled')                                                         AS active_orders,
        (SELECT COUNT(*) FROM customers)                                                                                  AS total_customers,
        (SELECT COUNT(DISTINCT customer_id) FROM orders WHERE status <> 'cancelled')                                      AS purchasing_customers,
        (SELECT COUNT(*) FROM products)                                                                                   AS total_products,
        (SELECT COUNT(*) FROM products WHERE stock_quantity > 0)                                                          AS products_in_stock,
        (SELECT COUNT(*) FROM payments WHERE payment_status = 'completed')                                                AS payments_completed,
        (SELECT COUNT(*) FROM payments WHERE payment_status = 'failed')                                                   AS payments_failed
)
SELECT total_revenue,
       revenue_30d,
       total_orders,
       active_orders,
       total_customers,
       purchasing_customers,
       total_products,
       products_in_stock,
       payments_completed,
       payments_failed,
       total_revenue / NULLIF(active_orders, 0)                                        AS avg_order_value,
       total_revenue / NULLIF(purchasing_customers, 0)                                 AS revenue_per_customer,
       purchasing_customers::numeric / NULLIF(total_customers, 0) * 100                AS active_customer_rate,
       payments_failed::numeric / NULLIF(payments_failed + payments_completed, 0) * 100 AS payment_failure_rate
FROM metrics`

// ExecutiveKPIs returns the single-row business rollup. Every derived
// ratio is NULL when its denominator is zero.
func (s *AnalyticsStore) ExecutiveKPIs(ctx context.Context, asOf time.Time) (*models.ExecutiveKPIs, error) {
	var k models.ExecutiveKPIs
	var aov, rpc, acr, pfr sql.NullFloat64

	err := s.DB.QueryRowContext(ctx, executiveKPIsSQL, asOf).Scan(
		&k.TotalRevenue, &k.Revenue30d, &k.TotalOrders, &k.ActiveOrders,
		&k.TotalCustomers, &k.PurchasingCustomers, &k.TotalProducts,
		&k.ProductsInStock, &k.PaymentsCompleted, &k.PaymentsFailed,
		&aov, &rpc, &acr, &pfr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query executive KPIs: %w", err)
	}

	k.AvgOrderValue = nullableFloat(aov)
	k.RevenuePerCustomer = nullableFloat(rpc)
	k.ActiveCustomerRate = nullableFloat(acr)
	k.PaymentFailureRate = nullableFloat(pfr)
	return &k, nil
}

// FullReport runs all six queries against the same snapshot.
func (s *AnalyticsStore) FullReport(ctx context.Context, asOf time.Time) (*models.Report, error) {
	segments, err := s.CustomerLifetimeValue(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.ProductPerformance(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.DailySeasonality(ctx, asOf)
	if err != nil {
		return nil, err
	}
	cohorts, err := s.CohortRetention(ctx)
	if err != nil {
		return nil, err
	}
	risk, err := s.PaymentRisk(ctx)
	if err != nil {
		return nil, err
	}
	kpis, err := s.ExecutiveKPIs(ctx, asOf)
	if err != nil {
		return nil, err
	}

	return &models.Report{
		GeneratedAt:        time.Now().UTC(),
		AsOf:               asOf,
		CustomerSegments:   segments,
		ProductPerformance: products,
		DailyTrends:        trends,
		CohortRetention:    cohorts,
		PaymentRisk:        risk,
		KPIs:               *kpis,
	}, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
