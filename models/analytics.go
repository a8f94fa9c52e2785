package models

import "time"

// Result rows returned by the analytics store. Ratios whose denominator
// can be zero are pointers: nil means the database returned NULL.

// SegmentStats is one row of the customer lifetime value report,
// aggregated per derived segment (VIP / Regular / New by order count).
type SegmentStats struct {
	Segment          string   `json:"segment"`
	Customers        int64    `json:"customers"`
	AvgRevenue       float64  `json:"avg_revenue"`
	AvgAnnualCLV     *float64 `json:"avg_annual_clv,omitempty"`
	AvgOrderValue    float64  `json:"avg_order_value"`
	AvgOrdersPerUser float64  `json:"avg_orders_per_user"`
}

// ProductPerformance is one row of the product report, limited to the
// top 20 products by revenue.
type ProductPerformance struct {
	ProductID     int      `json:"product_id"`
	ProductName   string   `json:"product_name"`
	Category      string   `json:"category"`
	UnitsSold     int64    `json:"units_sold"`
	Revenue       float64  `json:"revenue"`
	Cost          float64  `json:"cost"`
	Profit        float64  `json:"profit"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
	DaysOfSupply  *float64 `json:"days_of_supply,omitempty"`
	MarginClass   string   `json:"margin_class"`
	StockClass    string   `json:"stock_class"`
	StockQuantity int      `json:"stock_quantity"`
}

// DailyTrend is one day of the seasonality report with trailing 7-row
// moving averages and week-over-week growth.
type DailyTrend struct {
	Day            time.Time `json:"day"`
	Orders         int64     `json:"orders"`
	Customers      int64     `json:"customers"`
	Revenue        float64   `json:"revenue"`
	FailedPayments int64     `json:"failed_payments"`
	RevenueMA7     float64   `json:"revenue_ma7"`
	OrdersMA7      float64   `json:"orders_ma7"`
	WoWGrowthPct   *float64  `json:"wow_growth_pct,omitempty"`
}

// CohortRetention is one (cohort month, activity month) cell.
type CohortRetention struct {
	CohortMonth     time.Time `json:"cohort_month"`
	ActivityMonth   time.Time `json:"activity_month"`
	ActiveCustomers int64     `json:"active_customers"`
	Revenue         float64   `json:"revenue"`
	RetentionPct    *float64  `json:"retention_pct,omitempty"`
}

// PaymentMethodRisk is one payment method of the risk report.
type PaymentMethodRisk struct {
	Method         string   `json:"method"`
	Completed      int64    `json:"completed"`
	Failed         int64    `json:"failed"`
	Refunded       int64    `json:"refunded"`
	TotalProcessed float64  `json:"total_processed"`
	AvgRiskScore   *float64 `json:"avg_risk_score,omitempty"`
	FailureRatePct *float64 `json:"failure_rate_pct,omitempty"`
	RiskCategory   string   `json:"risk_category"`
}

// ExecutiveKPIs is the single-row business rollup.
type ExecutiveKPIs struct {
	TotalRevenue        float64  `json:"total_revenue"`
	Revenue30d          float64  `json:"revenue_30d"`
	TotalOrders         int64    `json:"total_orders"`
	ActiveOrders        int64    `json:"active_orders"`
	TotalCustomers      int64    `json:"total_customers"`
	PurchasingCustomers int64    `json:"purchasing_customers"`
	TotalProducts       int64    `json:"total_products"`
	ProductsInStock     int64    `json:"products_in_stock"`
	PaymentsCompleted   int64    `json:"payments_completed"`
	PaymentsFailed      int64    `json:"payments_failed"`
	AvgOrderValue       *float64 `json:"avg_order_value,omitempty"`
	RevenuePerCustomer  *float64 `json:"revenue_per_customer,omitempty"`
	ActiveCustomerRate  *float64 `json:"active_customer_rate,omitempty"`
	PaymentFailureRate  *float64 `json:"payment_failure_rate,omitempty"`
}

// Report bundles the output of all six queries for the CLI's -json mode
// and the API's combined endpoint.
type Report struct {
	GeneratedAt        time.Time            `json:"generated_at"`
	AsOf               time.Time            `json:"as_of"`
	CustomerSegments   []SegmentStats       `json:"customer_segments"`
	ProductPerformance []ProductPerformance `json:"product_performance"`
	DailyTrends        []DailyTrend         `json:"daily_trends"`
	CohortRetention    []CohortRetention    `json:"cohort_retention"`
	PaymentRisk        []PaymentMethodRisk  `json:"payment_risk"`
	KPIs               ExecutiveKPIs        `json:"kpis"`
}
