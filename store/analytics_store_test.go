package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowcyng/ecomlytics/models"
)

func segmentByName(t *testing.T, segments []models.SegmentStats, name string) models.SegmentStats {
	t.Helper()
	for _, s := range segments {
		if s.Segment == name {
			return s
		}
	}
	t.Fatalf("segment %q not in results", name)
	return models.SegmentStats{}
}

func TestCustomerLifetimeValue_Segments(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{
				fixtureCustomer(1, noon(2022, 6, 1)),
				fixtureCustomer(2, noon(2022, 6, 1)),
				fixtureCustomer(3, noon(2022, 6, 1)),
				fixtureCustomer(4, noon(2022, 6, 1)),
			},
		}
		// Customer 1: five delivered orders -> VIP.
		for i := 0; i < 5; i++ {
			ds.Orders = append(ds.Orders, fixtureOrder(100+i, 1, noon(2023, 1, 10+i), 50, "delivered"))
		}
		// Customer 2: six orders but four cancelled -> two counted -> Regular.
		for i := 0; i < 6; i++ {
			status := "cancelled"
			if i < 2 {
				status = "delivered"
			}
			ds.Orders = append(ds.Orders, fixtureOrder(200+i, 2, noon(2023, 2, 1+i), 50, status))
		}
		// Customer 3: a single order -> New.
		ds.Orders = append(ds.Orders, fixtureOrder(300, 3, noon(2023, 3, 1), 50, "shipped"))
		// Customer 4: only cancelled orders -> not in the report at all.
		ds.Orders = append(ds.Orders, fixtureOrder(400, 4, noon(2023, 3, 2), 50, "cancelled"))
		loadDataset(t, db, ds)

		segments, err := NewAnalyticsStore(db).CustomerLifetimeValue(ctx)
		require.NoError(t, err)
		require.Len(t, segments, 3)

		assert.Equal(t, int64(1), segmentByName(t, segments, "VIP").Customers)
		assert.Equal(t, int64(1), segmentByName(t, segments, "Regular").Customers)
		assert.Equal(t, int64(1), segmentByName(t, segments, "New").Customers)

		// Per-segment counts sum to the distinct customers with at least
		// one non-cancelled order.
		var total int64
		for _, s := range segments {
			total += s.Customers
		}
		assert.Equal(t, int64(3), total)
	})
}

func TestCustomerLifetimeValue_AnnualizedFormula(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		// 500 of revenue over a 100-day span annualizes to 1825.
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 12, 1))},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 1, 1), 250, "delivered"),
				fixtureOrder(2, 1, noon(2023, 4, 11), 250, "delivered"),
			},
		}
		loadDataset(t, db, ds)

		segments, err := NewAnalyticsStore(db).CustomerLifetimeValue(ctx)
		require.NoError(t, err)
		require.Len(t, segments, 1)

		reg := segmentByName(t, segments, "Regular")
		assert.Equal(t, int64(1), reg.Customers)
		assert.InDelta(t, 500, reg.AvgRevenue, 0.01)
		assert.InDelta(t, 250, reg.AvgOrderValue, 0.01)
		require.NotNil(t, reg.AvgAnnualCLV)
		assert.InDelta(t, 1825, *reg.AvgAnnualCLV, 0.01)
	})
}

func TestCustomerLifetimeValue_ZeroTenureIsNull(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		// Both orders on the same day: zero tenure must yield NULL, not
		// an error or infinity.
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2023, 1, 1))},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 2, 1), 100, "delivered"),
				fixtureOrder(2, 1, noon(2023, 2, 1), 50, "delivered"),
			},
		}
		loadDataset(t, db, ds)

		segments, err := NewAnalyticsStore(db).CustomerLifetimeValue(ctx)
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "Regular", segments[0].Segment)
		assert.Nil(t, segments[0].AvgAnnualCLV)
	})
}

func TestProductPerformance_MarginsAndSupply(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 6, 1))},
			Products: []models.Product{
				// Priced 50 with cost 30, sells 10 units: margin 0.4 -> High.
				fixtureProduct(1, "Electronics", 50, 30, 10),
				// Same category, stock 3 against a category max of 10
				// units: 9 days of supply -> Low Stock.
				fixtureProduct(2, "Electronics", 20, 18, 3),
				// Never sold, category has no sales: NULL margin and supply.
				fixtureProduct(3, "Books", 10, 5, 40),
				// Sold only on a cancelled order: counts as unsold.
				fixtureProduct(4, "Beauty", 15, 5, 40),
			},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 3, 1), 540, "delivered"),
				fixtureOrder(2, 1, noon(2023, 3, 2), 15, "cancelled"),
			},
			OrderItems: []models.OrderItem{
				fixtureItem(1, 1, 1, 10, 50),
				fixtureItem(2, 1, 2, 2, 20),
				fixtureItem(3, 2, 4, 1, 15),
			},
		}
		loadDataset(t, db, ds)

		rows, err := NewAnalyticsStore(db).ProductPerformance(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 4)

		// Ordered by revenue, the 500-revenue product leads.
		top := rows[0]
		assert.Equal(t, 1, top.ProductID)
		assert.Equal(t, int64(10), top.UnitsSold)
		assert.InDelta(t, 500, top.Revenue, 0.01)
		assert.InDelta(t, 300, top.Cost, 0.01)
		assert.InDelta(t, 200, top.Profit, 0.01)
		require.NotNil(t, top.ProfitMargin)
		assert.InDelta(t, 0.4, *top.ProfitMargin, 0.001)
		assert.Equal(t, "High", top.MarginClass)
		require.NotNil(t, top.DaysOfSupply)
		assert.InDelta(t, 30, *top.DaysOfSupply, 0.01)
		assert.Equal(t, "Optimal", top.StockClass)

		var thin, unsold, cancelledOnly models.ProductPerformance
		for _, r := range rows {
			switch r.ProductID {
			case 2:
				thin = r
			case 3:
				unsold = r
			case 4:
				cancelledOnly = r
			}
		}

		require.NotNil(t, thin.ProfitMargin)
		assert.InDelta(t, 0.1, *thin.ProfitMargin, 0.001)
		assert.Equal(t, "Low", thin.MarginClass)
		require.NotNil(t, thin.DaysOfSupply)
		assert.InDelta(t, 9, *thin.DaysOfSupply, 0.01)
		assert.Equal(t, "Low Stock", thin.StockClass)

		assert.Equal(t, int64(0), unsold.UnitsSold)
		assert.Nil(t, unsold.ProfitMargin)
		assert.Nil(t, unsold.DaysOfSupply)
		assert.Equal(t, "Low", unsold.MarginClass)

		assert.Equal(t, int64(0), cancelledOnly.UnitsSold)
		assert.InDelta(t, 0, cancelledOnly.Revenue, 0.01)
	})
}

func TestDailySeasonality_MovingAverageAndWoWGrowth(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		// One order per day for ten days, revenue 100*i on day i.
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 6, 1))},
		}
		for i := 1; i <= 10; i++ {
			day := noon(2023, 3, i)
			ds.Orders = append(ds.Orders, fixtureOrder(i, 1, day, float64(100*i), "delivered"))
			status := models.PaymentCompleted
			if i == 2 {
				status = models.PaymentFailed
			}
			ds.Payments = append(ds.Payments,
				fixturePayment(i, i, "credit_card", status, float64(100*i), 0.1, day.Add(time.Hour)))
		}
		loadDataset(t, db, ds)

		trends, err := NewAnalyticsStore(db).DailySeasonality(ctx, noon(2023, 3, 10))
		require.NoError(t, err)
		require.Len(t, trends, 10)

		first := trends[0]
		assert.Equal(t, int64(1), first.Orders)
		assert.InDelta(t, 100, first.Revenue, 0.01)
		assert.InDelta(t, 100, first.RevenueMA7, 0.01)
		assert.Nil(t, first.WoWGrowthPct, "no week-ago row yet")
		assert.Equal(t, int64(0), first.FailedPayments)

		assert.Equal(t, int64(1), trends[1].FailedPayments)

		// Day 10: the trailing 7-row average covers days 4..10.
		last := trends[9]
		assert.InDelta(t, 700, last.RevenueMA7, 0.01)
		assert.InDelta(t, 1, last.OrdersMA7, 0.01)
		// Against day 3's revenue of 300: (1000-300)/300 * 100.
		require.NotNil(t, last.WoWGrowthPct)
		assert.InDelta(t, 233.33, *last.WoWGrowthPct, 0.01)
	})
}

func TestDailySeasonality_LimitedToLast30Days(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 6, 1))},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 1, 1), 100, "delivered"),
				fixtureOrder(2, 1, noon(2023, 3, 10), 100, "delivered"),
			},
		}
		loadDataset(t, db, ds)

		trends, err := NewAnalyticsStore(db).DailySeasonality(ctx, noon(2023, 3, 10))
		require.NoError(t, err)
		require.Len(t, trends, 1)
		assert.Equal(t, "2023-03-10", trends[0].Day.Format("2006-01-02"))
	})
}

func TestCohortRetention_FirstMonthIsAlways100(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{
				fixtureCustomer(1, noon(2023, 2, 5)),
				fixtureCustomer(2, noon(2023, 2, 20)),
				// Signed up before 2023-01: the whole cohort is filtered out.
				fixtureCustomer(3, noon(2022, 12, 1)),
			},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 2, 10), 100, "delivered"),
				fixtureOrder(2, 2, noon(2023, 2, 25), 100, "delivered"),
				fixtureOrder(3, 1, noon(2023, 3, 5), 80, "delivered"),
				fixtureOrder(4, 3, noon(2023, 2, 11), 60, "delivered"),
			},
		}
		loadDataset(t, db, ds)

		rows, err := NewAnalyticsStore(db).CohortRetention(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		first := rows[0]
		assert.Equal(t, "2023-02", first.CohortMonth.Format("2006-01"))
		assert.Equal(t, "2023-02", first.ActivityMonth.Format("2006-01"))
		assert.Equal(t, int64(2), first.ActiveCustomers)
		assert.InDelta(t, 200, first.Revenue, 0.01)
		require.NotNil(t, first.RetentionPct)
		assert.InDelta(t, 100, *first.RetentionPct, 0.001)

		second := rows[1]
		assert.Equal(t, "2023-03", second.ActivityMonth.Format("2006-01"))
		assert.Equal(t, int64(1), second.ActiveCustomers)
		require.NotNil(t, second.RetentionPct)
		assert.InDelta(t, 50, *second.RetentionPct, 0.001)
	})
}

func TestPaymentRisk_PerMethodRollup(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 6, 1))},
		}
		for i := 1; i <= 5; i++ {
			ds.Orders = append(ds.Orders, fixtureOrder(i, 1, noon(2023, 3, i), 100, "delivered"))
		}
		ds.Payments = []models.Payment{
			fixturePayment(1, 1, "credit_card", models.PaymentCompleted, 100, 0.2, noon(2023, 3, 1)),
			fixturePayment(2, 2, "credit_card", models.PaymentCompleted, 100, 0.2, noon(2023, 3, 2)),
			fixturePayment(3, 3, "credit_card", models.PaymentCompleted, 100, 0.2, noon(2023, 3, 3)),
			fixturePayment(4, 4, "credit_card", models.PaymentFailed, 100, 0.2, noon(2023, 3, 4)),
			fixturePayment(5, 5, "paypal", models.PaymentRefunded, 100, 0.05, noon(2023, 3, 5)),
		}
		loadDataset(t, db, ds)

		rows, err := NewAnalyticsStore(db).PaymentRisk(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		// Ordered by processed volume, credit_card leads.
		cc := rows[0]
		assert.Equal(t, "credit_card", cc.Method)
		assert.Equal(t, int64(3), cc.Completed)
		assert.Equal(t, int64(1), cc.Failed)
		assert.Equal(t, int64(0), cc.Refunded)
		assert.InDelta(t, 300, cc.TotalProcessed, 0.01)
		require.NotNil(t, cc.AvgRiskScore)
		assert.InDelta(t, 0.2, *cc.AvgRiskScore, 0.001)
		require.NotNil(t, cc.FailureRatePct)
		assert.InDelta(t, 25, *cc.FailureRatePct, 0.001)
		assert.Equal(t, "Medium", cc.RiskCategory)

		pp := rows[1]
		assert.Equal(t, "paypal", pp.Method)
		assert.Equal(t, int64(1), pp.Refunded)
		assert.InDelta(t, 0, pp.TotalProcessed, 0.01)
		// Neither completed nor failed payments: the rate is undefined.
		assert.Nil(t, pp.FailureRatePct)
		assert.Equal(t, "Low", pp.RiskCategory)
	})
}

func TestExecutiveKPIs_Rollup(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{
				fixtureCustomer(1, noon(2022, 6, 1)),
				fixtureCustomer(2, noon(2022, 7, 1)),
			},
			Products: []models.Product{
				fixtureProduct(1, "Electronics", 50, 30, 10),
				fixtureProduct(2, "Books", 10, 5, 0),
			},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 3, 10), 100, "delivered"),
				fixtureOrder(2, 1, noon(2023, 3, 10), 50, "cancelled"),
			},
			Payments: []models.Payment{
				fixturePayment(1, 1, "credit_card", models.PaymentCompleted, 100, 0.1, noon(2023, 3, 10)),
				fixturePayment(2, 2, "credit_card", models.PaymentFailed, 50, 0.4, noon(2023, 3, 10)),
			},
		}
		loadDataset(t, db, ds)

		k, err := NewAnalyticsStore(db).ExecutiveKPIs(ctx, noon(2023, 3, 10))
		require.NoError(t, err)

		assert.InDelta(t, 100, k.TotalRevenue, 0.01)
		assert.InDelta(t, 100, k.Revenue30d, 0.01)
		assert.Equal(t, int64(2), k.TotalOrders)
		assert.Equal(t, int64(1), k.ActiveOrders)
		assert.Equal(t, int64(2), k.TotalCustomers)
		assert.Equal(t, int64(1), k.PurchasingCustomers)
		assert.Equal(t, int64(2), k.TotalProducts)
		assert.Equal(t, int64(1), k.ProductsInStock)
		assert.Equal(t, int64(1), k.PaymentsCompleted)
		assert.Equal(t, int64(1), k.PaymentsFailed)

		require.NotNil(t, k.AvgOrderValue)
		assert.InDelta(t, 100, *k.AvgOrderValue, 0.01)
		require.NotNil(t, k.RevenuePerCustomer)
		assert.InDelta(t, 100, *k.RevenuePerCustomer, 0.01)
		require.NotNil(t, k.ActiveCustomerRate)
		assert.InDelta(t, 50, *k.ActiveCustomerRate, 0.01)
		require.NotNil(t, k.PaymentFailureRate)
		assert.InDelta(t, 50, *k.PaymentFailureRate, 0.01)
	})
}

func TestExecutiveKPIs_EmptySnapshotYieldsNullRatios(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		k, err := NewAnalyticsStore(db).ExecutiveKPIs(ctx, time.Now().UTC())
		require.NoError(t, err)

		assert.Zero(t, k.TotalRevenue)
		assert.Zero(t, k.TotalOrders)
		assert.Nil(t, k.AvgOrderValue)
		assert.Nil(t, k.RevenuePerCustomer)
		assert.Nil(t, k.ActiveCustomerRate)
		assert.Nil(t, k.PaymentFailureRate)
	})
}

func TestSnapshotNow(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		s := NewAnalyticsStore(db)

		// Empty snapshot falls back to wall clock.
		now, err := s.SnapshotNow(ctx)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), now, time.Minute)

		latest := noon(2023, 3, 10)
		loadDataset(t, db, &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2022, 6, 1))},
			Orders: []models.Order{
				fixtureOrder(1, 1, noon(2023, 1, 1), 100, "delivered"),
				fixtureOrder(2, 1, latest, 100, "delivered"),
			},
		})

		now, err = s.SnapshotNow(ctx)
		require.NoError(t, err)
		assert.True(t, now.Equal(latest), "expected %s, got %s", latest, now)
	})
}

func TestFullReport_RunsAllQueries(t *testing.T) {
	withDatabase(t, func(db *sql.DB) {
		ds := &models.Dataset{
			Customers: []models.Customer{fixtureCustomer(1, noon(2023, 1, 5))},
			Products:  []models.Product{fixtureProduct(1, "Electronics", 50, 30, 10)},
			Orders:    []models.Order{fixtureOrder(1, 1, noon(2023, 3, 10), 100, "delivered")},
			OrderItems: []models.OrderItem{
				fixtureItem(1, 1, 1, 2, 50),
			},
			Payments: []models.Payment{
				fixturePayment(1, 1, "credit_card", models.PaymentCompleted, 100, 0.1, noon(2023, 3, 10)),
			},
		}
		loadDataset(t, db, ds)

		report, err := NewAnalyticsStore(db).FullReport(ctx, noon(2023, 3, 10))
		require.NoError(t, err)

		assert.Len(t, report.CustomerSegments, 1)
		assert.Len(t, report.ProductPerformance, 1)
		assert.Len(t, report.DailyTrends, 1)
		assert.Len(t, report.CohortRetention, 1)
		assert.Len(t, report.PaymentRisk, 1)
		assert.Equal(t, int64(1), report.KPIs.TotalOrders)
	})
}
