package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/database"
	"github.com/shadowcyng/ecomlytics/models"
	"github.com/shadowcyng/ecomlytics/store"
)

// Stage 3 of the pipeline: run the six analytics queries over the
// ingested snapshot and print a report. Exits non-zero on any failure.
func main() {
	var (
		asJSON    = flag.Bool("json", false, "emit the report as JSON")
		wallclock = flag.Bool("now", false, "anchor trailing windows at wall clock instead of the snapshot's latest order")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	s := store.NewAnalyticsStore(dbClient.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	asOf := time.Now().UTC()
	if !*wallclock {
		asOf, err = s.SnapshotNow(ctx)
		if err != nil {
			log.Fatalf("Failed to resolve snapshot reference time: %v", err)
		}
	}

	report, err := s.FullReport(ctx, asOf)
	if err != nil {
		log.Fatalf("Analytics run failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		return
	}

	printReport(report)
}

func printReport(r *models.Report) {
	fmt.Printf("E-commerce Analytics Report (as of %s)\n", r.AsOf.Format("2006-01-02"))

	fmt.Println("\n== Customer Lifetime Value by Segment ==")
	w := newTable()
	fmt.Fprintln(w, "SEGMENT\tCUSTOMERS\tAVG REVENUE\tAVG ANNUAL CLV\tAVG ORDER VALUE")
	for _, s := range r.CustomerSegments {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%s\t%.2f\n",
			s.Segment, s.Customers, s.AvgRevenue, fmtPtr(s.AvgAnnualCLV), s.AvgOrderValue)
	}
	w.Flush()

	fmt.Println("\n== Top Products by Revenue ==")
	w = newTable()
	fmt.Fprintln(w, "PRODUCT\tCATEGORY\tUNITS\tREVENUE\tPROFIT\tMARGIN\tSUPPLY DAYS\tMARGIN CLASS\tSTOCK CLASS")
	for _, p := range r.ProductPerformance {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			p.ProductName, p.Category, p.UnitsSold, p.Revenue, p.Profit,
			fmtPtr(p.ProfitMargin), fmtPtr(p.DaysOfSupply), p.MarginClass, p.StockClass)
	}
	w.Flush()

	fmt.Println("\n== Daily Trends (last 30 days) ==")
	w = newTable()
	fmt.Fprintln(w, "DAY\tORDERS\tCUSTOMERS\tREVENUE\tFAILED PMTS\tREV MA7\tWOW %")
	for _, d := range r.DailyTrends {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%d\t%.2f\t%s\n",
			d.Day.Format("2006-01-02"), d.Orders, d.Customers, d.Revenue,
			d.FailedPayments, d.RevenueMA7, fmtPtr(d.WoWGrowthPct))
	}
	w.Flush()

	fmt.Println("\n== Cohort Retention ==")
	w = newTable()
	fmt.Fprintln(w, "COHORT\tACTIVITY MONTH\tACTIVE\tREVENUE\tRETENTION %")
	for _, c := range r.CohortRetention {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			c.CohortMonth.Format("2006-01"), c.ActivityMonth.Format("2006-01"),
			c.ActiveCustomers, c.Revenue, fmtPtr(c.RetentionPct))
	}
	w.Flush()

	fmt.Println("\n== Payment Risk by Method ==")
	w = newTable()
	fmt.Fprintln(w, "METHOD\tCOMPLETED\tFAILED\tREFUNDED\tPROCESSED\tAVG RISK\tFAIL %\tCATEGORY")
	for _, p := range r.PaymentRisk {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%s\t%s\t%s\n",
			p.Method, p.Completed, p.Failed, p.Refunded, p.TotalProcessed,
			fmtPtr(p.AvgRiskScore), fmtPtr(p.FailureRatePct), p.RiskCategory)
	}
	w.Flush()

	k := r.KPIs
	fmt.Println("\n== Executive KPIs ==")
	w = newTable()
	fmt.Fprintf(w, "Total revenue\t%.2f\n", k.TotalRevenue)
	fmt.Fprintf(w, "Revenue (trailing 30d)\t%.2f\n", k.Revenue30d)
	fmt.Fprintf(w, "Orders (total/active)\t%d / %d\n", k.TotalOrders, k.ActiveOrders)
	fmt.Fprintf(w, "Customers (total/purchasing)\t%d / %d\n", k.TotalCustomers, k.PurchasingCustomers)
	fmt.Fprintf(w, "Products (total/in stock)\t%d / %d\n", k.TotalProducts, k.ProductsInStock)
	fmt.Fprintf(w, "Payments (completed/failed)\t%d / %d\n", k.PaymentsCompleted, k.PaymentsFailed)
	fmt.Fprintf(w, "Avg order value\t%s\n", fmtPtr(k.AvgOrderValue))
	fmt.Fprintf(w, "Revenue per customer\t%s\n", fmtPtr(k.RevenuePerCustomer))
	fmt.Fprintf(w, "Active customer rate\t%s\n", fmtPtr(k.ActiveCustomerRate))
	fmt.Fprintf(w, "Payment failure rate\t%s\n", fmtPtr(k.PaymentFailureRate))
	w.Flush()
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
