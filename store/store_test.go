package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shadowcyng/ecomlytics/ingest"
	"github.com/shadowcyng/ecomlytics/models"
)

var ctx = context.Background()

// withDatabase runs a test against the database named by
// TEST_DATABASE_URL with a freshly reset schema, skipping when no test
// database is configured.
func withDatabase(t *testing.T, action func(db *sql.DB)) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database-backed test")
	}

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	require.NoError(t, ingest.CreateSchema(ctx, db))
	require.NoError(t, ingest.Reset(ctx, db))

	action(db)
}

func loadDataset(t *testing.T, db *sql.DB, ds *models.Dataset) {
	t.Helper()
	require.NoError(t, ingest.NewIngestor(db).Ingest(ctx, ds))
}

// Fixture builders fill the non-null columns the queries never read.

func fixtureCustomer(id int, signup time.Time) models.Customer {
	return models.Customer{
		CustomerID:   id,
		FirstName:    "Test",
		LastName:     "Customer",
		Email:        fmt.Sprintf("customer%d@example.com", id),
		SignupDate:   signup,
		CustomerTier: models.TierRegular,
		Country:      "Ireland",
		City:         "Marlow",
		LoyaltyScore: 50,
		IsActive:     true,
	}
}

func fixtureProduct(id int, category string, price, cost float64, stock int) models.Product {
	return models.Product{
		ProductID:     id,
		ProductName:   fmt.Sprintf("Product %d", id),
		Category:      category,
		Subcategory:   "essentials",
		Price:         price,
		CostPrice:     cost,
		StockQuantity: stock,
		Supplier:      "Acme Supply Co",
		CreationDate:  time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func fixtureOrder(id, customerID int, date time.Time, total float64, status string) models.Order {
	return models.Order{
		OrderID:         id,
		CustomerID:      customerID,
		OrderDate:       date,
		Status:          status,
		ShippingCountry: "Ireland",
		ShippingCity:    "Marlow",
		TotalAmount:     total,
	}
}

func fixtureItem(id, orderID, productID, quantity int, unitPrice float64) models.OrderItem {
	return models.OrderItem{
		OrderItemID: id,
		OrderID:     orderID,
		ProductID:   productID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice * float64(quantity),
	}
}

func fixturePayment(id, orderID int, method, status string, amount, risk float64, date time.Time) models.Payment {
	return models.Payment{
		PaymentID:     id,
		OrderID:       orderID,
		PaymentMethod: method,
		Amount:        amount,
		PaymentStatus: status,
		PaymentDate:   date,
		TransactionID: fmt.Sprintf("tx-%06d", id),
		RiskScore:     risk,
	}
}

// noon keeps fixture dates stable under any session time zone when the
// queries truncate timestamps to dates.
func noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
