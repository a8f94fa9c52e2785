package generator

import (
	"fmt"
	"math"

	"github.com/shadowcyng/ecomlytics/models"
)

// Validate re-checks the invariants the analytics layer depends on:
// referential integrity, positive quantities and prices, clamped risk
// scores, and order totals that equal the sum of their item subtotals.
// Any violation is pipeline-fatal.
func Validate(ds *models.Dataset) error {
	customerIDs := make(map[int]struct{}, len(ds.Customers))
	emails := make(map[string]struct{}, len(ds.Customers))
	for _, c := range ds.Customers {
		customerIDs[c.CustomerID] = struct{}{}
		if _, dup := emails[c.Email]; dup {
			return fmt.Errorf("duplicate customer email %q", c.Email)
		}
		emails[c.Email] = struct{}{}
	}

	productIDs := make(map[int]struct{}, len(ds.Products))
	for _, p := range ds.Products {
		productIDs[p.ProductID] = struct{}{}
		if p.Price <= 0 {
			return fmt.Errorf("product %d has non-positive price %.2f", p.ProductID, p.Price)
		}
		if p.CostPrice < 0 {
			return fmt.Errorf("product %d has negative cost price %.2f", p.ProductID, p.CostPrice)
		}
	}

	orderIDs := make(map[int]struct{}, len(ds.Orders))
	for _, o := range ds.Orders {
		orderIDs[o.OrderID] = struct{}{}
		if _, ok := customerIDs[o.CustomerID]; !ok {
			return fmt.Errorf("order %d references unknown customer %d", o.OrderID, o.CustomerID)
		}
	}

	itemTotals := make(map[int]float64, len(ds.Orders))
	for _, it := range ds.OrderItems {
		if _, ok := orderIDs[it.OrderID]; !ok {
			return fmt.Errorf("order item %d references unknown order %d", it.OrderItemID, it.OrderID)
		}
		if _, ok := productIDs[it.ProductID]; !ok {
			return fmt.Errorf("order item %d references unknown product %d", it.OrderItemID, it.ProductID)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("order item %d has non-positive quantity %d", it.OrderItemID, it.Quantity)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("order item %d has negative unit price %.2f", it.OrderItemID, it.UnitPrice)
		}
		itemTotals[it.OrderID] += it.Subtotal
	}

	for _, o := range ds.Orders {
		if math.Abs(itemTotals[o.OrderID]-o.TotalAmount) > 0.01 {
			return fmt.Errorf("order %d total %.2f does not match item subtotal sum %.2f",
				o.OrderID, o.TotalAmount, itemTotals[o.OrderID])
		}
	}

	txIDs := make(map[string]struct{}, len(ds.Payments))
	for _, p := range ds.Payments {
		if _, ok := orderIDs[p.OrderID]; !ok {
			return fmt.Errorf("payment %d references unknown order %d", p.PaymentID, p.OrderID)
		}
		if p.RiskScore < 0 || p.RiskScore > 1 {
			return fmt.Errorf("payment %d risk score %.3f outside [0,1]", p.PaymentID, p.RiskScore)
		}
		if _, dup := txIDs[p.TransactionID]; dup {
			return fmt.Errorf("duplicate transaction id %q", p.TransactionID)
		}
		txIDs[p.TransactionID] = struct{}{}
	}

	return nil
}
