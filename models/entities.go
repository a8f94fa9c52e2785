package models

import "time"

// Order and payment status values stored in the snapshot. Orders move
// through pending -> processing -> shipped -> delivered; analytics treat
// every non-cancelled order as active.
const (
	OrderCancelled = "cancelled"

	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Customer tiers assigned at generation time. The CLV query derives its
// own segment from order counts and does not read this column.
const (
	TierVIP     = "VIP"
	TierRegular = "Regular"
	TierNew     = "New"
)

type Customer struct {
	CustomerID   int       `db:"customer_id" json:"customer_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	SignupDate   time.Time `db:"signup_date" json:"signup_date"`
	CustomerTier string    `db:"customer_tier" json:"customer_tier"`
	Country      string    `db:"country" json:"country"`
	City         string    `db:"city" json:"city"`
	LoyaltyScore float64   `db:"loyalty_score" json:"loyalty_score"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

type Product struct {
	ProductID     int       `db:"product_id" json:"product_id"`
	ProductName   string    `db:"product_name" json:"product_name"`
	Category      string    `db:"category" json:"category"`
	Subcategory   string    `db:"subcategory" json:"subcategory"`
	Price         float64   `db:"price" json:"price"`
	CostPrice     float64   `db:"cost_price" json:"cost_price"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	Supplier      string    `db:"supplier" json:"supplier"`
	CreationDate  time.Time `db:"creation_date" json:"creation_date"`
	IsActive      bool      `db:"is_active" json:"is_active"`
}

type Order struct {
	OrderID         int       `db:"order_id" json:"order_id"`
	CustomerID      int       `db:"customer_id" json:"customer_id"`
	OrderDate       time.Time `db:"order_date" json:"order_date"`
	Status          string    `db:"status" json:"status"`
	ShippingCountry string    `db:"shipping_country" json:"shipping_country"`
	ShippingCity    string    `db:"shipping_city" json:"shipping_city"`
	TotalAmount     float64   `db:"total_amount" json:"total_amount"`
}

type OrderItem struct {
	OrderItemID int     `db:"order_item_id" json:"order_item_id"`
	OrderID     int     `db:"order_id" json:"order_id"`
	ProductID   int     `db:"product_id" json:"product_id"`
	Quantity    int     `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
}

type Payment struct {
	PaymentID     int       `db:"payment_id" json:"payment_id"`
	OrderID       int       `db:"order_id" json:"order_id"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Amount        float64   `db:"amount" json:"amount"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	RiskScore     float64   `db:"risk_score" json:"risk_score"`
}

// Dataset is one complete generated snapshot, in ingestion (foreign key)
// order.
type Dataset struct {
	Customers  []Customer
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Payments   []Payment
}
