package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/models"
)

// Config controls dataset volume and the simulated trading window.
type Config struct {
	CustomerCount int
	ProductCount  int
	RangeStart    time.Time
	RangeEnd      time.Time
	PriceMin      float64
	PriceMax      float64
	Seed          int64
}

// DefaultConfig mirrors the volumes the pipeline was tuned with: one
// simulated year of orders for ~300 customers and ~150 products.
func DefaultConfig() Config {
	return Config{
		CustomerCount: 300,
		ProductCount:  150,
		RangeStart:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PriceMin:      5.0,
		PriceMax:      500.0,
		Seed:          42,
	}
}

// Generator produces a complete synthetic snapshot. All randomness flows
// through a single seeded source, so the output is deterministic per seed.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) (*Generator, error) {
	if cfg.CustomerCount <= 0 || cfg.ProductCount <= 0 {
		return nil, fmt.Errorf("invalid generator config: customer and product counts must be positive")
	}
	if !cfg.RangeEnd.After(cfg.RangeStart) {
		return nil, fmt.Errorf("invalid generator config: date range end %s is not after start %s",
			cfg.RangeEnd.Format("2006-01-02"), cfg.RangeStart.Format("2006-01-02"))
	}
	if cfg.PriceMin <= 0 || cfg.PriceMax <= cfg.PriceMin {
		return nil, fmt.Errorf("invalid generator config: price range [%.2f, %.2f]", cfg.PriceMin, cfg.PriceMax)
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Generate builds the full dataset and validates its referential
// integrity before returning it.
func (g *Generator) Generate() (*models.Dataset, error) {
	log.Info("Generating synthetic dataset...")

	customers := g.generateCustomers()
	products := g.generateProducts()
	orders, items := g.generateOrdersAndItems(customers, products)
	payments := g.generatePayments(orders)

	ds := &models.Dataset{
		Customers:  customers,
		Products:   products,
		Orders:     orders,
		OrderItems: items,
		Payments:   payments,
	}

	if err := Validate(ds); err != nil {
		return nil, fmt.Errorf("generated dataset failed validation: %w", err)
	}

	log.WithFields(log.Fields{
		"customers":   len(customers),
		"products":    len(products),
		"orders":      len(orders),
		"order_items": len(items),
		"payments":    len(payments),
	}).Info("Dataset generated")

	return ds, nil
}

func (g *Generator) generateCustomers() []models.Customer {
	customers := make([]models.Customer, 0, g.cfg.CustomerCount)
	signupWindowStart := g.cfg.RangeStart.AddDate(0, 0, -365)

	for i := 0; i < g.cfg.CustomerCount; i++ {
		first := pick(g.rng, firstNames)
		last := pick(g.rng, lastNames)
		signup := g.dateBetween(signupWindowStart, g.cfg.RangeEnd)

		// Longer-tenured customers are more likely to have climbed tiers.
		tenure := g.cfg.RangeEnd.Sub(signup).Hours() / 24
		tierP := math.Min(0.8, tenure/365)
		var tier string
		switch r := g.rng.Float64(); {
		case r < tierP*0.2:
			tier = models.TierVIP
		case r < tierP*0.2+0.45:
			tier = models.TierRegular
		default:
			tier = models.TierNew
		}

		customers = append(customers, models.Customer{
			CustomerID:   i + 1,
			FirstName:    first,
			LastName:     last,
			Email:        fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, pick(g.rng, emailDomains)),
			SignupDate:   signup,
			CustomerTier: tier,
			Country:      pick(g.rng, countries),
			City:         pick(g.rng, cities),
			LoyaltyScore: g.normal(50, 20),
			IsActive:     g.rng.Float64() > 0.1,
		})
	}
	return customers
}

func (g *Generator) generateProducts() []models.Product {
	products := make([]models.Product, 0, g.cfg.ProductCount)
	creationWindowStart := g.cfg.RangeStart.AddDate(-1, 0, 0)

	for i := 0; i < g.cfg.ProductCount; i++ {
		category := pick(g.rng, categories)
		base := g.uniform(g.cfg.PriceMin, g.cfg.PriceMax)
		price := round2(base * priceMultipliers[category])

		sr := stockRanges[category]
		if category == "Electronics" && price > 100 {
			sr = expensiveElectronicsStock
		}

		products = append(products, models.Product{
			ProductID:     i + 1,
			ProductName:   pick(g.rng, productAdjectives) + " " + pick(g.rng, productNouns),
			Category:      category,
			Subcategory:   pick(g.rng, subcategories),
			Price:         price,
			CostPrice:     round2(price * g.uniform(0.3, 0.7)),
			StockQuantity: sr.min + g.rng.Intn(sr.max-sr.min),
			Supplier:      pick(g.rng, suppliers),
			CreationDate:  g.dateBetween(creationWindowStart, g.cfg.RangeEnd),
			IsActive:      g.rng.Float64() > 0.05,
		})
	}
	return products
}

func (g *Generator) generateOrdersAndItems(customers []models.Customer, products []models.Product) ([]models.Order, []models.OrderItem) {
	var orders []models.Order
	var items []models.OrderItem

	active := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if c.IsActive {
			active = append(active, c)
		}
	}
	activeProducts := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			activeProducts = append(activeProducts, p)
		}
	}
	if len(active) == 0 || len(activeProducts) == 0 {
		return orders, items
	}

	orderID := 1
	itemID := 1

	for day := g.cfg.RangeStart; !day.After(g.cfg.RangeEnd); day = day.AddDate(0, 0, 1) {
		// Weekends and the holiday season lift daily volume.
		lambda := 2.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			lambda++
		}
		if m := day.Month(); m == time.November || m == time.December {
			lambda++
		}

		for n := g.poisson(lambda); n > 0; n-- {
			customer := active[g.rng.Intn(len(active))]
			orderDate := day.Add(time.Duration(g.rng.Intn(24*60)) * time.Minute)

			order := models.Order{
				OrderID:         orderID,
				CustomerID:      customer.CustomerID,
				OrderDate:       orderDate,
				Status:          g.orderStatus(orderDate),
				ShippingCountry: customer.Country,
				ShippingCity:    customer.City,
			}

			total := decimal.Zero
			for numItems := 1 + g.rng.Intn(4); numItems > 0; numItems-- {
				product := activeProducts[g.rng.Intn(len(activeProducts))]
				quantity := 1 + g.rng.Intn(2)

				// Sales and discounts: the charged price can be below list.
				unitPrice := decimal.NewFromFloat(product.Price * g.uniform(0.8, 1.0)).Round(2)
				subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

				items = append(items, models.OrderItem{
					OrderItemID: itemID,
					OrderID:     orderID,
					ProductID:   product.ProductID,
					Quantity:    quantity,
					UnitPrice:   unitPrice.InexactFloat64(),
					Subtotal:    subtotal.InexactFloat64(),
				})
				total = total.Add(subtotal)
				itemID++
			}

			order.TotalAmount = total.InexactFloat64()
			orders = append(orders, order)
			orderID++
		}
	}

	return orders, items
}

// orderStatus skews old orders toward delivered and recent ones toward
// in-progress states, with a flat cancellation rate.
func (g *Generator) orderStatus(orderDate time.Time) string {
	if g.rng.Float64() < 0.05 {
		return models.OrderCancelled
	}
	age := g.cfg.RangeEnd.Sub(orderDate).Hours() / 24
	switch {
	case age > 14:
		return "delivered"
	case age > 7:
		return "shipped"
	case age > 3:
		return "processing"
	default:
		return "pending"
	}
}

func (g *Generator) generatePayments(orders []models.Order) []models.Payment {
	payments := make([]models.Payment, 0, len(orders))

	for i, order := range orders {
		status := models.PaymentCompleted
		if order.Status == models.OrderCancelled {
			if g.rng.Float64() > 0.5 {
				status = models.PaymentRefunded
			} else {
				status = models.PaymentFailed
			}
		} else if g.rng.Float64() < 0.05 {
			status = models.PaymentFailed
		}

		payments = append(payments, models.Payment{
			PaymentID:     i + 1,
			OrderID:       order.OrderID,
			PaymentMethod: pick(g.rng, paymentMethods),
			Amount:        order.TotalAmount,
			PaymentStatus: status,
			PaymentDate:   order.OrderDate.Add(time.Duration(1+g.rng.Intn(23)) * time.Hour),
			TransactionID: newTransactionID(g.rng),
			RiskScore:     clamp01(g.normal(0.1, 0.3)),
		})
	}
	return payments
}

func (g *Generator) dateBetween(start, end time.Time) time.Time {
	span := int(end.Sub(start).Hours() / 24)
	if span <= 0 {
		return start
	}
	return start.AddDate(0, 0, g.rng.Intn(span))
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) normal(mean, stddev float64) float64 {
	return g.rng.NormFloat64()*stddev + mean
}

// poisson draws with Knuth's inversion method; daily order volumes keep
// lambda small so this stays cheap.
func (g *Generator) poisson(lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// newTransactionID draws the uuid through the generator's source so the
// dataset stays reproducible per seed.
func newTransactionID(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:])
	u, err := uuid.FromBytes(b[:])
	if err != nil {
		u = uuid.New()
	}
	return u.String()[:16]
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
