package generator

// Static vocabulary for synthetic records. Everything is drawn from these
// tables with the generator's seeded source, so a fixed seed reproduces
// the exact same dataset.

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Daniel",
	"Lisa", "Matthew", "Nancy", "Anthony", "Betty", "Mark", "Margaret",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
}

var emailDomains = []string{
	"example.com", "mail.test", "inbox.dev", "post.example", "box.test",
}

var countries = []string{
	"United States", "United Kingdom", "Germany", "France", "Canada",
	"Australia", "Netherlands", "Spain", "Italy", "Sweden", "Japan",
	"Brazil", "Mexico", "Poland", "Ireland", "Portugal",
}

var cities = []string{
	"Springfield", "Riverton", "Fairview", "Kingsport", "Lakeside",
	"Brighton", "Ashford", "Milltown", "Oakdale", "Westbrook", "Hartley",
	"Newhaven", "Eastgate", "Clarendon", "Marlow", "Felton", "Granview",
	"Stonebridge", "Harborview", "Redcliff",
}

var productAdjectives = []string{
	"Classic", "Premium", "Compact", "Deluxe", "Essential", "Modern",
	"Vintage", "Ultra", "Smart", "Eco", "Pro", "Lite", "Sturdy", "Sleek",
	"Portable", "Wireless", "Ergonomic", "Durable", "Elegant", "Rustic",
}

var productNouns = []string{
	"Speaker", "Jacket", "Planter", "Notebook", "Racket", "Serum",
	"Monitor", "Sweater", "Lantern", "Atlas", "Dumbbell", "Cleanser",
	"Keyboard", "Scarf", "Trowel", "Journal", "Helmet", "Lotion",
	"Charger", "Blanket",
}

var subcategories = []string{
	"accessories", "essentials", "outdoor", "indoor", "seasonal",
	"clearance", "premium", "starter", "travel", "office", "kitchen",
	"fitness", "wellness", "storage", "audio", "lighting",
}

var suppliers = []string{
	"Northwind Trading", "Acme Supply Co", "Globex Distribution",
	"Initech Wholesale", "Umbrella Goods", "Stark Imports",
	"Wayne Provisions", "Hooli Logistics", "Vandelay Industries",
	"Pied Piper Retail", "Dunder Mifflin Supply", "Soylent Goods",
}

var categories = []string{
	"Electronics", "Clothing", "Home & Garden", "Books", "Sports", "Beauty",
}

// Per-category price multipliers applied to the base uniform price draw.
var priceMultipliers = map[string]float64{
	"Electronics":   1.2,
	"Beauty":        1.1,
	"Clothing":      1.0,
	"Sports":        0.9,
	"Home & Garden": 0.8,
	"Books":         0.7,
}

type stockRange struct {
	min, max int
}

// Stock ranges per category; expensive electronics are stocked thinner.
var stockRanges = map[string]stockRange{
	"Electronics":   {10, 100},
	"Clothing":      {20, 200},
	"Books":         {50, 500},
	"Sports":        {10, 100},
	"Home & Garden": {15, 150},
	"Beauty":        {25, 250},
}

var expensiveElectronicsStock = stockRange{5, 50}

var paymentMethods = []string{
	"credit_card", "debit_card", "paypal", "apple_pay",
}
