package records

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// SeedCategories is the fixed category set of generated data.
var SeedCategories = []string{
	"Electronics", "Clothing", "Books", "Home", "Sports",
	"Toys", "Food", "Health", "Beauty", "Automotive",
}

var seedDescriptions = []string{
	"High-quality product with excellent features",
	"Affordable option for everyday use",
	"Premium selection for discerning customers",
	"Eco-friendly and sustainable choice",
	"Innovative design with cutting-edge technology",
}

// Generate builds n mock records with ids 1..n: prices between 5 and 505
// rounded to cents, stock below 1000, ratings 1-5 and dates within five
// years before now.
func Generate(n int, rng *rand.Rand, now time.Time) []Record {
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		category := SeedCategories[rng.IntN(len(SeedCategories))]
		price := math.Round((rng.Float64()*500+5)*100) / 100
		days := rng.IntN(365 * 5)

		out = append(out, Record{
			ID:          int64(i),
			Title:       fmt.Sprintf("%s Item %d", category, i),
			Category:    category,
			Date:        now.UTC().AddDate(0, 0, -days).Format(DateLayout),
			Price:       price,
			Description: seedDescriptions[rng.IntN(len(seedDescriptions))],
			Stock:       rng.IntN(1000),
			Rating:      rng.IntN(5) + 1,
		})
	}
	return out
}

// Numbered assigns ids 1..n in order and applies the create defaults, for
// seed data loaded from outside the store.
func Numbered(rs []Record, now time.Time) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		r.ID = int64(i + 1)
		out[i] = withCreateDefaults(r, now)
	}
	return out
}
