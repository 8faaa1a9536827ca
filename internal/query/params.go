package query

import (
	"math"
	"strconv"
)

// Parameter names as they appear on the wire.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySearch    = "search"
	KeyCategory  = "category"
	KeyMinPrice  = "minPrice"
	KeyMaxPrice  = "maxPrice"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
	KeyMinRating = "minRating"
	KeyMinStock  = "minStock"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
)

// Sort orders and the category sentinel.
const (
	SortAsc     = "asc"
	SortDesc    = "desc"
	CategoryAll = "all"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortFields lists the record fields a list can be ordered by.
var SortFields = []string{"id", "title", "category", "date", "price", "description", "stock", "rating"}

// Params is the typed list request. Zero values mean "not supplied".
type Params struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	MinPrice  float64
	MaxPrice  float64
	StartDate string
	EndDate   string
	MinRating int
	MinStock  int
	SortBy    string
	SortOrder string
}

// WithDefaults clamps page and limit to at least 1 (falling back to the
// defaults) and fills in an ascending sort order.
func (p Params) WithDefaults() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.SortOrder == "" {
		p.SortOrder = SortAsc
	}
	if p.Category == CategoryAll {
		p.Category = ""
	}
	return p
}

// Values converts p back to the loose form, dropping zero-valued fields.
func (p Params) Values() Values {
	v := Values{}
	putNum := func(k string, n float64) {
		if n != 0 {
			v[k] = n
		}
	}
	putStr := func(k, s string) {
		if s != "" {
			v[k] = s
		}
	}
	putNum(KeyPage, float64(p.Page))
	putNum(KeyLimit, float64(p.Limit))
	putStr(KeySearch, p.Search)
	if p.Category != CategoryAll {
		putStr(KeyCategory, p.Category)
	}
	putNum(KeyMinPrice, p.MinPrice)
	putNum(KeyMaxPrice, p.MaxPrice)
	putStr(KeyStartDate, p.StartDate)
	putStr(KeyEndDate, p.EndDate)
	putNum(KeyMinRating, float64(p.MinRating))
	putNum(KeyMinStock, float64(p.MinStock))
	putStr(KeySortBy, p.SortBy)
	putStr(KeySortOrder, p.SortOrder)
	return v
}

// ParamsFrom reads typed parameters out of normalized values. Numeric
// fields holding non-numeric strings are treated as absent.
func ParamsFrom(v Values) Params {
	return Params{
		Page:      int(v.number(KeyPage)),
		Limit:     int(v.number(KeyLimit)),
		Search:    v.text(KeySearch),
		Category:  v.text(KeyCategory),
		MinPrice:  v.number(KeyMinPrice),
		MaxPrice:  v.number(KeyMaxPrice),
		StartDate: v.text(KeyStartDate),
		EndDate:   v.text(KeyEndDate),
		MinRating: int(v.number(KeyMinRating)),
		MinStock:  int(v.number(KeyMinStock)),
		SortBy:    v.text(KeySortBy),
		SortOrder: v.text(KeySortOrder),
	}
}

func (v Values) number(k string) float64 {
	switch n := v[k].(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case int:
		return float64(n)
	case string:
		if IsNumeric(n) {
			f, _ := strconv.ParseFloat(n, 64)
			return f
		}
	}
	return 0
}

func (v Values) text(k string) string {
	switch s := v[k].(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}
