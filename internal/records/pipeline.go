package records

import (
	"cmp"
	"slices"
	"strings"

	"github.com/imrishuroy/go-catalogflow/internal/query"
)

// Apply reduces all to one page: search, then filter, then sort, then
// paginate. The order is fixed; totals are counted after filtering.
// all is never modified.
func Apply(all []Record, p query.Params) Page {
	p = p.WithDefaults()

	matched := Search(all, p.Search)
	matched = Filter(matched, p)
	matched = Sort(matched, p.SortBy, p.SortOrder)
	return Paginate(matched, p.Page, p.Limit)
}

// Search keeps records whose title or description contains term,
// ignoring case. An empty term keeps everything.
func Search(in []Record, term string) []Record {
	if term == "" {
		return slices.Clone(in)
	}
	term = strings.ToLower(term)

	out := make([]Record, 0, len(in))
	for _, r := range in {
		if strings.Contains(strings.ToLower(r.Title), term) ||
			strings.Contains(strings.ToLower(r.Description), term) {
			out = append(out, r)
		}
	}
	return out
}

// Filter applies every non-zero bound in p. A bound of 0 or "" is skipped,
// so minPrice=0 and no minPrice behave the same.
func Filter(in []Record, p query.Params) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if matches(r, p) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, p query.Params) bool {
	switch {
	case p.Category != "" && r.Category != p.Category:
		return false
	case p.MinPrice != 0 && r.Price < p.MinPrice:
		return false
	case p.MaxPrice != 0 && r.Price > p.MaxPrice:
		return false
	case p.StartDate != "" && r.Date < p.StartDate:
		return false
	case p.EndDate != "" && r.Date > p.EndDate:
		return false
	case p.MinRating != 0 && r.Rating < p.MinRating:
		return false
	case p.MinStock != 0 && r.Stock < p.MinStock:
		return false
	}
	return true
}

// Sort orders a copy of in by field, descending when order is "desc".
// Equal keys keep their input order. An empty or unknown field leaves the
// order untouched.
func Sort(in []Record, field, order string) []Record {
	out := slices.Clone(in)
	if field == "" {
		return out
	}
	sign := 1
	if order == query.SortDesc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return sign * compareField(a, b, field)
	})
	return out
}

func compareField(a, b Record, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "category":
		return cmp.Compare(a.Category, b.Category)
	case "date":
		return cmp.Compare(a.Date, b.Date)
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "description":
		return cmp.Compare(a.Description, b.Description)
	case "stock":
		return cmp.Compare(a.Stock, b.Stock)
	case "rating":
		return cmp.Compare(a.Rating, b.Rating)
	}
	return 0
}

// Paginate slices one page out of in. Pages past the end are empty.
func Paginate(in []Record, page, limit int) Page {
	if page < 1 {
		page = query.DefaultPage
	}
	if limit < 1 {
		limit = query.DefaultLimit
	}

	total := len(in)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	res := Page{
		Items:       []Record{},
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
	}

	// Compare page numbers before multiplying; page and limit come from the
	// query string and (page-1)*limit can overflow.
	if page > pages {
		return res
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)
	res.Items = append(res.Items, in[start:end]...)
	return res
}

// Categories returns the distinct categories in order of first appearance.
func Categories(all []Record) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range all {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
