package validation

import (
	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// ListItemsRequest is the query string of GET /api/items. Bounds left at
// their zero value are not applied by the pipeline.
type ListItemsRequest struct {
	Page      int     `form:"page" json:"page"`
	Limit     int     `form:"limit" json:"limit"`
	Search    string  `form:"search" json:"search"`
	Category  string  `form:"category" json:"category"`
	MinPrice  float64 `form:"minPrice" json:"minPrice"`
	MaxPrice  float64 `form:"maxPrice" json:"maxPrice"`
	StartDate string  `form:"startDate" json:"startDate"`
	EndDate   string  `form:"endDate" json:"endDate"`
	MinRating int     `form:"minRating" json:"minRating"`
	MinStock  int     `form:"minStock" json:"minStock"`
	SortBy    string  `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=id title category date price description stock rating"`
	SortOrder string  `form:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Params converts the request into normalized pipeline parameters.
func (r ListItemsRequest) Params() query.Params {
	return query.Params{
		Page:      r.Page,
		Limit:     r.Limit,
		Search:    r.Search,
		Category:  r.Category,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		MinRating: r.MinRating,
		MinStock:  r.MinStock,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}.WithDefaults()
}

// ItemRequest is the body of POST /api/items and PUT /api/items/:id.
// Rating 0 means "default" on create and "keep" on update.
type ItemRequest struct {
	Title       string  `json:"title" validate:"max=255"`
	Category    string  `json:"category" validate:"max=255"`
	Date        string  `json:"date" validate:"omitempty,isodate"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Rating      int     `json:"rating" validate:"gte=0,lte=5"`
}

// Record returns the request as a record without an id.
func (r ItemRequest) Record() records.Record {
	return records.Record{
		Title:       r.Title,
		Category:    r.Category,
		Date:        r.Date,
		Price:       r.Price,
		Description: r.Description,
		Stock:       r.Stock,
		Rating:      r.Rating,
	}
}
