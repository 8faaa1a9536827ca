package records

import (
	"errors"
	"time"
)

// DateLayout is the ISO calendar date format used for Record.Date.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("item not found")

// Record is one catalog entry.
type Record struct {
	ID          int64   `json:"id" dynamodbav:"id"`
	Title       string  `json:"title" dynamodbav:"title"`
	Category    string  `json:"category" dynamodbav:"category"`
	Date        string  `json:"date" dynamodbav:"date"` // YYYY-MM-DD
	Price       float64 `json:"price" dynamodbav:"price"`
	Description string  `json:"description" dynamodbav:"description"`
	Stock       int     `json:"stock" dynamodbav:"stock"`
	Rating      int     `json:"rating" dynamodbav:"rating"`
}

// Page is one page of a list result.
type Page struct {
	Items       []Record `json:"items"`
	TotalItems  int      `json:"totalItems"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
}

// Merge overlays the non-zero fields of patch onto r. A zero or empty field
// in patch means "keep", so an update can never set stock to 0 or clear a
// title.
func (r Record) Merge(patch Record) Record {
	if patch.Title != "" {
		r.Title = patch.Title
	}
	if patch.Category != "" {
		r.Category = patch.Category
	}
	if patch.Date != "" {
		r.Date = patch.Date
	}
	if patch.Price != 0 {
		r.Price = patch.Price
	}
	if patch.Description != "" {
		r.Description = patch.Description
	}
	if patch.Stock != 0 {
		r.Stock = patch.Stock
	}
	if patch.Rating != 0 {
		r.Rating = patch.Rating
	}
	return r
}

// withCreateDefaults fills the date with today (UTC) and the rating with 1.
func withCreateDefaults(r Record, now time.Time) Record {
	if r.Date == "" {
		r.Date = now.UTC().Format(DateLayout)
	}
	if r.Rating == 0 {
		r.Rating = 1
	}
	return r
}
