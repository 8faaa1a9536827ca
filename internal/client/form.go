package client

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-catalogflow/internal/records"
	"github.com/imrishuroy/go-catalogflow/internal/validation"
)

// MaxPrice is the form's price ceiling. The service itself does not enforce it.
const MaxPrice = 1000

// ItemForm is the add/edit form as typed by the user.
type ItemForm struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"required,min=2,max=255"`
	Category    string `json:"category" validate:"required"`
	Date        string `json:"date" validate:"omitempty,isodate"`
	Price       string `json:"price" validate:"required,decimal"`
	Stock       string `json:"stock" validate:"required,number"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
}

// FormError carries one message per invalid field. It blocks submission.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, f+" "+e.Fields[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var formValidator = validation.New()

// ValidateForm checks f and converts it to a record.
func ValidateForm(f ItemForm) (records.Record, error) {
	fields := map[string]string{}

	if err := formValidator.Struct(f); err != nil {
		var ve validatorv10.ValidationErrors
		if !errors.As(err, &ve) {
			return records.Record{}, err
		}
		for _, fe := range ve {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}

	var price float64
	if _, bad := fields["price"]; !bad {
		price, _ = strconv.ParseFloat(f.Price, 64)
		if price > MaxPrice {
			fields["price"] = fmt.Sprintf("must be between 0 and %d", MaxPrice)
		}
	}
	var stock int
	if _, bad := fields["stock"]; !bad {
		n, err := strconv.Atoi(f.Stock)
		if err != nil {
			fields["stock"] = "must be a whole number"
		}
		stock = n
	}

	if len(fields) > 0 {
		return records.Record{}, &FormError{Fields: fields}
	}
	return records.Record{
		Title:       strings.TrimSpace(f.Title),
		Category:    f.Category,
		Date:        f.Date,
		Price:       price,
		Description: strings.TrimSpace(f.Description),
		Stock:       stock,
		Rating:      f.Rating,
	}, nil
}

// FormFromRecord fills a form with an existing record for editing.
func FormFromRecord(r records.Record) ItemForm {
	return ItemForm{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		Price:       strconv.FormatFloat(r.Price, 'f', -1, 64),
		Stock:       strconv.Itoa(r.Stock),
		Rating:      r.Rating,
	}
}

func fieldMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Field() == "rating" {
			return "must be between 1 and 5"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Field() == "rating" {
			return "must be between 1 and 5"
		}
		return "must be at most " + fe.Param() + " characters"
	case "decimal":
		return "must be a number with at most two decimals"
	case "number":
		return "must be a non-negative whole number"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
