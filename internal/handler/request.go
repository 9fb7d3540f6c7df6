package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alex-user-go/hotelsearch/internal/search"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

const dateLayout = "2006-01-02"

// SearchRequest is the JSON body of a hotel search.
type SearchRequest struct {
	Location   types.Location     `json:"location"`
	CheckIn    string             `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut   string             `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Adults     int                `json:"adults" validate:"required,min=1,max=9"`
	Radius     int                `json:"radius" validate:"min=0"`
	Page       int                `json:"page"`
	Ratings    []types.FlexString `json:"ratings,omitempty" validate:"omitempty,dive,oneof=1 2 3 4 5"`
	PriceRange *PriceRange        `json:"priceRange,omitempty"`
	SortBy     string             `json:"sortBy"`
}

// PriceRange bounds the nightly total in EUR.
type PriceRange struct {
	Min float64 `json:"min" validate:"min=0"`
	Max float64 `json:"max" validate:"gtfield=Min"`
}

// Criteria converts the request into aggregator input.
func (r *SearchRequest) Criteria() search.Criteria {
	c := search.Criteria{
		Location: r.Location,
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Adults:   r.Adults,
		RadiusKm: r.Radius,
		SortBy:   search.SortKey(r.SortBy),
		Page:     r.Page,
	}
	for _, rating := range r.Ratings {
		c.Ratings = append(c.Ratings, string(rating))
	}
	if r.PriceRange != nil {
		c.PriceRange = &types.PriceRange{Min: r.PriceRange.Min, Max: r.PriceRange.Max}
	}
	return c
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors collects every rejected field of a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// HasMissing reports whether any required field was absent.
func (v ValidationErrors) HasMissing() bool {
	for _, err := range v {
		if err.Tag == "required" {
			return true
		}
	}
	return false
}

// Validator checks search requests and reports fields by their JSON names.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns ValidationErrors when req is unusable.
func (v *Validator) Validate(req *SearchRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translate(verrs)
		}
		return err
	}

	// Both dates already parse.
	in, _ := time.Parse(dateLayout, req.CheckIn)
	out, _ := time.Parse(dateLayout, req.CheckOut)
	if !out.After(in) {
		return ValidationErrors{{
			Field:   "checkOut",
			Tag:     "after",
			Message: "checkOut must be after checkIn",
		}}
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		field := err.Field()
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "oneof":
			message = fmt.Sprintf("ratings must be star levels between 1 and 5, got %q", err.Value())
		case "gtfield":
			message = "priceRange.max must be greater than priceRange.min"
		}

		out = append(out, ValidationError{
			Field:   field,
			Tag:     err.Tag(),
			Message: message,
		})
	}
	return out
}
