package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

// QuoteSteps is the number of wizard steps: products, project, contact.
const QuoteSteps = 3

const (
	maxQuoteItems = 20
	maxNotes      = 2000
)

type QuoteItemInput struct {
	ProductID   *uuid.UUID `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	Finish      string     `json:"finish"`
	Dimensions  string     `json:"dimensions"`
}

// QuoteInput is the accumulated wizard state. Steps validate disjoint fields.
type QuoteInput struct {
	Items []QuoteItemInput `json:"items"`

	ProjectType        string `json:"project_type"`
	DestinationCountry string `json:"destination_country"`
	Timeline           string `json:"timeline"`
	Notes              string `json:"notes"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Country  string `json:"country"`
}

func (in *QuoteInput) normalize() {
	for i := range in.Items {
		it := &in.Items[i]
		it.ProductName = strings.TrimSpace(it.ProductName)
		it.Unit = strings.ToLower(strings.TrimSpace(it.Unit))
		it.Finish = strings.TrimSpace(it.Finish)
		it.Dimensions = strings.TrimSpace(it.Dimensions)
		if it.ProductID != nil && *it.ProductID == uuid.Nil {
			it.ProductID = nil
		}
	}
	in.ProjectType = strings.TrimSpace(in.ProjectType)
	in.DestinationCountry = strings.TrimSpace(in.DestinationCountry)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.Notes = strings.TrimSpace(in.Notes)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.Country = strings.TrimSpace(in.Country)
}

// ValidQuoteStep reports whether step is a wizard step number.
func ValidQuoteStep(step int) bool { return step >= 1 && step <= QuoteSteps }

// ValidateQuoteStep checks only the fields owned by step.
func ValidateQuoteStep(step int, in QuoteInput) validation.Errors {
	in.normalize()
	var v validation.Errors
	switch step {
	case 1:
		validateQuoteItems(&v, in.Items)
	case 2:
		v.Required("project_type", in.ProjectType)
		v.MaxLength("project_type", in.ProjectType, 100)
		v.Required("destination_country", in.DestinationCountry)
		v.MaxLength("destination_country", in.DestinationCountry, 100)
		v.MaxLength("timeline", in.Timeline, 100)
		v.MaxLength("notes", in.Notes, maxNotes)
	case 3:
		if v.Required("full_name", in.FullName) {
			v.MaxLength("full_name", in.FullName, 120)
		}
		if v.Email("email", in.Email) {
			v.MaxLength("email", in.Email, 254)
		}
		v.Phone("phone", in.Phone, true)
		v.MaxLength("company", in.Company, 200)
		if v.Required("country", in.Country) {
			v.MaxLength("country", in.Country, 100)
		}
	}
	return v
}

// ValidateQuote runs every step.
func ValidateQuote(in QuoteInput) validation.Errors {
	var all validation.Errors
	for step := 1; step <= QuoteSteps; step++ {
		all.Merge(ValidateQuoteStep(step, in))
	}
	return all
}

func validateQuoteItems(v *validation.Errors, items []QuoteItemInput) {
	if len(items) == 0 {
		v.Add("items", validation.CodeItemsRequired, nil)
		return
	}
	if len(items) > maxQuoteItems {
		v.Add("items", validation.CodeInvalid, nil)
		return
	}
	for i, it := range items {
		prefix := fmt.Sprintf("items.%d.", i)
		if it.ProductID == nil {
			if v.Required(prefix+"product_name", it.ProductName) {
				v.MaxLength(prefix+"product_name", it.ProductName, 200)
			}
		}
		if !(it.Quantity > 0) {
			v.Add(prefix+"quantity", validation.CodePositive, nil)
		}
		if !types.QuoteUnit(it.Unit).Valid() {
			v.Add(prefix+"unit", validation.CodeUnit, nil)
		}
		v.MaxLength(prefix+"finish", it.Finish, 100)
		v.MaxLength(prefix+"dimensions", it.Dimensions, 100)
	}
}
