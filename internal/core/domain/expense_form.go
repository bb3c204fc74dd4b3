package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ExpenseItem is one categorized line of an expense-like form.
type ExpenseItem struct {
	AccountCode string          `validate:"required"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Description string
	Project     string
	Customer    string
}

// ExpenseForm is the accounting-relevant view of an application's form payload.
// Either Items is non-empty, or TotalAmount is set with an optional AccountCode hint.
type ExpenseForm struct {
	Items       []ExpenseItem `validate:"omitempty,dive"`
	TotalAmount decimal.Decimal
	AccountCode string
	Description string
}

var ErrNoAmount = errors.New("form has neither line items nor a positive total amount")

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	// Let numeric tags (gt, gte...) apply to decimal amounts.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// HasItems reports whether the form is itemized.
func (f ExpenseForm) HasItems() bool {
	return len(f.Items) > 0
}

// Validate checks the form shape.
func (f ExpenseForm) Validate() error {
	if err := formValidate.Struct(f); err != nil {
		return fmt.Errorf("invalid expense form: %w", err)
	}
	if !f.HasItems() && !f.TotalAmount.IsPositive() {
		return ErrNoAmount
	}
	return nil
}

// ParseExpenseForm extracts an ExpenseForm from a loosely-typed form payload.
// Both snake_case and camelCase keys are accepted since forms are authored by several clients.
func ParseExpenseForm(data map[string]any) (ExpenseForm, error) {
	form := ExpenseForm{
		AccountCode: stringField(data, "account_code", "accountCode"),
		Description: stringField(data, "description", "title"),
	}

	total, err := decimalField(data, "total_amount", "totalAmount", "amount")
	if err != nil {
		return ExpenseForm{}, err
	}
	form.TotalAmount = total

	rawItems, _ := firstPresent(data, "items", "lines", "details").([]any)
	for i, raw := range rawItems {
		m, ok := raw.(map[string]any)
		if !ok {
			return ExpenseForm{}, fmt.Errorf("item %d is not an object", i)
		}
		amount, err := decimalField(m, "amount")
		if err != nil {
			return ExpenseForm{}, fmt.Errorf("item %d: %w", i, err)
		}
		form.Items = append(form.Items, ExpenseItem{
			AccountCode: stringField(m, "account_code", "accountCode"),
			Amount:      amount,
			Description: stringField(m, "description"),
			Project:     stringField(m, "project", "project_code", "projectCode"),
			Customer:    stringField(m, "customer", "customer_name", "customerName"),
		})
	}
	return form, nil
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(m map[string]any, keys ...string) string {
	switch v := firstPresent(m, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func decimalField(m map[string]any, keys ...string) (decimal.Decimal, error) {
	switch v := firstPresent(m, keys...).(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("amount %q is not a number", v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("amount has unsupported type %T", v)
	}
}
