package mapping

import (
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// Rows hold normalized values (see the schema package), so the getters below only
// need to handle one Go type per column kind. Absent or NULL values yield zero values.

func str(r portsrepo.Row, col string) string {
	s, _ := r[col].(string)
	return s
}

func strPtr(r portsrepo.Row, col string) *string {
	s, ok := r[col].(string)
	if !ok {
		return nil
	}
	return &s
}

func integer(r portsrepo.Row, col string) int {
	i, _ := r[col].(int)
	return i
}

func dec(r portsrepo.Row, col string) decimal.Decimal {
	d, ok := r[col].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return d
}

func timestamp(r portsrepo.Row, col string) time.Time {
	t, _ := r[col].(time.Time)
	return t
}

func timePtr(r portsrepo.Row, col string) *time.Time {
	t, ok := r[col].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func object(r portsrepo.Row, col string) map[string]any {
	m, ok := r[col].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func stringList(r portsrepo.Row, col string) []string {
	raw, _ := r[col].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
