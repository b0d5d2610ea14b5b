package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyTotal is the summed total amount for one currency.
type CurrencyTotal struct {
	Currency string
	Total    decimal.Decimal
	Count    int
}

// Summary aggregates a filtered quotation list.
type Summary struct {
	Count          int
	WithClient     int
	WithoutClient  int
	Totals         []CurrencyTotal
	InvalidAmounts int
}

// Summarize totals amounts per currency. Records whose total cannot be
// parsed are counted in InvalidAmounts and left out of the totals.
// Totals are sorted by currency code.
func Summarize(items []EnrichedQuotation) Summary {
	s := Summary{Count: len(items)}
	byCurrency := make(map[string]*CurrencyTotal)

	for _, item := range items {
		if item.HasClient() {
			s.WithClient++
		} else {
			s.WithoutClient++
		}

		amount, err := item.Total()
		if err != nil {
			s.InvalidAmounts++
			continue
		}

		ct, ok := byCurrency[item.Currency]
		if !ok {
			ct = &CurrencyTotal{Currency: item.Currency, Total: decimal.Zero}
			byCurrency[item.Currency] = ct
		}

		ct.Total = ct.Total.Add(amount)
		ct.Count++
	}

	s.Totals = make([]CurrencyTotal, 0, len(byCurrency))
	for _, ct := range byCurrency {
		s.Totals = append(s.Totals, *ct)
	}

	sort.Slice(s.Totals, func(i, j int) bool {
		return s.Totals[i].Currency < s.Totals[j].Currency
	})

	return s
}
