package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecompare/internal/models"
)

func quoteIDs(quotes []*models.Quote) []string {
	ids := make([]string, len(quotes))
	for i, q := range quotes {
		ids[i] = q.ID
	}
	return ids
}

func TestQuoteList(t *testing.T) {
	svc := NewQuoteService()

	tests := []struct {
		name   string
		filter models.QuoteFilter
		want   []string
	}{
		{
			name: "catalog order",
			want: []string{"geico", "progressive", "statefarm", "allstate", "usaa", "farmers"},
		},
		{
			name:   "price ascending",
			filter: models.QuoteFilter{SortBy: models.QuoteSortPrice},
			want:   []string{"usaa", "geico", "progressive", "statefarm", "allstate", "farmers"},
		},
		{
			name:   "rating descending",
			filter: models.QuoteFilter{SortBy: models.QuoteSortRating},
			want:   []string{"usaa", "statefarm", "geico", "progressive", "allstate", "farmers"},
		},
		{
			name:   "name ascending",
			filter: models.QuoteFilter{SortBy: models.QuoteSortName},
			want:   []string{"allstate", "farmers", "geico", "progressive", "statefarm", "usaa"},
		},
		{
			name:   "price window",
			filter: models.QuoteFilter{MinPrice: 90, MaxPrice: 99},
			want:   []string{"progressive", "statefarm", "allstate"},
		},
		{
			name:   "non-positive bounds ignored",
			filter: models.QuoteFilter{MinPrice: -1, MaxPrice: 0, SortBy: "bogus"},
			want:   []string{"geico", "progressive", "statefarm", "allstate", "usaa", "farmers"},
		},
		{
			name:   "search",
			filter: models.QuoteFilter{Search: " state "},
			want:   []string{"statefarm", "allstate"},
		},
		{
			name:   "no match",
			filter: models.QuoteFilter{MaxPrice: 50},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.List(tt.filter)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, quoteIDs(got))
		})
	}
}

func TestQuoteGetByID(t *testing.T) {
	svc := NewQuoteService()

	q, err := svc.GetByID("USAA")
	require.NoError(t, err)
	assert.Equal(t, "USAA", q.CompanyName)
	assert.Equal(t, 76.50, q.MonthlyPremium)
	assert.Equal(t, "$500", q.Coverage.Deductible)

	_, err = svc.GetByID("acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuotesAreCopies(t *testing.T) {
	svc := NewQuoteService()

	q, err := svc.GetByID("geico")
	require.NoError(t, err)
	q.MonthlyPremium = 1
	q.Features[0] = "changed"

	again, err := svc.GetByID("geico")
	require.NoError(t, err)
	assert.Equal(t, 89.50, again.MonthlyPremium)
	assert.Equal(t, "24/7 Support", again.Features[0])
}
