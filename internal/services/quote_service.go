package services

import (
	"sort"
	"strings"

	"quotecompare/internal/models"
)

type QuoteService interface {
	List(filter models.QuoteFilter) []*models.Quote
	GetByID(id string) (*models.Quote, error)
}

type quoteService struct {
	catalog []models.Quote
}

func NewQuoteService() QuoteService {
	return &quoteService{catalog: quoteCatalog()}
}

func (s *quoteService) List(filter models.QuoteFilter) []*models.Quote {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	quotes := make([]*models.Quote, 0, len(s.catalog))
	for i := range s.catalog {
		q := &s.catalog[i]
		if filter.MinPrice > 0 && q.MonthlyPremium < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && q.MonthlyPremium > filter.MaxPrice {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(q.CompanyName), search) {
			continue
		}
		quotes = append(quotes, copyQuote(q))
	}

	switch filter.SortBy {
	case models.QuoteSortPrice:
		sort.SliceStable(quotes, func(i, j int) bool {
			return quotes[i].MonthlyPremium < quotes[j].MonthlyPremium
		})
	case models.QuoteSortRating:
		sort.SliceStable(quotes, func(i, j int) bool {
			return quotes[i].Rating > quotes[j].Rating
		})
	case models.QuoteSortName:
		sort.SliceStable(quotes, func(i, j int) bool {
			return strings.ToLower(quotes[i].CompanyName) < strings.ToLower(quotes[j].CompanyName)
		})
	}

	return quotes
}

func (s *quoteService) GetByID(id string) (*models.Quote, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			return copyQuote(&s.catalog[i]), nil
		}
	}
	return nil, ErrNotFound
}

func copyQuote(q *models.Quote) *models.Quote {
	out := *q
	out.Features = append([]string(nil), q.Features...)
	return &out
}

var standardCoverage = models.Coverage{
	Liability:     "$100k/$300k",
	Collision:     "Full Coverage",
	Comprehensive: "Full Coverage",
	Deductible:    "$500",
}

func quoteCatalog() []models.Quote {
	return []models.Quote{
		{
			ID:             "geico",
			CompanyName:    "GEICO",
			CompanyLogo:    "🦎",
			MonthlyPremium: 89.50,
			AnnualPremium:  1074.00,
			Coverage:       standardCoverage,
			Features:       []string{"24/7 Support", "Mobile App", "Multi-Car Discount", "Safe Driver Discount"},
			Rating:         4.5,
			Reviews:        12500,
		},
		{
			ID:             "progressive",
			CompanyName:    "Progressive",
			CompanyLogo:    "🚗",
			MonthlyPremium: 92.30,
			AnnualPremium:  1107.60,
			Coverage:       standardCoverage,
			Features:       []string{"Name Your Price", "Snapshot Discount", "Bundle Discount", "Online Claims"},
			Rating:         4.4,
			Reviews:        9800,
		},
		{
			ID:             "statefarm",
			CompanyName:    "State Farm",
			CompanyLogo:    "🏢",
			MonthlyPremium: 95.75,
			AnnualPremium:  1149.00,
			Coverage:       standardCoverage,
			Features:       []string{"Local Agent", "Steer Clear Program", "Drive Safe & Save", "Good Neighbor"},
			Rating:         4.6,
			Reviews:        15200,
		},
		{
			ID:             "allstate",
			CompanyName:    "Allstate",
			CompanyLogo:    "🛡️",
			MonthlyPremium: 98.20,
			AnnualPremium:  1178.40,
			Coverage:       standardCoverage,
			Features:       []string{"Accident Forgiveness", "Safe Driving Bonus", "Deductible Rewards", "24/7 Claims"},
			Rating:         4.3,
			Reviews:        8700,
		},
		{
			ID:             "usaa",
			CompanyName:    "USAA",
			CompanyLogo:    "⭐",
			MonthlyPremium: 76.50,
			AnnualPremium:  918.00,
			Coverage:       standardCoverage,
			Features:       []string{"Military Discount", "Member Benefits", "Low Rates", "Excellent Service"},
			Rating:         4.8,
			Reviews:        21000,
		},
		{
			ID:             "farmers",
			CompanyName:    "Farmers",
			CompanyLogo:    "🌾",
			MonthlyPremium: 101.40,
			AnnualPremium:  1216.80,
			Coverage:       standardCoverage,
			Features:       []string{"Signal App", "Multi-Policy Discount", "Good Student Discount", "Pay Plan Options"},
			Rating:         4.2,
			Reviews:        6400,
		},
	}
}
