package models

type QuoteSort string

const (
	QuoteSortPrice  QuoteSort = "price"
	QuoteSortRating QuoteSort = "rating"
	QuoteSortName   QuoteSort = "name"
)

type Coverage struct {
	Liability     string `json:"liability"`
	Collision     string `json:"collision"`
	Comprehensive string `json:"comprehensive"`
	Deductible    string `json:"deductible"`
}

// Quote is read-only catalog data; it is never persisted per request.
type Quote struct {
	ID             string   `json:"id"`
	CompanyName    string   `json:"companyName"`
	CompanyLogo    string   `json:"companyLogo"`
	MonthlyPremium float64  `json:"monthlyPremium"`
	AnnualPremium  float64  `json:"annualPremium"`
	Coverage       Coverage `json:"coverage"`
	Features       []string `json:"features"`
	Rating         float64  `json:"rating"`
	Reviews        int      `json:"reviews"`
}

type QuoteFilter struct {
	MinPrice float64   `form:"minPrice"`
	MaxPrice float64   `form:"maxPrice"`
	SortBy   QuoteSort `form:"sortBy"`
	Search   string    `form:"search"`
}
