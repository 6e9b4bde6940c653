package dto

import "github.com/shopspring/decimal"

// CustomerResponse cliente para el dashboard, con agregados históricos.
type CustomerResponse struct {
	ID                 string          `json:"id"`
	CompanyName        string          `json:"company_name"`
	ContactName        string          `json:"contact_name,omitempty"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Industry           string          `json:"industry,omitempty"`
	OrderCount         int             `json:"order_count"`
	TotalLifetimeValue decimal.Decimal `json:"total_lifetime_value"`
	AvgOrderAmount     decimal.Decimal `json:"avg_order_amount"`
}
