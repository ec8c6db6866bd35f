package dto

import (
	"github.com/SscSPs/pricing_engine/internal/core/domain"
)

// SaveCurrencyRequest upserts a currency. The code comes from the path.
type SaveCurrencyRequest struct {
	Symbol        string `json:"symbol" binding:"max=8"`
	Name          string `json:"name" binding:"required,max=100"`
	DecimalPlaces *int   `json:"decimalPlaces" binding:"required,min=0,max=4"`
	IsActive      *bool  `json:"isActive"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode  string `json:"currencyCode"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimalPlaces"`
	IsActive      bool   `json:"isActive"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode:  curr.CurrencyCode,
		Symbol:        curr.Symbol,
		Name:          curr.Name,
		DecimalPlaces: curr.DecimalPlaces,
		IsActive:      curr.IsActive,
	}
}

// ToCurrencyListResponse converts a slice of domain currencies.
func ToCurrencyListResponse(currencies []domain.Currency) []CurrencyResponse {
	resp := make([]CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		resp = append(resp, ToCurrencyResponse(&currencies[i]))
	}
	return resp
}
