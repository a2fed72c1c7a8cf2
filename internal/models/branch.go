package models

import "time"

type Branch struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`

	// InvoicePrefix is the PREFIX part of generated invoice numbers
	// (PREFIX-YYYYMMDD-RRRR).
	InvoicePrefix string `json:"invoice_prefix"`

	CreatedAt time.Time `json:"created_at"`
}

type CreateBranchRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	InvoicePrefix string `json:"invoice_prefix"`
}
