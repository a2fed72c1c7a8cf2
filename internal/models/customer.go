package models

import "time"

type Customer struct {
	ID             int    `json:"id"`
	CustomerNumber string `json:"customer_number,omitempty"`
	Name           string `json:"name"`
	Phone          string `json:"phone"` // 10 digits, required
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`

	IDProofType     string `json:"id_proof_type,omitempty"` // aadhaar, pan, driving_licence
	IDProofNumber   string `json:"id_proof_number,omitempty"`
	IDProofFrontURL string `json:"id_proof_front_url,omitempty"`
	IDProofBackURL  string `json:"id_proof_back_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// DueAmount is computed per query (sum of total_amount across the
	// customer's open orders), never stored.
	DueAmount float64 `json:"due_amount"`
}

type CreateCustomerRequest struct {
	CustomerNumber  string `json:"customer_number"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	IDProofType     string `json:"id_proof_type"`
	IDProofNumber   string `json:"id_proof_number"`
	IDProofFrontURL string `json:"id_proof_front_url"`
	IDProofBackURL  string `json:"id_proof_back_url"`
}

type UpdateCustomerRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	IDProofType     string `json:"id_proof_type"`
	IDProofNumber   string `json:"id_proof_number"`
	IDProofFrontURL string `json:"id_proof_front_url"`
	IDProofBackURL  string `json:"id_proof_back_url"`
}
