package domain

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Product struct {
	ProductID       string    `dynamodbav:"product_id"       json:"product_id"`
	Name            string    `dynamodbav:"name"             json:"name"`
	PurchaseValue   float64   `dynamodbav:"purchase_value"   json:"purchase_value"`
	Value           float64   `dynamodbav:"value"            json:"value"`
	Stock           int       `dynamodbav:"stock"            json:"stock"`
	PrintedQuantity int       `dynamodbav:"printed_quantity" json:"printed_quantity"`
	QRCodeData      string    `dynamodbav:"qr_code_data"     json:"qr_code_data,omitempty"`
	QRCodeImage     string    `dynamodbav:"qr_code_image"    json:"qr_code_image,omitempty"`
	Status          string    `dynamodbav:"status"           json:"status"`
	CreatedAt       time.Time `dynamodbav:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `dynamodbav:"updated_at"       json:"updated_at"`
}

func (p *Product) IsActive() bool {
	return p.Status != StatusInactive
}

type CreateProductRequest struct {
	Name            string   `json:"name"             binding:"required"`
	PurchaseValue   float64  `json:"purchase_value"   binding:"min=0"`
	Value           *float64 `json:"value"            binding:"required,min=0"`
	Stock           int      `json:"stock"            binding:"min=0"`
	PrintedQuantity int      `json:"printed_quantity" binding:"min=0"`
	Status          string   `json:"status"           binding:"omitempty,oneof=active inactive"`
}

// UpdateProductRequest carries patch semantics: nil fields are left untouched.
type UpdateProductRequest struct {
	Name            *string  `json:"name"`
	PurchaseValue   *float64 `json:"purchase_value"   binding:"omitempty,min=0"`
	Value           *float64 `json:"value"            binding:"omitempty,min=0"`
	Stock           *int     `json:"stock"            binding:"omitempty,min=0"`
	PrintedQuantity *int     `json:"printed_quantity" binding:"omitempty,min=0"`
	Status          *string  `json:"status"           binding:"omitempty,oneof=active inactive"`
}

// Apply copies the provided fields onto p and reports whether any of the
// fields encoded into the QR summary (name, purchase_value, value) changed.
func (r UpdateProductRequest) Apply(p *Product) (summaryChanged bool) {
	if r.Name != nil {
		p.Name = *r.Name
		summaryChanged = true
	}
	if r.PurchaseValue != nil {
		p.PurchaseValue = *r.PurchaseValue
		summaryChanged = true
	}
	if r.Value != nil {
		p.Value = *r.Value
		summaryChanged = true
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.PrintedQuantity != nil {
		p.PrintedQuantity = *r.PrintedQuantity
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	return summaryChanged
}

// SnapshotPatch names the denormalized ticket fields that must follow a
// product update. Nil fields did not change.
type SnapshotPatch struct {
	Name          *string
	PurchaseValue *float64
	Value         *float64
}

func (r UpdateProductRequest) SnapshotPatch() *SnapshotPatch {
	if r.Name == nil && r.PurchaseValue == nil && r.Value == nil {
		return nil
	}
	return &SnapshotPatch{
		Name:          r.Name,
		PurchaseValue: r.PurchaseValue,
		Value:         r.Value,
	}
}
