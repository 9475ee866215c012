// Package qr renders a product's descriptive summary into a scannable code.
package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/stockpass/ticket-service/internal/domain"
)

const imageSize = 256

// Summary builds the text payload encoded into the product's QR code. The
// format is part of the printed-label contract; scanners parse it line by
// line, so the field order is fixed.
func Summary(p *domain.Product) string {
	return fmt.Sprintf("Product: %s\nID: %s\nPurchase Value: $%v\nValue: $%v",
		p.Name, p.ProductID, p.PurchaseValue, p.Value)
}

// Render encodes the product summary as a base64 PNG suitable for an
// <img src="..."> data URI.
func Render(p *domain.Product) (data string, image string, err error) {
	data = Summary(p)
	png, err := qrcode.Encode(data, qrcode.Medium, imageSize)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return data, base64.StdEncoding.EncodeToString(png), nil
}

// Refresh recomputes the product's QR fields in place.
func Refresh(p *domain.Product) error {
	data, image, err := Render(p)
	if err != nil {
		return err
	}
	p.QRCodeData = data
	p.QRCodeImage = image
	return nil
}
