package model

import (
	"fmt"
	"time"
)

type BarcodeType string

const (
	BarcodeTypeQR         BarcodeType = "QR"
	BarcodeTypeCode128    BarcodeType = "Code128"
	BarcodeTypeEAN13      BarcodeType = "EAN13"
	BarcodeTypeUPC        BarcodeType = "UPC"
	BarcodeTypeDataMatrix BarcodeType = "DataMatrix"
	BarcodeTypePDF417     BarcodeType = "PDF417"
	BarcodeTypeCode39     BarcodeType = "Code39"
	BarcodeTypeCode93     BarcodeType = "Code93"
	BarcodeTypeITF        BarcodeType = "ITF"
	BarcodeTypeCodabar    BarcodeType = "Codabar"
	BarcodeTypeAztec      BarcodeType = "Aztec"
	BarcodeTypeMaxiCode   BarcodeType = "MaxiCode"
)

var barcodeTypes = []BarcodeType{
	BarcodeTypeQR,
	BarcodeTypeCode128,
	BarcodeTypeEAN13,
	BarcodeTypeUPC,
	BarcodeTypeDataMatrix,
	BarcodeTypePDF417,
	BarcodeTypeCode39,
	BarcodeTypeCode93,
	BarcodeTypeITF,
	BarcodeTypeCodabar,
	BarcodeTypeAztec,
	BarcodeTypeMaxiCode,
}

// Validate returns an error unless t is one of the supported symbologies.
// Matching is case-sensitive.
func (t BarcodeType) Validate() error {
	for _, v := range barcodeTypes {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("invalid barcode type: %q", string(t))
}

func (t BarcodeType) Values() []string {
	values := make([]string, 0, len(barcodeTypes))
	for _, v := range barcodeTypes {
		values = append(values, string(v))
	}
	return values
}

type BarcodeStatus string

const (
	BarcodeStatusActive   BarcodeStatus = "ACTIVE"
	BarcodeStatusInactive BarcodeStatus = "INACTIVE"
)

func (s BarcodeStatus) Validate() error {
	switch s {
	case BarcodeStatusActive, BarcodeStatusInactive:
		return nil
	default:
		return fmt.Errorf("invalid barcode status: %q", string(s))
	}
}

func (s BarcodeStatus) Values() []string {
	return []string{string(BarcodeStatusActive), string(BarcodeStatusInactive)}
}

type Barcode struct {
	ID           int64         `json:"id"`
	Value        string        `json:"value"`
	Type         BarcodeType   `json:"type"`
	ProductModel *string       `json:"product_model,omitempty"`
	Category     *string       `json:"category,omitempty"`
	Status       BarcodeStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}
