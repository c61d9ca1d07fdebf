// Package quote implements the quote line-item editor: derived-field
// calculation, the row table state machine, overall and individual discounts,
// catalog selection, and persistence mapping.
package quote

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	DiscountFamily           = "Discount"
	OverallDiscountLocation  = "Discount"
	OverallDiscountRowNumber = 9999

	EstimateCustom   = "Custom"
	EstimateDiscount = "Discount"

	DefaultBaseUnit = "SqM"
)

type Mode string

const (
	ModeEdit Mode = "edit"
	ModeRead Mode = "read"
)

// Kind separates product lines from the two discount variants. It is set when
// a row is created (insert, load, catalog pick, synthesis) and never inferred
// from free text afterwards.
type Kind string

const (
	KindProduct            Kind = "product"
	KindOverallDiscount    Kind = "overall_discount"
	KindIndividualDiscount Kind = "individual_discount"
)

// Num is an optional numeric cell. The zero value is absent.
type Num struct {
	V     float64
	Valid bool
}

func N(v float64) Num { return Num{V: v, Valid: true} }

// Float returns the value, or zero when absent.
func (n Num) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.V
}

func (n Num) NonZero() bool { return n.Valid && n.V != 0 }

func (n Num) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.V, 'f', -1, 64)
}

func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}

func (n *Num) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Num{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = N(v)
	return nil
}

// ParseNumber leniently reads user input. Blank or non-numeric text is absent.
func ParseNumber(raw string) Num {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Num{}
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return Num{}
	}
	return N(v)
}

// Flags are the per-row input enablement switches.
type Flags struct {
	NetAreaDisabled     bool `json:"netAreaDisabled"`
	WastageDisabled     bool `json:"wastageDisabled"`
	LengthDisabled      bool `json:"lengthDisabled"`
	ProductNameDisabled bool `json:"productNameDisabled"`
}

type Row struct {
	LocalID    int64  `json:"id"`
	ExternalID string `json:"externalId,omitempty"`
	RowNumber  int    `json:"rowNumber,omitempty"`
	Kind       Kind   `json:"kind"`

	Location    string `json:"location"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName"`
	Description string `json:"description"`
	Family      string `json:"family"`

	Length    Num `json:"length"`
	Width     Num `json:"width"`
	NetArea   Num `json:"netArea"`
	Wastage   Num `json:"wastage"`
	TotalArea Num `json:"totalArea"`

	Units       string `json:"units"`
	UnitPrice   Num    `json:"unitPrice"`
	AverageCost Num    `json:"averageCost"`
	CostPerUnit Num    `json:"costPerUnit"`

	Quantity      Num `json:"quantity"`
	QuantityArea  Num `json:"quantityArea"`
	Rate          Num `json:"rate"`
	Amount        Num `json:"amount"`
	TaxAmount     Num `json:"taxAmount"`
	GrossAmount   Num `json:"grossAmount"`
	EstimatedCost Num `json:"estimatedCost"`
	CostPrice     Num `json:"costPrice"`

	CostEstimateType string `json:"costEstimateType"`
	EstimateType     string `json:"estimateType"`

	IndividualDiscountRowID  int64 `json:"individualDiscountRowId,omitempty"`
	DiscountAppliedFromRowID int64 `json:"discountAppliedFromRowId,omitempty"`

	Mode               Mode  `json:"mode"`
	Selected           bool  `json:"selected"`
	SuggestionsVisible bool  `json:"suggestionsVisible"`
	Flags              Flags `json:"flags"`
}

func (r *Row) IsDiscount() bool {
	return r.Kind == KindOverallDiscount || r.Kind == KindIndividualDiscount
}

// newBlankRow returns an empty product row ready for typing.
func newBlankRow(id int64) Row {
	return Row{
		LocalID: id,
		Kind:    KindProduct,
		Mode:    ModeEdit,
		Flags:   Flags{WastageDisabled: true},
	}
}
