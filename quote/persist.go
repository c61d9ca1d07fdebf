package quote

import (
	"context"
	"strconv"
)

// LineItem is the persisted shape of a row. Linkage fields hold row keys, the
// string form of the local id at save time, so pairings survive a reload.
type LineItem struct {
	ExternalID    string `json:"externalId,omitempty"`
	RowKey        string `json:"rowKey"`
	RowNumber     int    `json:"rowNumber"`
	Location      string `json:"location"`
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	Description   string `json:"description"`
	Family        string `json:"family"`
	ProductFamily string `json:"productFamily,omitempty"`

	Length        Num     `json:"length"`
	Width         Num     `json:"width"`
	NetArea       float64 `json:"netArea"`
	Wastage       float64 `json:"wastage"`
	TotalArea     float64 `json:"totalArea"`
	Units         string  `json:"units"`
	UnitPrice     float64 `json:"unitPrice"`
	AverageCost   float64 `json:"averageCost"`
	CostPerUnit   float64 `json:"costPerUnit"`
	Quantity      float64 `json:"quantity"`
	QuantityArea  float64 `json:"quantityArea"`
	Rate          float64 `json:"rate"`
	Amount        float64 `json:"amount"`
	TaxAmount     float64 `json:"taxAmount"`
	GrossAmount   float64 `json:"grossAmount"`
	EstimatedCost float64 `json:"estimatedCost"`
	CostPrice     float64 `json:"costPrice"`

	CostEstimateType string `json:"costEstimateType"`
	EstimateType     string `json:"estimateType"`

	IsIndividualDiscount   bool   `json:"isIndividualDiscount"`
	IsOverallDiscount      bool   `json:"isOverallDiscount"`
	DiscountAppliedFromRow string `json:"discountAppliedFromRow,omitempty"`
	IndividualDiscountRow  string `json:"individualDiscountRow,omitempty"`
}

// SaveRequest is one batch upsert. DeletedIDs are external ids to remove.
type SaveRequest struct {
	Items           []LineItem `json:"items"`
	DiscountPercent float64    `json:"discountPercent"`
	DiscountAmount  float64    `json:"discountAmount"`
	DeletedIDs      []string   `json:"deletedIds"`
}

// SaveResult maps each saved row key to its external id.
type SaveResult struct {
	IDs map[string]string `json:"ids"`
}

// Store is the persistence collaborator. Upsert is atomic: on error nothing
// was written.
type Store interface {
	Load(ctx context.Context, quoteID string) ([]LineItem, error)
	Upsert(ctx context.Context, quoteID string, req SaveRequest) (SaveResult, error)
}

func rowKey(localID int64) string {
	if localID == 0 {
		return ""
	}
	return strconv.FormatInt(localID, 10)
}

// rowFromItem maps a persisted line to a committed row.
func rowFromItem(id int64, it LineItem) Row {
	r := Row{
		LocalID:     id,
		ExternalID:  it.ExternalID,
		RowNumber:   it.RowNumber,
		Kind:        KindProduct,
		Location:    it.Location,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Description: it.Description,
		Family:      it.Family,

		Length:    it.Length,
		Width:     it.Width,
		NetArea:   N(it.NetArea),
		Wastage:   N(it.Wastage),
		TotalArea: N(it.TotalArea),

		Units:       it.Units,
		UnitPrice:   N(it.UnitPrice),
		AverageCost: N(it.AverageCost),
		CostPerUnit: N(it.CostPerUnit),

		Quantity:      N(it.Quantity),
		QuantityArea:  N(it.QuantityArea),
		Rate:          N(it.Rate),
		Amount:        N(it.Amount),
		TaxAmount:     N(it.TaxAmount),
		GrossAmount:   N(it.GrossAmount),
		EstimatedCost: N(it.EstimatedCost),
		CostPrice:     N(it.CostPrice),

		CostEstimateType: EstimateCustom,
		EstimateType:     EstimateCustom,
		Mode:             ModeRead,
		Flags: Flags{
			WastageDisabled:     true,
			ProductNameDisabled: true,
		},
	}

	switch {
	case it.IsOverallDiscount || (it.Family == DiscountFamily && it.Location == OverallDiscountLocation):
		r.Kind = KindOverallDiscount
	case it.IsIndividualDiscount:
		r.Kind = KindIndividualDiscount
	}
	if r.IsDiscount() {
		r.CostEstimateType = EstimateDiscount
		r.EstimateType = EstimateDiscount
	}

	family := it.ProductFamily
	if family == "" {
		family = it.Family
	}
	applyFamilyFlags(&r, family)
	return r
}

// Load replaces the table with persisted items and returns the overall rate
// found in the overall discount row, zero when there is none. The overall row
// is moved last; individual discounts stay directly under their targets. A
// discount whose stored target is not the row above it loads unpaired. No
// items leaves one blank editable row. Pending deletions are dropped: the
// loaded items are the store's current state.
func (t *Table) Load(items []LineItem) float64 {
	t.ledger.clear()
	if len(items) == 0 {
		t.reset([]Row{newBlankRow(t.newID())})
		return 0
	}

	rows := make([]Row, 0, len(items))
	var overall []Row
	byKey := make(map[string]int64, len(items))
	targetKey := make(map[int64]string)
	for _, it := range items {
		r := rowFromItem(t.newID(), it)
		if it.RowKey != "" {
			byKey[it.RowKey] = r.LocalID
		}
		if r.Kind == KindIndividualDiscount && it.DiscountAppliedFromRow != "" {
			targetKey[r.LocalID] = it.DiscountAppliedFromRow
		}
		if r.Kind == KindOverallDiscount {
			overall = append(overall, r)
			continue
		}
		rows = append(rows, r)
	}

	for i := 1; i < len(rows); i++ {
		d := &rows[i]
		key, ok := targetKey[d.LocalID]
		if !ok {
			continue
		}
		above := &rows[i-1]
		if above.Kind != KindProduct || byKey[key] != above.LocalID || above.IndividualDiscountRowID != 0 {
			continue
		}
		d.DiscountAppliedFromRowID = above.LocalID
		above.IndividualDiscountRowID = d.LocalID
	}

	var rate float64
	if len(overall) > 0 {
		// Only one overall row may exist; extra stored ones are dropped and
		// queued for deletion.
		for _, extra := range overall[1:] {
			t.ledger.Add(extra.ExternalID)
		}
		rows = append(rows, overall[0])
		if p, ok := percentIn(overall[0].ProductName); ok {
			rate = p
		}
	}
	t.reset(rows)
	return rate
}

// BuildPayload converts every row to its persisted shape. Absent numbers are
// sent as zero, except quantity which defaults to one.
func BuildPayload(rows []Row) []LineItem {
	items := make([]LineItem, 0, len(rows))
	for _, r := range rows {
		qty := r.Quantity.Float()
		if !r.Quantity.Valid {
			qty = 1
		}
		items = append(items, LineItem{
			ExternalID:    r.ExternalID,
			RowKey:        rowKey(r.LocalID),
			RowNumber:     r.RowNumber,
			Location:      r.Location,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Description:   r.Description,
			Family:        r.Family,
			ProductFamily: r.Family,

			Length:        r.Length,
			Width:         r.Width,
			NetArea:       r.NetArea.Float(),
			Wastage:       r.Wastage.Float(),
			TotalArea:     r.TotalArea.Float(),
			Units:         r.Units,
			UnitPrice:     r.UnitPrice.Float(),
			AverageCost:   r.AverageCost.Float(),
			CostPerUnit:   r.CostPerUnit.Float(),
			Quantity:      qty,
			QuantityArea:  r.QuantityArea.Float(),
			Rate:          r.Rate.Float(),
			Amount:        r.Amount.Float(),
			TaxAmount:     r.TaxAmount.Float(),
			GrossAmount:   r.GrossAmount.Float(),
			EstimatedCost: r.EstimatedCost.Float(),
			CostPrice:     r.CostPrice.Float(),

			CostEstimateType: r.CostEstimateType,
			EstimateType:     r.EstimateType,

			IsIndividualDiscount:   r.Kind == KindIndividualDiscount,
			IsOverallDiscount:      r.Kind == KindOverallDiscount,
			DiscountAppliedFromRow: rowKey(r.DiscountAppliedFromRowID),
			IndividualDiscountRow:  rowKey(r.IndividualDiscountRowID),
		})
	}
	return items
}

// applySaved adopts the external id the store reports for every saved row,
// including rows whose stored record was recreated under a new id, and
// confirms the deletions that were part of the batch.
func (t *Table) applySaved(res SaveResult, deleted []string) {
	for i := range t.rows {
		r := &t.rows[i]
		if id, ok := res.IDs[rowKey(r.LocalID)]; ok {
			r.ExternalID = id
		}
	}
	if t.snapshot != nil {
		if id, ok := res.IDs[rowKey(t.snapshot.LocalID)]; ok {
			t.snapshot.ExternalID = id
		}
	}
	t.ledger.Confirm(deleted)
}
