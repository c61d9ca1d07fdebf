package quote

// Field names a user-editable cell of a row.
type Field string

const (
	FieldLocation    Field = "location"
	FieldProductName Field = "productName"
	FieldDescription Field = "description"
	FieldLength      Field = "length"
	FieldWidth       Field = "width"
	FieldNetArea     Field = "netArea"
	FieldWastage     Field = "wastage"
	FieldUnits       Field = "units"
	FieldUnitPrice   Field = "unitPrice"
	FieldAverageCost Field = "averageCost"
	FieldCostPerUnit Field = "costPerUnit"
	FieldQuantity    Field = "quantity"
	FieldRate        Field = "rate"
	FieldAmount      Field = "amount"
	FieldTaxAmount   Field = "taxAmount"
	FieldGrossAmount Field = "grossAmount"

	// FieldSelection tags a recompute triggered by a catalog pick.
	FieldSelection Field = "productSelect"
)

// resyncFields are the fields whose edits feed discount rows.
var resyncFields = map[Field]bool{
	FieldAmount:      true,
	FieldGrossAmount: true,
	FieldQuantity:    true,
	FieldRate:        true,
	FieldUnitPrice:   true,
}

// locked reports whether the row's enablement flags forbid typing into f.
func (r *Row) locked(f Field) bool {
	switch f {
	case FieldLength:
		return r.Flags.LengthDisabled
	case FieldNetArea:
		return r.Flags.NetAreaDisabled
	case FieldWastage:
		return r.Flags.WastageDisabled
	case FieldProductName:
		return r.Flags.ProductNameDisabled
	}
	return false
}

// set writes raw user input into the named field. It reports false for
// unknown or non-editable fields.
func (r *Row) set(f Field, raw string) bool {
	switch f {
	case FieldLocation:
		r.Location = raw
	case FieldProductName:
		r.ProductName = raw
	case FieldDescription:
		r.Description = raw
	case FieldUnits:
		r.Units = raw
	case FieldLength:
		r.Length = ParseNumber(raw)
	case FieldWidth:
		r.Width = ParseNumber(raw)
	case FieldNetArea:
		r.NetArea = ParseNumber(raw)
	case FieldWastage:
		r.Wastage = ParseNumber(raw)
	case FieldUnitPrice:
		r.UnitPrice = ParseNumber(raw)
	case FieldAverageCost:
		r.AverageCost = ParseNumber(raw)
	case FieldCostPerUnit:
		r.CostPerUnit = ParseNumber(raw)
	case FieldQuantity:
		r.Quantity = ParseNumber(raw)
	case FieldRate:
		r.Rate = ParseNumber(raw)
	case FieldAmount:
		r.Amount = ParseNumber(raw)
	case FieldTaxAmount:
		r.TaxAmount = ParseNumber(raw)
	case FieldGrossAmount:
		r.GrossAmount = ParseNumber(raw)
	default:
		return false
	}
	return true
}

// pricing is the subset of values discount rows are derived from.
type pricing struct {
	quantity, rate, unitPrice, amount, tax, gross Num
}

func (r *Row) pricing() pricing {
	return pricing{r.Quantity, r.Rate, r.UnitPrice, r.Amount, r.TaxAmount, r.GrossAmount}
}
