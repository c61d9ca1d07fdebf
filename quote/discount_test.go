package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overallRows(t *Table) []Row {
	var out []Row
	for _, r := range t.Rows() {
		if r.Kind == KindOverallDiscount {
			out = append(out, r)
		}
	}
	return out
}

func TestOverallDiscount_ThreeRowsAtTenPercent(t *testing.T) {
	tbl := newTestTable(grossRow(100), grossRow(200), grossRow(50))
	d := NewDiscounts(tbl)

	require.NoError(t, d.SetOverallRate("10"))

	overall := overallRows(tbl)
	require.Len(t, overall, 1)
	assert.Equal(t, N(-35), overall[0].GrossAmount)
	assert.Equal(t, "Discount (10%)", overall[0].ProductName)
	assert.Equal(t, "10% discount on total amount", overall[0].Description)
	assert.Equal(t, OverallDiscountLocation, overall[0].Location)
	assert.Equal(t, DiscountFamily, overall[0].Family)
	assert.Equal(t, N(1), overall[0].Quantity)
	assert.Equal(t, ModeRead, overall[0].Mode)
	assert.Equal(t, KindOverallDiscount, tbl.rows[tbl.Len()-1].Kind)
	assert.Equal(t, 35.0, d.OverallAmount())
}

func TestOverallDiscount_ScalesEveryComponent(t *testing.T) {
	tbl := newTestTable(pricedRow("Carpet", 200), pricedRow("Tiles", 100))
	d := NewDiscounts(tbl)

	require.NoError(t, d.SetOverallRate("15"))

	o := overallRows(tbl)[0]
	assert.Equal(t, N(-45), o.Amount)
	assert.Equal(t, N(-45), o.Rate)
	assert.Equal(t, N(-45), o.UnitPrice)
	assert.Equal(t, N(-2.25), o.TaxAmount)
	assert.Equal(t, N(-47.25), o.GrossAmount)
}

func TestOverallDiscount_ChangingRateReplacesRow(t *testing.T) {
	tbl := newTestTable(grossRow(100))
	d := NewDiscounts(tbl)

	require.NoError(t, d.SetOverallRate("10"))
	first := overallRows(tbl)[0]
	require.NoError(t, d.SetOverallRate("25"))

	overall := overallRows(tbl)
	require.Len(t, overall, 1)
	assert.Equal(t, first.LocalID, overall[0].LocalID)
	assert.Equal(t, N(-25), overall[0].GrossAmount)
	assert.Equal(t, 25.0, d.Rate())
}

func TestOverallDiscount_ClearRestoresPreDiscountTotals(t *testing.T) {
	tbl := newTestTable(grossRow(100), grossRow(200), grossRow(50))
	d := NewDiscounts(tbl)
	before := tbl.Rows()

	require.NoError(t, d.SetOverallRate("10"))
	require.NoError(t, d.SetOverallRate(""))

	assert.Empty(t, overallRows(tbl))
	assert.Equal(t, before, tbl.Rows())
	assert.Zero(t, d.Rate())

	require.NoError(t, d.SetOverallRate("10"))
	require.NoError(t, d.SetOverallRate("0"))
	assert.Empty(t, overallRows(tbl))
}

func TestOverallDiscount_RemovingPersistedRowQueuesDelete(t *testing.T) {
	tbl := newTestTable(grossRow(100))
	d := NewDiscounts(tbl)
	require.NoError(t, d.SetOverallRate("10"))
	tbl.rows[1].ExternalID = "ext-overall"

	require.NoError(t, d.SetOverallRate("5"))
	assert.Equal(t, "ext-overall", overallRows(tbl)[0].ExternalID, "rebuild keeps the stored line")
	assert.Zero(t, tbl.Ledger().Len())

	require.NoError(t, d.SetOverallRate(""))
	assert.Equal(t, []string{"ext-overall"}, tbl.Ledger().IDs())
}

func TestOverallDiscount_RejectedWithoutBase(t *testing.T) {
	tbl := newTestTable(Row{Kind: KindProduct})
	d := NewDiscounts(tbl)
	before := tbl.Rows()

	err := d.SetOverallRate("10")
	assert.ErrorIs(t, err, ErrNoDiscountBase)
	assert.Equal(t, before, tbl.Rows())
	assert.Zero(t, d.Rate())
}

func TestOverallDiscount_IgnoresDiscountRowsInBase(t *testing.T) {
	tbl := newTestTable(pricedRow("Carpet", 100), discountProductRow("20% Discount"), grossRow(95))
	d := NewDiscounts(tbl)
	require.NoError(t, d.ApplyIndividual(1))

	require.NoError(t, d.SetOverallRate("10"))
	// 105 + 95; the -21 individual discount is not part of the base.
	assert.Equal(t, N(-20), overallRows(tbl)[0].GrossAmount)
}

func TestApplyIndividual_ComputesFromTarget(t *testing.T) {
	tbl := newTestTable(pricedRow("Carpet", 100), discountProductRow("10% Discount"))
	d := NewDiscounts(tbl)

	require.NoError(t, d.ApplyIndividual(1))

	dr := tbl.rows[1]
	assert.Equal(t, N(-10), dr.Amount)
	assert.Equal(t, N(-0.5), dr.TaxAmount)
	assert.Equal(t, N(-10.5), dr.GrossAmount)
	assert.Equal(t, N(1), dr.Quantity)
	assert.Equal(t, EstimateDiscount, dr.CostEstimateType)
	assert.Equal(t, ModeRead, dr.Mode)
	assert.Equal(t, tbl.rows[0].LocalID, dr.DiscountAppliedFromRowID)
	assert.Equal(t, dr.LocalID, tbl.rows[0].IndividualDiscountRowID)
}

func TestApplyIndividual_Rejections(t *testing.T) {
	t.Run("first row", func(t *testing.T) {
		tbl := newTestTable(discountProductRow("5% Discount"))
		assert.ErrorIs(t, NewDiscounts(tbl).ApplyIndividual(0), ErrNoDiscountTarget)
	})
	t.Run("not a discount product", func(t *testing.T) {
		tbl := newTestTable(grossRow(1), grossRow(2))
		assert.ErrorIs(t, NewDiscounts(tbl).ApplyIndividual(1), ErrNotDiscountProduct)
	})
	t.Run("consecutive", func(t *testing.T) {
		tbl := newTestTable(pricedRow("Carpet", 100), discountProductRow("5% Discount"), discountProductRow("10% Discount"))
		d := NewDiscounts(tbl)
		require.NoError(t, d.ApplyIndividual(1))
		before := tbl.Rows()

		assert.ErrorIs(t, d.ApplyIndividual(2), ErrConsecutiveDiscount)
		assert.Equal(t, before, tbl.Rows())
	})
	t.Run("out of range", func(t *testing.T) {
		tbl := newTestTable(grossRow(1))
		assert.ErrorIs(t, NewDiscounts(tbl).ApplyIndividual(4), ErrRowNotFound)
	})
}

func TestResync_FollowsEditsAndIsIdempotent(t *testing.T) {
	tbl := newTestTable(pricedRow("Carpet", 100), discountProductRow("10% Discount"), pricedRow("Tiles", 300))
	d := NewDiscounts(tbl)
	require.NoError(t, d.ApplyIndividual(1))
	require.NoError(t, d.SetOverallRate("10"))

	tbl.rows[0] = pricedRow("Carpet", 200)
	tbl.rows[0].LocalID = 1
	tbl.rows[0].IndividualDiscountRowID = tbl.rows[1].LocalID

	d.Resync()
	first := tbl.Rows()
	d.Resync()
	second := tbl.Rows()

	assert.Equal(t, first, second)
	assert.Equal(t, N(-21), first[1].GrossAmount)
	assert.Equal(t, N(-52.5), overallRows(tbl)[0].GrossAmount)
}

func TestResync_DropsOverallRowWhenBaseVanishes(t *testing.T) {
	tbl := newTestTable(grossRow(100))
	d := NewDiscounts(tbl)
	require.NoError(t, d.SetOverallRate("10"))

	tbl.rows[0].GrossAmount = N(0)
	d.Resync()

	assert.Empty(t, overallRows(tbl))
	assert.Equal(t, 10.0, d.Rate())

	tbl.rows[0].GrossAmount = N(40)
	d.Resync()
	assert.Equal(t, N(-4), overallRows(tbl)[0].GrossAmount)
}

func TestIsDiscountProduct(t *testing.T) {
	for _, name := range IndividualDiscountProducts {
		assert.True(t, IsDiscountProduct(name), name)
	}
	assert.False(t, IsDiscountProduct("Discount (10%)"))
	assert.False(t, IsDiscountProduct("Carpet"))
}

func TestOverallDiscount_PresetOptions(t *testing.T) {
	want := map[string]float64{"5": -10, "10": -20, "15": -30, "25": -50}
	for _, opt := range OverallDiscountOptions {
		t.Run("option "+opt, func(t *testing.T) {
			tbl := newTestTable(grossRow(200))
			d := NewDiscounts(tbl)
			require.NoError(t, d.SetOverallRate("10"))

			require.NoError(t, d.SetOverallRate(opt))

			overall := overallRows(tbl)
			if opt == "" {
				assert.Zero(t, d.Rate())
				assert.Empty(t, overall)
				return
			}
			require.Len(t, overall, 1)
			assert.Equal(t, "Discount ("+opt+"%)", overall[0].ProductName)
			assert.Equal(t, N(want[opt]), overall[0].GrossAmount)
			assert.Equal(t, -want[opt], d.OverallAmount())
		})
	}
}

func TestOverallDiscount_NonNumericInputIsIgnored(t *testing.T) {
	tbl := newTestTable(grossRow(100))
	d := NewDiscounts(tbl)
	require.NoError(t, d.SetOverallRate("10"))
	before := tbl.Rows()

	require.NoError(t, d.SetOverallRate("abc"))

	assert.Equal(t, 10.0, d.Rate())
	assert.Equal(t, before, tbl.Rows())
}
