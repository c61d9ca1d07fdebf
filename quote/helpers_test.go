package quote

import (
	"time"

	"quotelines/services"
)

// manualLoop is a Loop driven by the test. Timers fire only on Advance and
// off-loop work runs only on Settle.
type manualLoop struct {
	now    time.Duration
	queue  []func()
	timers []*manualTimer
	work   []func() func()
}

type manualTimer struct {
	at        time.Duration
	fn        func()
	fired     bool
	cancelled bool
}

func (t *manualTimer) Cancel() { t.cancelled = true }

func newManualLoop() *manualLoop { return &manualLoop{} }

func (l *manualLoop) Post(fn func()) { l.queue = append(l.queue, fn) }

func (l *manualLoop) After(d time.Duration, fn func()) Task {
	t := &manualTimer{at: l.now + d, fn: fn}
	l.timers = append(l.timers, t)
	return t
}

func (l *manualLoop) Go(work func() func()) { l.work = append(l.work, work) }

func (l *manualLoop) drain() {
	for len(l.queue) > 0 {
		fn := l.queue[0]
		l.queue = l.queue[1:]
		fn()
	}
}

// Advance moves the clock and runs every timer that came due, earliest first.
func (l *manualLoop) Advance(d time.Duration) {
	l.now += d
	for {
		var due *manualTimer
		for _, t := range l.timers {
			if t.fired || t.cancelled || t.at > l.now {
				continue
			}
			if due == nil || t.at < due.at {
				due = t
			}
		}
		if due == nil {
			break
		}
		due.fired = true
		l.Post(due.fn)
		l.drain()
	}
	l.drain()
}

// Settle runs queued callbacks and off-loop work until nothing is left.
func (l *manualLoop) Settle() {
	l.drain()
	for len(l.work) > 0 {
		works := l.work
		l.work = nil
		for _, w := range works {
			if next := w(); next != nil {
				l.Post(next)
			}
		}
		l.drain()
	}
}

// activeTimers counts timers that have neither fired nor been cancelled.
func (l *manualLoop) activeTimers() int {
	n := 0
	for _, t := range l.timers {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

// newTestTable builds a table from rows, assigning fresh local ids. Rows
// default to committed products.
func newTestTable(rows ...Row) *Table {
	t := NewTable("")
	for _, r := range rows {
		r.LocalID = t.newID()
		if r.Kind == "" {
			r.Kind = KindProduct
		}
		if r.Mode == "" {
			r.Mode = ModeRead
		}
		t.rows = append(t.rows, r)
	}
	return t
}

// pricedRow is a committed product whose amount is a with tax applied.
func pricedRow(name string, a float64) Row {
	tax, gross := services.CalcTax(a)
	return Row{
		Kind:        KindProduct,
		ProductName: name,
		Quantity:    N(1),
		Rate:        N(a),
		UnitPrice:   N(a),
		Amount:      N(a),
		TaxAmount:   N(tax),
		GrossAmount: N(gross),
	}
}

// grossRow is a committed product carrying only a gross amount.
func grossRow(gross float64) Row {
	return Row{Kind: KindProduct, GrossAmount: N(gross)}
}

func discountProductRow(name string) Row {
	return Row{Kind: KindIndividualDiscount, ProductName: name, Family: DiscountFamily}
}

// pair links the individual discount at index d to the row above it.
func pair(t *Table, d int) {
	t.rows[d].DiscountAppliedFromRowID = t.rows[d-1].LocalID
	t.rows[d-1].IndividualDiscountRowID = t.rows[d].LocalID
}
