package quote

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Candidate is one product returned by a catalog search.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"`
	Width       Num    `json:"width"`
	Family      string `json:"family"`
	UnitPrice   Num    `json:"unitPrice"`
	AverageCost Num    `json:"averageCost"`
	CostPerUnit Num    `json:"costPerUnit"`
}

// Searcher is the catalog search collaborator.
type Searcher interface {
	Search(ctx context.Context, term string) ([]Candidate, error)
}

// Catalog debounces search input and holds the latest candidate list. A newer
// query always supersedes an older one, including one already in flight.
type Catalog struct {
	loop     Loop
	searcher Searcher
	debounce time.Duration

	pending    Task
	generation uint64
	candidates []Candidate
}

func NewCatalog(loop Loop, searcher Searcher, debounce time.Duration) *Catalog {
	return &Catalog{loop: loop, searcher: searcher, debounce: debounce}
}

// OnQueryChange cancels any pending query and, for a non-empty term, schedules
// a new one after the debounce. An empty term clears the candidates at once.
// done runs on the loop when the query this call scheduled completes; it is
// not called for superseded queries.
func (c *Catalog) OnQueryChange(ctx context.Context, term string, done func(error)) {
	c.cancelPending()
	c.generation++
	gen := c.generation

	term = strings.TrimSpace(term)
	if term == "" {
		c.candidates = nil
		return
	}

	c.pending = c.loop.After(c.debounce, func() {
		c.pending = nil
		c.loop.Go(func() func() {
			found, err := c.searcher.Search(ctx, term)
			return func() {
				if gen != c.generation {
					return
				}
				if err != nil {
					c.candidates = nil
					err = fmt.Errorf("search %q: %w", term, err)
				} else {
					c.candidates = found
				}
				if done != nil {
					done(err)
				}
			}
		})
	})
}

// Clear drops the candidates and forgets any pending or in-flight query.
func (c *Catalog) Clear() {
	c.cancelPending()
	c.generation++
	c.candidates = nil
}

func (c *Catalog) cancelPending() {
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
}

func (c *Catalog) Candidates() []Candidate {
	return append([]Candidate(nil), c.candidates...)
}

func (c *Catalog) Find(id string) (Candidate, bool) {
	for _, cand := range c.candidates {
		if cand.ID == id {
			return cand, true
		}
	}
	return Candidate{}, false
}

// ApplyCandidate overwrites the product fields of r with cand and recomputes
// the row. A discount product turns the row into an unpaired individual
// discount; anything else makes it a product row.
func ApplyCandidate(r Row, cand Candidate) Row {
	r.ProductID = cand.ID
	r.ProductName = cand.Name
	r.Description = cand.Description
	r.Units = cand.Units
	r.Width = cand.Width
	r.Family = cand.Family
	r.UnitPrice = cand.UnitPrice
	r.AverageCost = cand.AverageCost
	r.CostPerUnit = cand.CostPerUnit
	r.Rate = cand.UnitPrice

	r.Kind = KindProduct
	if IsDiscountProduct(cand.Name) {
		r.Kind = KindIndividualDiscount
		r.IndividualDiscountRowID = 0
	}
	r.DiscountAppliedFromRowID = 0

	applyFamilyFlags(&r, cand.Family)
	return Recompute(r, FieldSelection)
}

// neighboursDiscount reports whether the row before or after index is an
// individual discount.
func (t *Table) neighboursDiscount(index int) bool {
	for _, j := range []int{index - 1, index + 1} {
		if j >= 0 && j < len(t.rows) && t.rows[j].Kind == KindIndividualDiscount {
			return true
		}
	}
	return false
}

// Pick applies cand to the row at index. Placing a discount product next to
// another individual discount is refused without touching the table. It
// reports whether the row became an individual discount.
func (t *Table) Pick(index int, cand Candidate) (bool, error) {
	if index < 0 || index >= len(t.rows) {
		return false, ErrRowNotFound
	}
	row := t.rows[index]
	if row.Kind == KindOverallDiscount {
		return false, ErrDiscountRowLocked
	}
	discount := IsDiscountProduct(cand.Name)
	if discount && t.neighboursDiscount(index) {
		return false, ErrConsecutiveDiscount
	}

	if row.Kind == KindIndividualDiscount && row.DiscountAppliedFromRowID != 0 {
		if ti := t.indexOf(row.DiscountAppliedFromRowID); ti != -1 {
			t.rows[ti].IndividualDiscountRowID = 0
		}
	}
	if discount && row.IndividualDiscountRowID != 0 {
		if di := t.indexOf(row.IndividualDiscountRowID); di != -1 {
			t.rows[di].DiscountAppliedFromRowID = 0
		}
	}

	t.rows[index] = ApplyCandidate(row, cand)
	t.hideAllSuggestions()
	return discount, nil
}
