package quote

// Ledger records external ids removed locally and not yet confirmed deleted
// by the store. Each id appears once.
type Ledger struct {
	ids  []string
	seen map[string]bool
}

func (l *Ledger) Add(id string) {
	if id == "" || l.seen[id] {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	l.seen[id] = true
	l.ids = append(l.ids, id)
}

func (l *Ledger) IDs() []string {
	return append([]string(nil), l.ids...)
}

func (l *Ledger) Len() int { return len(l.ids) }

func (l *Ledger) clear() {
	l.ids = nil
	l.seen = nil
}

// Confirm drops ids the store has acknowledged. Ids added after the save
// started stay pending.
func (l *Ledger) Confirm(ids []string) {
	if len(ids) == 0 {
		return
	}
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	kept := l.ids[:0]
	for _, id := range l.ids {
		if done[id] {
			delete(l.seen, id)
			continue
		}
		kept = append(kept, id)
	}
	l.ids = kept
}

// Table is the ordered row collection with selection and per-row edit state.
// Local ids come from a per-table sequence and are never reused.
type Table struct {
	rows       []Row
	nextID     int64
	selectedID int64
	snapshot   *Row
	ledger     Ledger
	baseUnit   string
}

func NewTable(baseUnit string) *Table {
	if baseUnit == "" {
		baseUnit = DefaultBaseUnit
	}
	return &Table{nextID: 1, baseUnit: baseUnit}
}

func (t *Table) newID() int64 {
	id := t.nextID
	t.nextID++
	return id
}

// Rows returns a copy of the current rows.
func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

func (t *Table) Len() int { return len(t.rows) }

// Selected returns the selected index, or -1.
func (t *Table) Selected() int {
	if t.selectedID == 0 {
		return -1
	}
	return t.indexOf(t.selectedID)
}

func (t *Table) Ledger() *Ledger { return &t.ledger }

func (t *Table) Row(index int) (Row, bool) {
	if index < 0 || index >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[index], true
}

func (t *Table) indexOf(localID int64) int {
	for i := range t.rows {
		if t.rows[i].LocalID == localID {
			return i
		}
	}
	return -1
}

func (t *Table) overallIndex() int {
	for i := range t.rows {
		if t.rows[i].Kind == KindOverallDiscount {
			return i
		}
	}
	return -1
}

// reset replaces all rows, clearing selection and snapshot.
func (t *Table) reset(rows []Row) {
	t.rows = rows
	t.selectedID = 0
	t.snapshot = nil
}

func (t *Table) Select(index int) error {
	if index < 0 || index >= len(t.rows) {
		return ErrRowNotFound
	}
	if t.rows[index].LocalID == t.selectedID {
		return nil
	}
	t.setSelection(index)
	return nil
}

func (t *Table) setSelection(index int) {
	t.selectedID = 0
	if index >= 0 && index < len(t.rows) {
		t.selectedID = t.rows[index].LocalID
	}
	t.fixSelection()
}

// fixSelection re-derives the per-row selected flags after rows moved. A
// selected row that no longer exists leaves nothing selected.
func (t *Table) fixSelection() {
	if t.indexOf(t.selectedID) == -1 {
		t.selectedID = 0
	}
	for i := range t.rows {
		t.rows[i].Selected = t.selectedID != 0 && t.rows[i].LocalID == t.selectedID
	}
}

func (t *Table) requireSelected(index int) error {
	if sel := t.Selected(); sel < 0 || index != sel {
		return ErrNoSelection
	}
	return nil
}

// ToggleEdit flips the selected row between edit and read. Entering edit
// snapshots the row for Cancel. A paired individual discount directly below
// is refreshed from the row's current values first.
func (t *Table) ToggleEdit(index int) error {
	if err := t.requireSelected(index); err != nil {
		return err
	}
	row := &t.rows[index]
	if row.IsDiscount() {
		return ErrDiscountRowLocked
	}

	if next := index + 1; next < len(t.rows) && t.rows[next].Kind == KindIndividualDiscount &&
		t.rows[next].DiscountAppliedFromRowID == row.LocalID {
		t.rows[next] = individualDiscountValues(t.rows[next], *row)
	}

	if row.Mode == ModeEdit {
		row.Mode = ModeRead
		return nil
	}
	snap := *row
	t.snapshot = &snap
	row.Mode = ModeEdit
	return nil
}

// Cancel restores the selected row from its snapshot and locks it. Without a
// selection or a snapshot for that row it does nothing.
func (t *Table) Cancel(index int) {
	if t.requireSelected(index) != nil || t.snapshot == nil {
		return
	}
	if t.snapshot.LocalID != t.rows[index].LocalID {
		return
	}
	restored := *t.snapshot
	restored.Mode = ModeRead
	restored.Selected = true
	t.rows[index] = restored
}

// Insert adds a blank editable row after afterIndex and selects it. The
// overall discount row stays last and a target keeps its discount directly
// below it.
func (t *Table) Insert(afterIndex int) (int, error) {
	if len(t.rows) > 0 && (afterIndex < 0 || afterIndex >= len(t.rows)) {
		return -1, ErrRowNotFound
	}
	at := afterIndex + 1
	if len(t.rows) == 0 {
		at = 0
	}
	if ov := t.overallIndex(); ov != -1 && at > ov {
		at = ov
	}
	for at < len(t.rows) && t.rows[at].Kind == KindIndividualDiscount {
		at++
	}

	row := newBlankRow(t.newID())
	t.rows = append(t.rows, Row{})
	copy(t.rows[at+1:], t.rows[at:])
	t.rows[at] = row

	t.setSelection(at)
	snap := t.rows[at]
	t.snapshot = &snap
	return at, nil
}

// Remove deletes the selected row. A row owning an individual discount takes
// it along; a row sitting above an unpaired discount is refused. Persisted
// rows land in the ledger. It returns the removed rows.
func (t *Table) Remove(index int) ([]Row, error) {
	if len(t.rows) <= 1 {
		return nil, ErrLastRow
	}
	if err := t.requireSelected(index); err != nil {
		return nil, err
	}
	row := t.rows[index]

	if row.Kind == KindProduct && row.IndividualDiscountRowID == 0 {
		if next := index + 1; next < len(t.rows) && t.rows[next].Kind == KindIndividualDiscount {
			return nil, ErrDiscountedTarget
		}
	}

	var removed []Row
	if row.IndividualDiscountRowID != 0 {
		if di := t.indexOf(row.IndividualDiscountRowID); di != -1 {
			removed = append(removed, t.rows[di])
			t.ledger.Add(t.rows[di].ExternalID)
			t.rows = append(t.rows[:di], t.rows[di+1:]...)
			if di < index {
				index--
			}
		}
	}

	if row.Kind == KindIndividualDiscount && row.DiscountAppliedFromRowID != 0 {
		if ti := t.indexOf(row.DiscountAppliedFromRowID); ti != -1 {
			t.rows[ti].IndividualDiscountRowID = 0
		}
	}

	t.ledger.Add(row.ExternalID)
	removed = append(removed, row)
	t.rows = append(t.rows[:index], t.rows[index+1:]...)

	if t.snapshot != nil {
		for _, r := range removed {
			if r.LocalID == t.snapshot.LocalID {
				t.snapshot = nil
				break
			}
		}
	}
	t.setSelection(max(0, index-1))
	return removed, nil
}

// Update applies user input to one field of an editable product row and
// recomputes it. Fields locked by the row's flags are refused. It reports whether discount rows may now be stale.
func (t *Table) Update(localID int64, field Field, value string) (bool, error) {
	i := t.indexOf(localID)
	if i == -1 {
		return false, ErrRowNotFound
	}
	row := t.rows[i]
	if row.IsDiscount() {
		return false, ErrDiscountRowLocked
	}
	if row.Mode != ModeEdit {
		return false, ErrRowReadOnly
	}
	if row.locked(field) {
		return false, ErrFieldDisabled
	}
	before := row.pricing()
	if !row.set(field, value) {
		return false, ErrUnknownField
	}
	row = Recompute(row, field)
	applyFieldStates(&row, field, t.baseUnit)
	t.rows[i] = row

	return resyncFields[field] || row.pricing() != before, nil
}

// SetSuggestionsVisible toggles the suggestion dropdown of one row.
func (t *Table) SetSuggestionsVisible(localID int64, visible bool) {
	if i := t.indexOf(localID); i != -1 {
		t.rows[i].SuggestionsVisible = visible
	}
}

func (t *Table) hideAllSuggestions() {
	for i := range t.rows {
		t.rows[i].SuggestionsVisible = false
	}
}

// AssignRowNumbers numbers every row densely from 1 in table order; the
// overall discount row takes the sentinel so it sorts last.
func (t *Table) AssignRowNumbers() {
	n := 1
	for i := range t.rows {
		if t.rows[i].Kind == KindOverallDiscount {
			t.rows[i].RowNumber = OverallDiscountRowNumber
			continue
		}
		t.rows[i].RowNumber = n
		n++
	}
}
