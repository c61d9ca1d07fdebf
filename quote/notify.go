package quote

import "errors"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a user-facing message.
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Inbox buffers notifications until the caller drains them. It is owned by
// the loop like the rest of the editor state.
type Inbox struct {
	items []Notification
}

func (in *Inbox) Notify(n Notification) {
	in.items = append(in.items, n)
}

func (in *Inbox) Drain() []Notification {
	out := in.items
	in.items = nil
	return out
}

// Rejection is a precondition failure. The command had no effect.
type Rejection struct {
	Severity Severity
	Message  string
}

func (r *Rejection) Error() string { return r.Message }

var (
	ErrNoDiscountBase      = &Rejection{SeverityWarning, "No items available to apply discount. Please add items first."}
	ErrConsecutiveDiscount = &Rejection{SeverityError, "Cannot apply consecutive discounts."}
	ErrDiscountedTarget    = &Rejection{SeverityError, "Please remove the discount from this product first."}
	ErrNoSelection         = &Rejection{SeverityWarning, "Select a row first."}
	ErrLastRow             = &Rejection{SeverityWarning, "At least one row must remain."}
	ErrRowNotFound         = &Rejection{SeverityError, "Row not found."}
	ErrRowReadOnly         = &Rejection{SeverityWarning, "Switch the row to edit mode first."}
	ErrDiscountRowLocked   = &Rejection{SeverityWarning, "Discount rows are calculated automatically."}
	ErrNoDiscountTarget    = &Rejection{SeverityError, "Add the product to discount above this row."}
	ErrNotDiscountProduct  = &Rejection{SeverityError, "Not a discount product."}
	ErrUnknownField        = &Rejection{SeverityError, "Unknown field."}
	ErrFieldDisabled       = &Rejection{SeverityWarning, "This field cannot be edited for this product."}
	ErrCandidateNotFound   = &Rejection{SeverityError, "Product is no longer in the suggestion list."}
)

// notificationFor maps an error to the message shown to the user.
func notificationFor(err error, fallback string) Notification {
	var rej *Rejection
	if errors.As(err, &rej) {
		return Notification{Severity: rej.Severity, Message: rej.Message}
	}
	return Notification{Severity: SeverityError, Message: fallback}
}
