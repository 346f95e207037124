// Package ledger keeps per-row validation failures that gate confirmation.
package ledger

import "sort"

const InvalidMessage = "Please correct the errors before proceeding."

// RowError is one row's active validation failure.
type RowError struct {
	Messages   []string `json:"messages"`
	FieldNames []string `json:"field_names"`
	Title      string   `json:"title"`
}

func (e RowError) clone() RowError {
	return RowError{
		Messages:   append([]string(nil), e.Messages...),
		FieldNames: append([]string(nil), e.FieldNames...),
		Title:      e.Title,
	}
}

// Entry pairs a RowError with the product item it belongs to.
type Entry struct {
	ProductItemID string `json:"product_item_id"`
	RowError
}

// ValidationResult is what a host step validator consumes.
type ValidationResult struct {
	IsValid      bool   `json:"is_valid"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Ledger maps product item ids to their RowError. The zero value is not
// usable; call New.
type Ledger struct {
	errs map[string]RowError
}

func New() *Ledger {
	return &Ledger{errs: map[string]RowError{}}
}

func (l *Ledger) Set(productItemID string, err RowError) {
	l.errs[productItemID] = err.clone()
}

func (l *Ledger) Clear(productItemID string) {
	delete(l.errs, productItemID)
}

// Merge adds errs on top of the existing entries. Nothing is removed.
func (l *Ledger) Merge(errs map[string]RowError) {
	for id, err := range errs {
		l.Set(id, err)
	}
}

// Retain drops entries whose id is not in ids.
func (l *Ledger) Retain(ids []string) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	for id := range l.errs {
		if _, ok := keep[id]; !ok {
			delete(l.errs, id)
		}
	}
}

func (l *Ledger) Get(productItemID string) (RowError, bool) {
	err, ok := l.errs[productItemID]
	if !ok {
		return RowError{}, false
	}
	return err.clone(), true
}

func (l *Ledger) IsEmpty() bool { return len(l.errs) == 0 }

func (l *Ledger) Len() int { return len(l.errs) }

// Snapshot returns a copy of the ledger keyed by product item id.
func (l *Ledger) Snapshot() map[string]RowError {
	out := make(map[string]RowError, len(l.errs))
	for id, err := range l.errs {
		out[id] = err.clone()
	}
	return out
}

// Entries lists the ledger sorted by product item id.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.errs))
	for id, err := range l.errs {
		out = append(out, Entry{ProductItemID: id, RowError: err.clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductItemID < out[j].ProductItemID })
	return out
}

func (l *Ledger) AsValidationResult() ValidationResult {
	if l.IsEmpty() {
		return ValidationResult{IsValid: true}
	}
	return ValidationResult{IsValid: false, ErrorMessage: InvalidMessage}
}
