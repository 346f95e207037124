package inventory

import (
	"strings"

	"github.com/OmkarVetal12/synlawn/internal/quantity"
	"github.com/shopspring/decimal"
)

// Store holds the current stock-check result for one workflow. It is replaced
// wholesale on every fetch and never merged. Every mutation swaps in a fresh
// backing slice and bumps Version, so snapshots handed out earlier are never
// modified. Store is not safe for concurrent use; the owning workflow
// serialises access.
type Store struct {
	rows    []Row
	index   map[string]int
	loaded  bool
	version uint64
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Replace swaps the row set. Rows without a product item id are dropped and
// only the first row per id is kept.
func (s *Store) Replace(rows []Row) {
	next := make([]Row, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.ProductItemID == "" {
			continue
		}
		if _, dup := index[row.ProductItemID]; dup {
			continue
		}
		index[row.ProductItemID] = len(next)
		next = append(next, row)
	}
	s.rows = next
	s.index = index
	s.loaded = true
	s.version++
}

// Reset discards all rows and marks the store as not loaded.
func (s *Store) Reset() {
	s.rows = nil
	s.index = map[string]int{}
	s.loaded = false
	s.version++
}

// Loaded distinguishes "no stock check yet / failed" from "zero rows".
func (s *Store) Loaded() bool {
	return s.loaded
}

func (s *Store) Version() uint64 {
	return s.version
}

func (s *Store) Len() int {
	return len(s.rows)
}

// Rows returns a copy of every row in fetch order.
func (s *Store) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Store) Get(productItemID string) (Row, bool) {
	i, ok := s.index[productItemID]
	if !ok {
		return Row{}, false
	}
	return s.rows[i], true
}

// Filter returns rows whose product name contains productText and whose
// location name contains locationText, both case-insensitively. Empty text
// matches everything.
func (s *Store) Filter(productText, locationText string) []Row {
	product := strings.ToLower(strings.TrimSpace(productText))
	location := strings.ToLower(strings.TrimSpace(locationText))
	out := make([]Row, 0, len(s.rows))
	for _, row := range s.rows {
		if !strings.Contains(strings.ToLower(row.ProductName), product) {
			continue
		}
		if !strings.Contains(strings.ToLower(row.LocationName), location) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// SetProposedQuantity clamps rawInput against the row's available quantity
// and stores the result. Unknown ids are a no-op and report false.
func (s *Store) SetProposedQuantity(productItemID, rawInput string) (Row, bool) {
	i, ok := s.index[productItemID]
	if !ok {
		return Row{}, false
	}
	value := quantity.Clamp(rawInput, s.rows[i].QuantityAvailable)
	return s.write(i, value), true
}

// SetProposed stores value without clamping. Used when replaying drafts whose
// validity is reported separately.
func (s *Store) SetProposed(productItemID string, value decimal.Decimal) (Row, bool) {
	i, ok := s.index[productItemID]
	if !ok {
		return Row{}, false
	}
	return s.write(i, value), true
}

func (s *Store) write(i int, value decimal.Decimal) Row {
	if s.rows[i].ProposedQuantity.Equal(value) {
		return s.rows[i]
	}
	next := make([]Row, len(s.rows))
	copy(next, s.rows)
	next[i].ProposedQuantity = value
	s.rows = next
	s.version++
	return next[i]
}
