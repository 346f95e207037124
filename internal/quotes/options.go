package quotes

import (
	"sort"

	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	otherFamily   = "Other"
	noSubFamily   = "__NO_SUB__"
	groupKeyDelim = "::"
)

// OptionItem is one quote line as shown in an option group.
type OptionItem struct {
	ID            uuid.UUID           `json:"id"`
	ProductName   string              `json:"product_name"`
	ProductOption enums.ProductOption `json:"product_option"`
	Quantity      decimal.Decimal     `json:"quantity"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	ListPrice     decimal.Decimal     `json:"list_price"`
	NetTotal      decimal.Decimal     `json:"net_total"`
	Checked       bool                `json:"checked"`
}

// OptionGroup is a radio group of lines sharing a family and sub-family.
type OptionGroup struct {
	Key        string       `json:"group_key"`
	SubFamily  *string      `json:"sub_family,omitempty"`
	SelectedID *uuid.UUID   `json:"selected_id,omitempty"`
	Items      []OptionItem `json:"items"`
}

// OptionFamily lists the groups of one product family.
type OptionFamily struct {
	Family string        `json:"family"`
	Groups []OptionGroup `json:"groups"`
}

// Selection is the saved state of one quote line.
type Selection struct {
	ID                uuid.UUID       `json:"id"`
	CustomerSelection bool            `json:"customer_selection"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Family            *string         `json:"family,omitempty"`
}

type group struct {
	key       string
	subFamily *string
	lines     []models.QuoteLineItem
}

// OptionSet groups a quote's lines by family and sub-family and tracks the
// chosen line of every group.
type OptionSet struct {
	families map[string][]*group
	order    []string
	selected map[string]uuid.UUID
}

func familyOf(line models.QuoteLineItem) string {
	if line.Family == nil || *line.Family == "" {
		return otherFamily
	}
	return *line.Family
}

func groupKeyOf(line models.QuoteLineItem) string {
	if line.SubFamily == nil || *line.SubFamily == "" {
		return noSubFamily
	}
	return *line.SubFamily
}

func selectionKey(family, groupKey string) string {
	return family + groupKeyDelim + groupKey
}

// NewOptionSet groups lines in the order given. Each group starts on the line
// the customer picked before, or else the recommended line.
func NewOptionSet(lines []models.QuoteLineItem) *OptionSet {
	set := &OptionSet{
		families: map[string][]*group{},
		selected: map[string]uuid.UUID{},
	}
	for _, line := range lines {
		family := familyOf(line)
		key := groupKeyOf(line)
		groups, seen := set.families[family]
		if !seen {
			set.order = append(set.order, family)
		}
		var target *group
		for _, g := range groups {
			if g.key == key {
				target = g
				break
			}
		}
		if target == nil {
			target = &group{key: key, subFamily: line.SubFamily}
			set.families[family] = append(groups, target)
		}
		target.lines = append(target.lines, line)
	}
	sort.Strings(set.order)

	for family, groups := range set.families {
		for _, g := range groups {
			if id, ok := initialChoice(g.lines); ok {
				set.selected[selectionKey(family, g.key)] = id
			}
		}
	}
	return set
}

func initialChoice(lines []models.QuoteLineItem) (uuid.UUID, bool) {
	for _, line := range lines {
		if line.CustomerSelection {
			return line.ID, true
		}
	}
	for _, line := range lines {
		if line.ProductOption == enums.ProductOptionRecommended {
			return line.ID, true
		}
	}
	return uuid.Nil, false
}

// Choose makes lineID the chosen line of its group.
func (s *OptionSet) Choose(family, groupKey string, lineID uuid.UUID) error {
	var target *group
	for _, g := range s.families[family] {
		if g.key == groupKey {
			target = g
			break
		}
	}
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "option group not found").
			WithDetails(map[string]string{"family": family, "group_key": groupKey})
	}
	for _, line := range target.lines {
		if line.ID != lineID {
			continue
		}
		if !line.ProductOption.Selectable() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item is not selectable").
				WithDetails(map[string]string{"line_item_id": lineID.String()})
		}
		s.selected[selectionKey(family, groupKey)] = lineID
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "line item not in option group").
		WithDetails(map[string]string{"line_item_id": lineID.String()})
}

// Families renders the grouped view with families sorted by name.
func (s *OptionSet) Families() []OptionFamily {
	out := make([]OptionFamily, 0, len(s.order))
	for _, family := range s.order {
		entry := OptionFamily{Family: family}
		for _, g := range s.families[family] {
			view := OptionGroup{Key: g.key, SubFamily: g.subFamily}
			chosen, hasChoice := s.selected[selectionKey(family, g.key)]
			if hasChoice {
				id := chosen
				view.SelectedID = &id
			}
			for _, line := range g.lines {
				view.Items = append(view.Items, OptionItem{
					ID:            line.ID,
					ProductName:   line.ProductName,
					ProductOption: line.ProductOption,
					Quantity:      line.Quantity,
					UnitPrice:     line.UnitPrice,
					ListPrice:     line.ListPrice,
					NetTotal:      line.Quantity.Mul(line.UnitPrice),
					Checked:       hasChoice && chosen == line.ID,
				})
			}
			entry.Groups = append(entry.Groups, view)
		}
		out = append(out, entry)
	}
	return out
}

// Selections builds the save payload. Included lines and chosen lines are
// selected at their unit price, falling back to list price; every other line
// is deselected at zero.
func (s *OptionSet) Selections() []Selection {
	var out []Selection
	for _, family := range s.order {
		for _, g := range s.families[family] {
			chosen, hasChoice := s.selected[selectionKey(family, g.key)]
			for _, line := range g.lines {
				keep := line.ProductOption == enums.ProductOptionIncluded || (hasChoice && chosen == line.ID)
				price := decimal.Zero
				if keep {
					price = line.UnitPrice
					if price.IsZero() {
						price = line.ListPrice
					}
				}
				out = append(out, Selection{
					ID:                line.ID,
					CustomerSelection: keep,
					UnitPrice:         price,
					Family:            line.Family,
				})
			}
		}
	}
	return out
}

// Total sums quantity times price over the selected lines of a payload.
func Total(selections []Selection, lines []models.QuoteLineItem) decimal.Decimal {
	qty := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		qty[line.ID] = line.Quantity
	}
	total := decimal.Zero
	for _, sel := range selections {
		if sel.CustomerSelection {
			total = total.Add(qty[sel.ID].Mul(sel.UnitPrice))
		}
	}
	return total
}
