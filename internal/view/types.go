package view

import (
	"fmt"

	"github.com/JonMunkholm/dataview/internal/core"
)

// ColumnType is the inferred type of a column.
type ColumnType int

const (
	Untyped ColumnType = iota
	NumberColumn
	DateColumn
)

func (t ColumnType) String() string {
	switch t {
	case NumberColumn:
		return "number"
	case DateColumn:
		return "date"
	default:
		return "untyped"
	}
}

// Sortable reports whether columns of this type can be sorted.
func (t ColumnType) Sortable() bool { return t != Untyped }

// Sort indicators shown next to column headers.
const (
	IndicatorAscending  = "▲"
	IndicatorDescending = "▼"
	IndicatorSortable   = "⇅"
)

// ViewState is the user-controlled part of a table view.
type ViewState struct {
	Filter    string `json:"filter"`
	SortKey   string `json:"sort_key"` // "" means unsorted
	Ascending bool   `json:"ascending"`
	Page      int    `json:"page"` // 1-based
}

// Reset returns the initial view state.
func Reset() ViewState {
	return ViewState{Ascending: true, Page: 1}
}

// Column describes one rendered column.
type Column struct {
	Key       string     `json:"key"`
	Type      ColumnType `json:"-"`
	TypeName  string     `json:"type"`
	Sortable  bool       `json:"sortable"`
	Active    bool       `json:"active"`
	Ascending bool       `json:"ascending"`
	Indicator string     `json:"indicator"`
}

// Row is one rendered record: display cells in column order.
type Row struct {
	Cells  []string     `json:"cells"`
	Record *core.Record `json:"-"`
}

// Page is the rendered slice of the working set.
type Page struct {
	Columns       []Column `json:"columns"`
	Rows          []Row    `json:"rows"`
	FilteredCount int      `json:"filtered_count"`
	ShownCount    int      `json:"shown_count"`
	TotalCount    int      `json:"total_count"`
	Page          int      `json:"page"`
	TotalPages    int      `json:"total_pages"`
	PageSize      int      `json:"page_size"`
}

// Summary renders a one-line description such as
// "Showing 50 of 120 records (page 1 of 3)".
func (p Page) Summary() string {
	s := fmt.Sprintf("Showing %d of %d records (page %d of %d)", p.ShownCount, p.FilteredCount, p.Page, p.TotalPages)
	if p.FilteredCount != p.TotalCount {
		s += fmt.Sprintf(", %d total", p.TotalCount)
	}
	return s
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }
