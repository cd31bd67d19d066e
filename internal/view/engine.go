// Package view implements the table view over a normalized record set:
// text filtering, typed per-column sorting and pagination.
//
// Engine methods are pure functions of (RecordSet, ViewState) with one
// documented exception: ToggleSort reorders the RecordSet in place, so the
// working set stays sorted across later filter and page changes. Session
// wraps a working set and its ViewState for concurrent callers.
package view

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/dataview/internal/core"
)

const (
	DefaultPageSize    = 50
	DefaultPlaceholder = "x"
)

// Engine holds the view settings.
type Engine struct {
	PageSize    int
	Placeholder string // shown for absent cells
}

// NewEngine returns an Engine, applying defaults for non-positive page
// sizes and empty placeholders.
func NewEngine(pageSize int, placeholder string) Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return Engine{PageSize: pageSize, Placeholder: placeholder}
}

func (e Engine) pageSize() int {
	if e.PageSize <= 0 {
		return DefaultPageSize
	}
	return e.PageSize
}

func (e Engine) placeholder() string {
	if e.Placeholder == "" {
		return DefaultPlaceholder
	}
	return e.Placeholder
}

// SetFilter sets the filter text and returns to the first page.
func (e Engine) SetFilter(st ViewState, text string) ViewState {
	st.Filter = text
	st.Page = 1
	return st
}

// ToggleSort sorts rs by key.
//
// Sorting the active column flips its direction; a new column starts
// ascending. Columns that are not sortable leave everything unchanged.
// Otherwise rs is reordered in place (stable) and the page returns to 1.
func (e Engine) ToggleSort(rs core.RecordSet, st ViewState, key string) ViewState {
	typ := InferColumnType(rs, key)
	if !typ.Sortable() {
		return st
	}

	if st.SortKey == key {
		st.Ascending = !st.Ascending
	} else {
		st.SortKey = key
		st.Ascending = true
	}
	st.Page = 1

	sortRecords(rs, key, typ, st.Ascending)
	return st
}

// sortRecords stably sorts rs by the typed key of column key. Records
// without a key go last in either direction.
func sortRecords(rs core.RecordSet, key string, typ ColumnType, ascending bool) {
	type entry struct {
		rec *core.Record
		key float64
		ok  bool
	}

	entries := make([]entry, len(rs))
	for i, rec := range rs {
		v, present := rec.Get(key)
		k, ok := sortKey(v, present, typ)
		entries[i] = entry{rec: rec, key: k, ok: ok}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case !a.ok:
			return false
		case !b.ok:
			return true
		case ascending:
			return a.key < b.key
		default:
			return a.key > b.key
		}
	})

	for i := range entries {
		rs[i] = entries[i].rec
	}
}

// SetPage moves to page n, clamped to the pages available under the
// current filter.
func (e Engine) SetPage(rs core.RecordSet, st ViewState, n int) ViewState {
	total := e.totalPages(len(e.filter(rs, st.Filter)))
	st.Page = clampPage(n, total)
	return st
}

// NextPage moves forward one page; it is a no-op on the last page.
func (e Engine) NextPage(rs core.RecordSet, st ViewState) ViewState {
	return e.SetPage(rs, st, st.Page+1)
}

// PrevPage moves back one page; it is a no-op on the first page.
func (e Engine) PrevPage(rs core.RecordSet, st ViewState) ViewState {
	return e.SetPage(rs, st, st.Page-1)
}

// Render filters rs, slices out the current page and describes the
// columns. The returned state has its page clamped to the valid range.
func (e Engine) Render(rs core.RecordSet, st ViewState) (Page, ViewState) {
	filtered := e.filter(rs, st.Filter)
	size := e.pageSize()
	total := e.totalPages(len(filtered))
	st.Page = clampPage(st.Page, total)

	keys := rs.Columns()
	columns := make([]Column, len(keys))
	for i, key := range keys {
		typ := InferColumnType(rs, key)
		col := Column{
			Key:      key,
			Type:     typ,
			TypeName: typ.String(),
			Sortable: typ.Sortable(),
			Active:   key == st.SortKey,
		}
		switch {
		case col.Active:
			col.Ascending = st.Ascending
			col.Indicator = IndicatorDescending
			if st.Ascending {
				col.Indicator = IndicatorAscending
			}
		case col.Sortable:
			col.Indicator = IndicatorSortable
		}
		columns[i] = col
	}

	start := (st.Page - 1) * size
	end := min(start+size, len(filtered))

	blank := e.placeholder()
	rows := make([]Row, 0, max(end-start, 0))
	for _, rec := range filtered[start:end] {
		cells := make([]string, len(keys))
		for i, key := range keys {
			cells[i] = blank
			if v, ok := rec.Get(key); ok {
				if s := v.String(); s != "" {
					cells[i] = s
				}
			}
		}
		rows = append(rows, Row{Cells: cells, Record: rec})
	}

	return Page{
		Columns:       columns,
		Rows:          rows,
		FilteredCount: len(filtered),
		ShownCount:    len(rows),
		TotalCount:    len(rs),
		Page:          st.Page,
		TotalPages:    total,
		PageSize:      size,
	}, st
}

// Filter returns the records of rs matching text, in order.
func (e Engine) Filter(rs core.RecordSet, text string) core.RecordSet {
	return e.filter(rs, text)
}

// filter keeps records where some value, rendered and lowercased, contains
// the lowercased text. Blank text keeps everything.
func (e Engine) filter(rs core.RecordSet, text string) core.RecordSet {
	if strings.TrimSpace(text) == "" {
		return rs
	}

	term := strings.ToLower(text)
	out := make(core.RecordSet, 0, len(rs))
	for _, rec := range rs {
		if matches(rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec *core.Record, term string) bool {
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		if strings.Contains(strings.ToLower(v.String()), term) {
			return true
		}
	}
	return false
}

func (e Engine) totalPages(n int) int {
	size := e.pageSize()
	total := (n + size - 1) / size
	if total < 1 {
		total = 1
	}
	return total
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
