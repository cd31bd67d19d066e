package view

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/JonMunkholm/dataview/internal/core"
)

func result(name string, rs ...*core.Record) *core.LoadResult {
	return &core.LoadResult{
		FileName: name,
		Format:   core.DetectFormat(name),
		Encoding: core.EncodingUTF8,
		Records:  rs,
	}
}

func TestSession_LoadResetsState(t *testing.T) {
	s := NewSession(NewEngine(10, ""))

	gen := s.BeginLoad()
	if !s.CommitLoad(gen, result("a.csv", rec("v", 2), rec("v", 1))) {
		t.Fatal("CommitLoad() = false for current generation")
	}
	s.SetFilter("1")
	s.ToggleSort("v")

	gen = s.BeginLoad()
	s.CommitLoad(gen, result("b.json", rec("w", 1)))

	if st := s.State(); st != Reset() {
		t.Errorf("State() = %+v, want reset", st)
	}
	info := s.Info()
	if info.FileName != "b.json" || info.Format != core.FormatJSON || info.Records != 1 || info.Columns != 1 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestSession_StaleLoadDiscarded(t *testing.T) {
	s := NewSession(NewEngine(10, ""))

	first := s.BeginLoad()
	second := s.BeginLoad()

	if !s.CommitLoad(second, result("new.csv", rec("a", "new"))) {
		t.Fatal("newest load should commit")
	}
	if s.CommitLoad(first, result("old.csv", rec("a", "old"))) {
		t.Error("stale load committed")
	}
	if s.FailLoad(first) {
		t.Error("stale failure applied")
	}
	if s.Info().FileName != "new.csv" || !s.Loaded() {
		t.Errorf("Info() = %+v, want new.csv kept", s.Info())
	}
}

func TestSession_FailLoadClears(t *testing.T) {
	s := NewSession(NewEngine(10, ""))
	s.CommitLoad(s.BeginLoad(), result("a.csv", rec("a", 1)))

	if !s.FailLoad(s.BeginLoad()) {
		t.Fatal("FailLoad() = false for current generation")
	}
	if s.Loaded() {
		t.Error("dataset kept after failed load")
	}
	if _, err := s.Records(); !errors.Is(err, core.ErrNoDataset) {
		t.Errorf("Records() error = %v, want ErrNoDataset", err)
	}
}

func TestSession_ClearInvalidatesInFlight(t *testing.T) {
	s := NewSession(NewEngine(10, ""))
	gen := s.BeginLoad()
	s.Clear()

	if s.CommitLoad(gen, result("a.csv", rec("a", 1))) {
		t.Error("load committed after Clear")
	}
	if s.Loaded() {
		t.Error("Loaded() = true after Clear")
	}
}

func TestSession_ExportParseOrder(t *testing.T) {
	s := NewSession(NewEngine(10, ""))
	s.CommitLoad(s.BeginLoad(), result("a.csv", rec("v", 3), rec("v", 1), rec("v", 2)))

	s.ToggleSort("v")
	s.SetFilter("3")

	page := s.Render()
	if page.FilteredCount != 1 {
		t.Fatalf("FilteredCount = %d, want 1", page.FilteredCount)
	}

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var got []map[string]float64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := []map[string]float64{{"v": 3}, {"v": 1}, {"v": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %v, want %v", got, want)
	}

	s.SetFilter("")
	page = s.Render()
	cells := []string{page.Rows[0].Cells[0], page.Rows[1].Cells[0], page.Rows[2].Cells[0]}
	if !reflect.DeepEqual(cells, []string{"1", "2", "3"}) {
		t.Errorf("working order = %v, want sorted", cells)
	}
}

func TestSession_ExportEmpty(t *testing.T) {
	s := NewSession(NewEngine(10, ""))
	if _, err := s.Export(); !errors.Is(err, core.ErrNoDataset) {
		t.Errorf("Export() error = %v, want ErrNoDataset", err)
	}
}

func TestSession_Notice(t *testing.T) {
	s := NewSession(NewEngine(10, ""))
	s.SetNotice("loaded")

	if got := s.TakeNotice(); got != "loaded" {
		t.Errorf("TakeNotice() = %q", got)
	}
	if got := s.TakeNotice(); got != "" {
		t.Errorf("second TakeNotice() = %q, want empty", got)
	}
}

func TestSession_Concurrent(t *testing.T) {
	s := NewSession(NewEngine(5, ""))
	s.CommitLoad(s.BeginLoad(), result("a.csv", manyRecords(40)...))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 5 {
				case 0:
					s.ToggleSort("n")
				case 1:
					s.NextPage()
				case 2:
					s.SetFilter("odd")
				case 3:
					s.Render()
				default:
					s.PrevPage()
				}
			}
		}(i)
	}
	wg.Wait()

	page := s.Render()
	if page.Page < 1 || page.Page > page.TotalPages {
		t.Errorf("page %d out of range 1..%d", page.Page, page.TotalPages)
	}
	if page.TotalCount != 40 {
		t.Errorf("TotalCount = %d, want 40", page.TotalCount)
	}
}
