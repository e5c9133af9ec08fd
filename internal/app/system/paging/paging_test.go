package paging_test

import (
	"testing"

	"github.com/reservehub/reservehub/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestTrimPage(t *testing.T) {
	tests := []struct {
		name     string
		rows     []int
		before   string
		after    string
		wantLen  int
		wantPrev bool
		wantNext bool
	}{
		{"empty first page", intRows(0), "", "", 0, false, false},
		{"partial first page", intRows(3), "", "", 3, false, false},
		{"full first page with lookahead row", intRows(paging.PageSize + 1), "", "", paging.PageSize, false, true},
		{"forward page with lookahead row", intRows(paging.PageSize + 1), "", "cur", paging.PageSize, true, true},
		{"last forward page", intRows(3), "", "cur", 3, true, false},
		{"backward page with lookahead row", intRows(paging.PageSize + 1), "cur", "", paging.PageSize, true, true},
		{"first backward page", intRows(3), "cur", "", 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := append([]int(nil), tt.rows...)
			got := paging.TrimPage(&rows, tt.before, tt.after)
			if len(rows) != tt.wantLen {
				t.Errorf("rows: got %d, want %d", len(rows), tt.wantLen)
			}
			if got.HasPrev != tt.wantPrev || got.HasNext != tt.wantNext {
				t.Errorf("result: got prev=%v next=%v, want prev=%v next=%v",
					got.HasPrev, got.HasNext, tt.wantPrev, tt.wantNext)
			}
		})
	}
}

func TestTrimPage_BackwardDropsOldestRow(t *testing.T) {
	rows := intRows(paging.PageSize + 1)
	paging.TrimPage(&rows, "cur", "")
	if rows[0] != 1 {
		t.Errorf("backward trim should drop the first row, kept %d", rows[0])
	}
}

func TestConfigureKeyset(t *testing.T) {
	if cfg := paging.ConfigureKeyset("", ""); cfg.Direction != paging.Forward || cfg.SortOrder != 1 || cfg.Cursor != nil {
		t.Errorf("no cursors: %+v", cfg)
	}
	if cfg := paging.ConfigureKeyset("", "garbage"); cfg.Direction != paging.Forward {
		t.Errorf("after cursor should page forward: %+v", cfg)
	}
	if cfg := paging.ConfigureKeyset("garbage", ""); cfg.Direction != paging.Backward || cfg.SortOrder != -1 {
		t.Errorf("before cursor should page backward: %+v", cfg)
	}
	// before wins when both are present
	if cfg := paging.ConfigureKeyset("b", "a"); cfg.Direction != paging.Backward {
		t.Errorf("before should take precedence: %+v", cfg)
	}
}

func TestReverse(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	paging.Reverse(rows)
	for i, want := range []int{4, 3, 2, 1} {
		if rows[i] != want {
			t.Fatalf("got %v", rows)
		}
	}
	single := []int{7}
	paging.Reverse(single)
	if single[0] != 7 {
		t.Errorf("single element changed: %v", single)
	}
}

func TestBuildCursors(t *testing.T) {
	type row struct {
		key string
		id  primitive.ObjectID
	}
	keyFn := func(r row) string { return r.key }
	idFn := func(r row) primitive.ObjectID { return r.id }

	prev, next := paging.BuildCursors(nil, keyFn, idFn)
	if prev != "" || next != "" {
		t.Errorf("empty rows: got (%q, %q)", prev, next)
	}

	one := []row{{"alpha", primitive.NewObjectID()}}
	prev, next = paging.BuildCursors(one, keyFn, idFn)
	if prev == "" || prev != next {
		t.Errorf("single row should yield one cursor twice: (%q, %q)", prev, next)
	}

	two := []row{{"alpha", primitive.NewObjectID()}, {"omega", primitive.NewObjectID()}}
	prev, next = paging.BuildCursors(two, keyFn, idFn)
	if prev == next {
		t.Error("distinct rows should yield distinct cursors")
	}
}

func TestLimitPlusOne(t *testing.T) {
	if got := paging.LimitPlusOne(); got != int64(paging.PageSize+1) {
		t.Errorf("LimitPlusOne() = %d", got)
	}
}
