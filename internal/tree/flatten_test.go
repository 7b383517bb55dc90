package tree

import (
	"testing"

	"budgetgrid/internal/aggregate"
	"budgetgrid/internal/domain"
	"budgetgrid/internal/testutil"
)

// sampleFlat builds a pre-order flat list with two buckets, one of them two
// levels deep, plus the synthetic metric rows.
func sampleFlat(t *testing.T) (flat []*domain.Category, bucket, sub, leaf *domain.Category) {
	t.Helper()

	l := testutil.Leaf("Diesel", 5, 10)
	s := testutil.Sub("Fuel", l)
	b := testutil.WithChildren(
		testutil.WithFinancialResults(
			testutil.Bucket("Costs", domain.DescriptionExpenses, 0),
			domain.MetricEBITDA,
		),
		s,
	)
	income := testutil.Bucket("Sales", domain.DescriptionIncome, 1000)

	result := aggregate.Aggregate([]*domain.Category{income, b})
	return result.Flat, result.ByID(b.ID), result.ByID(s.ID), result.ByID(l.ID)
}

func rowIDs(rows []Row) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Category.ID)
	}
	return ids
}

func assertIDs(t *testing.T, rows []Row, want []int64) {
	t.Helper()
	got := rowIDs(rows)
	if len(got) != len(want) {
		t.Fatalf("got %d rows %v, want %d rows %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %d, want %d (rows %v)", i, got[i], want[i], got)
		}
	}
}

func TestFlattenDefaultShowsEverything(t *testing.T) {
	flat, _, _, _ := sampleFlat(t)
	state := NewTableState()

	rows := state.Flatten(flat)
	if len(rows) != len(flat) {
		t.Fatalf("default state shows %d of %d rows", len(rows), len(flat))
	}
}

func TestFlattenIsPure(t *testing.T) {
	flat, bucket, _, _ := sampleFlat(t)
	state := NewTableState()
	state.Toggle(flat, bucket.ID)

	first := rowIDs(state.Flatten(flat))
	second := rowIDs(state.Flatten(flat))
	if len(first) != len(second) {
		t.Fatalf("flatten changed between calls: %v then %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("flatten changed between calls: %v then %v", first, second)
		}
	}
}

func TestToggleCollapseHidesSubtree(t *testing.T) {
	flat, bucket, sub, leaf := sampleFlat(t)
	state := NewTableState()

	state.Toggle(flat, bucket.ID)

	rows := state.Flatten(flat)
	for _, row := range rows {
		if row.Category.ID == sub.ID || row.Category.ID == leaf.ID {
			t.Fatalf("collapsed bucket still shows descendant %s", row.Category.Name)
		}
	}
	if state.Expanded(bucket.ID) {
		t.Error("bucket still reads expanded")
	}
}

func TestToggleCollapseCascades(t *testing.T) {
	flat, bucket, sub, leaf := sampleFlat(t)
	state := NewTableState()

	// Collapse the bucket, then re-expand it: the sub-category must come back
	// collapsed instead of resurrecting its own subtree.
	state.Toggle(flat, bucket.ID)
	state.Toggle(flat, bucket.ID)

	if !state.Expanded(bucket.ID) {
		t.Fatal("bucket did not re-expand")
	}
	if state.Expanded(sub.ID) {
		t.Error("descendant sub-category re-expanded with its parent")
	}

	rows := state.Flatten(flat)
	seenSub := false
	for _, row := range rows {
		if row.Category.ID == sub.ID {
			seenSub = true
			if row.Expanded {
				t.Error("sub-category row renders expanded")
			}
		}
		if row.Category.ID == leaf.ID {
			t.Error("leaf visible under a collapsed sub-category")
		}
	}
	if !seenSub {
		t.Error("sub-category not visible under re-expanded bucket")
	}
}

func TestToggleDoesNotTouchSiblings(t *testing.T) {
	flat, bucket, _, _ := sampleFlat(t)
	state := NewTableState()

	state.Toggle(flat, bucket.ID)

	for _, c := range flat {
		if c.ID == bucket.ID {
			continue
		}
		if c.NestingLevel == domain.LevelBucket && !state.Expanded(c.ID) {
			t.Errorf("sibling bucket %s was collapsed", c.Name)
		}
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	flat, _, _, _ := sampleFlat(t)
	state := NewTableState()

	state.Toggle(flat, 999999)

	if len(state.Flatten(flat)) != len(flat) {
		t.Error("toggling an unknown id changed visibility")
	}
}

func TestCollapseAllExpandAllRoundTrip(t *testing.T) {
	flat, bucket, sub, _ := sampleFlat(t)
	state := NewTableState()

	state.CollapseAll(flat)

	t.Run("collapse all shows only top-level rows", func(t *testing.T) {
		for _, row := range state.Flatten(flat) {
			if row.Level != domain.LevelBucket {
				t.Fatalf("nested row %s visible after collapse all", row.Category.Name)
			}
		}
		if state.Expanded(bucket.ID) || state.Expanded(sub.ID) {
			t.Error("expandable nodes still expanded")
		}
	})

	t.Run("expand all restores the default state", func(t *testing.T) {
		state.ExpandAll()
		if len(state.Flatten(flat)) != len(flat) {
			t.Fatal("expand all did not restore every row")
		}
	})
}

func TestSetHiddenSkipsSubtree(t *testing.T) {
	flat, bucket, sub, leaf := sampleFlat(t)
	state := NewTableState()

	state.SetHidden(bucket.ID, true)
	rows := state.Flatten(flat)
	for _, row := range rows {
		switch row.Category.ID {
		case bucket.ID, sub.ID, leaf.ID:
			t.Fatalf("hidden subtree row %s still visible", row.Category.Name)
		}
	}

	state.SetHidden(bucket.ID, false)
	if len(state.Flatten(flat)) != len(flat) {
		t.Error("unhiding did not restore the subtree")
	}
}

func TestFlattenMetricRowsAlwaysVisible(t *testing.T) {
	flat, _, _, _ := sampleFlat(t)
	state := NewTableState()
	state.CollapseAll(flat)

	found := false
	for _, row := range state.Flatten(flat) {
		if row.Category.IsMetricRow() {
			found = true
			if row.Expandable {
				t.Error("metric row reads expandable")
			}
		}
	}
	if !found {
		t.Fatal("no metric row visible after collapse all")
	}
}
