package domain

import (
	"testing"

	"budgetgrid/internal/months"
)

func TestCategoryClone(t *testing.T) {
	rate := 23.0
	additional := ValueTypePieces
	desc := DescriptionExpenses
	original := &Category{
		ID:                  1,
		Name:                "Costs",
		TaxRate:             &rate,
		PrimaryType:         ValueTypeMoney,
		AdditionalType:      &additional,
		CategoryDescription: &desc,
		Cells: []Cell{
			{ID: 10, Month: months.January, Price: Price{PriceInMoney: 100}},
		},
		FinancialResults: []FinancialResult{
			{
				FinancialMetricType: MetricEBITDA,
				Cells:               []FinancialCell{{ID: 20, Month: months.January, Value: 5}},
			},
		},
		ChildCategories: []*Category{
			{ID: 2, Name: "Fuel", NestingLevel: LevelSub},
		},
	}

	clone := original.Clone()

	t.Run("copies are equal", func(t *testing.T) {
		if clone.ID != 1 || clone.Name != "Costs" || *clone.TaxRate != 23 {
			t.Errorf("clone differs: %+v", clone)
		}
		if len(clone.ChildCategories) != 1 || clone.ChildCategories[0].Name != "Fuel" {
			t.Error("children not cloned")
		}
	})

	t.Run("pointer fields are independent", func(t *testing.T) {
		*clone.TaxRate = 8
		if *original.TaxRate != 23 {
			t.Error("tax rate shared with the original")
		}
		*clone.AdditionalType = ValueTypeLiters
		if *original.AdditionalType != ValueTypePieces {
			t.Error("additional type shared with the original")
		}
	})

	t.Run("slices are independent", func(t *testing.T) {
		clone.Cells[0].Price.PriceInMoney = 999
		if original.Cells[0].Price.PriceInMoney != 100 {
			t.Error("cells shared with the original")
		}
		clone.FinancialResults[0].Cells[0].Value = 999
		if original.FinancialResults[0].Cells[0].Value != 5 {
			t.Error("financial cells shared with the original")
		}
		clone.ChildCategories[0].Name = "changed"
		if original.ChildCategories[0].Name != "Fuel" {
			t.Error("child shared with the original")
		}
	})
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		leaf     bool
		metric   bool
	}{
		{"bucket", Category{Name: "Costs", NestingLevel: LevelBucket}, false, false},
		{"leaf", Category{Name: "Diesel", NestingLevel: LevelLeaf}, true, false},
		{"ebitda row", Category{Name: "EBITDA"}, false, true},
		{"net profit row", Category{Name: "NETTO_PELNA"}, false, true},
		{"real category named like nothing special", Category{Name: "Ebit sp. z o.o."}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.category.IsLeaf(); got != tt.leaf {
				t.Errorf("IsLeaf = %v, want %v", got, tt.leaf)
			}
			if got := tt.category.IsMetricRow(); got != tt.metric {
				t.Errorf("IsMetricRow = %v, want %v", got, tt.metric)
			}
		})
	}
}

func TestCellForMonth(t *testing.T) {
	c := Category{Cells: []Cell{
		{ID: 1, Month: months.March, Price: Price{PriceInMoney: 30}},
	}}

	if cell := c.CellForMonth(months.March); cell == nil || cell.Price.PriceInMoney != 30 {
		t.Errorf("march cell = %+v", cell)
	}
	if cell := c.CellForMonth(months.April); cell != nil {
		t.Errorf("expected nil for a missing month, got %+v", cell)
	}
}
