package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/bitfantasy/pcb-stock/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newComponentService(db *gorm.DB) *ComponentService {
	repos := repository.NewRepositories(db)
	return NewComponentService(repos.Component, repos.Production, zap.NewNop())
}

func TestComponentCreate_DuplicatePartNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newComponentService(db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateComponentRequest{Name: "Resistor", PartNumber: "R-1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateComponentRequest{Name: "Other", PartNumber: "R-1"})
	if !errors.Is(err, ErrPartNumberTaken) {
		t.Errorf("err = %v, want ErrPartNumberTaken", err)
	}
}

func TestComponentUpdate_PartialPatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newComponentService(db)
	ctx := context.Background()

	comp := testutil.SeedComponent(t, db, "Resistor", "R-1", 100, 50)

	// 只改库存，其它字段保持原值
	stock := 75.0
	updated, err := svc.Update(ctx, comp.ID, UpdateComponentRequest{CurrentStock: &stock})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CurrentStock != 75 {
		t.Errorf("CurrentStock = %v, want 75", updated.CurrentStock)
	}
	if updated.Name != "Resistor" || updated.MonthlyRequiredQuantity != 50 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestComponentUpdate_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newComponentService(db)

	name := "x"
	_, err := svc.Update(context.Background(), "00000000-0000-0000-0000-000000000000", UpdateComponentRequest{Name: &name})
	if !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("err = %v, want ErrComponentNotFound", err)
	}
}

func TestComponentList_KeywordSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newComponentService(db)
	ctx := context.Background()

	testutil.SeedComponent(t, db, "Resistor 10K", "R-10K", 0, 0)
	testutil.SeedComponent(t, db, "Resistor 22K", "R-22K", 0, 0)
	testutil.SeedComponent(t, db, "Capacitor", "C-1", 0, 0)

	items, total, err := svc.List(ctx, repository.ComponentListParams{Keyword: "resistor"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("total = %d len = %d, want 2/2", total, len(items))
	}

	items, total, err = svc.List(ctx, repository.ComponentListParams{Keyword: "C-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || items[0].PartNumber != "C-1" {
		t.Errorf("part number search failed: total=%d items=%+v", total, items)
	}
}
