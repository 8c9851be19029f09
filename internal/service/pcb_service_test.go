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

func newPCBService(db *gorm.DB) *PCBService {
	repos := repository.NewRepositories(db)
	return NewPCBService(repos.PCB, repos.Component, zap.NewNop())
}

func TestPCBLinkComponent_UpsertsQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newPCBService(db)
	ctx := context.Background()

	comp := testutil.SeedComponent(t, db, "Resistor", "R-1", 10, 0)
	pcb := testutil.SeedPCB(t, db, "Board")

	if err := svc.LinkComponent(ctx, pcb.ID, LinkComponentRequest{ComponentID: comp.ID, QuantityPerPCB: 2}); err != nil {
		t.Fatalf("LinkComponent: %v", err)
	}
	// 再次链接同一元器件只更新数量，不产生第二行
	if err := svc.LinkComponent(ctx, pcb.ID, LinkComponentRequest{ComponentID: comp.ID, QuantityPerPCB: 5}); err != nil {
		t.Fatalf("LinkComponent again: %v", err)
	}

	lines, err := svc.BOM(ctx, pcb.ID)
	if err != nil {
		t.Fatalf("BOM: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d bom lines, want 1", len(lines))
	}
	if lines[0].QuantityPerPCB != 5 {
		t.Errorf("QuantityPerPCB = %d, want 5", lines[0].QuantityPerPCB)
	}
}

func TestPCBLinkComponent_UnknownComponent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newPCBService(db)

	pcb := testutil.SeedPCB(t, db, "Board")
	err := svc.LinkComponent(context.Background(), pcb.ID, LinkComponentRequest{
		ComponentID:    "00000000-0000-0000-0000-000000000000",
		QuantityPerPCB: 1,
	})
	if !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("err = %v, want ErrComponentNotFound", err)
	}
}

func TestPCBUnlinkComponent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newPCBService(db)
	ctx := context.Background()

	comp := testutil.SeedComponent(t, db, "Resistor", "R-1", 10, 0)
	pcb := testutil.SeedPCB(t, db, "Board")
	testutil.SeedBOMLine(t, db, pcb.ID, comp.ID, 2)

	if err := svc.UnlinkComponent(ctx, pcb.ID, comp.ID); err != nil {
		t.Fatalf("UnlinkComponent: %v", err)
	}

	lines, err := svc.BOM(ctx, pcb.ID)
	if err != nil {
		t.Fatalf("BOM: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("got %d bom lines after unlink, want 0", len(lines))
	}
}
