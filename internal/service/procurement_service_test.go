package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/bitfantasy/pcb-stock/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newProcurementService(db *gorm.DB) *ProcurementService {
	repos := repository.NewRepositories(db)
	return NewProcurementService(repos.Procurement, zap.NewNop())
}

func seedTrigger(t *testing.T, db *gorm.DB, componentID, status string) *entity.ProcurementTrigger {
	t.Helper()
	trigger := &entity.ProcurementTrigger{ComponentID: componentID, Status: status}
	if err := db.Create(trigger).Error; err != nil {
		t.Fatalf("Failed to seed trigger: %v", err)
	}
	return trigger
}

func TestProcurementList_FilterByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProcurementService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 5, 100)
	c2 := testutil.SeedComponent(t, db, "Capacitor", "C-1", 5, 100)
	seedTrigger(t, db, c1.ID, entity.TriggerStatusOpen)
	seedTrigger(t, db, c2.ID, entity.TriggerStatusResolved)

	open, err := svc.List(ctx, entity.TriggerStatusOpen)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 1 || open[0].PartNumber != "R-1" {
		t.Errorf("unexpected open triggers: %+v", open)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d triggers, want 2", len(all))
	}
}

func TestProcurementResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProcurementService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 5, 100)
	trigger := seedTrigger(t, db, c1.ID, entity.TriggerStatusOpen)

	if err := svc.Resolve(ctx, trigger.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var got entity.ProcurementTrigger
	db.First(&got, "id = ?", trigger.ID)
	if got.Status != entity.TriggerStatusResolved {
		t.Errorf("status = %q, want resolved", got.Status)
	}

	err := svc.Resolve(ctx, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrTriggerNotFound) {
		t.Errorf("err = %v, want ErrTriggerNotFound", err)
	}
}

func TestProcurementPurgeResolved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProcurementService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 5, 100)
	seedTrigger(t, db, c1.ID, entity.TriggerStatusOpen)
	seedTrigger(t, db, c1.ID, entity.TriggerStatusResolved)
	seedTrigger(t, db, c1.ID, entity.TriggerStatusResolved)

	count, err := svc.PurgeResolved(ctx)
	if err != nil {
		t.Fatalf("PurgeResolved: %v", err)
	}
	if count != 2 {
		t.Errorf("purged %d, want 2", count)
	}

	var remaining int64
	db.Model(&entity.ProcurementTrigger{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1 open trigger", remaining)
	}
}
