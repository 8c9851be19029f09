package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/repository"
	"github.com/bitfantasy/pcb-stock/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newProductionService(db *gorm.DB) *ProductionService {
	repos := repository.NewRepositories(db)
	return NewProductionService(db, repos.PCB, repos.Production, nil, zap.NewNop())
}

func TestRecordProduction_DeductsStockAndWritesHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)
	ctx := context.Background()

	r1 := testutil.SeedComponent(t, db, "Resistor 10K", "R-10K", 100, 0)
	c1 := testutil.SeedComponent(t, db, "Capacitor 100nF", "C-100N", 40, 150)
	pcb := testutil.SeedPCB(t, db, "MainBoard")
	testutil.SeedBOMLine(t, db, pcb.ID, r1.ID, 2)
	testutil.SeedBOMLine(t, db, pcb.ID, c1.ID, 10)

	result, err := svc.RecordProduction(ctx, RecordProductionRequest{
		PCBID:            pcb.ID,
		QuantityProduced: 3,
	})
	if err != nil {
		t.Fatalf("RecordProduction: %v", err)
	}

	if result.ProductionLog == nil || result.ProductionLog.QuantityProduced != 3 {
		t.Fatalf("unexpected production log: %+v", result.ProductionLog)
	}
	if len(result.Consumptions) != 2 {
		t.Fatalf("got %d consumption rows, want 2", len(result.Consumptions))
	}
	if result.PCBName != "MainBoard" {
		t.Errorf("PCBName = %q, want MainBoard", result.PCBName)
	}
	if len(result.StockDeductions) != 2 {
		t.Fatalf("got %d stock deductions, want 2", len(result.StockDeductions))
	}
	for _, ded := range result.StockDeductions {
		switch ded.ComponentID {
		case r1.ID:
			if ded.QuantityToDeduct != 6 || ded.CurrentStock != 100 || ded.NewStock != 94 {
				t.Errorf("unexpected R1 deduction: %+v", ded)
			}
		case c1.ID:
			if ded.QuantityToDeduct != 30 || ded.CurrentStock != 40 || ded.NewStock != 10 {
				t.Errorf("unexpected C1 deduction: %+v", ded)
			}
		default:
			t.Errorf("deduction for unknown component: %+v", ded)
		}
	}

	var gotR1, gotC1 entity.Component
	db.First(&gotR1, "id = ?", r1.ID)
	db.First(&gotC1, "id = ?", c1.ID)
	if gotR1.CurrentStock != 94 {
		t.Errorf("R1 stock = %v, want 94", gotR1.CurrentStock)
	}
	if gotC1.CurrentStock != 10 {
		t.Errorf("C1 stock = %v, want 10", gotC1.CurrentStock)
	}

	// C1: 新库存10 < 0.2*150=30，触发采购；R1 月需求为0，永不触发
	if len(result.TriggersCreated) != 1 || result.TriggersCreated[0].ComponentID != c1.ID {
		t.Fatalf("unexpected triggers: %+v", result.TriggersCreated)
	}

	var triggerCount int64
	db.Model(&entity.ProcurementTrigger{}).Count(&triggerCount)
	if triggerCount != 1 {
		t.Errorf("trigger count = %d, want 1", triggerCount)
	}
}

func TestRecordProduction_NoDuplicateOpenTrigger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Capacitor", "C-1", 40, 150)
	pcb := testutil.SeedPCB(t, db, "Board")
	testutil.SeedBOMLine(t, db, pcb.ID, c1.ID, 10)

	if _, err := svc.RecordProduction(ctx, RecordProductionRequest{PCBID: pcb.ID, QuantityProduced: 3}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := svc.RecordProduction(ctx, RecordProductionRequest{PCBID: pcb.ID, QuantityProduced: 1})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(result.TriggersCreated) != 0 {
		t.Errorf("second run created %d triggers, want 0 (open trigger exists)", len(result.TriggersCreated))
	}

	var triggerCount int64
	db.Model(&entity.ProcurementTrigger{}).Where("component_id = ? AND status = ?", c1.ID, entity.TriggerStatusOpen).Count(&triggerCount)
	if triggerCount != 1 {
		t.Errorf("open trigger count = %d, want 1", triggerCount)
	}

	// 触发器处理完后再跌破阈值可以重新触发
	db.Model(&entity.ProcurementTrigger{}).Where("component_id = ?", c1.ID).
		Update("status", entity.TriggerStatusResolved)
	result, err = svc.RecordProduction(ctx, RecordProductionRequest{PCBID: pcb.ID, QuantityProduced: 1})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if len(result.TriggersCreated) != 1 {
		t.Errorf("third run created %d triggers, want 1 after resolve", len(result.TriggersCreated))
	}
}

func TestRecordProduction_InsufficientStockRollsBackEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)
	ctx := context.Background()

	r1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 1000, 0)
	c1 := testutil.SeedComponent(t, db, "Capacitor", "C-1", 40, 150)
	pcb := testutil.SeedPCB(t, db, "Board")
	testutil.SeedBOMLine(t, db, pcb.ID, r1.ID, 2)
	testutil.SeedBOMLine(t, db, pcb.ID, c1.ID, 10)

	_, err := svc.RecordProduction(ctx, RecordProductionRequest{PCBID: pcb.ID, QuantityProduced: 100})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if len(insufficient.Shortages) != 1 {
		t.Fatalf("got %d shortages, want 1: %+v", len(insufficient.Shortages), insufficient.Shortages)
	}
	sh := insufficient.Shortages[0]
	if sh.PartNumber != "C-1" || sh.Required != 1000 || sh.Available != 40 || sh.Shortage != 960 {
		t.Errorf("unexpected shortage detail: %+v", sh)
	}

	// 整单回滚：库存原样，无生产记录、无流水、无触发器
	var gotR1 entity.Component
	db.First(&gotR1, "id = ?", r1.ID)
	if gotR1.CurrentStock != 1000 {
		t.Errorf("R1 stock = %v, want untouched 1000", gotR1.CurrentStock)
	}
	var logs, consumption, triggers int64
	db.Model(&entity.ProductionLog{}).Count(&logs)
	db.Model(&entity.ConsumptionHistory{}).Count(&consumption)
	db.Model(&entity.ProcurementTrigger{}).Count(&triggers)
	if logs != 0 || consumption != 0 || triggers != 0 {
		t.Errorf("rollback incomplete: logs=%d consumption=%d triggers=%d", logs, consumption, triggers)
	}
}

func TestRecordProduction_EmptyBOM(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)

	pcb := testutil.SeedPCB(t, db, "BareBoard")
	_, err := svc.RecordProduction(context.Background(), RecordProductionRequest{PCBID: pcb.ID, QuantityProduced: 1})
	if !errors.Is(err, ErrEmptyBOM) {
		t.Errorf("err = %v, want ErrEmptyBOM", err)
	}
}

func TestRecordProduction_PCBNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)

	_, err := svc.RecordProduction(context.Background(), RecordProductionRequest{
		PCBID:            "00000000-0000-0000-0000-000000000000",
		QuantityProduced: 1,
	})
	if !errors.Is(err, ErrPCBNotFound) {
		t.Errorf("err = %v, want ErrPCBNotFound", err)
	}
}

func TestRecordProduction_OKScrapValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 100, 0)
	pcb := testutil.SeedPCB(t, db, "Board")
	testutil.SeedBOMLine(t, db, pcb.ID, c1.ID, 1)

	ok, scrap := 3, 1
	_, err := svc.RecordProduction(ctx, RecordProductionRequest{
		PCBID: pcb.ID, QuantityProduced: 5, QuantityOK: &ok, QuantityScrap: &scrap,
	})
	if !errors.Is(err, ErrInvalidOKScrap) {
		t.Fatalf("err = %v, want ErrInvalidOKScrap", err)
	}

	ok, scrap = 4, 1
	result, err := svc.RecordProduction(ctx, RecordProductionRequest{
		PCBID: pcb.ID, QuantityProduced: 5, QuantityOK: &ok, QuantityScrap: &scrap,
	})
	if err != nil {
		t.Fatalf("RecordProduction: %v", err)
	}
	if result.ProductionLog.QuantityOK == nil || *result.ProductionLog.QuantityOK != 4 {
		t.Errorf("QuantityOK = %v, want 4", result.ProductionLog.QuantityOK)
	}
	if result.ProductionLog.QuantityScrap == nil || *result.ProductionLog.QuantityScrap != 1 {
		t.Errorf("QuantityScrap = %v, want 1", result.ProductionLog.QuantityScrap)
	}
}

func TestRecordProduction_ConcurrentRunsNeverOversell(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)

	// 库存只够一次10片的生产
	c1 := testutil.SeedComponent(t, db, "Capacitor", "C-1", 10, 0)
	pcb := testutil.SeedPCB(t, db, "Board")
	testutil.SeedBOMLine(t, db, pcb.ID, c1.ID, 1)

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordProduction(context.Background(), RecordProductionRequest{
				PCBID: pcb.ID, QuantityProduced: 10,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d runs succeeded, want exactly 1", succeeded)
	}

	var got entity.Component
	db.First(&got, "id = ?", c1.ID)
	if got.CurrentStock != 0 {
		t.Errorf("final stock = %v, want 0", got.CurrentStock)
	}
	var logs int64
	db.Model(&entity.ProductionLog{}).Count(&logs)
	if logs != 1 {
		t.Errorf("production log count = %d, want 1", logs)
	}
}

func TestListProductionLogs_FilterByPCB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProductionService(db)
	ctx := context.Background()

	c1 := testutil.SeedComponent(t, db, "Resistor", "R-1", 1000, 0)
	pcbA := testutil.SeedPCB(t, db, "BoardA")
	pcbB := testutil.SeedPCB(t, db, "BoardB")
	testutil.SeedBOMLine(t, db, pcbA.ID, c1.ID, 1)
	testutil.SeedBOMLine(t, db, pcbB.ID, c1.ID, 1)

	for _, pcbID := range []string{pcbA.ID, pcbA.ID, pcbB.ID} {
		if _, err := svc.RecordProduction(ctx, RecordProductionRequest{PCBID: pcbID, QuantityProduced: 1}); err != nil {
			t.Fatalf("RecordProduction: %v", err)
		}
	}

	logs, total, err := svc.ListProductionLogs(ctx, repository.ProductionListParams{PCBID: pcbA.ID})
	if err != nil {
		t.Fatalf("ListProductionLogs: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("total = %d len = %d, want 2/2", total, len(logs))
	}
	for _, log := range logs {
		if log.PCBName != "BoardA" {
			t.Errorf("unexpected pcb in filtered list: %+v", log)
		}
	}
}
