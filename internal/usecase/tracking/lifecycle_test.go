package tracking

import (
	"context"
	"errors"
	"testing"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

func TestCreateLotAssignsIncreasingIDs(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	var last uint64
	for i := 0; i < 3; i++ {
		created, err := svc.CreateLot(ctx, CreateLotInput{
			ExternalCode: "LOTE-SEQ",
			Description:  "Cachaca Artesanal 700ml",
			Caller:       testManufacturer,
		})
		if err != nil {
			t.Fatalf("CreateLot() error = %v", err)
		}
		if created.LotID <= last {
			t.Fatalf("CreateLot() id = %d, previous %d", created.LotID, last)
		}
		last = created.LotID
	}

	lot, err := svc.GetLot(ctx, last)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateCreated.String() {
		t.Fatalf("new lot state = %s", lot.State)
	}
}

func TestCreateLotUnauthorized(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateLot(ctx, CreateLotInput{
		ExternalCode: "LOTE-X",
		Description:  "Gin 750ml",
		Caller:       testDistributor,
	})
	if !errors.Is(err, domainlot.ErrUnauthorized) {
		t.Fatalf("CreateLot() error = %v, want ErrUnauthorized", err)
	}

	// Nothing was persisted.
	lots, err := svc.ListLots(ctx, ports.LotFilter{})
	if err != nil {
		t.Fatalf("ListLots() error = %v", err)
	}
	if len(lots) != 0 {
		t.Fatalf("ListLots() len = %d, want 0", len(lots))
	}
}

func TestGetLotNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetLot(context.Background(), 99)
	if !errors.Is(err, domainlot.ErrNotFound) {
		t.Fatalf("GetLot() error = %v, want ErrNotFound", err)
	}
}

func TestSafetyOverrideBlocksDespiteApproval(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-1")

	state, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 105,
		Approved:    true,
		ReportHash:  "hash-105",
		Caller:      testLaboratory,
	})
	if err != nil {
		t.Fatalf("RegisterLabReport() error = %v", err)
	}
	if state != domainlot.StateBlocked {
		t.Fatalf("resulting state = %s, want BLOCKED", state)
	}

	lot, err := svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateBlocked.String() {
		t.Fatalf("lot state = %s, want BLOCKED", lot.State)
	}
	if lot.BlockReason == nil || *lot.BlockReason == "" {
		t.Fatalf("block reason is empty")
	}

	report, err := svc.GetLabReport(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLabReport() error = %v", err)
	}
	if !report.Performed || !report.Approved || report.MethanolPPM != 105 {
		t.Fatalf("report = %+v", report)
	}
}

func TestApprovedLotFlowsToDistribution(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-2")

	if err := svc.SendToAnalysis(ctx, SendToAnalysisInput{LotID: lotID, Caller: testLaboratory}); err != nil {
		t.Fatalf("SendToAnalysis() error = %v", err)
	}
	lot, err := svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateUnderAnalysis.String() {
		t.Fatalf("lot state = %s, want UNDER_ANALYSIS", lot.State)
	}

	state, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 40,
		Approved:    true,
		ReportHash:  "hash-40",
		Caller:      testLaboratory,
	})
	if err != nil {
		t.Fatalf("RegisterLabReport() error = %v", err)
	}
	if state != domainlot.StateApproved {
		t.Fatalf("resulting state = %s, want APPROVED", state)
	}

	if err := svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "Supermercado Sao Paulo - SP",
		Caller:      testDistributor,
	}); err != nil {
		t.Fatalf("RegisterDistribution() error = %v", err)
	}

	lot, err = svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateDistributed.String() {
		t.Fatalf("lot state = %s, want DISTRIBUTED", lot.State)
	}
	if lot.Destination == nil || *lot.Destination != "Supermercado Sao Paulo - SP" {
		t.Fatalf("destination = %v", lot.Destination)
	}
}

func TestLabRejectionWithinLimit(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-3")

	state, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 40,
		Approved:    false,
		ReportHash:  "hash-reject",
		Caller:      testLaboratory,
	})
	if err != nil {
		t.Fatalf("RegisterLabReport() error = %v", err)
	}
	if state != domainlot.StateRejected {
		t.Fatalf("resulting state = %s, want REJECTED", state)
	}

	// Rejected is terminal: no distribution, no inspector block.
	err = svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "X",
		Caller:      testDistributor,
	})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("RegisterDistribution() error = %v, want ErrInvalidState", err)
	}
	err = svc.BlockLot(ctx, BlockLotInput{LotID: lotID, Reason: "R", Caller: testInspector})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("BlockLot() error = %v, want ErrInvalidState", err)
	}
}

func TestRegisterReportGuards(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-4")

	if _, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: -1,
		Approved:    true,
		ReportHash:  "h",
		Caller:      testLaboratory,
	}); !errors.Is(err, domainlot.ErrInvalidInput) {
		t.Fatalf("negative ppm error = %v, want ErrInvalidInput", err)
	}

	if _, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 10,
		Approved:    true,
		ReportHash:  "h",
		Caller:      testManufacturer,
	}); !errors.Is(err, domainlot.ErrUnauthorized) {
		t.Fatalf("wrong role error = %v, want ErrUnauthorized", err)
	}

	if _, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 10,
		Approved:    true,
		ReportHash:  "h",
		Caller:      testLaboratory,
	}); err != nil {
		t.Fatalf("RegisterLabReport() error = %v", err)
	}

	// Second report on the same lot.
	if _, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 20,
		Approved:    true,
		ReportHash:  "h2",
		Caller:      testLaboratory,
	}); !errors.Is(err, domainlot.ErrAlreadyAnalyzed) {
		t.Fatalf("second report error = %v, want ErrAlreadyAnalyzed", err)
	}
}

func TestBlockedLotCannotBeDistributed(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-5")

	if err := svc.BlockLot(ctx, BlockLotInput{LotID: lotID, Reason: "R", Caller: testInspector}); err != nil {
		t.Fatalf("BlockLot() error = %v", err)
	}

	lot, err := svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateBlocked.String() {
		t.Fatalf("lot state = %s, want BLOCKED", lot.State)
	}
	if lot.BlockReason == nil || *lot.BlockReason != "R" {
		t.Fatalf("block reason = %v, want R", lot.BlockReason)
	}

	err = svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "X",
		Caller:      testDistributor,
	})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("RegisterDistribution() error = %v, want ErrInvalidState", err)
	}

	// Blocked lots cannot be analyzed either.
	_, err = svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 10,
		Approved:    true,
		ReportHash:  "h",
		Caller:      testLaboratory,
	})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("RegisterLabReport() on blocked error = %v, want ErrInvalidState", err)
	}
}

func TestBlockLotTwiceReportsAlreadyBlocked(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-6")

	if err := svc.BlockLot(ctx, BlockLotInput{LotID: lotID, Reason: "first", Caller: testInspector}); err != nil {
		t.Fatalf("BlockLot() error = %v", err)
	}

	err := svc.BlockLot(ctx, BlockLotInput{LotID: lotID, Reason: "second", Caller: testInspector})
	if !errors.Is(err, domainlot.ErrAlreadyBlocked) {
		t.Fatalf("second BlockLot() error = %v, want ErrAlreadyBlocked", err)
	}

	// The original reason stays.
	lot, err := svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.BlockReason == nil || *lot.BlockReason != "first" {
		t.Fatalf("block reason = %v, want first", lot.BlockReason)
	}
}

func TestDistributionRequiresApprovedState(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-7")

	err := svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "X",
		Caller:      testDistributor,
	})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("RegisterDistribution(CREATED) error = %v, want ErrInvalidState", err)
	}

	// Unauthorized caller leaves state untouched.
	err = svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "X",
		Caller:      testManufacturer,
	})
	if !errors.Is(err, domainlot.ErrUnauthorized) {
		t.Fatalf("RegisterDistribution() error = %v, want ErrUnauthorized", err)
	}
	lot, err := svc.GetLot(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if lot.State != domainlot.StateCreated.String() {
		t.Fatalf("lot state = %s, want CREATED", lot.State)
	}
}

func TestEventStreamFollowsMutations(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-8")

	if _, err := svc.RegisterLabReport(ctx, RegisterReportInput{
		LotID:       lotID,
		MethanolPPM: 40,
		Approved:    true,
		ReportHash:  "h",
		Caller:      testLaboratory,
	}); err != nil {
		t.Fatalf("RegisterLabReport() error = %v", err)
	}
	if err := svc.RegisterDistribution(ctx, RegisterDistributionInput{
		LotID:       lotID,
		Destination: "X",
		Caller:      testDistributor,
	}); err != nil {
		t.Fatalf("RegisterDistribution() error = %v", err)
	}

	events, err := svc.ListLotEvents(ctx, lotID)
	if err != nil {
		t.Fatalf("ListLotEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ListLotEvents() len = %d, want 3", len(events))
	}
	wantTypes := []string{EventLotCreated, EventReportRegistered, EventDistributionRegistered}
	var lastID uint64
	for i, event := range events {
		if event.Type != wantTypes[i] {
			t.Fatalf("event[%d].Type = %s, want %s", i, event.Type, wantTypes[i])
		}
		if event.EventID <= lastID {
			t.Fatalf("event ids not increasing: %d after %d", event.EventID, lastID)
		}
		lastID = event.EventID
	}

	tail, err := svc.ListEventsAfter(ctx, events[0].EventID, 10)
	if err != nil {
		t.Fatalf("ListEventsAfter() error = %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("ListEventsAfter() len = %d, want 2", len(tail))
	}
}

func TestSendToAnalysisRequiresCreatedState(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-9")

	if err := svc.SendToAnalysis(ctx, SendToAnalysisInput{LotID: lotID, Caller: testLaboratory}); err != nil {
		t.Fatalf("SendToAnalysis() error = %v", err)
	}

	err := svc.SendToAnalysis(ctx, SendToAnalysisInput{LotID: lotID, Caller: testLaboratory})
	if !errors.Is(err, domainlot.ErrInvalidState) {
		t.Fatalf("second SendToAnalysis() error = %v, want ErrInvalidState", err)
	}

	err = svc.SendToAnalysis(ctx, SendToAnalysisInput{LotID: lotID, Caller: testManufacturer})
	if !errors.Is(err, domainlot.ErrUnauthorized) {
		t.Fatalf("SendToAnalysis() error = %v, want ErrUnauthorized", err)
	}
}

func TestGetLabReportDefaultWhenAbsent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	lotID := createTestLot(t, svc, "LOTE-10")

	report, err := svc.GetLabReport(ctx, lotID)
	if err != nil {
		t.Fatalf("GetLabReport() error = %v", err)
	}
	if report.Performed {
		t.Fatalf("report.Performed = true, want false")
	}
	if report.LotID != lotID {
		t.Fatalf("report.LotID = %d, want %d", report.LotID, lotID)
	}
}
