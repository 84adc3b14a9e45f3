package tracking

import (
	"context"
	"encoding/json"

	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

// Event types appended to the ledger, one per successful mutation.
const (
	EventLotCreated             = "lot.created"
	EventAnalysisStarted        = "lot.analysis_started"
	EventReportRegistered       = "lot.report_registered"
	EventDistributionRegistered = "lot.distribution_registered"
	EventLotBlocked             = "lot.blocked"
)

// Payloads carry enough for observers to follow the new state without
// re-querying the ledger.

type LotCreatedPayload struct {
	LotID        uint64 `json:"lot_id"`
	ExternalCode string `json:"external_code"`
}

type AnalysisStartedPayload struct {
	LotID uint64 `json:"lot_id"`
}

type ReportRegisteredPayload struct {
	LotID          uint64 `json:"lot_id"`
	Approved       bool   `json:"approved"`
	MethanolPPM    int64  `json:"methanol_ppm"`
	ResultingState string `json:"resulting_state"`
}

type DistributionRegisteredPayload struct {
	LotID       uint64 `json:"lot_id"`
	Destination string `json:"destination"`
}

type LotBlockedPayload struct {
	LotID  uint64 `json:"lot_id"`
	Reason string `json:"reason"`
}

// appendEvent writes the event row inside the caller's transaction so the
// mutation and its notification commit together.
func (s *Service) appendEvent(ctx context.Context, lotID uint64, eventType string, payload any) (ports.LotEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.LotEvent{}, errs.Wrap(err, "encode event payload")
	}
	event, err := s.repo.AppendEvent(ctx, ports.LotEventCreate{
		LotID:      lotID,
		Type:       eventType,
		Payload:    string(body),
		RecordedAt: nowUTCString(),
	})
	if err != nil {
		return ports.LotEvent{}, errs.Wrap(err, "append event")
	}
	return event, nil
}

func (s *Service) ListLotEvents(ctx context.Context, lotID uint64) ([]ports.LotEvent, error) {
	if err := requireContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListLotEvents(ctx, lotID)
}

func (s *Service) ListEventsAfter(ctx context.Context, afterEventID uint64, limit int) ([]ports.LotEvent, error) {
	if err := requireContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListEventsAfter(ctx, afterEventID, limit)
}
