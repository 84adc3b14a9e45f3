package tracking

import (
	"context"

	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

func (s *Service) GetLot(ctx context.Context, lotID uint64) (ports.Lot, error) {
	if err := requireContext(ctx); err != nil {
		return ports.Lot{}, err
	}
	return s.repo.GetLot(ctx, lotID)
}

// GetLabReport returns the lot's analysis record; Performed=false means no
// report has been registered yet.
func (s *Service) GetLabReport(ctx context.Context, lotID uint64) (ports.LabReport, error) {
	if err := requireContext(ctx); err != nil {
		return ports.LabReport{}, err
	}
	if _, err := s.repo.GetLot(ctx, lotID); err != nil {
		return ports.LabReport{}, err
	}
	return s.repo.GetLabReport(ctx, lotID)
}

func (s *Service) ListLots(ctx context.Context, filter ports.LotFilter) ([]ports.Lot, error) {
	if err := requireContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListLots(ctx, filter)
}

// LotDetail bundles the lot with its report for reporting surfaces.
type LotDetail struct {
	Lot    ports.Lot
	Report ports.LabReport
}

func (s *Service) GetLotDetail(ctx context.Context, lotID uint64) (LotDetail, error) {
	if err := requireContext(ctx); err != nil {
		return LotDetail{}, err
	}

	lot, err := s.repo.GetLot(ctx, lotID)
	if err != nil {
		return LotDetail{}, err
	}
	report, err := s.repo.GetLabReport(ctx, lotID)
	if err != nil {
		return LotDetail{}, err
	}
	return LotDetail{Lot: lot, Report: report}, nil
}
