package usecase

import (
	"context"
	"fmt"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/port"
)

// GetProvisioningReportUseCase serves stored provisioning snapshots to
// finance and regulatory readers.
type GetProvisioningReportUseCase struct {
	provRepo port.ProvisioningRepository
}

// NewGetProvisioningReportUseCase wires dependencies.
func NewGetProvisioningReportUseCase(provRepo port.ProvisioningRepository) *GetProvisioningReportUseCase {
	return &GetProvisioningReportUseCase{provRepo: provRepo}
}

// Execute returns the report for the requested as-of date, or the latest one
// when the date is zero.
func (uc *GetProvisioningReportUseCase) Execute(
	ctx context.Context,
	req dto.GetProvisioningReportRequest,
) (dto.ProvisioningReportResponse, error) {
	if req.AsOfDate.IsZero() {
		report, err := uc.provRepo.FindLatest(ctx)
		if err != nil {
			return dto.ProvisioningReportResponse{}, fmt.Errorf("find latest report: %w", err)
		}
		return toReportResponse(report), nil
	}

	report, err := uc.provRepo.FindByAsOfDate(ctx, req.AsOfDate.UTC())
	if err != nil {
		return dto.ProvisioningReportResponse{}, fmt.Errorf("find report: %w", err)
	}
	return toReportResponse(report), nil
}
