package usecase

import (
	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/service"
)

func toLoanResponse(loan model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:              loan.ID(),
		ApplicantID:     loan.ApplicantID(),
		LoanType:        loan.LoanType().String(),
		Purpose:         loan.Purpose(),
		RequestedAmount: loan.RequestedAmount().Amount(),
		ApprovedAmount:  loan.ApprovedAmount().Amount(),
		Currency:        loan.RequestedAmount().Currency().Code(),
		InterestRateBps: loan.InterestRateBps(),
		TermMonths:      loan.TermMonths(),
		ProcessingFee:   loan.ProcessingFee().Amount(),
		Status:          loan.Status().String(),
		ScoreAtApproval: loan.ScoreAtApproval(),
		AutoApproved:    loan.AutoApproved(),
		Outstanding:     loan.Outstanding().Amount(),
		Schedule:        toScheduleResponse(loan.Schedule()),
		CreatedAt:       loan.CreatedAt(),
		UpdatedAt:       loan.UpdatedAt(),
	}
}

func toScheduleResponse(entries []model.ScheduleEntry) []dto.ScheduleEntryResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ScheduleEntryResponse{
			Sequence:  e.Sequence,
			DueDate:   e.DueDate,
			Principal: e.Principal,
			Interest:  e.Interest,
			Total:     e.Total,
			Status:    e.Status.String(),
			PaidAt:    e.PaidAt,
		})
	}
	return out
}

func toReportResponse(r model.ProvisioningReport) dto.ProvisioningReportResponse {
	buckets := make([]dto.BucketProvisionResponse, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets = append(buckets, dto.BucketProvisionResponse{
			Bucket:            b.Bucket.String(),
			LoanCount:         b.LoanCount,
			Outstanding:       b.Outstanding,
			ProvisionRate:     b.ProvisionRate,
			RequiredProvision: b.RequiredProvision,
		})
	}
	return dto.ProvisioningReportResponse{
		ID:               r.ID,
		AsOfDate:         r.AsOfDate,
		Currency:         r.Currency,
		Buckets:          buckets,
		TotalOutstanding: r.TotalOutstanding,
		TotalProvision:   r.TotalProvision,
		CoverageRatio:    r.CoverageRatio,
		ComputedAt:       r.ComputedAt,
	}
}

func toActionResponse(a service.CollectionAction) dto.CollectionActionResponse {
	return dto.CollectionActionResponse{
		LoanID:        a.LoanID,
		CaseID:        a.CaseID,
		Stage:         a.Stage.String(),
		Channel:       string(a.Channel),
		Intensity:     string(a.Intensity),
		DaysPastDue:   a.DaysPastDue,
		Outstanding:   a.Outstanding.Amount(),
		LastContactAt: a.LastContactAt,
	}
}
