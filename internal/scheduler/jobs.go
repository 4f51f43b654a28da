package scheduler

import (
	"context"

	"tcw1/internal/logger"
	"tcw1/internal/services/membership"
)

type Renewer interface {
	ProcessAutoRenewal(ctx context.Context) (*membership.RenewalSummary, error)
}

type ListingExpirer interface {
	ExpireOldListings(ctx context.Context) (int64, error)
}

type ApprovalExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Specs are the cron expressions of the maintenance jobs.
type Specs struct {
	Renewal        string
	ListingExpiry  string
	ApprovalExpiry string
}

// Maintenance builds the renewal and expiry jobs.
func Maintenance(specs Specs, renewer Renewer, listings ListingExpirer, approvals ApprovalExpirer) []Job {
	return []Job{
		{
			Name: JobMembershipRenewal,
			Spec: specs.Renewal,
			Run: func(ctx context.Context) error {
				summary, err := renewer.ProcessAutoRenewal(ctx)
				if err != nil {
					return err
				}
				logger.Log.Infow("Renewal run", "renewed", summary.Renewed, "suspended", summary.Suspended)
				return nil
			},
		},
		{
			Name: JobListingExpiry,
			Spec: specs.ListingExpiry,
			Run: func(ctx context.Context) error {
				_, err := listings.ExpireOldListings(ctx)
				return err
			},
		},
		{
			Name: JobApprovalExpiry,
			Spec: specs.ApprovalExpiry,
			Run: func(ctx context.Context) error {
				_, err := approvals.ExpireStale(ctx)
				return err
			},
		},
	}
}

// Register adds every job to s.
func Register(s *Scheduler, jobs []Job) error {
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}
