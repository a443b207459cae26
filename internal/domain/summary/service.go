// Package summary is the read-side projection behind the dashboard. Every
// counter is recomputed from a fresh scan of the underlying aggregates on
// each call; nothing here caches or stores counts.
package summary

import (
	"context"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/domain/referral"
	"github.com/caretrack/caretrack/internal/domain/task"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

type TaskSource interface {
	ScanVisible(ctx context.Context, departmentIDs []uuid.UUID) ([]*task.Detail, error)
}

type ReferralSource interface {
	ScanVisible(ctx context.Context, departmentIDs []uuid.UUID) ([]*referral.Referral, error)
}

// CountFunc supplies one dashboard headcount.
type CountFunc func(ctx context.Context) (int, error)

// Counters binds the dashboard headcounts to their owning services.
type Counters struct {
	Patients    CountFunc
	Staff       CountFunc
	Departments CountFunc
	Specialties CountFunc
}

type Service struct {
	tasks     TaskSource
	referrals ReferralSource
	counters  Counters
}

func NewService(tasks TaskSource, referrals ReferralSource, counters Counters) *Service {
	return &Service{tasks: tasks, referrals: referrals, counters: counters}
}

type TaskSummary struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
}

type ReferralSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}

type OutcomeSummary struct {
	Seen      int `json:"seen"`
	Attempted int `json:"attempted"`
	Declined  int `json:"declined"`
	Unseen    int `json:"unseen"`
	Handover  int `json:"handover"`
}

type Dashboard struct {
	Patients    int             `json:"patients"`
	Staff       int             `json:"staff"`
	Departments int             `json:"departments"`
	Specialties int             `json:"specialties"`
	Tasks       TaskSummary     `json:"tasks"`
	Referrals   ReferralSummary `json:"referrals"`
	Outcomes    OutcomeSummary  `json:"outcomes"`
}

// scope returns the department scope to scan under and whether the caller
// can see anything at all. Admins scan unrestricted.
func scope(caller auth.Caller) ([]uuid.UUID, bool) {
	if caller.IsAdmin() {
		return nil, true
	}
	if len(caller.DepartmentIDs) == 0 {
		return nil, false
	}
	return caller.DepartmentIDs, true
}

func (s *Service) TaskSummary(ctx context.Context, caller auth.Caller) (*TaskSummary, error) {
	deptIDs, visible := scope(caller)
	if !visible {
		return &TaskSummary{}, nil
	}

	details, err := s.tasks.ScanVisible(ctx, deptIDs)
	if err != nil {
		return nil, err
	}

	sum := &TaskSummary{Total: len(details)}
	for _, d := range details {
		switch d.Status {
		case task.StatusAssigned:
			sum.Assigned++
		case task.StatusInProgress:
			sum.InProgress++
		case task.StatusCompleted:
			sum.Completed++
		case task.StatusOverdue:
			sum.Overdue++
		}
		switch d.Priority {
		case task.PriorityHigh:
			sum.High++
		case task.PriorityMedium:
			sum.Medium++
		case task.PriorityLow:
			sum.Low++
		}
	}
	return sum, nil
}

func (s *Service) ReferralSummary(ctx context.Context, caller auth.Caller) (*ReferralSummary, error) {
	deptIDs, visible := scope(caller)
	if !visible {
		return &ReferralSummary{}, nil
	}

	refs, err := s.referrals.ScanVisible(ctx, deptIDs)
	if err != nil {
		return nil, err
	}

	inScope := func(id uuid.UUID) bool {
		if len(deptIDs) == 0 {
			return true
		}
		for _, d := range deptIDs {
			if d == id {
				return true
			}
		}
		return false
	}

	sum := &ReferralSummary{Total: len(refs)}
	for _, r := range refs {
		switch r.Status {
		case referral.StatusPending:
			sum.Pending++
		case referral.StatusAccepted:
			sum.Accepted++
		case referral.StatusRejected:
			sum.Rejected++
		}
		if inScope(r.ToDepartmentID) {
			sum.Incoming++
		}
		if inScope(r.FromDepartmentID) {
			sum.Outgoing++
		}
	}
	return sum, nil
}

func (s *Service) OutcomeSummary(ctx context.Context, caller auth.Caller) (*OutcomeSummary, error) {
	deptIDs, visible := scope(caller)
	if !visible {
		return &OutcomeSummary{}, nil
	}

	details, err := s.tasks.ScanVisible(ctx, deptIDs)
	if err != nil {
		return nil, err
	}

	sum := &OutcomeSummary{}
	for _, d := range details {
		for _, iv := range d.Interventions {
			switch iv.OutcomeStatus {
			case task.OutcomeSeen:
				sum.Seen++
			case task.OutcomeAttempted:
				sum.Attempted++
			case task.OutcomeDeclined:
				sum.Declined++
			case task.OutcomeUnseen:
				sum.Unseen++
			case task.OutcomeHandover:
				sum.Handover++
			}
		}
	}
	return sum, nil
}

// Dashboard unions the headcounts with the three summaries. Every field is
// present and zero-valued when empty.
func (s *Service) Dashboard(ctx context.Context, caller auth.Caller) (*Dashboard, error) {
	d := &Dashboard{}

	for _, c := range []struct {
		fn   CountFunc
		dest *int
	}{
		{s.counters.Patients, &d.Patients},
		{s.counters.Staff, &d.Staff},
		{s.counters.Departments, &d.Departments},
		{s.counters.Specialties, &d.Specialties},
	} {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	tasks, err := s.TaskSummary(ctx, caller)
	if err != nil {
		return nil, err
	}
	refs, err := s.ReferralSummary(ctx, caller)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.OutcomeSummary(ctx, caller)
	if err != nil {
		return nil, err
	}

	d.Tasks = *tasks
	d.Referrals = *refs
	d.Outcomes = *outcomes
	return d, nil
}
