package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/repository"
)

// Query asks whether one contiguous slot of DurationMin minutes exists at the
// salon, starting at Start. PreferredStaffID nil means any free staff member.
type Query struct {
	SalonID          string
	Start            time.Time
	DurationMin      int
	PreferredStaffID *string
}

type Result struct {
	Available bool
	StaffID   string
	Reason    string
}

// Checker is the slot-allocation decision point the order workflow depends on.
// Check must be called with the transaction-bound store so the decision and the
// booking inserts that follow it commit or abort together.
type Checker interface {
	Check(ctx context.Context, s repository.Store, q Query) (Result, error)
}

// ScheduleChecker decides availability from staff working windows and existing
// pending/upcoming bookings. It locks the candidate staff row first, so two
// transactions racing for the same staff member serialize before either sees
// the overlap query result.
type ScheduleChecker struct{}

func NewScheduleChecker() *ScheduleChecker { return &ScheduleChecker{} }

func (c *ScheduleChecker) Check(ctx context.Context, s repository.Store, q Query) (Result, error) {
	if q.DurationMin <= 0 {
		return Result{Reason: "nothing to schedule"}, nil
	}
	end := q.Start.Add(time.Duration(q.DurationMin) * time.Minute)

	if q.PreferredStaffID != nil {
		st, err := s.StaffForUpdate(ctx, *q.PreferredStaffID)
		if errors.Is(err, domain.ErrStaffNotFound) {
			return Result{Reason: "selected professional no longer exists"}, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("load staff: %w", err)
		}
		if st.SalonID != q.SalonID || !st.IsActive {
			return Result{Reason: "selected professional is not available at this salon"}, nil
		}
		return c.tryStaff(ctx, s, st, q.Start, end)
	}

	staff, err := s.ActiveStaffBySalon(ctx, q.SalonID)
	if err != nil {
		return Result{}, fmt.Errorf("list staff: %w", err)
	}
	for i := range staff {
		st := staff[i]
		if !withinWorkingHours(&st, q.Start, end) {
			continue
		}
		// Re-read under lock before trusting the overlap check.
		locked, err := s.StaffForUpdate(ctx, st.ID)
		if err != nil {
			return Result{}, fmt.Errorf("lock staff: %w", err)
		}
		res, err := c.tryStaff(ctx, s, locked, q.Start, end)
		if err != nil {
			return Result{}, err
		}
		if res.Available {
			return res, nil
		}
	}
	return Result{Reason: "no professional is free for the requested slot"}, nil
}

func (c *ScheduleChecker) tryStaff(ctx context.Context, s repository.Store, st *domain.Staff, start, end time.Time) (Result, error) {
	if !withinWorkingHours(st, start, end) {
		return Result{Reason: "requested time is outside working hours"}, nil
	}
	busy, err := s.HasOverlappingBookings(ctx, st.ID, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("overlap check: %w", err)
	}
	if busy {
		return Result{Reason: "the professional is already booked for this time"}, nil
	}
	return Result{Available: true, StaffID: st.ID}, nil
}

func withinWorkingHours(st *domain.Staff, start, end time.Time) bool {
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + int(end.Sub(start).Minutes())
	return startMin >= st.WorkStartMin && endMin <= st.WorkEndMin
}
