package service

import (
	"context"
	"fmt"
	"time"

	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/repository"
)

// DefaultPackageDurationMin applies when a package has no resolvable
// constituent services; packages stay bookable without itemized timing data.
const DefaultPackageDurationMin = 60

// SchedulableUnit is one quantity-expanded instance of a line item with its
// own price, duration and computed start time.
type SchedulableUnit struct {
	Name        string
	Price       float64
	DurationMin int
	StartAt     time.Time
}

// Quote is everything the order workflow needs from a cart: the resolved
// salon, totals, the immutable item snapshot and the back-to-back schedule.
type Quote struct {
	SalonID          string
	TotalAmount      float64
	TotalDurationMin int
	Items            []domain.OrderItem
	Units            []SchedulableUnit
}

// resolvedItem is the type-agnostic projection shared by services and
// packages, computed once so downstream steps never branch on item type.
type resolvedItem struct {
	name        string
	itemType    domain.ItemType
	salonID     string
	price       float64
	durationMin int
	quantity    int
}

// BuildQuote resolves cart line items against the catalog, enforces the
// single-salon rule, snapshots prices and chains start times sequentially
// from start: the first unit begins at start, each next one immediately after
// the previous unit's duration, modeling one continuous visit.
func BuildQuote(ctx context.Context, s repository.Store, items []domain.CartLineItem, start time.Time, fallbackSalonID string) (*Quote, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	resolved := make([]resolvedItem, 0, len(items))
	for _, li := range items {
		qty := li.Quantity
		if qty < 1 {
			qty = 1
		}
		switch li.Type {
		case domain.ItemTypeService:
			svc, err := s.ServiceByID(ctx, li.ID)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, resolvedItem{
				name: svc.Name, itemType: domain.ItemTypeService,
				salonID: svc.SalonID, price: svc.Price,
				durationMin: svc.DurationMin, quantity: qty,
			})
		case domain.ItemTypePackage:
			pkg, err := s.PackageByID(ctx, li.ID)
			if err != nil {
				return nil, err
			}
			dur, err := packageDuration(ctx, s, pkg)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, resolvedItem{
				name: pkg.Name, itemType: domain.ItemTypePackage,
				salonID: pkg.SalonID, price: pkg.Price,
				durationMin: dur, quantity: qty,
			})
		default:
			return nil, fmt.Errorf("%w: unknown item type %q", domain.ErrItemNotFound, li.Type)
		}
	}

	salonID := ""
	for _, ri := range resolved {
		if ri.salonID == "" {
			continue
		}
		if salonID == "" {
			salonID = ri.salonID
			continue
		}
		if ri.salonID != salonID {
			return nil, domain.ErrMixedSalons
		}
	}
	if salonID == "" {
		salonID = fallbackSalonID
	}
	if salonID == "" {
		return nil, domain.ErrSalonRequired
	}

	q := &Quote{SalonID: salonID}
	cursor := start
	for _, ri := range resolved {
		q.Items = append(q.Items, domain.OrderItem{
			Name:     ri.name,
			Type:     ri.itemType,
			Price:    ri.price,
			Quantity: ri.quantity,
		})
		for i := 0; i < ri.quantity; i++ {
			q.Units = append(q.Units, SchedulableUnit{
				Name:        ri.name,
				Price:       ri.price,
				DurationMin: ri.durationMin,
				StartAt:     cursor,
			})
			cursor = cursor.Add(time.Duration(ri.durationMin) * time.Minute)
			q.TotalAmount += ri.price
			q.TotalDurationMin += ri.durationMin
		}
	}
	return q, nil
}

func packageDuration(ctx context.Context, s repository.Store, pkg *domain.ServicePackage) (int, error) {
	if len(pkg.Items) == 0 {
		return DefaultPackageDurationMin, nil
	}
	ids := make([]string, 0, len(pkg.Items))
	for _, it := range pkg.Items {
		ids = append(ids, it.ServiceID)
	}
	svcs, err := s.ServicesByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, svc := range svcs {
		total += svc.DurationMin
	}
	if total == 0 {
		total = DefaultPackageDurationMin
	}
	return total, nil
}
