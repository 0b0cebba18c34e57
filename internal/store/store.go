package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/model"
)

// pgExclusionViolation is the PostgreSQL SQLSTATE for a violated EXCLUDE constraint.
const pgExclusionViolation = "23P01"

// Store defines the interface for all database operations.
type Store interface {
	ListReservations(ctx context.Context) ([]booking.Reservation, error)
	ReservationsFor(ctx context.Context, room, staff string) ([]booking.Reservation, error)
	AppendReservation(ctx context.Context, c booking.Candidate) (string, error)
	ListStaff(ctx context.Context) ([]string, error)

	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	ReplaceSubscription(ctx context.Context, sub model.PushSubscription, rooms []string) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForRoom(ctx context.Context, room string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

// ListReservations returns every reservation that has both time bounds.
func (s *gormStore) ListReservations(ctx context.Context) ([]booking.Reservation, error) {
	var rows []model.Reservation
	if err := s.db.WithContext(ctx).Order("start_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservations(rows), nil
}

// ReservationsFor returns the reservations of the room together with those held
// by the staff member in any room.
func (s *gormStore) ReservationsFor(ctx context.Context, room, staff string) ([]booking.Reservation, error) {
	query := s.db.WithContext(ctx).Where("room = ?", room)
	if staff != "" {
		query = query.Or("TRIM(staff) = ?", strings.TrimSpace(staff))
	}

	var rows []model.Reservation
	if err := query.Order("start_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reservations for room %q and staff %q: %w", room, staff, err)
	}
	return toReservations(rows), nil
}

// AppendReservation writes a new reservation and returns its generated ID.
// No conflict check happens here; callers must check first.
func (s *gormStore) AppendReservation(ctx context.Context, c booking.Candidate) (string, error) {
	row := fromCandidate(uuid.NewString(), c, s.now().UTC())
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isExclusionViolation(err) {
			return "", ErrRoomTaken
		}
		return "", fmt.Errorf("failed to create reservation for room %q: %w", c.Room, err)
	}
	return row.ID, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

// ListStaff returns staff names ordered alphabetically. Entries without a name use their ID.
func (s *gormStore) ListStaff(ctx context.Context) ([]string, error) {
	var rows []model.Staff
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name := row.Name
		if name == "" {
			name = row.ID
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetSubscription loads a push subscription with its room watches.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Watches").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, ErrNotFound
	}
	if err != nil {
		return model.PushSubscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// ReplaceSubscription creates or updates a subscription and replaces its watched rooms.
func (s *gormStore) ReplaceSubscription(ctx context.Context, sub model.PushSubscription, rooms []string) error {
	sub.Watches = nil
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.RoomWatch{}).Error; err != nil {
			return fmt.Errorf("failed to clear room watches: %w", err)
		}

		if len(rooms) == 0 {
			return nil
		}
		watches := make([]model.RoomWatch, 0, len(rooms))
		seen := make(map[string]bool, len(rooms))
		for _, room := range rooms {
			if seen[room] {
				continue
			}
			seen[room] = true
			watches = append(watches, model.RoomWatch{Endpoint: sub.Endpoint, RoomLabel: room})
		}
		if err := tx.Create(&watches).Error; err != nil {
			return fmt.Errorf("failed to create room watches: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes a subscription and its watches.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.RoomWatch{}).Error; err != nil {
			return fmt.Errorf("failed to delete room watches: %w", err)
		}
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscriptionsForRoom returns the subscriptions watching the given room.
func (s *gormStore) SubscriptionsForRoom(ctx context.Context, room string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN room_watches rw ON rw.endpoint = push_subscriptions.endpoint").
		Where("rw.room_label = ?", room).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for room %q: %w", room, err)
	}
	return subs, nil
}
