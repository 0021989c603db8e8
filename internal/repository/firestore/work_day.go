package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"google.golang.org/api/iterator"
)

type workDayDoc struct {
	EmployeeID     string     `firestore:"employee_id"`
	Date           string     `firestore:"date"` // YYYY-MM-DD
	CheckInTime    time.Time  `firestore:"check_in_time"`
	CheckOutTime   *time.Time `firestore:"check_out_time"`
	DelayMinutes   int        `firestore:"delay_minutes"`
	TotalWorkHours float64    `firestore:"total_work_hours"`
	OvertimeHours  float64    `firestore:"overtime_hours"`
	CreatedAt      time.Time  `firestore:"created_at"`
	UpdatedAt      time.Time  `firestore:"updated_at"`
}

func (d workDayDoc) toWorkDay(id string) attendance.WorkDay {
	date, _ := time.Parse("2006-01-02", d.Date)
	return attendance.WorkDay{
		ID:             id,
		EmployeeID:     d.EmployeeID,
		Date:           date,
		CheckInTime:    d.CheckInTime,
		CheckOutTime:   d.CheckOutTime,
		DelayMinutes:   d.DelayMinutes,
		TotalWorkHours: d.TotalWorkHours,
		OvertimeHours:  d.OvertimeHours,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// WorkDayKey is the document id of an employee's record for day. Creating
// the same key twice fails, which serializes concurrent check-ins.
func WorkDayKey(employeeID string, day time.Time) string {
	return employeeID + "_" + attendance.DayKey(day)
}

type workDayRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewWorkDayRepository returns a WorkDayRepository whose record ids are
// WorkDayKey values; ids proposed by callers on Create are ignored.
func NewWorkDayRepository(client *firestore.Client) attendance.WorkDayRepository {
	return &workDayRepository{client: client, now: time.Now}
}

func (r *workDayRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(WorkDaysCollection)
}

func decodeWorkDay(snap *firestore.DocumentSnapshot) (attendance.WorkDay, error) {
	var doc workDayDoc
	if err := snap.DataTo(&doc); err != nil {
		return attendance.WorkDay{}, fmt.Errorf("failed to decode work day %s: %w", snap.Ref.ID, err)
	}
	return doc.toWorkDay(snap.Ref.ID), nil
}

// FindByEmployeeAndDate implements attendance.WorkDayRepository.
func (r *workDayRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*attendance.WorkDay, error) {
	snap, err := r.collection().Doc(WorkDayKey(employeeID, day)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find work day: %w", err)
	}
	w, err := decodeWorkDay(snap)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create implements attendance.WorkDayRepository.
func (r *workDayRepository) Create(ctx context.Context, w attendance.WorkDay) (attendance.WorkDay, error) {
	now := r.now()
	key := WorkDayKey(w.EmployeeID, w.Date)
	doc := workDayDoc{
		EmployeeID:   w.EmployeeID,
		Date:         attendance.DayKey(w.Date),
		CheckInTime:  w.CheckInTime,
		DelayMinutes: w.DelayMinutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.collection().Doc(key).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return attendance.WorkDay{}, attendance.ErrCheckInConflict
		}
		return attendance.WorkDay{}, fmt.Errorf("failed to create work day: %w", err)
	}
	return doc.toWorkDay(key), nil
}

// CloseOpen implements attendance.WorkDayRepository with a read-check-write
// transaction. Firestore retries the function when another writer commits first.
func (r *workDayRepository) CloseOpen(ctx context.Context, id string, checkOut time.Time, totalHours, overtimeHours float64) (attendance.WorkDay, error) {
	ref := r.collection().Doc(id)
	var closed attendance.WorkDay

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return attendance.ErrWorkDayNotFound
			}
			return err
		}
		var doc workDayDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("failed to decode work day %s: %w", id, err)
		}
		if doc.CheckOutTime != nil {
			return attendance.ErrAlreadyCompleted
		}

		now := r.now()
		doc.CheckOutTime = &checkOut
		doc.TotalWorkHours = totalHours
		doc.OvertimeHours = overtimeHours
		doc.UpdatedAt = now
		closed = doc.toWorkDay(id)

		return tx.Update(ref, []firestore.Update{
			{Path: "check_out_time", Value: checkOut},
			{Path: "total_work_hours", Value: totalHours},
			{Path: "overtime_hours", Value: overtimeHours},
			{Path: "updated_at", Value: now},
		})
	})
	if err != nil {
		return attendance.WorkDay{}, err
	}
	return closed, nil
}

// GetByID implements attendance.WorkDayRepository.
func (r *workDayRepository) GetByID(ctx context.Context, id string) (attendance.WorkDay, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return attendance.WorkDay{}, attendance.ErrWorkDayNotFound
		}
		return attendance.WorkDay{}, fmt.Errorf("failed to get work day: %w", err)
	}
	return decodeWorkDay(snap)
}

// List implements attendance.WorkDayRepository. Combined filters need the
// composite indexes declared in firestore.indexes.json.
func (r *workDayRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.WorkDay, int64, error) {
	q := r.collection().Query

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		q = q.Where("employee_id", "==", *filter.EmployeeID)
	}
	if filter.Date != nil && *filter.Date != "" {
		q = q.Where("date", "==", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		q = q.Where("date", ">=", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		q = q.Where("date", "<=", *filter.EndDate)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case attendance.StatusLate:
			q = q.Where("delay_minutes", ">", 0)
		case attendance.StatusOnTime:
			q = q.Where("delay_minutes", "==", 0)
		}
	}
	if filter.OpenOnly {
		q = q.Where("check_out_time", "==", nil)
	}

	total, err := count(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count work days: %w", err)
	}

	sortFields := map[string]string{
		"date":           "date",
		"check_in_time":  "check_in_time",
		"check_out_time": "check_out_time",
		"delay_minutes":  "delay_minutes",
	}
	field, ok := sortFields[filter.SortBy]
	if !ok {
		field = "date"
	}
	dir := firestore.Desc
	if strings.EqualFold(filter.SortOrder, "asc") {
		dir = firestore.Asc
	}

	q = q.OrderBy(field, dir)
	if field != "check_in_time" {
		q = q.OrderBy("check_in_time", firestore.Desc)
	}
	iter := q.Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Documents(ctx)
	defer iter.Stop()

	var workDays []attendance.WorkDay
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list work days: %w", err)
		}
		w, err := decodeWorkDay(snap)
		if err != nil {
			return nil, 0, err
		}
		workDays = append(workDays, w)
	}
	return workDays, total, nil
}

// ListByDate implements attendance.WorkDayRepository.
func (r *workDayRepository) ListByDate(ctx context.Context, day time.Time) ([]attendance.WorkDay, error) {
	snaps, err := r.collection().
		Where("date", "==", attendance.DayKey(day)).
		OrderBy("check_in_time", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list work days by date: %w", err)
	}

	workDays := make([]attendance.WorkDay, 0, len(snaps))
	for _, snap := range snaps {
		w, err := decodeWorkDay(snap)
		if err != nil {
			return nil, err
		}
		workDays = append(workDays, w)
	}
	return workDays, nil
}

func count(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := result["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", result["total"])
	}
	return v.GetIntegerValue(), nil
}
