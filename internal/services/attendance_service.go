package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
	"care-tasks.com/care-tasks/internal/names"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

type AttendanceService struct {
	guard   *schema.Guard
	roster  *RosterService
	records *repository.AttendanceRepository
	logger  *zap.Logger
}

func NewAttendanceService(
	guard *schema.Guard,
	roster *RosterService,
	records *repository.AttendanceRepository,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		guard:   guard,
		roster:  roster,
		records: records,
		logger:  logger,
	}
}

// RecordClockEvent appends one clock event for a member, snapshotting its current name.
func (s *AttendanceService) RecordClockEvent(ctx context.Context, in dto.ClockEventInput) (*model.AttendanceRecord, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	eventType, ok := constants.ParseClockEvent(in.EventType)
	if !ok {
		return nil, apperrors.Validation("invalid clock event type")
	}

	member, err := s.roster.ResolveMember(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}

	accountID := in.AccountID
	if accountID == "" {
		accountID = member.AccountID
	}

	at := time.Now().UTC()
	if in.At != nil && !in.At.IsZero() {
		at = in.At.UTC()
	}

	record := &model.AttendanceRecord{
		ID:         uuid.NewString(),
		MemberID:   member.ID,
		AccountID:  accountID,
		MemberName: member.Name,
		EventType:  eventType,
		RecordedAt: at,
		Note:       optional(in.Note),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ImportClockEvents records each row in order, collecting row failures instead of
// stopping. Names are matched against the active roster loaded once for the batch,
// preferring members of the recording account.
// Only a failure to load that roster is returned as an error.
func (s *AttendanceService) ImportClockEvents(ctx context.Context, rows []dto.ClockImportRow, accountID string) (*dto.ImportResult, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	roster, err := s.roster.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	idx := newImportIndex(roster, accountID)

	result := &dto.ImportResult{Errors: []dto.ImportError{}}
	for _, row := range rows {
		reason := s.importRow(ctx, idx, row, accountID)
		if reason != "" {
			result.Errors = append(result.Errors, dto.ImportError{
				Line:   row.Line,
				Name:   row.Name,
				Reason: reason,
			})
			continue
		}
		result.Inserted++
	}

	s.logger.Info("attendance import finished",
		zap.String("account_id", accountID),
		zap.Int("rows", len(rows)),
		zap.Int("inserted", result.Inserted),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// importIndex resolves sheet names against the recording account's members first and
// the whole active roster second. Default rosters put the same names in many accounts.
type importIndex struct {
	account *names.Index[model.Member]
	global  *names.Index[model.Member]
}

func newImportIndex(roster []model.Member, accountID string) *importIndex {
	idx := &importIndex{
		account: names.NewIndex[model.Member](),
		global:  names.NewIndex[model.Member](),
	}
	for _, m := range roster {
		if m.AccountID == accountID {
			idx.account.Add(m.Name, m)
		}
		idx.global.Add(m.Name, m)
	}
	return idx
}

func (i *importIndex) unique(name string) (model.Member, int) {
	if m, n := i.account.Unique(name); n > 0 {
		return m, n
	}
	return i.global.Unique(name)
}

// importRow returns an empty string on success, or the reason the row was rejected.
func (s *AttendanceService) importRow(ctx context.Context, idx *importIndex, row dto.ClockImportRow, accountID string) string {
	if names.Key(row.Name) == "" {
		return "name is required"
	}

	member, n := idx.unique(row.Name)
	switch {
	case n == 0:
		return "member not found"
	case n > 1:
		return "ambiguous member name"
	}

	if strings.TrimSpace(row.Role) != "" {
		role, ok := constants.ParseRole(row.Role)
		if !ok {
			return "invalid role"
		}
		if role != member.Role {
			return "role does not match member"
		}
	}

	_, err := s.RecordClockEvent(ctx, dto.ClockEventInput{
		MemberID:  member.ID,
		AccountID: accountID,
		EventType: row.EventType,
		Note:      row.Note,
		At:        row.At,
	})
	if err != nil {
		return apperrors.Message(err)
	}
	return ""
}

// ListClockEvents returns the newest events first. The limit defaults to 30 and is
// clamped to [5, 200].
func (s *AttendanceService) ListClockEvents(ctx context.Context, filter dto.ClockFilter) ([]model.AttendanceRecord, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	return s.records.List(ctx, filter.Role, filter.MemberID, clampLimit(filter.Limit))
}

func clampLimit(limit int) int {
	if limit == 0 {
		limit = constants.DefaultClockListLimit
	}
	if limit < constants.MinClockListLimit {
		return constants.MinClockListLimit
	}
	if limit > constants.MaxClockListLimit {
		return constants.MaxClockListLimit
	}
	return limit
}
