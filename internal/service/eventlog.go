package service

import (
	"context"
	drive "drive_diagnostics"
	"errors"
	"strings"
	"time"

	"drive_diagnostics/internal/repository"
)

// LogFilter supports journal filtering by time range, kind and component.
type LogFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	Kind      string    // "", "FAULT", "ALARM", "CLEAR", "SCENARIO_STARTED", ...
	Component string    // "", "rectifier", "dc_link", "inverter", "motor", "fan", "cu320"
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeKind trims spaces and uppercases the event kind filter.
func normalizeKind(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	f.From = normalizeToUTC(f.From)
	f.To = normalizeToUTC(f.To)

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, errInvalidTimeRange
	}

	f.Kind = normalizeKind(f.Kind)
	f.Component = strings.TrimSpace(f.Component)
	return f, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]drive.DiagnosticEvent, error) {
	f, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, f.From, f.To, f.Kind, f.Component)
}
