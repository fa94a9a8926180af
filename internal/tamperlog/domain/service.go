package domain

import (
	"context"
	"errors"
	"time"
)

// Timeframe is a rolling statistics window anchored at now.
type Timeframe string

const (
	TimeframeHour Timeframe = "hour"
	TimeframeDay  Timeframe = "day"
	TimeframeWeek Timeframe = "week"
)

// StatisticsRequest selects the aggregation window: either a named rolling
// timeframe or an explicit range.
type StatisticsRequest struct {
	Timeframe Timeframe
	Start     *time.Time
	End       *time.Time
	TopN      int
}

type Service interface {
	// Record appends one event. It must not silently drop events; under-
	// logging here is a security regression.
	Record(ctx context.Context, event TamperingEvent) error
	Statistics(ctx context.Context, req StatisticsRequest) (Stats, error)
	// PurgeBefore is the explicit retention operation; never called on the
	// request path.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	ErrInvalidTimeframe = errors.New("invalid_timeframe")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidEvent     = errors.New("invalid_tampering_event")
)
