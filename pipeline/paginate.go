package pipeline

import (
	"context"
	"log/slog"

	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/engine"
)

// StopReason records why pagination ended.
type StopReason string

const (
	StopNoGrowth  StopReason = "no_growth"
	StopEndMarker StopReason = "end_marker"
	StopBudget    StopReason = "budget"
	StopCanceled  StopReason = "canceled"
)

// PaginationResult summarises one Paginate call. It is a best-effort
// signal, not proof that the feed is complete.
type PaginationResult struct {
	Iterations int
	Extent     int
	Reason     StopReason
}

// paginationState lives for one Paginate call only.
type paginationState struct {
	lastExtent int
	noGrowth   int
	iteration  int
}

// Paginate forces the feed to reveal as many entries as it will yield.
//
// Each iteration scrolls the feed to its current end and waits up to
// ScrollSettle for the extent to grow. Growth resets the no-growth counter;
// anything else (including a failed extent read) increments it. The first of
// these ends the loop: NoGrowthLimit consecutive iterations without growth,
// the end-of-results marker, or MaxScrolls iterations.
//
// Paginate always terminates and never fails; surface errors are logged and
// counted as no-growth observations.
func Paginate(ctx context.Context, s engine.Surface, cfg config.ScraperConfig) PaginationResult {
	var st paginationState
	if ext, err := s.FeedExtent(ctx); err == nil {
		st.lastExtent = ext
	} else {
		slog.Debug("paginate: initial extent read failed", "error", err)
	}

	for st.iteration = 0; st.iteration < cfg.MaxScrolls; st.iteration++ {
		if err := s.ScrollFeed(ctx); err != nil {
			slog.Debug("paginate: scroll failed", "iteration", st.iteration, "error", err)
		}

		prev := st.lastExtent
		grew, err := engine.WaitUntil(ctx, cfg.ScrollSettle, cfg.PollInterval, func(ctx context.Context) (bool, error) {
			ext, err := s.FeedExtent(ctx)
			if err != nil {
				return false, err
			}
			return ext > prev, nil
		})
		if err != nil {
			return st.result(StopCanceled)
		}

		if grew {
			if ext, err := s.FeedExtent(ctx); err == nil {
				st.lastExtent = ext
			}
			st.noGrowth = 0
		} else {
			st.noGrowth++
			if st.noGrowth >= cfg.NoGrowthLimit {
				st.iteration++
				return st.result(StopNoGrowth)
			}
		}

		if end, err := s.EndOfResults(ctx); err == nil && end {
			st.iteration++
			return st.result(StopEndMarker)
		}
	}
	return st.result(StopBudget)
}

func (st *paginationState) result(reason StopReason) PaginationResult {
	return PaginationResult{
		Iterations: st.iteration,
		Extent:     st.lastExtent,
		Reason:     reason,
	}
}
