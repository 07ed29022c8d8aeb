package app

import "github.com/bft-labs/feedship/internal/domain"

// EventHandler receives pipeline progress. Calls happen on the run's goroutine.
type EventHandler interface {
	OnRunStart(runID string)
	OnFeedResult(result domain.FeedResult)
	OnRunComplete(report *domain.BatchReport)
}

// BaseEventHandler implements EventHandler with no-ops; embed it to override
// only some methods.
type BaseEventHandler struct{}

func (BaseEventHandler) OnRunStart(string)                 {}
func (BaseEventHandler) OnFeedResult(domain.FeedResult)    {}
func (BaseEventHandler) OnRunComplete(*domain.BatchReport) {}

var _ EventHandler = BaseEventHandler{}
