package hub

import (
	"context"
	"errors"

	"github.com/pithecene-io/gamehub/adapter"
)

// notify queues a match event for the publish worker. It never blocks:
// when the queue is full the event is dropped and counted as a failure.
func (s *Session) notify(event *adapter.MatchEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- event:
	default:
		s.metrics.IncPublishFailure()
		s.logger.Warn("match notification dropped, queue full", map[string]any{"event_type": event.EventType})
	}
}

// publishLoop delivers queued events in order until Close, then flushes
// what is still queued.
func (s *Session) publishLoop() {
	defer s.workers.Done()
	for {
		select {
		case ev := <-s.events:
			s.deliver(ev)
		case <-s.ctx.Done():
			for {
				select {
				case ev := <-s.events:
					s.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

// deliver publishes one event, bounded by the publish timeout. Close does
// not cancel a delivery in progress.
func (s *Session) deliver(event *adapter.MatchEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncPublishFailure()
		fields := map[string]any{"event_type": event.EventType, "error": err.Error()}
		if errors.Is(err, context.DeadlineExceeded) {
			fields["timeout"] = s.publishTimeout.String()
		}
		s.logger.Warn("match notification failed", fields)
		return
	}
	s.metrics.IncPublishSuccess()
}
