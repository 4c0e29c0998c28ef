package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
)

// reconnectDelay matches the retry interval the API advertises on its streams.
const reconnectDelay = 3 * time.Second

// topic names one live collection the dashboard keeps in sync.
type topic int

const (
	topicTickets topic = iota
	topicMessages
	topicArticles
)

func (t topic) String() string {
	switch t {
	case topicTickets:
		return "tickets"
	case topicMessages:
		return "messages"
	case topicArticles:
		return "articles"
	}
	return "unknown"
}

// subscription is one open realtime stream. gen distinguishes it from earlier streams of
// the same topic so late messages from a replaced stream are dropped.
type subscription struct {
	gen    int
	filter events.Filter
	cancel context.CancelFunc
	stream ChangeStream
}

type streamOpenedMsg struct {
	topic  topic
	gen    int
	stream ChangeStream
	err    error
}

type changeMsg struct {
	topic topic
	gen   int
	event events.ChangeEvent
}

type streamEndedMsg struct {
	topic topic
	gen   int
	err   error
}

type reconnectMsg struct {
	topic topic
	gen   int
}

func openStream(ctx context.Context, backend Backend, t topic, gen int, filter events.Filter) tea.Cmd {
	return func() tea.Msg {
		stream, err := backend.Subscribe(ctx, filter)
		return streamOpenedMsg{topic: t, gen: gen, stream: stream, err: err}
	}
}

func waitForChange(t topic, gen int, stream ChangeStream) tea.Cmd {
	return func() tea.Msg {
		event, err := stream.Next()
		if err != nil {
			return streamEndedMsg{topic: t, gen: gen, err: err}
		}
		return changeMsg{topic: t, gen: gen, event: event}
	}
}

// subscribe replaces any stream of topic t with a new one for filter.
func (model *Model) subscribe(t topic, filter events.Filter) tea.Cmd {
	model.unsubscribe(t)
	model.gen++
	ctx, cancel := context.WithCancel(model.ctx)
	model.subs[t] = &subscription{gen: model.gen, filter: filter, cancel: cancel}
	return openStream(ctx, model.backend, t, model.gen, filter)
}

func (model *Model) unsubscribe(t topic) {
	sub, ok := model.subs[t]
	if !ok {
		return
	}
	sub.cancel()
	if sub.stream != nil {
		_ = sub.stream.Close()
	}
	delete(model.subs, t)
}

func (model *Model) unsubscribeAll() {
	for t := range model.subs {
		model.unsubscribe(t)
	}
}

// current returns the live subscription of t when gen is still its generation.
func (model *Model) current(t topic, gen int) (*subscription, bool) {
	sub, ok := model.subs[t]
	if !ok || sub.gen != gen {
		return nil, false
	}
	return sub, true
}

// live reports whether every subscription the current view holds has an open stream.
func (model *Model) live() bool {
	if len(model.subs) == 0 {
		return false
	}
	for _, sub := range model.subs {
		if sub.stream == nil {
			return false
		}
	}
	return true
}

func (model Model) handleStreamOpened(msg streamOpenedMsg) (tea.Model, tea.Cmd) {
	sub, ok := model.current(msg.topic, msg.gen)
	if !ok {
		if msg.stream != nil {
			_ = msg.stream.Close()
		}
		return model, nil
	}
	if msg.err != nil {
		model.logger.Warn("realtime subscribe failed", zap.Stringer("topic", msg.topic), zap.Error(msg.err))
		return model, model.scheduleReconnect(msg.topic, msg.gen)
	}
	sub.stream = msg.stream
	model.logger.Debug("realtime subscribed", zap.Stringer("topic", msg.topic), zap.String("filter", sub.filter.String()))
	return model, waitForChange(msg.topic, msg.gen, msg.stream)
}

// handleChange merges a pushed row into the matching collection. No refetch happens.
func (model Model) handleChange(msg changeMsg) (tea.Model, tea.Cmd) {
	sub, ok := model.current(msg.topic, msg.gen)
	if !ok {
		return model, nil
	}
	var err error
	switch msg.topic {
	case topicTickets:
		err = model.tickets.Apply(msg.event)
		model.clampTicketCursor()
	case topicMessages:
		err = model.detail.messages.Apply(msg.event)
	case topicArticles:
		err = model.knowledge.articles.Apply(msg.event)
		model.knowledge.clampCursor()
	}
	if err != nil {
		model.logger.Warn("dropping change event", zap.Stringer("topic", msg.topic), zap.String("event_id", msg.event.ID), zap.Error(err))
	}
	return model, waitForChange(msg.topic, msg.gen, sub.stream)
}

func (model Model) handleStreamEnded(msg streamEndedMsg) (tea.Model, tea.Cmd) {
	sub, ok := model.current(msg.topic, msg.gen)
	if !ok {
		return model, nil
	}
	model.logger.Warn("realtime stream ended", zap.Stringer("topic", msg.topic), zap.Error(msg.err))
	if sub.stream != nil {
		_ = sub.stream.Close()
		sub.stream = nil
	}
	return model, model.scheduleReconnect(msg.topic, msg.gen)
}

func (model *Model) scheduleReconnect(t topic, gen int) tea.Cmd {
	return tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
		return reconnectMsg{topic: t, gen: gen}
	})
}

// handleReconnect reopens a dropped stream and refetches its collection, since changes may
// have been missed while it was down.
func (model Model) handleReconnect(msg reconnectMsg) (tea.Model, tea.Cmd) {
	sub, ok := model.current(msg.topic, msg.gen)
	if !ok {
		return model, nil
	}
	cmds := []tea.Cmd{model.subscribe(msg.topic, sub.filter)}
	switch msg.topic {
	case topicTickets:
		cmds = append(cmds, fetchTickets(model.ctx, model.backend))
	case topicMessages:
		cmds = append(cmds, fetchMessages(model.ctx, model.backend, model.detail.ticketID))
	case topicArticles:
		cmds = append(cmds, fetchArticles(model.ctx, model.backend))
	}
	return model, tea.Batch(cmds...)
}
