package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"signal_notification_bot/internal/domain/channel"
	"signal_notification_bot/internal/domain/signal"

	"github.com/sirupsen/logrus"
)

// Deliverer sends one notification about signalName to a channel. A nil
// error means the transport confirmed the send.
type Deliverer interface {
	Deliver(ctx context.Context, id channel.ID, signalName string) error
}

// SignalIndex resolves the channels subscribed to a signal.
type SignalIndex interface {
	ChannelsFor(signal string) []channel.ID
}

// ChannelLookup returns the configuration of a channel.
type ChannelLookup interface {
	Get(id channel.ID) (*channel.Channel, bool)
}

// DispatchResult summarizes what happened to one signal event.
type DispatchResult struct {
	Candidates int
	Delivered  int
	Blocked    int
	Failed     int
	Unknown    int // Subscribed channels with no configuration
}

// Dispatcher fans one inbound signal out to every eligible subscribed channel.
type Dispatcher struct {
	mu sync.Mutex // one event at a time

	index     SignalIndex
	channels  ChannelLookup
	gate      *channel.Gate
	deliverer Deliverer
	now       func() time.Time
	logger    *logrus.Entry
}

func NewDispatcher(
	index SignalIndex,
	channels ChannelLookup,
	gate *channel.Gate,
	deliverer Deliverer,
	logger *logrus.Entry,
) *Dispatcher {
	return &Dispatcher{
		index:     index,
		channels:  channels,
		gate:      gate,
		deliverer: deliverer,
		now:       time.Now,
		logger:    logger.WithField("component", "dispatcher"),
	}
}

// SetClock replaces the time source. Tests use it to pin the time of day.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// HandleSignal is the entry point for the feed listener. Malformed messages
// are logged and dropped; nothing here aborts the processing of later events.
func (d *Dispatcher) HandleSignal(ctx context.Context, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic while handling signal")
		}
	}()

	ev, err := signal.Decode(raw)
	if err != nil {
		d.logger.WithError(err).WithField("raw", truncate(string(raw), 256)).Warn("Dropping inbound signal event")
		return
	}
	d.Dispatch(ctx, ev)
}

// Dispatch evaluates the gate of each subscribed channel and delivers to those
// that pass. Counters are recorded only after a confirmed delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, ev signal.Event) DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := d.logger.WithFields(logrus.Fields{"event_id": ev.ID, "signal": ev.Name})
	ids := d.index.ChannelsFor(ev.Name)
	res := DispatchResult{Candidates: len(ids)}
	if len(ids) == 0 {
		log.Debug("No channels subscribed to signal")
		return res
	}

	for _, id := range ids {
		chLog := log.WithField("channel_id", id)

		cfg, ok := d.channels.Get(id)
		if !ok {
			res.Unknown++
			chLog.Warn("Subscribed channel has no configuration, skipping")
			continue
		}
		if !d.gate.Check(cfg, d.now()) {
			res.Blocked++
			chLog.Debug("Delivery blocked by rate gate")
			continue
		}
		if err := d.deliverer.Deliver(ctx, id, ev.Name); err != nil {
			res.Failed++
			chLog.WithError(err).Error("Failed to deliver signal notification")
			continue
		}
		st := d.gate.Record(id, d.now())
		res.Delivered++
		chLog.WithField("message_count", st.MessageCount).Info("Signal notification delivered")
	}

	log.WithFields(logrus.Fields{
		"candidates": res.Candidates,
		"delivered":  res.Delivered,
		"blocked":    res.Blocked,
		"failed":     res.Failed,
	}).Info("Signal dispatched")
	return res
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
