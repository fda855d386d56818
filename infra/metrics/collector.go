package metrics

import (
	"time"

	"github.com/kilianp07/microgrid/core/events"
	"github.com/kilianp07/microgrid/infra/logger"
	"github.com/kilianp07/microgrid/internal/eventbus"
)

// Collector subscribes to the event bus and logs scheduling events so runs
// leave an operator-visible trace even when no metric sink is configured.
type Collector struct {
	bus  eventbus.EventBus
	sub  <-chan eventbus.Event
	done chan struct{}
}

// StartCollector subscribes to the bus and logs events until Close is called
// or the bus shuts down.
func StartCollector(bus eventbus.EventBus, log logger.Logger) *Collector {
	c := &Collector{bus: bus, sub: bus.Subscribe(), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		for ev := range c.sub {
			switch e := ev.(type) {
			case events.RunStartedEvent:
				log.Infof("run started: microgrid=%s date=%s mode=%s intervals=%d",
					e.MicrogridID, e.Date.Format("2006-01-02"), e.Mode, e.Intervals)
			case events.RunCompletedEvent:
				log.Infof("run completed: microgrid=%s elapsed=%s", e.MicrogridID, e.Elapsed)
			case events.GeneratorTransitionEvent:
				log.Infof("generator %s -> %s at interval %d", e.From, e.To, e.Interval)
			case events.ShortfallEvent:
				log.Errorf("essential shortfall of %.2f kW at %s",
					e.DeficitKW, e.Time.Format(time.RFC3339))
			}
		}
	}()
	return c
}

// Close unsubscribes from the bus and waits for buffered events to drain.
func (c *Collector) Close() {
	c.bus.Unsubscribe(c.sub)
	<-c.done
}
