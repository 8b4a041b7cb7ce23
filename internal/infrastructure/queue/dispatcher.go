package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher routes committed status events to a fixed set of workers using
// consistent hashing on the partition key, so events of one batch or one
// shipment are published in the order they were committed.
type Dispatcher struct {
	workers   []chan domain.StatusEvent
	publisher ports.EventPublisher
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.StatusEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Stop has been
// called and their channel is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Enqueue sends events to the workers responsible for their partition keys.
// The call blocks only when a worker channel is full. Events enqueued after
// Stop are dropped with a warning.
func (d *Dispatcher) Enqueue(events ...domain.StatusEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		if len(events) > 0 {
			d.log.Warn().Int("events", len(events)).Msg("dispatcher stopped, events dropped")
		}
		return
	}
	for _, e := range events {
		idx := d.shardIndex(e.PartitionKey())
		d.workers[idx] <- e
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	}
}

// Stop closes the worker channels and waits until queued events are
// published or ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a partition key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.StatusEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := d.publisher.Publish(ctx, event)
		cancel()

		if err != nil {
			metrics.EventsErrorsTotal.WithLabelValues(string(event.Subject)).Inc()
			d.log.Error().Err(err).
				Str("tracking", event.TrackingCode).
				Str("status", event.To).
				Int("worker_id", id).
				Msg("event publishing failed")
			continue
		}
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Subject)).Inc()
	}
}
