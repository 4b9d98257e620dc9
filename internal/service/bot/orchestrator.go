package bot

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// Broadcaster delivers a message to every subscriber of a session topic.
type Broadcaster interface {
	Broadcast(sessionID string, message chat.Message)
}

// Orchestrator consumes dispatched chat messages on worker goroutines
// and produces exactly one bot reply per accepted message. Dispatch is
// fire-and-forget: the only externally observable effect is the later
// broadcast of the reply.
type Orchestrator struct {
	queue       chan chat.Message
	done        chan struct{}
	closed      atomic.Bool
	wg          sync.WaitGroup
	processor   Processor
	messages    store.MessageStore
	broadcaster Broadcaster
	workers     int
}

// NewOrchestrator builds an orchestrator with the given worker count
// and queue capacity.
func NewOrchestrator(processor Processor, messages store.MessageStore, broadcaster Broadcaster, workers, queueSize int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Orchestrator{
		queue:       make(chan chat.Message, queueSize),
		done:        make(chan struct{}),
		processor:   processor,
		messages:    messages,
		broadcaster: broadcaster,
		workers:     workers,
	}
}

// Start launches the worker pool. Workers run until Stop is called or
// ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.worker(ctx)
	}
	log.Printf("[bot] orchestrator started with %d workers", o.workers)
}

// Enqueue hands a message to the worker pool without blocking. It
// returns false when the queue is full or the orchestrator is stopped;
// the caller's pipeline is unaffected either way.
func (o *Orchestrator) Enqueue(message chat.Message) bool {
	if o.closed.Load() {
		return false
	}
	select {
	case o.queue <- message:
		return true
	default:
		log.Printf("[bot] dispatch queue full, dropping message %s", message.ID)
		return false
	}
}

// Stop prevents further enqueues and waits for in-flight work.
func (o *Orchestrator) Stop() {
	if o.closed.CompareAndSwap(false, true) {
		close(o.done)
	}
	o.wg.Wait()
}

func (o *Orchestrator) worker(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			return
		case <-ctx.Done():
			return
		case message := <-o.queue:
			o.dispatch(ctx, message)
		}
	}
}

// dispatch runs the full bot pipeline for one message. Every failure
// past this point is absorbed: the reply is still broadcast with
// whatever content the processor produced.
func (o *Orchestrator) dispatch(ctx context.Context, message chat.Message) {
	message.ProcessedByBot = true
	if err := o.messages.Update(ctx, message); err != nil {
		log.Printf("[bot] failed to mark message %s as processed: %v", message.ID, err)
	}

	reply := o.processor.Process(ctx, message)

	saved, err := o.messages.Save(ctx, reply)
	if err != nil {
		log.Printf("[bot] failed to persist reply for session %s: %v", message.SessionID, err)
		saved = reply
	}

	o.broadcaster.Broadcast(message.SessionID, saved)
	log.Printf("[bot] reply sent for message %s in session %s", message.ID, message.SessionID)
}
