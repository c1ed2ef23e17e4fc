// Package component implements the shared simulation component runtime.
//
// The runtime subscribes to the platform's state and epoch topics, drives
// a processor through the epoch lifecycle, and reports readiness after
// each processed epoch. Domain behavior lives entirely in the Processor.
package component

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simcesplatform/chalith-component/internal/bus"
	"github.com/simcesplatform/chalith-component/internal/messages"
)

// Processor supplies the domain behavior for one simulation component.
type Processor interface {
	// Topics lists the domain topic bindings beyond the state and epoch
	// topics.
	Topics() []string
	// ClearEpoch resets per-epoch accumulation when a new epoch begins.
	ClearEpoch()
	// InputsComplete reports whether every expected input has arrived for
	// the current epoch.
	InputsComplete() bool
	// Process runs the epoch computation and publishes the result.
	Process(ctx context.Context, epoch *messages.Epoch, triggering []string) error
	// HandleMessage consumes a domain message. It reports whether the
	// message contributed input to the current epoch.
	HandleMessage(ctx context.Context, msg messages.Message, topic string) (accepted bool, err error)
}

// Config identifies the component and the platform topics it speaks on.
type Config struct {
	SimulationID string
	Name         string
	StateTopic   string
	EpochTopic   string
	StatusTopic  string
	ErrorTopic   string
}

func (c Config) validate() error {
	if strings.TrimSpace(c.SimulationID) == "" {
		return fmt.Errorf("simulation id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("component name is required")
	}
	for _, topic := range []struct{ name, value string }{
		{"state", c.StateTopic},
		{"epoch", c.EpochTopic},
		{"status", c.StatusTopic},
		{"error", c.ErrorTopic},
	} {
		if strings.TrimSpace(topic.value) == "" {
			return fmt.Errorf("%s topic is required", topic.name)
		}
	}
	return nil
}

// Component runs the epoch lifecycle for one processor. All state is
// owned by the single Run goroutine.
type Component struct {
	cfg       Config
	bus       bus.Bus
	generator *messages.Generator
	processor Processor
	tracer    trace.Tracer

	initialized    bool
	stopped        bool
	latestEpoch    *messages.Epoch
	completedEpoch int64
	triggering     []string
}

// New creates a component runtime.
func New(cfg Config, b bus.Bus, generator *messages.Generator, processor Processor) (*Component, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bus is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("message generator is required")
	}
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	return &Component{
		cfg:       cfg,
		bus:       b,
		generator: generator,
		processor: processor,
		tracer:    otel.Tracer("github.com/simcesplatform/chalith-component/internal/component"),
	}, nil
}

// Run subscribes to the platform topics and processes deliveries until
// the simulation stops or the context ends.
func (c *Component) Run(ctx context.Context) error {
	bindings := append([]string{c.cfg.StateTopic, c.cfg.EpochTopic}, c.processor.Topics()...)
	deliveries, err := c.bus.Subscribe(ctx, bindings)
	if err != nil {
		return fmt.Errorf("subscribe to platform topics: %w", err)
	}
	log.Printf("component %s joined simulation %s, listening on %v", c.cfg.Name, c.cfg.SimulationID, bindings)

	for delivery := range deliveries {
		c.handleDelivery(ctx, delivery)
		if c.stopped {
			log.Printf("component %s stopped", c.cfg.Name)
			return nil
		}
	}
	return ctx.Err()
}

func (c *Component) handleDelivery(ctx context.Context, delivery bus.Delivery) {
	msg, err := messages.Parse(delivery.Body)
	if err != nil {
		log.Printf("drop invalid message on %s: %v", delivery.Topic, err)
		return
	}
	if msg.Meta().SimulationID != c.cfg.SimulationID {
		log.Printf("drop message %s from foreign simulation %s", msg.Meta().MessageID, msg.Meta().SimulationID)
		return
	}
	if msg.Meta().SourceProcessID == c.cfg.Name {
		return
	}

	switch m := msg.(type) {
	case *messages.SimState:
		c.handleSimState(ctx, m)
	case *messages.Epoch:
		c.handleEpoch(ctx, m)
	default:
		accepted, err := c.processor.HandleMessage(ctx, msg, delivery.Topic)
		if err != nil {
			log.Printf("handle %s message on %s: %v", msg.Meta().Type, delivery.Topic, err)
			return
		}
		if accepted {
			c.triggering = append(c.triggering, msg.Meta().MessageID)
			c.startEpoch(ctx)
		}
	}
}

func (c *Component) handleSimState(ctx context.Context, m *messages.SimState) {
	switch m.State {
	case messages.SimStateRunning:
		if c.initialized {
			return
		}
		c.initialized = true
		log.Printf("simulation %s running, component %s ready", c.cfg.SimulationID, c.cfg.Name)
		c.sendStatusReady(ctx, messages.InitializationEpoch, []string{m.MessageID})
		// An epoch may already be waiting if it was announced first.
		c.startEpoch(ctx)
	case messages.SimStateStopped:
		c.stopped = true
	}
}

func (c *Component) handleEpoch(ctx context.Context, m *messages.Epoch) {
	if c.latestEpoch != nil && m.EpochNumber <= c.latestEpoch.EpochNumber {
		log.Printf("ignore replayed epoch %d", m.EpochNumber)
		return
	}
	c.latestEpoch = m
	c.triggering = []string{m.MessageID}
	c.processor.ClearEpoch()
	c.startEpoch(ctx)
}

// startEpoch runs the processor when the current epoch has all of its
// inputs and has not been processed yet.
func (c *Component) startEpoch(ctx context.Context) {
	if !c.initialized || c.stopped || c.latestEpoch == nil {
		return
	}
	epoch := c.latestEpoch
	if c.completedEpoch >= epoch.EpochNumber {
		return
	}
	if !c.processor.InputsComplete() {
		log.Printf("waiting for input messages before processing epoch %d", epoch.EpochNumber)
		return
	}

	spanCtx, span := c.tracer.Start(ctx, "component.process_epoch",
		trace.WithAttributes(attribute.Int64("simulation.epoch", epoch.EpochNumber)))
	err := c.processor.Process(spanCtx, epoch, c.triggering)
	span.End()
	if err != nil {
		log.Printf("process epoch %d: %v", epoch.EpochNumber, err)
		c.sendStatusError(ctx, epoch.EpochNumber, fmt.Sprintf("error processing epoch %d: %v", epoch.EpochNumber, err))
		return
	}

	c.completedEpoch = epoch.EpochNumber
	c.sendStatusReady(ctx, epoch.EpochNumber, c.triggering)
}

func (c *Component) sendStatusReady(ctx context.Context, epochNumber int64, triggering []string) {
	status := c.generator.NewStatusReady(epochNumber, triggering)
	c.publishStatus(ctx, c.cfg.StatusTopic, status)
}

func (c *Component) sendStatusError(ctx context.Context, epochNumber int64, description string) {
	status := c.generator.NewStatusError(epochNumber, c.triggering, description)
	c.publishStatus(ctx, c.cfg.ErrorTopic, status)
}

func (c *Component) publishStatus(ctx context.Context, topic string, status *messages.Status) {
	body, err := messages.Encode(status)
	if err != nil {
		log.Printf("encode status message: %v", err)
		return
	}
	if err := c.bus.Publish(ctx, topic, body); err != nil {
		log.Printf("publish status to %s: %v", topic, err)
	}
}
