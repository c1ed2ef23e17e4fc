package domain

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/simcesplatform/chalith-component/internal/bus"
	"github.com/simcesplatform/chalith-component/internal/messages"
)

// DefaultTopicBase is the topic prefix Chalith messages travel under.
const DefaultTopicBase = "ChalithTopic"

// ProcessorConfig describes one Chalith component instance.
type ProcessorConfig struct {
	// ComponentName is this component's process name on the bus.
	ComponentName string
	// OwnValue is the string appended to the accumulated value each epoch.
	OwnValue string
	// InputComponents are the process names whose Chalith messages feed
	// this component. May be empty.
	InputComponents []string
	// TopicBase is the Chalith topic prefix; DefaultTopicBase when empty.
	TopicBase string
}

// Processor accumulates Chalith values from input components and
// publishes the concatenated result once per epoch.
type Processor struct {
	publisher bus.Publisher
	generator *messages.Generator

	name      string
	ownValue  string
	topicBase string
	inputs    map[string]struct{}

	currentValue string
	seenInputs   map[string]struct{}
}

// NewProcessor creates a Chalith processor.
func NewProcessor(publisher bus.Publisher, generator *messages.Generator, cfg ProcessorConfig) (*Processor, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("message generator is required")
	}
	if strings.TrimSpace(cfg.ComponentName) == "" {
		return nil, fmt.Errorf("component name is required")
	}

	topicBase := strings.TrimSpace(cfg.TopicBase)
	if topicBase == "" {
		topicBase = DefaultTopicBase
	}

	inputs := make(map[string]struct{}, len(cfg.InputComponents))
	for _, input := range cfg.InputComponents {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		inputs[input] = struct{}{}
	}

	return &Processor{
		publisher:  publisher,
		generator:  generator,
		name:       cfg.ComponentName,
		ownValue:   cfg.OwnValue,
		topicBase:  topicBase,
		inputs:     inputs,
		seenInputs: map[string]struct{}{},
	}, nil
}

// ParseInputComponents splits a comma-separated component list, dropping
// blank entries from stray commas.
func ParseInputComponents(raw string) []string {
	var inputs []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			inputs = append(inputs, part)
		}
	}
	return inputs
}

// Topics lists the input topic bindings, one per input component.
func (p *Processor) Topics() []string {
	topics := make([]string, 0, len(p.inputs))
	for input := range p.inputs {
		topics = append(topics, p.topicBase+"."+input)
	}
	sort.Strings(topics)
	return topics
}

// OutputTopic is the topic this component publishes its results on.
func (p *Processor) OutputTopic() string {
	return p.topicBase + "." + p.name
}

// ClearEpoch resets the accumulated value and the seen-input set.
func (p *Processor) ClearEpoch() {
	p.currentValue = ""
	p.seenInputs = map[string]struct{}{}
}

// InputsComplete reports whether every input component contributed a
// value this epoch. Vacuously true without configured inputs.
func (p *Processor) InputsComplete() bool {
	return len(p.seenInputs) == len(p.inputs)
}

// HandleMessage accepts the first Chalith message per input component per
// epoch and appends its value to the accumulated string.
func (p *Processor) HandleMessage(_ context.Context, msg messages.Message, topic string) (bool, error) {
	chalith, ok := msg.(*ChalithMessage)
	if !ok {
		log.Printf("ignore %s message on %s", msg.Meta().Type, topic)
		return false, nil
	}

	source := chalith.SourceProcessID
	if _, ok := p.inputs[source]; !ok {
		log.Printf("ignore Chalith message from %s: not an input component", source)
		return false, nil
	}
	if _, ok := p.seenInputs[source]; ok {
		log.Printf("ignore duplicate Chalith message from %s", source)
		return false, nil
	}

	p.seenInputs[source] = struct{}{}
	p.currentValue += chalith.ChalithValue
	return true, nil
}

// Process appends the component's own value and publishes the epoch
// result on the output topic.
func (p *Processor) Process(ctx context.Context, epoch *messages.Epoch, triggering []string) error {
	if len(p.seenInputs) > 0 {
		p.currentValue += p.ownValue
	} else {
		p.currentValue = p.ownValue
	}

	result := &ChalithMessage{
		Result:       p.generator.NewResult(TypeChalith, epoch.EpochNumber, triggering),
		ChalithValue: p.currentValue,
	}
	body, err := messages.Encode(result)
	if err != nil {
		return fmt.Errorf("build chalith result: %w", err)
	}
	if err := p.publisher.Publish(ctx, p.OutputTopic(), body); err != nil {
		return fmt.Errorf("publish chalith result: %w", err)
	}
	return nil
}
