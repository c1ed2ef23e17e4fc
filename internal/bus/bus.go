// Package bus defines the message bus contract the component runtime
// depends on, decoupled from the broker client implementation.
package bus

import (
	"context"
	"strings"
)

// Delivery is one message received from the bus.
type Delivery struct {
	Topic string
	Body  []byte
}

// Publisher sends message bodies to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
}

// Subscriber consumes deliveries matching topic binding patterns. The
// returned channel closes when the context ends or the bus shuts down.
type Subscriber interface {
	Subscribe(ctx context.Context, bindings []string) (<-chan Delivery, error)
}

// Bus is a full-duplex connection to the message broker.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// TopicMatches reports whether topic matches an AMQP-style binding
// pattern, where "*" matches exactly one dot-separated word and "#"
// matches zero or more words.
func TopicMatches(pattern, topic string) bool {
	return segmentsMatch(strings.Split(pattern, "."), strings.Split(topic, "."))
}

func segmentsMatch(pattern, topic []string) bool {
	if len(pattern) == 0 {
		return len(topic) == 0
	}
	switch pattern[0] {
	case "#":
		if segmentsMatch(pattern[1:], topic) {
			return true
		}
		if len(topic) == 0 {
			return false
		}
		return segmentsMatch(pattern, topic[1:])
	case "*":
		if len(topic) == 0 {
			return false
		}
		return segmentsMatch(pattern[1:], topic[1:])
	default:
		if len(topic) == 0 || pattern[0] != topic[0] {
			return false
		}
		return segmentsMatch(pattern[1:], topic[1:])
	}
}
