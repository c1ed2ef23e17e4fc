// Package rabbitmq implements the bus contract on a RabbitMQ topic
// exchange using the amqp091 client.
package rabbitmq

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/simcesplatform/chalith-component/internal/bus"
)

// Config carries broker connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Exchange string
	UseTLS   bool
}

// URI renders the AMQP connection URI for the configuration.
func (c Config) URI() string {
	scheme := "amqp"
	port := c.Port
	if c.UseTLS {
		scheme = "amqps"
		if port == 0 {
			port = 5671
		}
	}
	if port == 0 {
		port = 5672
	}
	uri := amqp.URI{
		Scheme:   scheme,
		Host:     c.Host,
		Port:     port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    "/",
	}
	return uri.String()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("broker host is required")
	}
	if strings.TrimSpace(c.Exchange) == "" {
		return fmt.Errorf("broker exchange is required")
	}
	return nil
}

// Client is a reconnecting RabbitMQ bus client. Publishes share one
// channel; every subscription owns its own channel and exclusive queue.
type Client struct {
	cfg Config

	mu     sync.Mutex
	conn   *amqp.Connection
	pubCh  *amqp.Channel
	closed bool
}

// Dial connects to the broker, retrying with exponential backoff until
// the context ends, and declares the topic exchange.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client := &Client{cfg: cfg}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		client.mu.Lock()
		defer client.mu.Unlock()
		return struct{}{}, client.connectLocked()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(2*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("connect to broker at %s: %w", cfg.Host, err)
	}
	return client, nil
}

// connectLocked establishes the connection, publish channel, and
// exchange. Callers hold c.mu.
func (c *Client) connectLocked() error {
	if c.closed {
		return backoff.Permanent(fmt.Errorf("bus client is closed"))
	}
	if c.conn != nil && !c.conn.IsClosed() && c.pubCh != nil && !c.pubCh.IsClosed() {
		return nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		var (
			conn *amqp.Connection
			err  error
		)
		if c.cfg.UseTLS {
			conn, err = amqp.DialTLS(c.cfg.URI(), &tls.Config{MinVersion: tls.VersionTLS12})
		} else {
			conn, err = amqp.Dial(c.cfg.URI())
		}
		if err != nil {
			return fmt.Errorf("dial broker: %w", err)
		}
		c.conn = conn
		c.pubCh = nil
	}

	if c.pubCh == nil || c.pubCh.IsClosed() {
		ch, err := c.conn.Channel()
		if err != nil {
			return fmt.Errorf("open publish channel: %w", err)
		}
		if err := declareExchange(ch, c.cfg.Exchange); err != nil {
			_ = ch.Close()
			return err
		}
		c.pubCh = ch
	}
	return nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publish sends a JSON body to the topic. A broken connection is redialed
// once; a publish during an outage returns the error to the caller.
func (c *Client) Publish(ctx context.Context, topic string, body []byte) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("publish topic is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("bus client is closed")
	}
	if err := c.connectLocked(); err != nil {
		return err
	}

	err := c.pubCh.PublishWithContext(ctx, c.cfg.Exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes deliveries for the binding patterns. The consumer
// reconnects with backoff after a broker outage and rebinds the same
// patterns; the returned channel closes when ctx ends or Close is called.
func (c *Client) Subscribe(ctx context.Context, bindings []string) (<-chan bus.Delivery, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("at least one topic binding is required")
	}

	out := make(chan bus.Delivery)
	go c.consumeLoop(ctx, bindings, out)
	return out, nil
}

func (c *Client) consumeLoop(ctx context.Context, bindings []string, out chan<- bus.Delivery) {
	defer close(out)

	wait := backoff.NewExponentialBackOff()
	for {
		if ctx.Err() != nil {
			return
		}

		deliveries, cleanup, err := c.openConsumer(bindings)
		if err != nil {
			if isClosedErr(err) {
				return
			}
			log.Printf("bus consumer setup: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait.NextBackOff()):
			}
			continue
		}
		wait.Reset()

		if done := c.pump(ctx, deliveries, out); done {
			cleanup()
			return
		}
		cleanup()
		log.Printf("bus consumer lost connection, reconnecting")
	}
}

// pump forwards broker deliveries until the context ends (true) or the
// delivery stream closes on connection loss (false).
func (c *Client) pump(ctx context.Context, deliveries <-chan amqp.Delivery, out chan<- bus.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case delivery, ok := <-deliveries:
			if !ok {
				c.mu.Lock()
				closed := c.closed
				c.mu.Unlock()
				return closed
			}
			select {
			case <-ctx.Done():
				return true
			case out <- bus.Delivery{Topic: delivery.RoutingKey, Body: delivery.Body}:
			}
		}
	}
}

func (c *Client) openConsumer(bindings []string) (<-chan amqp.Delivery, func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, fmt.Errorf("bus client is closed")
	}
	if err := c.connectLocked(); err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}
	conn := c.conn
	c.mu.Unlock()

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open consumer channel: %w", err)
	}
	cleanup := func() { _ = ch.Close() }

	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		cleanup()
		return nil, nil, err
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("declare consumer queue: %w", err)
	}
	for _, binding := range bindings {
		if err := ch.QueueBind(queue.Name, binding, c.cfg.Exchange, false, nil); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("bind %s to %s: %w", queue.Name, binding, err)
		}
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("consume from %s: %w", queue.Name, err)
	}
	return deliveries, cleanup, nil
}

// Close shuts the connection down. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.pubCh != nil && !c.pubCh.IsClosed() {
		err = c.pubCh.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if closeErr := c.conn.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func isClosedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "bus client is closed")
}
