package mqtt

import (
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Client wraps a paho client with asynchronous connect and retry.
type Client struct {
	client         mqtt.Client
	publishTimeout time.Duration
}

// Config holds MQTT client configuration
type Config struct {
	ServerURL         string
	ClientID          string
	MaxRetries        int           // Maximum number of connection retries (0 = infinite)
	InitialRetryDelay time.Duration // Initial delay between retries
	MaxRetryDelay     time.Duration // Maximum delay between retries
	PublishTimeout    time.Duration // How long Publish waits for the broker
	OnConnect         func(*Client) // Callback to execute when connected
}

// ValidateServerURL checks that url names an mqtt:// broker.
func ValidateServerURL(serverURL string) error {
	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	if parsedURL.Scheme != "mqtt" {
		return fmt.Errorf("%w: must use mqtt:// scheme", ErrInvalidServerURL)
	}
	return nil
}

// NewClient creates a new MQTT client. The connection is attempted in the
// background and retried with exponential backoff.
func NewClient(config Config) (*Client, error) {
	if err := ValidateServerURL(config.ServerURL); err != nil {
		return nil, err
	}

	initialDelay := config.InitialRetryDelay
	if initialDelay == 0 {
		initialDelay = time.Second
	}
	maxDelay := config.MaxRetryDelay
	if maxDelay == 0 {
		maxDelay = 30 * time.Second
	}
	publishTimeout := config.PublishTimeout
	if publishTimeout == 0 {
		publishTimeout = 2 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.ServerURL)
	opts.SetClientID(config.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxDelay)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info().Str("broker", config.ServerURL).Msg("connected to MQTT broker")
		if config.OnConnect != nil {
			config.OnConnect(&Client{client: client, publishTimeout: publishTimeout})
		}
	})

	client := mqtt.NewClient(opts)

	go func() {
		delay := initialDelay
		attempt := 0
		for {
			token := client.Connect()
			if token.Wait() && token.Error() == nil {
				return
			}

			attempt++
			if config.MaxRetries > 0 && attempt >= config.MaxRetries {
				log.Error().Err(token.Error()).Int("attempts", attempt).Msg("giving up on MQTT broker")
				return
			}

			log.Warn().Err(token.Error()).Int("attempt", attempt).Dur("retry_in", delay).Msg("failed to connect to MQTT broker")
			time.Sleep(delay)

			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}()

	return &Client{client: client, publishTimeout: publishTimeout}, nil
}

// Publish publishes a message and waits up to the publish timeout for the
// broker to accept it.
func (c *Client) Publish(topic string, qos byte, retained bool, payload any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish MQTT message: %w", err)
	}
	return nil
}

// IsConnected returns true if the client is connected to the MQTT broker
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Disconnect disconnects from the MQTT broker
func (c *Client) Disconnect(quiesce uint) {
	if c.IsConnected() {
		c.client.Disconnect(quiesce)
		log.Info().Msg("disconnected from MQTT broker")
	}
}
