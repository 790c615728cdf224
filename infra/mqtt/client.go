package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/promanage/auth"
	"github.com/kilianp07/promanage/core/events"
	"github.com/kilianp07/promanage/infra/logger"
	"github.com/kilianp07/promanage/internal/eventbus"
	"github.com/kilianp07/promanage/pkg/export"
)

// Config defines the connection parameters for the schedule publisher.
type Config struct {
	Enabled    bool        `json:"enabled"`
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	Retain     bool        `json:"retain"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	LWTTopic   string      `json:"lwt_topic"`
	LWTPayload string      `json:"lwt_payload"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-"`
	// OAuth2, when configured, supplies the broker password as an access
	// token fetched with client credentials.
	OAuth2 auth.Conf `json:"oauth2"`
}

// DefaultTopic receives every computed schedule.
const DefaultTopic = "promanage/schedule"

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.ClientID == "" {
		c.ClientID = "promanage-" + uuid.NewString()[:8]
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields when publishing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends computed schedules to an MQTT topic.
type Publisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	onLost := opts.OnConnectionLost
	opts.OnConnectionLost = func(c paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
		if onLost != nil {
			onLost(c, err)
		}
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.OAuth2.Enabled() {
		bt := newBrokerToken(cfg)
		opts.SetCredentialsProvider(bt.credentials)
		opts.SetConnectionLostHandler(bt.invalidate)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, false)
	}
	return opts, nil
}

// brokerToken supplies the broker password from an OAuth2 access token. After
// a lost connection the next reconnect asks for a fresh token, since the
// broker may have dropped us for an expired or revoked one.
type brokerToken struct {
	cc       *auth.ClientCred
	user     string
	fallback string
	stale    atomic.Bool
	log      logger.Logger
}

func newBrokerToken(cfg Config) *brokerToken {
	user := cfg.Username
	if user == "" {
		user = cfg.ClientID
	}
	return &brokerToken{
		cc:       auth.NewClientCred(cfg.OAuth2),
		user:     user,
		fallback: cfg.Password,
		log:      logger.New("mqtt_auth"),
	}
}

func (b *brokerToken) credentials() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var (
		tok string
		err error
	)
	if b.stale.Swap(false) {
		tok, err = b.cc.ForceRefresh(ctx)
	} else {
		tok, err = b.cc.GetToken(ctx)
	}
	if err != nil {
		b.log.Errorf("fetch broker token: %v", err)
		return b.user, b.fallback
	}
	return b.user, tok
}

func (b *brokerToken) invalidate(paho.Client, error) {
	b.stale.Store(true)
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PublishSchedule sends doc as JSON, retrying with exponential backoff.
func (p *Publisher) PublishSchedule(ctx context.Context, doc export.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.log.Infof("published schedule to %s", p.topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish schedule: %w", publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}

// SchedulePublisher is the part of Publisher used by StartScheduleForwarder.
type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, doc export.Document) error
}

// StartScheduleForwarder publishes every ScheduleComputed event seen on bus
// until ctx is canceled or the bus is closed. The returned channel is closed
// when forwarding stops.
func StartScheduleForwarder(ctx context.Context, bus eventbus.EventBus, pub SchedulePublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.ScheduleComputed)
				if !ok {
					continue
				}
				doc := export.NewDocument(e.Result, labels(e.Labels), e.Run.Time)
				if err := pub.PublishSchedule(ctx, doc); err != nil {
					log.Errorf("forward schedule: %v", err)
				}
			}
		}
	}()
	return done
}

type labels []string

func (l labels) Label(i int) string {
	if i >= 0 && i < len(l) && l[i] != "" {
		return l[i]
	}
	return fmt.Sprintf("Slot %d", i+1)
}
