package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
)

const (
	// DefaultTopicPrefix is the root of every report topic.
	DefaultTopicPrefix = "mysterygraph/mysteries"

	reportQoS      = 1
	connectTimeout = 10 * time.Second
)

// MQTTOptions configures an MQTTPublisher.
type MQTTOptions struct {
	BrokerURL   string // e.g. tcp://localhost:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// mqttClient is the part of paho.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes reports as retained QoS 1 messages on
// <prefix>/<document id>/report, so a controller that subscribes later
// still receives the latest verdict.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	mu     sync.Mutex
}

// NewMQTTPublisher connects to the broker. The client reconnects on its own
// after a successful first connection.
func NewMQTTPublisher(opts MQTTOptions) (*MQTTPublisher, error) {
	if opts.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt: broker url is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = "mysterygraph"
	}

	co := paho.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	client := paho.NewClient(co)
	if err := connect(client, opts.BrokerURL, connectTimeout); err != nil {
		return nil, err
	}
	return newMQTTPublisher(client, opts.TopicPrefix), nil
}

// connector is the part of paho.Client used to open the connection.
type connector interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
}

// connect waits up to timeout for the first connection. On failure the
// client is disconnected so no connect attempt outlives the call.
func connect(client connector, broker string, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return mgerrors.New(mgerrors.ErrCodeTimeout, "mqtt connect timeout: %s", broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return mgerrors.Wrap(mgerrors.ErrCodeNotify, err, "mqtt connect %s", broker)
	}
	return nil
}

func newMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the report topic for a document.
func (p *MQTTPublisher) Topic(documentID string) string {
	return p.prefix + "/" + documentID + "/report"
}

// Publish sends the report and waits for the broker acknowledgement or ctx.
func (p *MQTTPublisher) Publish(ctx context.Context, r Report) error {
	payload, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("mqtt: encode report: %w", err)
	}

	p.mu.Lock()
	token := p.client.Publish(p.Topic(r.DocumentID), reportQoS, true, payload)
	p.mu.Unlock()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return mgerrors.Wrap(mgerrors.ErrCodeTimeout, ctx.Err(), "mqtt publish %s", r.DocumentID)
	}
	if err := token.Error(); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeNotify, err, "mqtt publish %s", r.DocumentID)
	}
	return nil
}

// Close disconnects after letting in-flight messages finish.
func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client.Disconnect(250)
	return nil
}

var _ Publisher = (*MQTTPublisher)(nil)
