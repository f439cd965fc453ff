package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// ConsoleEvent announces a mutation made through the console (party, product, document or payment).
type ConsoleEvent struct {
	Resource      string          `json:"resource"`
	Action        string          `json:"action"`
	ReferenceId   string          `json:"reference_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CorrelationId string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func pubSubTopic() string {
	return strings.TrimSpace(os.Getenv("PUBSUB_TOPIC"))
}

// EventsEnabled reports whether console events are published.
func EventsEnabled() bool {
	return pubSubTopic() != ""
}

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Application Default Credentials.
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return pubsubClient, nil
}

// PublishConsoleEvent publishes evt to PUBSUB_TOPIC and returns the server-assigned message id.
// It is a no-op when PUBSUB_TOPIC is not set.
func PublishConsoleEvent(ctx context.Context, evt ConsoleEvent) (string, error) {
	topicName := pubSubTopic()
	if topicName == "" {
		return "", nil
	}
	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}

	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"resource": evt.Resource,
			"action":   evt.Action,
		},
	})
	return result.Get(ctx)
}

func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
