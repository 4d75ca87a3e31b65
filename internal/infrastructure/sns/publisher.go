package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/infrastructure/awscfg"
)

// EventNotificationCreated is the eventType attribute on published messages.
const EventNotificationCreated = "notification.created"

// PublishAPI is the subset of the SNS client the publisher needs.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher fans notification events out to an SNS topic.
type Publisher struct {
	client   PublishAPI
	topicARN string
}

type event struct {
	Event        string               `json:"event"`
	Notification *domain.Notification `json:"notification"`
}

func NewPublisher(client PublishAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// NewFromConfig builds a Publisher for cfg.SNSTopicARN using the shared AWS config.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = awscfg.Endpoint(cfg)
	})
	return NewPublisher(client, cfg.SNSTopicARN), nil
}

// NotificationCreated publishes n as a notification.created event.
func (p *Publisher) NotificationCreated(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(event{Event: EventNotificationCreated, Notification: n})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventNotificationCreated)},
			"userId":    {DataType: aws.String("String"), StringValue: aws.String(n.UserID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventNotificationCreated, err)
	}
	return nil
}
