package sns

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/mbuddy-api/internal/config"
)

// Publisher hands messages off to an SNS topic consumed by an external
// delivery pipeline. Publish success means the pipeline accepted the message,
// not that the recipient received it.
type Publisher struct {
	client   *sns.Client
	topicARN string
}

// message is the payload shape the delivery pipeline expects.
type message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN is required for the sns notifier channel")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

func (p *Publisher) Channel() string { return "sns" }

func (p *Publisher) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(message{Recipient: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal delivery payload: %w", err)
	}
	msg := string(payload)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Subject:  &subject,
		Message:  &msg,
	})
	return err
}
