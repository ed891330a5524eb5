package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/WWTD-Production/Server/app/models"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// OutboxPublisher durably parks message writes that failed after the
// provider call already succeeded, so conversation history and billing
// evidence are not silently dropped.
type OutboxPublisher interface {
	Publish(ctx context.Context, rec models.PendingMessages) error
}

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSOutbox publishes pending message records to an SQS queue, drained by
// cmd/outbox-drain.
type SQSOutbox struct {
	client   sqsSender
	queueURL string
}

// NewSQSOutbox builds the outbox from the default AWS config chain.
func NewSQSOutbox(ctx context.Context, queueURL string) (*SQSOutbox, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SQSOutbox{
		client:   sqs.NewFromConfig(awsCfg),
		queueURL: queueURL,
	}, nil
}

func (o *SQSOutbox) Publish(ctx context.Context, rec models.PendingMessages) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal pending messages: %w", err)
	}

	_, err = o.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &o.queueURL,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send outbox message: %w", err)
	}
	return nil
}
