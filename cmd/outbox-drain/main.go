// Command outbox-drain replays message writes that were parked on the SQS
// outbox after a persistence failure.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/WWTD-Production/Server/app"
	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/app/models"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Outbox.QueueURL == "" {
		log.Fatal("OUTBOX_QUEUE_URL must be set")
	}

	db := app.MustOpenDB(cfg)
	store := app.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}
	client := sqs.NewFromConfig(awsCfg)

	log.Printf("draining outbox queue %s", cfg.Outbox.QueueURL)
	for ctx.Err() == nil {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &cfg.Outbox.QueueURL,
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("receive failed: %v", err)
			continue
		}

		for _, msg := range out.Messages {
			var rec models.PendingMessages
			if err := json.Unmarshal([]byte(*msg.Body), &rec); err != nil {
				log.Printf("skipping malformed outbox record: %v", err)
				// Delete it anyway; it will never parse on redelivery either.
			} else if err := store.AppendMessages(ctx, rec.UserID, rec.ThreadID, rec.Messages); err != nil {
				log.Printf("replay failed user=%s thread=%s: %v", rec.UserID, rec.ThreadID, err)
				// Leave the message on the queue for another attempt.
				continue
			} else {
				log.Printf("replayed %d messages user=%s thread=%s", len(rec.Messages), rec.UserID, rec.ThreadID)
			}

			_, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      &cfg.Outbox.QueueURL,
				ReceiptHandle: msg.ReceiptHandle,
			})
			if err != nil {
				log.Printf("delete failed: %v", err)
			}
		}
	}

	log.Print("outbox drain stopped")
}
