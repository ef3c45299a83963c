package main

import (
	"log"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

// getInboundNotification waits for a notification naming one or more new
// objects. The message is returned so the caller can delete it once the files
// have been dealt with.
func getInboundNotification(config ServiceConfig, aws awssqs.AWS_SQS, inQueueHandle awssqs.QueueHandle) ([]InboundFile, awssqs.Message, error) {

	for {

		messages, err := aws.BatchMessageGet(inQueueHandle, 1, time.Duration(config.PollTimeOut)*time.Second)
		if err != nil {
			return nil, awssqs.Message{}, err
		}

		// did we get anything to process
		if len(messages) == 1 {

			log.Printf("INFO: received new notification")

			// assume the message is an S3 event containing a list of one or more new objects
			inbound, err := decodeS3Event([]byte(messages[0].Payload))
			if err != nil {
				return nil, awssqs.Message{}, err
			}

			if len(inbound) != 0 {
				return inbound, messages[0], nil
			}

			log.Printf("INFO: not an interesting notification, ignoring it")
			deleteNotification(aws, inQueueHandle, messages[0])
		}
	}
}

// deleteNotification removes a handled message; failures are logged only as
// the message will simply be delivered again.
func deleteNotification(aws awssqs.AWS_SQS, inQueueHandle awssqs.QueueHandle, message awssqs.Message) {

	opStatus, err := aws.BatchMessageDelete(inQueueHandle, []awssqs.Message{message})
	if err != nil {
		if err != awssqs.OneOrMoreOperationsUnsuccessfulError {
			fatalIfError(err)
		}
	}

	// check the operation results
	for ix, op := range opStatus {
		if op == false {
			log.Printf("ERROR: message %d failed to delete", ix)
		}
	}
}

// turn a message payload received from the inbound queue into a list of zero or more new S3 objects
func decodeS3Event(payload []byte) ([]InboundFile, error) {

	events := Events{}
	err := json.Unmarshal(payload, &events)
	if err != nil {
		log.Printf("ERROR: json unmarshal: %s", err)
		return nil, err
	}

	files := make([]InboundFile, 0, len(events.Records))
	for _, r := range events.Records {
		// object keys arrive URL encoded
		key, err := url.QueryUnescape(r.S3.Object.Key)
		if err != nil {
			return nil, err
		}
		files = append(files, InboundFile{
			SourceBucket: r.S3.Bucket.Name,
			SourceKey:    key,
			ObjectSize:   r.S3.Object.Size,
		})
	}
	return files, nil
}

//
// end of file
//
