package main

import (
	"context"
	"encoding/base64"
	"log"
	"sync"
	"time"

	"github.com/uvalib/virgo4-sqs-sdk/awssqs"

	"github.com/uvalib/virgo4-marc-tools/pkg/archive"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

// time to wait before flushing pending records
var flushTimeout = 5 * time.Second

// ingestRecord is a record on its way to the outbound queue
type ingestRecord struct {
	record *marc.Record
	source string
}

// messageSender delivers a batch to one queue and reports how many messages
// failed.
type messageSender interface {
	Send(batch []awssqs.Message) (int, error)
}

// queueSender sends to an SQS queue
type queueSender struct {
	name   string
	aws    awssqs.AWS_SQS
	handle awssqs.QueueHandle
}

func (s *queueSender) Send(batch []awssqs.Message) (int, error) {

	opStatus, err := s.aws.BatchMessagePut(s.handle, batch)
	if err != nil {
		if err != awssqs.OneOrMoreOperationsUnsuccessfulError {
			return 0, err
		}
	}

	// check the operation results
	failed := 0
	for ix, op := range opStatus {
		if op == false {
			log.Printf("WARNING: message %d failed to send to %s", ix, s.name)
			failed++
		}
	}
	return failed, nil
}

// worker batches records from the channel and sends them to every sender.
// It returns once the channel is closed and the last block is flushed.
func worker(id int, senders []messageSender, arch *archive.Archive, metrics *Metrics, records <-chan ingestRecord, wg *sync.WaitGroup) {

	defer wg.Done()

	count := uint(0)
	block := make([]ingestRecord, 0, awssqs.MAX_SQS_BLOCK_COUNT)

	flush := func(reason string) {
		if len(block) == 0 {
			return
		}
		err := sendOutboundMessages(senders, arch, metrics, block)
		fatalIfError(err)
		block = block[:0]
		log.Printf("INFO: worker %d processed %d records (%s)", id, count, reason)
	}

	for {

		// process a record or wait...
		select {
		case record, ok := <-records:
			if ok == false {
				flush("done")
				return
			}

			block = append(block, record)
			count++

			// have we reached a block size limit
			if uint(len(block)) == awssqs.MAX_SQS_BLOCK_COUNT {
				err := sendOutboundMessages(senders, arch, metrics, block)
				fatalIfError(err)
				block = block[:0]
			}

			if count%1000 == 0 {
				log.Printf("INFO: worker %d processed %d records", id, count)
			}

		case <-time.After(flushTimeout):
			// we timed out waiting for new records, let's flush what we have (if anything)
			flush("flushing")
		}
	}
}

// sendOutboundMessages encodes the records and sends the batch to each sender.
// Records that cannot be encoded are logged and skipped.
func sendOutboundMessages(senders []messageSender, arch *archive.Archive, metrics *Metrics, records []ingestRecord) error {

	if len(records) == 0 {
		return nil
	}

	batch := make([]awssqs.Message, 0, len(records))
	for _, r := range records {
		rec := r.record
		message, err := constructMessage(rec, r.source)
		if err != nil {
			log.Printf("ERROR: record %s cannot be encoded, skipping it (%s)", rec.ControlNumber(), err.Error())
			metrics.RecordsFailed.Inc()
			continue
		}
		batch = append(batch, message)

		if arch != nil {
			if _, err := arch.Put(context.Background(), rec); err != nil {
				return err
			}
			metrics.RecordsArchived.Inc()
		}
	}

	if len(batch) == 0 {
		return nil
	}

	for ix, sender := range senders {
		failed, err := sender.Send(batch)
		if err != nil {
			return err
		}
		// the first sender is the outbound queue, the rest are copies
		if ix == 0 {
			metrics.RecordsSent.Add(float64(len(batch) - failed))
			metrics.RecordsFailed.Add(float64(failed))
		}
	}

	return nil
}

func constructMessage(record *marc.Record, source string) (awssqs.Message, error) {

	raw, err := marc.Encode(record)
	if err != nil {
		return awssqs.Message{}, err
	}

	attributes := make([]awssqs.Attribute, 0, 3)
	attributes = append(attributes, awssqs.Attribute{Name: "id", Value: record.ControlNumber()})
	attributes = append(attributes, awssqs.Attribute{Name: "type", Value: "base64/marc"})
	attributes = append(attributes, awssqs.Attribute{Name: "source", Value: source})
	return awssqs.Message{Attribs: attributes, Payload: []byte(base64.StdEncoding.EncodeToString(raw))}, nil
}

//
// end of file
//
