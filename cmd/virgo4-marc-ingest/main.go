package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"

	"github.com/uvalib/virgo4-marc-tools/internal/config"
	"github.com/uvalib/virgo4-marc-tools/pkg/archive"
	"github.com/uvalib/virgo4-marc-tools/pkg/blobstore"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

// NameTuple pairs the name a file is known by with its local copy
type NameTuple struct {
	LocalName  string
	RemoteName string
	Downloaded bool
}

// ingester carries everything needed to push files through to the workers
type ingester struct {
	cfg     ServiceConfig
	policy  *marc.Policy
	metrics *Metrics
	records chan<- ingestRecord
}

// main entry point
func main() {

	log.Printf("===> %s service starting up (version: %s) <===", os.Args[0], Version())

	// Get config params and use them to init service context. Any issues are fatal
	cfg := LoadConfiguration()

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	fatalIfError(err)

	metrics := NewMetrics(prometheus.DefaultRegisterer)
	if cfg.MetricsAddress != "" {
		go serveMetrics(cfg.MetricsAddress)
	}

	// load our AWS sqs helper object
	aws, err := awssqs.NewAwsSqs(awssqs.AwsSqsConfig{})
	fatalIfError(err)

	outQueueHandle, err := aws.QueueHandle(cfg.OutQueueName)
	fatalIfError(err)
	senders := []messageSender{&queueSender{name: cfg.OutQueueName, aws: aws, handle: outQueueHandle}}

	if cfg.CacheQueueName != "" {
		cacheQueueHandle, err := aws.QueueHandle(cfg.CacheQueueName)
		fatalIfError(err)
		senders = append(senders, &queueSender{name: cfg.CacheQueueName, aws: aws, handle: cacheQueueHandle})
	}

	// the archive database is shared by all the workers
	var arch *archive.Archive
	if cfg.ArchiveDir != "" {
		manager := blobstore.NewManager()
		store, err := manager.Acquire(cfg.ArchiveDir)
		fatalIfError(err)
		defer manager.Release(store)
		arch = archive.New(store, "", policy)
	}

	// create the record channel
	recordsChan := make(chan ingestRecord, cfg.WorkerQueueSize)

	// start workers here
	var wg sync.WaitGroup
	for w := 1; w <= cfg.Workers; w++ {
		wg.Add(1)
		go worker(w, senders, arch, metrics, recordsChan, &wg)
	}

	ing := &ingester{cfg: *cfg, policy: policy, metrics: metrics, records: recordsChan}

	// single file mode, process it and wait for the workers to drain
	if cfg.FileName != "" {
		err = ing.ingestSingleFile(context.Background(), cfg.FileName)
		close(recordsChan)
		wg.Wait()
		fatalIfError(err)
		log.Printf("INFO: terminating normally")
		return
	}

	inQueueHandle, err := aws.QueueHandle(cfg.InQueueName)
	fatalIfError(err)

	for {
		// notification that there is one or more new ingest files to be processed
		inbound, message, err := getInboundNotification(*cfg, aws, inQueueHandle)
		fatalIfError(err)

		fileSets, err := ing.fetchAndValidate(context.Background(), inbound)

		// the notification has been dealt with either way, an invalid batch is not retried
		deleteNotification(aws, inQueueHandle, message)

		if err != nil {
			removeFiles(fileSets)
			continue
		}

		for _, file := range fileSets {
			_, err := ing.processFile(file)
			// fatal fail here because we have already validated the file and believe it to be correct so this
			// is some other sort of failure
			fatalIfError(err)
			removeFiles([]NameTuple{file})
		}
	}
}

// ingestSingleFile handles the -infile case, local or on S3
func (ing *ingester) ingestSingleFile(ctx context.Context, name string) error {

	inbound := make([]InboundFile, 0, 1)
	local := ""
	if strings.HasPrefix(name, "s3://") {
		bucket, key, err := parseS3Url(name)
		if err != nil {
			return err
		}
		inbound = append(inbound, InboundFile{SourceBucket: bucket, SourceKey: key, ObjectSize: -1})
	} else {
		local = name
	}

	var fileSets []NameTuple
	var err error
	if local != "" {
		fileSets = []NameTuple{{LocalName: local, RemoteName: local}}
		err = ing.validate(fileSets[0])
	} else {
		fileSets, err = ing.fetchAndValidate(ctx, inbound)
	}
	if err != nil {
		removeFiles(fileSets)
		return err
	}

	_, err = ing.processFile(fileSets[0])
	removeFiles(fileSets)
	return err
}

// fetchAndValidate downloads each file and validates it. On error the files
// downloaded so far are returned so they can be removed.
func (ing *ingester) fetchAndValidate(ctx context.Context, inbound []InboundFile) ([]NameTuple, error) {

	fileSets := make([]NameTuple, 0, len(inbound))
	for _, f := range inbound {

		// save the remote name, we will need it later
		file := NameTuple{
			RemoteName: fmt.Sprintf("%s/%s", f.SourceBucket, f.SourceKey),
			Downloaded: true,
		}

		if f.ObjectSize == 0 {
			log.Printf("INFO: notification is reporting %s is ZERO length, ignoring", file.RemoteName)
			continue
		}

		localName, err := s3download(ctx, ing.cfg.DownloadDir, f.SourceBucket, f.SourceKey)
		if err != nil {
			return fileSets, err
		}
		file.LocalName = localName

		// update our list of files to be processed
		fileSets = append(fileSets, file)

		if err := ing.validate(file); err != nil {
			return fileSets, err
		}
	}
	return fileSets, nil
}

func (ing *ingester) validate(file NameTuple) error {

	log.Printf("INFO: validating %s (%s)", file.RemoteName, file.LocalName)

	loader, err := NewRecordLoader(ing.cfg.DataSource, file.RemoteName, file.LocalName, ing.policy, ing.metrics)
	if err != nil {
		ing.metrics.FilesProcessed.WithLabelValues("invalid").Inc()
		log.Printf("ERROR: %s (%s) cannot be opened (%s)", file.RemoteName, file.LocalName, err.Error())
		return err
	}
	defer loader.Done()

	err = loader.Validate()
	if err != nil {
		ing.metrics.FilesProcessed.WithLabelValues("invalid").Inc()
		log.Printf("ERROR: %s (%s) appears to be invalid, ignoring it (%s)", file.RemoteName, file.LocalName, err.Error())
		return err
	}

	log.Printf("INFO: %s (%s) appears to be OK, ready for ingest", file.RemoteName, file.LocalName)
	return nil
}

// processFile queues every (merged) record of a validated file for the
// workers and returns the number queued
func (ing *ingester) processFile(file NameTuple) (uint, error) {

	start := time.Now()
	log.Printf("INFO: processing %s (%s)", file.RemoteName, file.LocalName)

	loader, err := NewRecordLoader(ing.cfg.DataSource, file.RemoteName, file.LocalName, ing.policy, ing.metrics)
	if err != nil {
		return 0, err
	}
	defer loader.Done()

	count := uint(0)
	rec, err := loader.First(true)
	for err == nil {

		count++
		ing.records <- ingestRecord{record: rec, source: loader.Source()}

		if count%1000 == 0 {
			duration := time.Since(start)
			log.Printf("INFO: queued %d records (%0.2f tps)", count, float64(count)/duration.Seconds())
		}

		if ing.cfg.MaxCount != 0 && count >= ing.cfg.MaxCount {
			log.Printf("INFO: terminating after %d records", count)
			break
		}

		rec, err = loader.Next(true)
	}

	if err != nil && err != io.EOF {
		ing.metrics.FilesProcessed.WithLabelValues("failed").Inc()
		return count, err
	}

	if count == 0 {
		log.Printf("WARNING: EOF on first read, unexpected empty file")
	}

	ing.metrics.FilesProcessed.WithLabelValues("ok").Inc()
	duration := time.Since(start)
	log.Printf("INFO: done processing %s (%s). %d records (%0.2f tps)", file.RemoteName, file.LocalName, count, float64(count)/duration.Seconds())
	return count, nil
}

func fatalIfError(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// removeFiles deletes the local copies of downloaded files
func removeFiles(fileSets []NameTuple) {

	for _, f := range fileSets {
		if f.Downloaded == false || f.LocalName == "" {
			continue
		}
		log.Printf("INFO: removing %s", f.LocalName)
		if err := os.Remove(f.LocalName); err != nil {
			log.Printf("WARNING: unable to remove %s (%s)", f.LocalName, err.Error())
		}
	}
}

//
// end of file
//
