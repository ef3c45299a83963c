package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

var ErrFileNotOpen = fmt.Errorf("file is not open")

// RecordLoader reads the records of one batch file
type RecordLoader struct {
	source     string
	remoteName string
	localName  string
	policy     *marc.Policy
	metrics    *Metrics
	reader     marc.Reader
}

// NewRecordLoader opens localName. Records are tagged with source, or with a
// source derived from remoteName when source is blank.
func NewRecordLoader(source string, remoteName string, localName string, policy *marc.Policy, metrics *Metrics) (*RecordLoader, error) {

	reader, err := marc.OpenReaderWithPolicy(localName, marc.FileTypeAuto, policy)
	if err != nil {
		return nil, err
	}

	if source == "" {
		source = sourceFromName(remoteName)
	}

	return &RecordLoader{
		source:     source,
		remoteName: remoteName,
		localName:  localName,
		policy:     policy,
		metrics:    metrics,
		reader:     reader,
	}, nil
}

func (l *RecordLoader) Source() string {
	return l.source
}

// Validate reads every record and fails on the first bad one. Repeated
// non-repeatable tags are only reported.
func (l *RecordLoader) Validate() error {

	if l.reader == nil {
		return ErrFileNotOpen
	}

	if err := l.reader.Rewind(); err != nil {
		return err
	}

	count := 0
	for {
		rec, err := l.reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		count++

		if err := l.policy.Check(rec); err != nil {
			log.Printf("WARNING: %s: %s", l.remoteName, err.Error())
		}
	}

	log.Printf("INFO: %s contains %d records", l.remoteName, count)
	return nil
}

// First rewinds and returns the first record
func (l *RecordLoader) First(readAhead bool) (*marc.Record, error) {

	if l.reader == nil {
		return nil, ErrFileNotOpen
	}

	if err := l.reader.Rewind(); err != nil {
		return nil, err
	}

	return l.Next(readAhead)
}

// Next returns the next record. With readAhead, following records that carry
// the same control number are folded into it.
func (l *RecordLoader) Next(readAhead bool) (*marc.Record, error) {

	if l.reader == nil {
		return nil, ErrFileNotOpen
	}

	rec, err := l.reader.Read()
	if err != nil {
		return nil, err
	}
	l.metrics.RecordsRead.Inc()

	id := rec.ControlNumber()
	if readAhead == false || id == "" {
		return rec, nil
	}

	for {
		currentPos := l.reader.Tell()

		nextRec, err := l.reader.Read()
		if err != nil || nextRec.ControlNumber() != id {
			// leave the following record (or the error) for the next call
			if err := l.reader.Seek(currentPos); err != nil {
				return nil, err
			}
			return rec, nil
		}
		l.metrics.RecordsRead.Inc()

		log.Printf("WARNING: identified additional marc record for %s, appending it", id)
		if err := mergeRecords(rec, nextRec); err != nil {
			return nil, err
		}
		l.metrics.RecordsMerged.Inc()
	}
}

func (l *RecordLoader) Done() {

	if l.reader != nil {
		l.reader.Close()
		l.reader = nil
	}
}

// mergeRecords appends the data fields of extra to rec. Control fields of
// extra are dropped; rec already has its own.
func mergeRecords(rec *marc.Record, extra *marc.Record) error {

	for _, f := range extra.Fields() {
		if f.IsControlField() {
			continue
		}
		if err := rec.InsertFieldAtEnd(f.Clone()); err != nil {
			return fmt.Errorf("merging %s: %w", rec.ControlNumber(), err)
		}
	}
	return nil
}

// sourceFromName derives a data source from a file name, e.g.
// "bucket/sirsi-full-20200101.mrc" is "sirsi".
func sourceFromName(name string) string {

	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if ix := strings.IndexAny(base, "-_."); ix > 0 {
		base = base[:ix]
	}
	return strings.ToLower(base)
}

//
// end of file
//
