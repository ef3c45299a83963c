package main

// this describes the structure of the event received from S3

type Events struct {
	Records []S3EventRecord `json:"Records"`
}

type S3EventRecord struct {
	EventName string   `json:"eventName"`
	S3        S3Record `json:"s3"`
}

type S3Record struct {
	Bucket BucketRecord `json:"bucket"`
	Object ObjectRecord `json:"object"`
}

type BucketRecord struct {
	Name string `json:"name"`
}

type ObjectRecord struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// InboundFile is an S3 object named by a notification
type InboundFile struct {
	SourceBucket string
	SourceKey    string
	ObjectSize   int64
}

//
// end of file
//
