package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// parseS3Url splits "s3://bucket/key/path" into bucket and key
func parseS3Url(s3url string) (string, string, error) {

	trimmed := strings.TrimPrefix(s3url, "s3://")
	if trimmed == s3url {
		return "", "", fmt.Errorf("%s is not an s3:// url", s3url)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%s must name a bucket and a key", s3url)
	}
	return parts[0], parts[1], nil
}

// s3download copies an object into a new temp file in downloadDir and returns
// the file name
func s3download(ctx context.Context, downloadDir string, bucket string, object string) (string, error) {

	file, err := os.CreateTemp(downloadDir, "")
	if err != nil {
		return "", err
	}
	defer file.Close()

	start := time.Now()
	sourcename := fmt.Sprintf("s3://%s/%s", bucket, object)
	log.Printf("INFO: downloading %s to %s", sourcename, file.Name())

	sess, err := session.NewSession()
	if err != nil {
		os.Remove(file.Name())
		return "", err
	}

	downloader := s3manager.NewDownloader(sess)

	fileSize, err := downloader.DownloadWithContext(ctx, file,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(object),
		})

	if err != nil {
		os.Remove(file.Name())
		return "", err
	}

	duration := time.Since(start)
	log.Printf("INFO: download of %s complete in %0.2f seconds (%d bytes)", sourcename, duration.Seconds(), fileSize)
	return file.Name(), nil
}

//
// end of file
//
