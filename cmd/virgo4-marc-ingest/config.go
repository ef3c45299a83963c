package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

// ServiceConfig defines all of the service configuration parameters
type ServiceConfig struct {
	InQueueName     string // inbound notification queue (queue mode)
	OutQueueName    string // outbound record queue
	CacheQueueName  string // optional cache queue, receives the same messages
	FileName        string // local or s3:// batch file (file mode)
	DataSource      string // overrides the source derived from the file name
	MaxCount        uint
	Workers         int
	WorkerQueueSize int
	PollTimeOut     int64
	DownloadDir     string
	ArchiveDir      string // pebble database for record copies, optional
	PolicyFile      string
	MetricsAddress  string
}

// LoadConfiguration will load the service configuration from env/cmdline
// and return a pointer to it. Any failures are fatal.
func LoadConfiguration() *ServiceConfig {

	log.Printf("Loading configuration...")
	var cfg ServiceConfig
	flag.StringVar(&cfg.InQueueName, "inqueue", "", "Inbound notification queue name")
	flag.StringVar(&cfg.OutQueueName, "outqueue", "", "Outbound queue name")
	flag.StringVar(&cfg.CacheQueueName, "cachequeue", "", "Cache queue name (optional)")
	flag.StringVar(&cfg.FileName, "infile", "", "Batch file, local path or s3://bucket/key")
	flag.StringVar(&cfg.DataSource, "source", "", "Data source name (default is derived from the file name)")
	flag.UintVar(&cfg.MaxCount, "max", 0, "Maximum number of records to ingest (0 is all of them)")
	flag.IntVar(&cfg.Workers, "workers", 1, "Number of outbound workers")
	flag.IntVar(&cfg.WorkerQueueSize, "queuesize", 1000, "Worker queue size")
	flag.Int64Var(&cfg.PollTimeOut, "polltimeout", 20, "Inbound queue poll timeout (seconds)")
	flag.StringVar(&cfg.DownloadDir, "downloaddir", "/tmp", "Download directory for S3 objects")
	flag.StringVar(&cfg.ArchiveDir, "archive", "", "Record archive database directory (optional)")
	flag.StringVar(&cfg.PolicyFile, "policy", "", "MARC policy file, TOML or YAML (optional)")
	flag.StringVar(&cfg.MetricsAddress, "metrics", "", "Prometheus listen address, e.g. :8080 (optional)")

	flag.Parse()

	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}

	log.Printf("[CONFIG] InQueueName          = [%s]", cfg.InQueueName)
	log.Printf("[CONFIG] OutQueueName         = [%s]", cfg.OutQueueName)
	log.Printf("[CONFIG] CacheQueueName       = [%s]", cfg.CacheQueueName)
	log.Printf("[CONFIG] FileName             = [%s]", cfg.FileName)
	log.Printf("[CONFIG] DataSource           = [%s]", cfg.DataSource)
	log.Printf("[CONFIG] MaxCount             = [%d]", cfg.MaxCount)
	log.Printf("[CONFIG] Workers              = [%d]", cfg.Workers)
	log.Printf("[CONFIG] WorkerQueueSize      = [%d]", cfg.WorkerQueueSize)
	log.Printf("[CONFIG] PollTimeOut          = [%d]", cfg.PollTimeOut)
	log.Printf("[CONFIG] DownloadDir          = [%s]", cfg.DownloadDir)
	log.Printf("[CONFIG] ArchiveDir           = [%s]", cfg.ArchiveDir)
	log.Printf("[CONFIG] PolicyFile           = [%s]", cfg.PolicyFile)
	log.Printf("[CONFIG] MetricsAddress       = [%s]", cfg.MetricsAddress)

	return &cfg
}

func (cfg *ServiceConfig) validate() error {

	if len(cfg.OutQueueName) == 0 {
		return fmt.Errorf("OutQueueName cannot be blank")
	}

	if len(cfg.FileName) == 0 && len(cfg.InQueueName) == 0 {
		return fmt.Errorf("one of FileName or InQueueName must be specified")
	}

	if len(cfg.FileName) != 0 && len(cfg.InQueueName) != 0 {
		return fmt.Errorf("FileName and InQueueName cannot both be specified")
	}

	if cfg.Workers <= 0 {
		return fmt.Errorf("Workers must be at least 1")
	}

	if cfg.WorkerQueueSize < 0 {
		return fmt.Errorf("WorkerQueueSize cannot be negative")
	}

	if strings.HasPrefix(cfg.FileName, "s3://") && len(cfg.DownloadDir) == 0 {
		return fmt.Errorf("DownloadDir cannot be blank for S3 input")
	}

	return nil
}

//
// end of file
//
