package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/uvalib/virgo4-marc-tools/pkg/archive"
	"github.com/uvalib/virgo4-marc-tools/pkg/blobstore"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func storeFlags() []cli.Flag {
	return []cli.Flag{
		policyFlag(),
		&cli.StringFlag{Name: "db", Usage: "pebble archive directory"},
		&cli.StringFlag{Name: "bucket", Usage: "S3 archive bucket (instead of -db)"},
		&cli.StringFlag{Name: "prefix", Usage: "key prefix inside the archive"},
	}
}

// openStore returns the archive store named by -db or -bucket
func openStore(cmd *cli.Command) (blobstore.Store, error) {
	db, bucket := cmd.String("db"), cmd.String("bucket")
	switch {
	case db != "" && bucket != "":
		return nil, fmt.Errorf("use only one of -db and -bucket")
	case db != "":
		return blobstore.OpenPebbleStore(db)
	case bucket != "":
		return blobstore.NewS3Store(bucket, "")
	}
	return nil, fmt.Errorf("one of -db or -bucket is required")
}

func archiveCmd() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Store compressed copies of each record, keyed by control number",
		ArgsUsage: "<file>",
		Flags:     storeFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := archiveRecords(ctx, archive.New(store, cmd.String("prefix"), policy), cmd.Args().First(), policy)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(cmd), "%d records archived\n", n)
			return err
		},
	}
}

func archiveRecords(ctx context.Context, arch *archive.Archive, path string, policy *marc.Policy) (int, error) {
	count := 0
	err := eachRecord(path, marc.FileTypeAuto, policy, func(rec *marc.Record) error {
		if _, err := arch.Put(ctx, rec); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func restoreCmd() *cli.Command {
	flags := append(storeFlags(),
		&cli.StringFlag{Name: "id", Usage: "control numbers (comma separated)", Required: true},
		formatFlag("to", "output format"),
	)
	return &cli.Command{
		Name:      "restore",
		Usage:     "Write archived records to a file",
		ArgsUsage: "<out>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<out>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			to, err := parseFormat(cmd, "to")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			arch := archive.New(store, cmd.String("prefix"), policy)
			return restoreRecords(ctx, arch, cmd.String("prefix"), splitList(cmd.String("id")), cmd.Args().First(), to)
		},
	}
}

func restoreRecords(ctx context.Context, arch *archive.Archive, prefix string, ids []string, dst string, to marc.FileType) error {
	w, err := marc.CreateWriter(dst, to)
	if err != nil {
		return err
	}
	for _, id := range ids {
		rec, err := arch.Get(ctx, prefix+id)
		if err != nil {
			w.Close()
			return fmt.Errorf("%s: %w", id, err)
		}
		if err := w.Write(rec); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

//
// end of file
//
