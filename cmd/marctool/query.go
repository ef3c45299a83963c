package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v3"

	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func queryCmd() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a jq filter over each record in MARC-in-JSON form",
		ArgsUsage: "<filter> <file>",
		Description: `Each record is presented as {"leader": ..., "fields": [{"245": {"ind1": ..., "subfields": [{"a": ...}]}}]}.
Example: marctool query '.fields[] | ."001" // empty' records.mrc`,
		Flags: []cli.Flag{policyFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2, "<filter> <file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			return queryRecords(ctx, output(cmd), cmd.Args().Get(0), cmd.Args().Get(1), policy)
		},
	}
}

// queryRecords compiles filter once and writes every value it yields, one
// JSON document per line.
func queryRecords(ctx context.Context, w io.Writer, filter string, path string, policy *marc.Policy) error {
	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("parse filter: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("compile filter: %w", err)
	}

	return eachRecord(path, marc.FileTypeAuto, policy, func(rec *marc.Record) error {
		input, err := recordValue(rec)
		if err != nil {
			return err
		}

		iter := code.RunWithContext(ctx, input)
		for {
			v, ok := iter.Next()
			if !ok {
				return nil
			}
			if err, isErr := v.(error); isErr {
				return fmt.Errorf("record %s: %w", rec.ControlNumber(), err)
			}
			out, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, string(out)); err != nil {
				return err
			}
		}
	})
}

// recordValue turns a record into the plain maps and slices gojq works on
func recordValue(rec *marc.Record) (interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

//
// end of file
//
