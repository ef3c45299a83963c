package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func appendCmd() *cli.Command {
	return &cli.Command{
		Name:      "append",
		Usage:     "Append the records of a file to a binary MARC file, safe against concurrent appenders",
		ArgsUsage: "<in> <target>",
		Flags:     []cli.Flag{policyFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2, "<in> <target>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			n, err := appendRecords(cmd.Args().Get(0), cmd.Args().Get(1), policy)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(cmd), "%d records appended\n", n)
			return err
		},
	}
}

func appendRecords(src string, target string, policy *marc.Policy) (int, error) {
	if sameFile(src, target) {
		return 0, fmt.Errorf("cannot append %s to itself", src)
	}
	w, err := marc.OpenAppendWriter(target)
	if err != nil {
		return 0, err
	}

	count := 0
	err = eachRecord(src, marc.FileTypeAuto, policy, func(rec *marc.Record) error {
		count++
		return w.Write(rec)
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return count, err
}

func eraseCmd() *cli.Command {
	return &cli.Command{
		Name:      "erase",
		Usage:     "Remove every field with the given tags",
		ArgsUsage: "<in> <out>",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.StringFlag{Name: "tags", Usage: "tags to remove (comma separated)", Required: true},
			formatFlag("to", "output format"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2, "<in> <out>"); err != nil {
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
			removed, err := eraseTags(cmd.Args().Get(0), cmd.Args().Get(1), to, policy, splitList(cmd.String("tags")))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(cmd), "%d fields removed\n", removed)
			return err
		},
	}
}

func eraseTags(src string, dst string, to marc.FileType, policy *marc.Policy, tags []string) (int, error) {
	removed := 0
	_, err := rewrite(src, dst, to, policy, func(rec *marc.Record) (bool, error) {
		for _, tag := range tags {
			removed += rec.Erase(tag)
		}
		return true, nil
	})
	return removed, err
}

func retagCmd() *cli.Command {
	return &cli.Command{
		Name:      "retag",
		Usage:     "Change the tag of every field with one tag to another",
		ArgsUsage: "<in> <out>",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.StringFlag{Name: "from", Usage: "current tag", Required: true},
			&cli.StringFlag{Name: "to-tag", Usage: "new tag", Required: true},
			formatFlag("to", "output format"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2, "<in> <out>"); err != nil {
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
			changed, err := retagFields(cmd.Args().Get(0), cmd.Args().Get(1), to, policy, cmd.String("from"), cmd.String("to-tag"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(cmd), "%d fields retagged\n", changed)
			return err
		},
	}
}

func retagFields(src string, dst string, to marc.FileType, policy *marc.Policy, from string, tag string) (int, error) {
	changed := 0
	_, err := rewrite(src, dst, to, policy, func(rec *marc.Record) (bool, error) {
		n, err := rec.ReTag(from, tag)
		if err != nil {
			return false, fmt.Errorf("record %s: %w", rec.ControlNumber(), err)
		}
		changed += n
		return true, nil
	})
	return changed, err
}

//
// end of file
//
