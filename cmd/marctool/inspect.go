package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func countCmd() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the records in a file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{policyFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			count := 0
			err = eachRecord(cmd.Args().First(), marc.FileTypeAuto, policy, func(rec *marc.Record) error {
				count++
				return nil
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(output(cmd), count)
			return err
		},
	}
}

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print records in mnemonic text form",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.StringFlag{Name: "id", Usage: "only records with these control numbers (comma separated)"},
			&cli.StringFlag{Name: "tags", Usage: "only fields with these tags (comma separated)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			return dumpRecords(output(cmd), cmd.Args().First(), policy, splitList(cmd.String("id")), splitList(cmd.String("tags")))
		},
	}
}

func dumpRecords(w io.Writer, path string, policy *marc.Policy, ids []string, tags []string) error {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	keepTags := make(map[string]bool, len(tags))
	for _, t := range tags {
		keepTags[t] = true
	}

	return eachRecord(path, marc.FileTypeAuto, policy, func(rec *marc.Record) error {
		if len(wanted) != 0 && !wanted[rec.ControlNumber()] {
			return nil
		}
		if len(keepTags) != 0 {
			rec = rec.Clone()
			rec.FilterFields(func(f *marc.Field) bool { return keepTags[f.Tag()] })
		}
		return marc.WriteText(w, rec)
	})
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert between binary MARC, MARCXML and MARC-in-JSON",
		ArgsUsage: "<in> <out>",
		Flags: []cli.Flag{
			policyFlag(),
			formatFlag("to", "output format, auto picks from the output file name"),
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
			n, err := rewrite(cmd.Args().Get(0), cmd.Args().Get(1), to, policy, func(rec *marc.Record) (bool, error) {
				return true, nil
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(cmd), "%d records converted\n", n)
			return err
		},
	}
}

func indexCmd() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "List control numbers with the offset of their record",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{policyFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			return writeIndex(output(cmd), cmd.Args().First(), policy)
		},
	}
}

// writeIndex prints "id<TAB>offset" lines in offset order
func writeIndex(w io.Writer, path string, policy *marc.Policy) error {
	r, err := marc.OpenReaderWithPolicy(path, marc.FileTypeAuto, policy)
	if err != nil {
		return err
	}
	defer r.Close()

	idx, _, err := marc.BuildIndex(r)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idx[ids[i]] < idx[ids[j]] })

	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", id, idx[id]); err != nil {
			return err
		}
	}
	return nil
}

func extractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Copy the records with the given control numbers to a new file",
		ArgsUsage: "<in> <out>",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.StringFlag{Name: "id", Usage: "control numbers (comma separated)", Required: true},
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
			missing, err := extractRecords(cmd.Args().Get(0), cmd.Args().Get(1), to, policy, splitList(cmd.String("id")))
			if err != nil {
				return err
			}
			for _, id := range missing {
				fmt.Fprintf(os.Stderr, "WARNING: %s not found\n", id)
			}
			return nil
		},
	}
}

// extractRecords indexes src, then copies the requested records in the
// order given. It returns the ids that were not found.
func extractRecords(src string, dst string, to marc.FileType, policy *marc.Policy, ids []string) ([]string, error) {
	r, err := marc.OpenReaderWithPolicy(src, marc.FileTypeAuto, policy)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	idx, _, err := marc.BuildIndex(r)
	if err != nil {
		return nil, err
	}

	w, err := marc.CreateWriter(dst, to)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0)
	for _, id := range ids {
		rec, err := marc.ReadIndexed(r, idx, id)
		if err == marc.ErrNotIndexed {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Write(rec); err != nil {
			w.Close()
			return nil, err
		}
	}
	return missing, w.Close()
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Read every record, failing on the first malformed one",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.BoolFlag{Name: "strict", Usage: "treat repeated non-repeatable tags as errors"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file>"); err != nil {
				return err
			}
			policy, err := loadPolicy(cmd)
			if err != nil {
				return err
			}
			count, problems, err := validateFile(output(cmd), cmd.Args().First(), policy)
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "%d records OK, %d policy warnings\n", count, problems)
			if problems != 0 && cmd.Bool("strict") {
				return fmt.Errorf("%d records violate the policy", problems)
			}
			return nil
		},
	}
}

// validateFile returns the number of records and of policy warnings; the
// warnings are written to w.
func validateFile(w io.Writer, path string, policy *marc.Policy) (int, int, error) {
	count, problems := 0, 0
	err := eachRecord(path, marc.FileTypeAuto, policy, func(rec *marc.Record) error {
		count++
		if perr := policy.Check(rec); perr != nil {
			problems++
			fmt.Fprintf(w, "WARNING: %s\n", perr.Error())
		}
		return nil
	})
	return count, problems, err
}

//
// end of file
//
