package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/uvalib/virgo4-marc-tools/internal/config"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func policyFlag() cli.Flag {
	return &cli.StringFlag{Name: "policy", Usage: "MARC policy file (TOML or YAML)"}
}

func formatFlag(name string, usage string) cli.Flag {
	return &cli.StringFlag{Name: name, Usage: usage + " (binary, xml, json or auto)", Value: "auto"}
}

// output returns where command results go
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// requireArgs checks the positional argument count
func requireArgs(cmd *cli.Command, n int, names string) error {
	if cmd.Args().Len() != n {
		return fmt.Errorf("usage: marctool %s %s", cmd.Name, names)
	}
	return nil
}

func loadPolicy(cmd *cli.Command) (*marc.Policy, error) {
	return config.LoadPolicy(cmd.String("policy"))
}

func parseFormat(cmd *cli.Command, name string) (marc.FileType, error) {
	return marc.ParseFileType(cmd.String(name))
}

// eachRecord opens path and calls fn for every record, stopping at the first
// error from the reader or from fn.
func eachRecord(path string, ft marc.FileType, policy *marc.Policy, fn func(rec *marc.Record) error) error {
	r, err := marc.OpenReaderWithPolicy(path, ft, policy)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// sameFile reports whether a and b name the same existing file
func sameFile(a string, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

// splitList turns "a,b, c" into its trimmed, non-empty parts
func splitList(s string) []string {
	parts := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// rewrite streams src to dst through fn. Records for which fn returns false
// are dropped. Output goes to a temporary file next to dst that replaces dst
// only once every record is written, so dst may name the input itself and a
// failed run leaves dst untouched.
func rewrite(src string, dst string, outType marc.FileType, policy *marc.Policy, fn func(rec *marc.Record) (bool, error)) (int, error) {
	if outType == marc.FileTypeAuto {
		outType = marc.FileTypeFromName(dst)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	tmp.Close()

	written, err := rewriteTo(src, tmpName, outType, policy, fn)
	if err != nil {
		os.Remove(tmpName)
		return written, err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return written, err
	}
	return written, nil
}

func rewriteTo(src string, dst string, outType marc.FileType, policy *marc.Policy, fn func(rec *marc.Record) (bool, error)) (int, error) {
	r, err := marc.OpenReaderWithPolicy(src, marc.FileTypeAuto, policy)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	w, err := marc.CreateWriter(dst, outType)
	if err != nil {
		return 0, err
	}

	written := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err == nil {
			var keep bool
			keep, err = fn(rec)
			if err == nil && keep {
				written++
				err = w.Write(rec)
			}
		} else {
			err = fmt.Errorf("%s: %w", src, err)
		}
		if err != nil {
			w.Close()
			return written, err
		}
	}
	return written, w.Close()
}

//
// end of file
//
