// Package config loads the codec policy file shared by the ingest service
// and marctool.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

// policyFile is the on-disk form of a marc.Policy.
type policyFile struct {
	ControlTags      []string `toml:"control_tags" yaml:"control_tags"`
	DataTagThreshold string   `toml:"data_tag_threshold" yaml:"data_tag_threshold"`
	NonRepeatable    []string `toml:"non_repeatable" yaml:"non_repeatable"`
	Duplicates       string   `toml:"duplicates" yaml:"duplicates"`
}

// LoadPolicy reads a policy file. Files ending in .yaml or .yml are YAML,
// anything else is TOML. An empty path or a missing file yields
// marc.DefaultPolicy.
func LoadPolicy(path string) (*marc.Policy, error) {
	if strings.TrimSpace(path) == "" {
		return marc.DefaultPolicy, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return marc.DefaultPolicy, nil
		}
		return nil, fmt.Errorf("open policy: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var raw policyFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	return raw.policy()
}

func (raw policyFile) policy() (*marc.Policy, error) {
	dup, err := marc.ParseDuplicatePolicy(raw.Duplicates)
	if err != nil {
		return nil, err
	}

	for _, tag := range append(append([]string{}, raw.ControlTags...), raw.NonRepeatable...) {
		if len(tag) != 3 {
			return nil, fmt.Errorf("policy tag %q is not 3 characters", tag)
		}
	}

	p := marc.NewPolicy(raw.ControlTags, raw.NonRepeatable, dup)
	threshold := strings.TrimSpace(raw.DataTagThreshold)
	if threshold != "" {
		if len(threshold) != 3 {
			return nil, fmt.Errorf("data_tag_threshold %q is not 3 characters", threshold)
		}
		p.DataTagThreshold = threshold
	}
	return p, nil
}

//
// end of file
//
