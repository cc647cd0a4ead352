// Package profile defines the trace profile, which describes the instruction
// set of a trace source.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TraceProfile tells the trace parser which mnemonics transfer control.
type TraceProfile struct {
	Name     string   `yaml:"name"`
	Jumps    []string `yaml:"jumps"`    // unconditional jump mnemonics
	Branches []string `yaml:"branches"` // conditional jump mnemonics
}

// LoadProfile loads a trace profile from a YAML file.
func LoadProfile(filename string) (*TraceProfile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer file.Close()

	var profile TraceProfile
	if err := yaml.NewDecoder(file).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// IsJump reports whether the mnemonic is an unconditional jump. Matching is
// case-insensitive.
func (p *TraceProfile) IsJump(mnemonic string) bool {
	return containsFold(p.Jumps, mnemonic)
}

// IsBranch reports whether the mnemonic is a conditional jump.
func (p *TraceProfile) IsBranch(mnemonic string) bool {
	return containsFold(p.Branches, mnemonic)
}

func containsFold(list []string, mnemonic string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, mnemonic) {
			return true
		}
	}
	return false
}
