// Package text provides the implementation of the traceparser interfaces for
// line-oriented execution traces.
//
// A trace records one executed instruction per line:
//
//	<address>: <mnemonic> [<operand>]
//	<address>: <jump-mnemonic> <target>
//	<address>: <branch-mnemonic> <success> taken|not-taken <failure>
//
// Addresses are hexadecimal, with or without a 0x prefix. The trace profile
// decides which mnemonics are jumps and which are branches; lines starting
// with '#' and blank lines are ignored.
package text

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Calastrophe/ctrl-flow/cfg"
	"github.com/Calastrophe/ctrl-flow/profile"
	"github.com/Calastrophe/ctrl-flow/traceparser"
)

var (
	// Regular expressions for parsing trace records.
	lineRegex   = regexp.MustCompile(`^(?:0x)?([0-9a-fA-F]+):\s+([a-zA-Z][a-zA-Z0-9._]*)\s*(.*)$`)
	jumpRegex   = regexp.MustCompile(`^(?:0x)?([0-9a-fA-F]+)$`)
	branchRegex = regexp.MustCompile(`^(?:0x)?([0-9a-fA-F]+)\s+(taken|not-taken)\s+(?:0x)?([0-9a-fA-F]+)$`)
)

// record is one parsed trace line ready to be fed into the graph.
type record struct {
	pc    uint64
	instr cfg.Instruction
}

// parserImpl implements the traceparser.Parser interface.
type parserImpl struct {
	profile *profile.TraceProfile
}

// NewParser returns a new instance of a textual trace parser driven by the
// given profile.
func NewParser(prof *profile.TraceProfile) traceparser.Parser {
	return &parserImpl{profile: prof}
}

// Parse reads an execution trace and folds it into a ControlFlowGraph. The
// first record's address seeds the graph entry point; any engine error aborts
// ingestion and propagates to the caller.
func (p *parserImpl) Parse(path string) (*cfg.ControlFlowGraph, error) {
	fpath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving absolute filepath: %w", err)
	}

	tracefile, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("error opening trace: %w", err)
	}
	defer func() {
		_ = tracefile.Close()
	}()

	var graph *cfg.ControlFlowGraph
	scanner := bufio.NewScanner(tracefile)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		rec, err := p.parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("error parsing trace line %d: %w", lineNum, err)
		}
		if rec == nil { // Ignore comments and empty lines
			continue
		}
		if graph == nil {
			graph = cfg.New(rec.pc)
		}
		if err := graph.Execute(rec.pc, rec.instr); err != nil {
			return nil, fmt.Errorf("error executing trace line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading trace: %w", err)
	}
	if graph == nil {
		return nil, fmt.Errorf("trace contains no instructions")
	}
	return graph, nil
}

// parseLine attempts to parse a single trace record.
func (p *parserImpl) parseLine(line string) (*record, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	matches := lineRegex.FindStringSubmatch(line)
	if len(matches) != 4 {
		return nil, fmt.Errorf("unrecognized trace record: %s", line)
	}

	pc, err := parseAddress(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid instruction address: %w", err)
	}
	mnemonic := matches[2]
	operand := strings.TrimSpace(matches[3])

	var instr cfg.Instruction
	switch p.recordType(mnemonic) {
	case traceparser.RecordTypeJump:
		instr, err = parseJump(mnemonic, operand)
	case traceparser.RecordTypeBranch:
		instr, err = parseBranch(mnemonic, operand)
	default:
		instr = cfg.NewPlain(mnemonic, operand)
	}
	if err != nil {
		return nil, err
	}
	return &record{pc: pc, instr: instr}, nil
}

// recordType classifies a mnemonic using the trace profile.
func (p *parserImpl) recordType(mnemonic string) traceparser.RecordType {
	switch {
	case p.profile.IsJump(mnemonic):
		return traceparser.RecordTypeJump
	case p.profile.IsBranch(mnemonic):
		return traceparser.RecordTypeBranch
	default:
		return traceparser.RecordTypePlain
	}
}

// parseJump extracts the target of an unconditional jump.
func parseJump(mnemonic, operand string) (cfg.Instruction, error) {
	matches := jumpRegex.FindStringSubmatch(operand)
	if len(matches) != 2 {
		return nil, fmt.Errorf("failed to parse jump target: %s %s", mnemonic, operand)
	}
	target, err := parseAddress(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid jump target: %w", err)
	}
	return cfg.NewJump(mnemonic, target), nil
}

// parseBranch extracts the success address, recorded outcome, and failure
// address of a conditional jump.
func parseBranch(mnemonic, operand string) (cfg.Instruction, error) {
	matches := branchRegex.FindStringSubmatch(operand)
	if len(matches) != 4 {
		return nil, fmt.Errorf("failed to parse branch record: %s %s", mnemonic, operand)
	}
	success, err := parseAddress(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid branch success address: %w", err)
	}
	failure, err := parseAddress(matches[3])
	if err != nil {
		return nil, fmt.Errorf("invalid branch failure address: %w", err)
	}
	kind := cfg.JumpConditionalTaken
	if matches[2] == "not-taken" {
		kind = cfg.JumpConditionalNotTaken
	}
	return cfg.NewConditionalJump(mnemonic, success, kind, failure), nil
}

// parseAddress decodes a hexadecimal trace address.
func parseAddress(str string) (uint64, error) {
	return strconv.ParseUint(str, 16, 64)
}
