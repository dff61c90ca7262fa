// Package script parses and runs YAML edit scripts against an editor session.
//
// A script is a name and a list of steps. Each step is a single-key mapping:
//
//	name: greeting
//	steps:
//	  - insert: "Hello"
//	  - delete: 2
//	  - undo: 1
//	  - redo: 1
//	  - macro:
//	      - insert: "a"
//	      - delete: 1
//	  - clear: true
//	  - expect: {content: "Hel", cursor: 3}
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/redraft/internal/log"
)

var (
	// ErrUnknownStep is returned when a step is not one of the known ops or
	// names more than one op.
	ErrUnknownStep = errors.New("unknown script step")
	// ErrExpectation is returned when an expect step does not match the
	// session state.
	ErrExpectation = errors.New("expectation failed")
)

// Op identifies a step kind.
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
	OpUndo   Op = "undo"
	OpRedo   Op = "redo"
	OpMacro  Op = "macro"
	OpClear  Op = "clear"
	OpExpect Op = "expect"
)

// Script is a parsed edit script.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one script instruction. Which fields are set depends on Op.
type Step struct {
	Op Op
	// Text is the inserted text for OpInsert.
	Text string
	// Count is the character count for OpDelete and the repeat count for
	// OpUndo and OpRedo.
	Count int
	// Steps holds the children of OpMacro.
	Steps  []Step
	Expect Expectation
	// Line is the source line, 0 for steps built in code.
	Line int
}

// Expectation lists the session fields an expect step checks. Nil fields are
// not checked.
type Expectation struct {
	Content   *string `yaml:"content"`
	Cursor    *int    `yaml:"cursor"`
	UndoCount *int    `yaml:"undo"`
	RedoCount *int    `yaml:"redo"`
}

// String describes the step for output and span attributes.
func (s Step) String() string {
	switch s.Op {
	case OpInsert:
		return fmt.Sprintf("insert %q", s.Text)
	case OpDelete:
		return fmt.Sprintf("delete %d", s.Count)
	case OpUndo, OpRedo:
		return fmt.Sprintf("%s %d", s.Op, s.Count)
	case OpMacro:
		if len(s.Steps) == 1 {
			return "macro (1 step)"
		}
		return fmt.Sprintf("macro (%d steps)", len(s.Steps))
	default:
		return string(s.Op)
	}
}

// UnmarshalYAML decodes a single-key step mapping.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return stepErr(node, "step must be a mapping like {insert: \"text\"}")
	}
	if len(node.Content) != 2 {
		return stepErr(node, "step must name exactly one op, got %d", len(node.Content)/2)
	}

	key, value := node.Content[0], node.Content[1]
	*s = Step{Op: Op(key.Value), Line: key.Line}

	switch s.Op {
	case OpInsert:
		return value.Decode(&s.Text)
	case OpDelete:
		return value.Decode(&s.Count)
	case OpUndo, OpRedo:
		if err := value.Decode(&s.Count); err != nil {
			return err
		}
		if s.Count < 0 {
			return fmt.Errorf("line %d: %s count must be >= 0, got %d", key.Line, s.Op, s.Count)
		}
		return nil
	case OpMacro:
		if err := value.Decode(&s.Steps); err != nil {
			return err
		}
		for _, child := range s.Steps {
			if !child.editing() {
				return fmt.Errorf("%w: line %d: %q is not allowed inside a macro", ErrUnknownStep, child.Line, child.Op)
			}
		}
		return nil
	case OpClear:
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return err
		}
		if !enabled {
			return fmt.Errorf("line %d: clear must be true", key.Line)
		}
		return nil
	case OpExpect:
		return decodeExpectation(value, &s.Expect)
	default:
		return fmt.Errorf("%w: line %d: %q", ErrUnknownStep, key.Line, key.Value)
	}
}

// editing reports whether the step maps to a document command.
func (s Step) editing() bool {
	return s.Op == OpInsert || s.Op == OpDelete || s.Op == OpMacro
}

func decodeExpectation(node *yaml.Node, exp *Expectation) error {
	if node.Kind != yaml.MappingNode {
		return stepErr(node, "expect must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch k := node.Content[i]; k.Value {
		case "content", "cursor", "undo", "redo":
		default:
			return fmt.Errorf("line %d: unknown expect field %q", k.Line, k.Value)
		}
	}
	return node.Decode(exp)
}

func stepErr(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrUnknownStep, node.Line, fmt.Sprintf(format, args...))
}

// Parse decodes a script. Unknown top-level keys are rejected.
func Parse(data []byte) (Script, error) {
	var sc Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, fmt.Errorf("parsing script: empty document")
		}
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}
	return sc, nil
}

// Load reads and parses the script at path. The file name (without
// extension) is used when the script has no name.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied script path
	if err != nil {
		return Script{}, fmt.Errorf("reading script: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	log.Debug(log.CatScript, "Loaded script", "path", path, "name", sc.Name, "steps", len(sc.Steps))
	return sc, nil
}
