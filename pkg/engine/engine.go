// Package engine provides the Lisp case-scripting engine for flowprep.
// It wraps zygomys in a sandboxed environment and evaluates case scripts
// that load geometry, apply transforms and emit mesh-generator cases —
// the scripted equivalent of an angle-of-attack sweep driver.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/flowprep/pkg/config"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// CaseSet collects the case directories a script emitted.
type CaseSet struct {
	Dirs []string
}

// Engine wraps the zygomys interpreter for case-script evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	cfg        *config.Config
}

// NewEngine creates a new Engine using the given configuration for
// sizing, refinement and meshing defaults. A nil cfg uses the defaults.
func NewEngine(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs a case script and returns the set of emitted cases.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns case set + nil errors + nil error
//   - On parse/eval failure: returns nil + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*CaseSet, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		cs, evalErrs, err := e.evaluate(source)
		ch <- evalResult{cases: cs, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*CaseSet, []EvalError, error) {
	cases := &CaseSet{}

	// Empty source is a valid script that emits no cases.
	if strings.TrimSpace(source) == "" {
		return cases, nil, nil
	}

	// Create a fresh sandboxed zygomys environment. Sandbox mode keeps
	// user code away from zygomys' own filesystem and syscall builtins;
	// all file I/O goes through the registered flowprep builtins.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	sess := &session{cfg: e.cfg, cases: cases}
	registerBuiltins(env, sess)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return cases, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers when the message carries them.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
