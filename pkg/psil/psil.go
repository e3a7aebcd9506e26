// Package psil assembles the reader, macro expander, evaluator and
// host library surface into a single embeddable interpreter, configured
// through a small set of functional Options over a root scope.
package psil

import (
	"io"
	"os"

	"github.com/gopsil/psil/pkg/builtins"
	"github.com/gopsil/psil/pkg/eval"
	"github.com/gopsil/psil/pkg/macroexpand"
	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/stdlib"
	"github.com/gopsil/psil/pkg/value"
)

// Interpreter bundles a root Scope (host builtins plus the standard
// macro bundle already installed) with the Evaluator that runs forms
// against it.
type Interpreter struct {
	Scope *value.Scope
	Eval  *eval.Evaluator
}

type config struct {
	stdout  io.Writer
	stderr  io.Writer
	globals value.Globals
	bridge  eval.HostBridge
}

// Option configures New.
type Option func(*config)

// WithStdout redirects the `print`/`display` builtins, which otherwise
// write to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// WithStderr redirects the per-call error diagnostic, which otherwise
// writes to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(c *config) { c.stderr = w }
}

// WithGlobals installs a host-supplied fallback name table on the root
// scope, consulted after the scope chain and the host builtins.
func WithGlobals(g value.Globals) Option {
	return func(c *config) { c.globals = g }
}

// WithHostBridge installs the HostBridge that answers `.NAME`
// attribute-call forms.
func WithHostBridge(b eval.HostBridge) Option {
	return func(c *config) { c.bridge = b }
}

// New builds an Interpreter: a root scope with the host library
// surface (pkg/builtins) and standard macro bundle (pkg/stdlib)
// installed, and an Evaluator configured per opts.
func New(opts ...Option) (*Interpreter, error) {
	cfg := &config{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}

	scope := value.NewScope(nil)
	if cfg.globals != nil {
		scope.SetGlobals(cfg.globals)
	}
	builtins.InstallOutput(scope, cfg.stdout)

	ev := eval.New(eval.WithStderr(cfg.stderr), eval.WithBridge(cfg.bridge))
	if err := stdlib.Install(scope, ev); err != nil {
		return nil, err
	}
	return &Interpreter{Scope: scope, Eval: ev}, nil
}

// EvalString reads every top-level form of src, macro-expands and
// evaluates each in turn against the interpreter's root scope, and
// returns the last result. Forms run one at a time, reader through
// evaluator, so an earlier form's defmacro is visible to a later one
// in the same source.
func (i *Interpreter) EvalString(src string) (value.Value, error) {
	forms, err := reader.ReadString(src)
	if err != nil {
		return nil, err
	}
	return i.EvalForms(forms)
}

// EvalForms macro-expands and evaluates each already-read form in
// order, returning the last result (or nil if forms is empty).
func (i *Interpreter) EvalForms(forms []value.Value) (value.Value, error) {
	var result value.Value = value.Nil
	for _, f := range forms {
		expanded, err := macroexpand.MacroExpandR(i.Scope, i.Eval, f)
		if err != nil {
			return nil, err
		}
		v, err := i.Eval.Eval(i.Scope, expanded)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}
