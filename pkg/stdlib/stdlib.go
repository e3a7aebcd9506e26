// Package stdlib ships PSIL's standard macro bundle: begin, when, let,
// let*, and, or, cond, for-each, import, comment. It is installed by
// reading a fixed PSIL source file and running it through the ordinary
// read → macro-expand → evaluate pipeline, the same way an embedder
// would load any other PSIL source.
package stdlib

import (
	_ "embed"

	"github.com/gopsil/psil/pkg/macroexpand"
	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/value"
)

//go:embed macros.psil
var macrosSource string

// evaluator is the subset of *eval.Evaluator's API Install needs.
// Declared locally rather than importing pkg/eval's concrete type so
// that callers may pass any compatible re-entrant evaluator, and so
// this package's dependency graph stays a leaf next to pkg/builtins.
type evaluator interface {
	Eval(scope *value.Scope, form value.Value) (value.Value, error)
	ApplyMacro(m *value.Macro, args []value.Value) (value.Value, error)
}

// Install reads the standard macro bundle and defines each macro (and
// the small helper functions a few of them need) into scope, one
// top-level form at a time: a later macro definition in the bundle may
// rely on an earlier one already being bound, so each form is expanded
// and evaluated in turn rather than expanding the whole file up front.
func Install(scope *value.Scope, ev evaluator) error {
	forms, err := reader.ReadString(macrosSource)
	if err != nil {
		return err
	}
	for _, f := range forms {
		expanded, err := macroexpand.MacroExpandR(scope, ev, f)
		if err != nil {
			return err
		}
		if _, err := ev.Eval(scope, expanded); err != nil {
			return err
		}
	}
	return nil
}
