// Package builtins wires PSIL's host library surface into a root
// scope: arithmetic, comparison, list, symbol, and the
// re-entrant misc builtins (apply, macroexpand family, include).
package builtins

import (
	"io"

	"github.com/gopsil/psil/pkg/value"
)

// define binds name to a Builtin wrapping fn in scope, the single
// entry point every register* function in this package goes through.
func define(scope *value.Scope, name string, fn value.BuiltinFunc) {
	scope.Define(name, &value.Builtin{Name: name, Fn: fn})
}

// Install binds the full host library surface into scope. Called
// once against the root scope before any source is read or evaluated.
// print/display write to os.Stdout; use InstallOutput to redirect them.
func Install(scope *value.Scope) {
	InstallOutput(scope, nil)
}

// InstallOutput is Install with print/display's destination made
// explicit (nil keeps the os.Stdout default), letting an embedding
// host capture interpreter output without swapping os.Stdout globally
//.
func InstallOutput(scope *value.Scope, stdout io.Writer) {
	scope.Define("nil", value.Nil)
	scope.Define("true", value.Boolean(true))
	scope.Define("false", value.Boolean(false))
	registerArithmetic(scope)
	registerComparison(scope)
	registerList(scope)
	registerSymbols(scope)
	registerMisc(scope, stdout)
}
