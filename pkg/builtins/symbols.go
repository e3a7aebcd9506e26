package builtins

import (
	"fmt"

	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

func registerSymbols(scope *value.Scope) {
	define(scope, "symbol?", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("symbol?: expected 1 argument, got %d", len(args))
		}
		_, ok := args[0].(*symbol.Symbol)
		return value.Boolean(ok), nil
	})
	define(scope, "symbol->string", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("symbol->string: expected 1 argument, got %d", len(args))
		}
		sym, ok := args[0].(*symbol.Symbol)
		if !ok {
			return nil, fmt.Errorf("symbol->string: expected a symbol, got %s", args[0].Type())
		}
		return value.String(sym.Name), nil
	})
	define(scope, "string->symbol", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("string->symbol: expected 1 argument, got %d", len(args))
		}
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("string->symbol: expected a string, got %s", args[0].Type())
		}
		return symbol.New(string(s)), nil
	})
	define(scope, "gensym", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("gensym: expected 0 arguments, got %d", len(args))
		}
		return symbol.Gensym(), nil
	})
}
