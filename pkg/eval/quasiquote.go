package eval

import (
	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

// evalQuasiquote implements `(quasiquote X)`: a recursive walk with a
// depth counter starting at 1 where only unquote/unquote-splicing at
// depth 1 evaluate; everything else is preserved as literal structure.
func (ev *Evaluator) evalQuasiquote(scope *value.Scope, f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) != 2 {
		return nil, nil, &ArityError{Form: "quasiquote", Want: "1", Got: len(f.Items) - 1}
	}
	v, err := ev.quasiWalk(scope, f.Items[1], 1)
	return v, nil, err
}

// quasiWalk processes form at the given quasiquote depth, evaluating
// unquotes/splices that reach depth 1 and otherwise preserving
// structure while recursing.
func (ev *Evaluator) quasiWalk(scope *value.Scope, form value.Value, depth int) (value.Value, error) {
	seq, ok := form.(*value.Sequence)
	if !ok {
		return form, nil
	}
	if head, ok := headSymbol(seq); ok && len(seq.Items) == 2 {
		switch head {
		case symbol.Quasiquote:
			inner, err := ev.quasiWalk(scope, seq.Items[1], depth+1)
			if err != nil {
				return nil, err
			}
			return value.NewSequence(symbol.Quasiquote, inner), nil
		case symbol.Unquote:
			if depth == 1 {
				return ev.evalNonTail(scope, seq.Items[1])
			}
			inner, err := ev.quasiWalk(scope, seq.Items[1], depth-1)
			if err != nil {
				return nil, err
			}
			return value.NewSequence(symbol.Unquote, inner), nil
		}
	}
	var out []value.Value
	for _, item := range seq.Items {
		if splice, ok := item.(*value.Sequence); ok {
			if head, ok := headSymbol(splice); ok && head == symbol.UnquoteSplicing && len(splice.Items) == 2 {
				if depth == 1 {
					spliced, err := ev.evalNonTail(scope, splice.Items[1])
					if err != nil {
						return nil, err
					}
					sseq, ok := spliced.(*value.Sequence)
					if !ok {
						return nil, &NotCallableError{Got: "unquote-splicing of non-sequence " + spliced.Type()}
					}
					out = append(out, sseq.Items...)
					continue
				}
				inner, err := ev.quasiWalk(scope, splice.Items[1], depth-1)
				if err != nil {
					return nil, err
				}
				out = append(out, value.NewSequence(symbol.UnquoteSplicing, inner))
				continue
			}
		}
		walked, err := ev.quasiWalk(scope, item, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, walked)
	}
	return value.NewSequence(out...), nil
}

func headSymbol(seq *value.Sequence) (*symbol.Symbol, bool) {
	if len(seq.Items) == 0 {
		return nil, false
	}
	sym, ok := seq.Items[0].(*symbol.Symbol)
	return sym, ok
}
