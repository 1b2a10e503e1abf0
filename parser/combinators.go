package parser

// parseFunc is the shape shared by every grammar rule: it reads a value from
// the front of in and returns it with the remaining input. On failure the
// returned error is a *failure and the returned input is meaningless.
type parseFunc[T any] func(in input) (T, input, error)

// alt tries each rule in order from the same input and returns the first
// success. A committed failure stops the search. Otherwise the failure that
// got furthest is reported, with the expectations of equally far failures
// merged.
func alt[T any](rules ...parseFunc[T]) parseFunc[T] {
	return func(in input) (T, input, error) {
		var zero T
		var best *failure
		for _, rule := range rules {
			v, next, err := rule(in)
			if err == nil {
				return v, next, nil
			}
			f := asFailure(err)
			if f.committed {
				return zero, in, f
			}
			best = furthest(best, f)
		}
		return zero, in, best
	}
}

// optional succeeds with the zero value and consumes nothing when rule fails
// without committing.
func optional[T any](rule parseFunc[T]) parseFunc[T] {
	return func(in input) (T, input, error) {
		v, next, err := rule(in)
		if err == nil {
			return v, next, nil
		}
		var zero T
		if f := asFailure(err); f.committed {
			return zero, in, f
		}
		return zero, in, nil
	}
}

// many0 applies rule until it fails without committing or stops consuming.
func many0[T any](rule parseFunc[T]) parseFunc[[]T] {
	return func(in input) ([]T, input, error) {
		var out []T
		for {
			v, next, err := rule(in)
			if err != nil {
				if f := asFailure(err); f.committed {
					return nil, in, f
				}
				return out, in, nil
			}
			if next.off == in.off {
				return out, in, nil
			}
			out = append(out, v)
			in = next
		}
	}
}

// labeled names a rule in the trail of any failure coming out of it.
func labeled[T any](name string, rule parseFunc[T]) parseFunc[T] {
	return func(in input) (T, input, error) {
		v, next, err := rule(in)
		if err != nil {
			f := *asFailure(err)
			f.trail = append([]string{name}, f.trail...)
			return v, next, &f
		}
		return v, next, nil
	}
}

// cut turns any failure of rule into a committed one, so that enclosing
// alternatives are not tried once the input has been recognised.
func cut[T any](rule parseFunc[T]) parseFunc[T] {
	return func(in input) (T, input, error) {
		v, next, err := rule(in)
		if err != nil {
			f := *asFailure(err)
			f.committed = true
			return v, next, &f
		}
		return v, next, nil
	}
}

// complete runs rule and fails unless it consumed the entire input.
func complete[T any](rule parseFunc[T], in input) (T, error) {
	v, next, err := rule(in)
	if err != nil {
		return v, asFailure(err).toParseError()
	}
	if !next.atEnd() {
		var zero T
		return zero, fail(next, "end of input").toParseError()
	}
	return v, nil
}
