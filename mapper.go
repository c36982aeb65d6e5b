package vow

// mapperKind discriminates the handful of (error, result) → (error, result)
// shapes a task's mapper can take. Spec §9's design notes call this out
// explicitly: "a sum over {AsIs, MapError(fn), MapResult(fn), Finally(fn),
// ImplicitRethrow} captures every in-use variant and avoids allocating
// closures for common cases." mapperFinally is handled specially by
// [Task.settle] rather than through [mapper.call] because it alone can
// suspend (when fn returns a task to wait for).
type mapperKind uint8

const (
	mapperRaw mapperKind = iota
	mapperError
	mapperResult
	mapperFinally
	mapperRethrow
	mapperFinallyWait
)

// mapper is the value stored in Task.mapper. Exactly one of the function
// fields is populated, matching kind, except for mapperRethrow and
// mapperFinallyWait, which need no user function at all; origErr/origRes
// are only used by mapperFinallyWait.
type mapper struct {
	kind mapperKind

	rawFn     func(err, res any) (any, any)
	errFn     func(err any) any
	resFn     func(res any) any
	finallyFn func(err, res any) any

	origErr, origRes any
}

// call runs a mapper that can resolve synchronously (every kind except
// mapperFinally, which [Task.settle] special-cases before ever reaching
// here). It returns the new (error, result) pair to recurse settle with.
//
// User-supplied functions are run under tryCatch: a panic becomes the new
// error, exactly as spec §4.3 rule 5 describes ("the mapper's return value
// becomes the new result unless it throws").
func (m *mapper) call(err, res any) (newErr, newRes any) {
	switch m.kind {
	case mapperRaw:
		var e2, r2 any
		if perr := tryCatch(func() { e2, r2 = m.rawFn(err, res) }); perr != nil {
			return perr, nil
		}
		return e2, r2

	case mapperError:
		if err == nil {
			return nil, res
		}
		var v any
		if perr := tryCatch(func() { v = m.errFn(err) }); perr != nil {
			return perr, nil
		}
		return nil, v

	case mapperResult:
		if err != nil {
			return err, nil
		}
		var v any
		if perr := tryCatch(func() { v = m.resFn(res) }); perr != nil {
			return perr, nil
		}
		return nil, v

	case mapperRethrow:
		return coalesce(err, res), nil

	case mapperFinallyWait:
		return m.origErr, m.origRes

	default:
		panic("vow: internal error: unexpected mapper kind")
	}
}

// coalesce returns err if non-nil, else res. Used wherever a flattening or
// rethrow step needs "whichever of (error, result) is truthy."
func coalesce(err, res any) any {
	if err != nil {
		return err
	}
	return res
}
