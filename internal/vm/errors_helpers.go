package vm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

var errNoMain = errors.New("vm: unit was not compiled in script mode (no main)")

func errUnknownFunc(hash items.Hash) error {
	return fmt.Errorf("vm: no function with hash %d in unit", hash)
}

func errUnknownOffset(offset int32) error {
	return fmt.Errorf("vm: no function at offset %d", offset)
}

func errNotCallable(k value.Kind) error {
	return fmt.Errorf("vm: value of kind %v is not callable", k)
}

var errDivByZero = errors.New("vm: division by zero")

func errArith(op string, a, b value.Value) error {
	return fmt.Errorf("vm: %s: incompatible operand kinds %v and %v", op, a.Kind(), b.Kind())
}

func errBadMagicField(name string) error {
	return fmt.Errorf("vm: no such variant field %q", name)
}

func errNoMethod(k value.Kind, name string) error {
	return fmt.Errorf("vm: %v has no method %q", k, name)
}

func errArgCount(method string, want, got int) error {
	return fmt.Errorf("vm: %s expects %d argument(s), got %d", method, want, got)
}

func errUnwrap(variant string) error {
	return fmt.Errorf("vm: called unwrap on %s", variant)
}
