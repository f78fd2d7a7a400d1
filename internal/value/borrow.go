package value

import "fmt"

// BorrowState tracks the mutation discipline of spec.md §5: each mutable composite
// is either idle or in-use with a count of outstanding shared borrows, or held
// exclusively by a single mutating access. It mirrors the style of a status
// register with named predicates rather than a mutex, since the VM is
// single-threaded per execution and borrows are acquired/released synchronously
// around individual instructions, not held across suspension points.
type BorrowState struct {
	exclusive bool
	shared    int
}

// ErrBorrow is returned when an access would violate the mutation discipline.
type ErrBorrow struct {
	Op string
}

func (e *ErrBorrow) Error() string {
	return fmt.Sprintf("bad-borrow: %s: value is already borrowed incompatibly", e.Op)
}

// Idle reports whether the value has no outstanding borrows.
func (b *BorrowState) Idle() bool { return !b.exclusive && b.shared == 0 }

// AcquireShared acquires a read-only borrow, failing if the value is exclusively
// borrowed.
func (b *BorrowState) AcquireShared(op string) error {
	if b.exclusive {
		return &ErrBorrow{Op: op}
	}

	b.shared++

	return nil
}

// ReleaseShared releases one outstanding shared borrow.
func (b *BorrowState) ReleaseShared() {
	if b.shared > 0 {
		b.shared--
	}
}

// AcquireExclusive acquires a mutating borrow, failing if any borrow is
// outstanding. In the VM only field and index stores take this borrow, and no
// read or iteration takes a shared one, so mutating a vector while an iterator
// walks it is not detected.
func (b *BorrowState) AcquireExclusive(op string) error {
	if b.exclusive || b.shared > 0 {
		return &ErrBorrow{Op: op}
	}

	b.exclusive = true

	return nil
}

// ReleaseExclusive releases the exclusive borrow.
func (b *BorrowState) ReleaseExclusive() { b.exclusive = false }

// Borrow returns the composite's borrow state, or nil if v does not carry one.
func (v Value) Borrow() *BorrowState {
	if bh, ok := v.ptr.(borrowable); ok {
		return bh.borrowState()
	}

	return nil
}

type borrowable interface {
	borrowState() *BorrowState
}

func (b *base) borrowState() *BorrowState { return &b.borrow }
