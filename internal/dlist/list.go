// Package dlist implements the kernel's sole container: a circular,
// intrusive, doubly linked list. Every queue in the kernel (ready queues,
// wait queues, the timer wheel's slots, the timer generic list, a task's
// owned-mutex list) is one of these, embedding a Node rather than holding
// a separate slice or map.
//
// Unlike the C original this is ported from (which recovers the enclosing
// record from a Node by pointer-to-member / fixed-offset arithmetic), Go
// has no such arithmetic. Node therefore stores a back-reference to its
// owner, set once at construction (see Node.Init), and List operations
// return *Node; callers recover the owner via Node.Value. This keeps the
// O(1) link/unlink/empty/iterate guarantees the kernel depends on, at the
// cost of one extra pointer per node (documented in DESIGN.md's
// internal/dlist entry).
package dlist

// Node is an intrusive list link, embedded by value in every record the
// kernel queues. A zero Node is a valid, unlinked, "not in any list" node
// once Init has been called.
type Node struct {
	prev, next *Node
	value      any
}

// List is a circular, sentinel-based doubly linked list. The zero value is
// not ready for use; call Init (or use New).
type List struct {
	sentinel Node
}

// New returns an initialized, empty List.
func New() *List {
	l := &List{}
	l.Init()
	return l
}

// Init (re)initializes the list as empty. Must be called before any other
// method, including on a List embedded by value in another struct.
func (l *List) Init() {
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel
	l.sentinel.value = nil
}

// Init (re)initializes n as unlinked, carrying owner as its recoverable
// value. The kernel calls this once, when a record containing a Node is
// constructed, and Remove calls it again every time the node is unlinked
// from a list.
func (n *Node) Init(owner any) {
	n.prev = n
	n.next = n
	n.value = owner
}

// Linked reports whether n is currently a member of some list (as opposed
// to being a bare, unlinked node or an uninitialized zero value).
func (n *Node) Linked() bool {
	return n.next != nil && n.next != n
}

// Value returns the owner passed to Init, recovering the enclosing record.
func (n *Node) Value() any {
	return n.value
}

// Empty reports whether l has no members.
func (l *List) Empty() bool {
	return l.sentinel.next == &l.sentinel
}

// Front returns the head node, or nil if l is empty.
func (l *List) Front() *Node {
	if l.Empty() {
		return nil
	}
	return l.sentinel.next
}

// Back returns the tail node, or nil if l is empty.
func (l *List) Back() *Node {
	if l.Empty() {
		return nil
	}
	return l.sentinel.prev
}

// PushBack appends n to the tail of l. n must not already be linked.
func (l *List) PushBack(n *Node) {
	n.prev = l.sentinel.prev
	n.next = &l.sentinel
	l.sentinel.prev.next = n
	l.sentinel.prev = n
}

// PushFront prepends n to the head of l. n must not already be linked.
func (l *List) PushFront(n *Node) {
	n.next = l.sentinel.next
	n.prev = &l.sentinel
	l.sentinel.next.prev = n
	l.sentinel.next = n
}

// Remove unlinks n from whatever list it is a member of, then
// reinitializes it (preserving its owner value) so it is safe to link
// elsewhere. Removing an already-unlinked node is a no-op.
func (n *Node) Remove() {
	if !n.Linked() {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	owner := n.value
	n.Init(owner)
}

// PopFront removes and returns the head node, or nil if l is empty.
func (l *List) PopFront() *Node {
	n := l.Front()
	if n == nil {
		return nil
	}
	n.Remove()
	return n
}

// Each calls fn for every node in l, head to tail. fn must not mutate l;
// use Drain for wake-all-and-clear semantics.
func (l *List) Each(fn func(n *Node)) {
	for n := l.sentinel.next; n != &l.sentinel; n = n.next {
		fn(n)
	}
}

// Drain removes every node from l, in head-to-tail order, calling fn for
// each after it has been unlinked (so fn may safely re-link the node
// elsewhere, e.g. onto a ready queue).
func (l *List) Drain(fn func(n *Node)) {
	for {
		n := l.PopFront()
		if n == nil {
			return
		}
		fn(n)
	}
}
