package cache

// node is an element of the recency list. The front of the list is the
// most recently used key, the back the least.
type node struct {
	key  string
	prev *node
	next *node
}

// list is a doubly-linked list with sentinel head and tail nodes, so
// remove never has to special-case the ends.
type list struct {
	head *node
	tail *node
}

func newList() *list {
	h := &node{}
	t := &node{}
	h.next = t
	t.prev = h
	return &list{head: h, tail: t}
}

func (l *list) pushFront(key string) *node {
	n := &node{key: key}
	n.prev = l.head
	n.next = l.head.next
	l.head.next.prev = n
	l.head.next = n
	return n
}

func (l *list) remove(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

// popBack removes and returns the least recently used key.
func (l *list) popBack() (string, bool) {
	n := l.tail.prev
	if n == l.head {
		return "", false
	}
	l.remove(n)
	return n.key, true
}
