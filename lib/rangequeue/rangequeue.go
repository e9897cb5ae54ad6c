package rangequeue

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// Queue is a retry queue served from the front. Items that must be retried first are
// pushed to the front, so the most recently requeued item is handed out next.
//
// Queue is not safe for concurrent use; callers guard it together with their own cursor.
type Queue[T any] struct {
	list *doublylinkedlist.List // structure not thread safe
}

// Item carries the number of times a value was handed back to the queue.
type Item[T any] struct {
	Value   T
	Retries int
}

func New[T any]() *Queue[T] {
	return &Queue[T]{list: doublylinkedlist.New()}
}

// PushFront puts the items at the front of the queue, keeping their relative order:
// after PushFront(a, b), a is returned before b.
func (q *Queue[T]) PushFront(items ...Item[T]) {
	for i := len(items) - 1; i >= 0; i-- {
		q.list.Prepend(items[i])
	}
}

func (q *Queue[T]) PopFront() (Item[T], bool) {
	value, ok := q.list.Get(0)
	if !ok {
		return Item[T]{}, false
	}
	q.list.Remove(0)
	return value.(Item[T]), true
}

func (q *Queue[T]) Size() int {
	return q.list.Size()
}
