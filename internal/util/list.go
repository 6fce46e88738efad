package util

import "iter"

// List is a FIFO-friendly linked list. The zero value is an empty list.
type List[T any] struct {
	head   *listNode[T]
	tail   *listNode[T]
	length int
}

type listNode[T any] struct {
	value T
	next  *listNode[T]
}

func (l *List[T]) PushFront(v T) {
	l.head = &listNode[T]{value: v, next: l.head}

	if l.tail == nil {
		l.tail = l.head
	}

	l.length++
}

func (l *List[T]) PushBack(v T) {
	n := &listNode[T]{value: v}

	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}

	l.tail = n
	l.length++
}

func (l *List[T]) PopFront() (value T, ok bool) {
	if l.head == nil {
		return
	}

	value = l.head.value
	l.head = l.head.next
	l.length--

	if l.head == nil {
		l.tail = nil
	}

	return value, true
}

func (l *List[T]) Front() (value T, ok bool) {
	if l.head == nil {
		return
	}

	return l.head.value, true
}

func (l *List[T]) Len() int {
	return l.length
}

func (l *List[T]) Empty() bool {
	return l.length == 0
}

func (l *List[T]) FromFront() iter.Seq[T] {
	return func(f func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !f(n.value) {
				break
			}
		}
	}
}

func (l *List[T]) Slice() []T {
	s := make([]T, 0, l.length)

	for v := range l.FromFront() {
		s = append(s, v)
	}

	return s
}
