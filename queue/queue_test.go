package queue

import "testing"

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := 1; i <= 5; i++ {
		q.Enqueue(i)
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d", q.Len())
	}
	for i := 1; i <= 5; i++ {
		got, ok := q.Dequeue()
		if !ok || got != i {
			t.Errorf("Dequeue() = %d,%v, want %d,true", got, ok, i)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q := New[string]()
	got, ok := q.Dequeue()
	if ok || got != "" {
		t.Errorf("Dequeue() = %q,%v on empty queue", got, ok)
	}
}

func TestQueue_Peek(t *testing.T) {
	q := New[string]()
	if _, ok := q.Peek(); ok {
		t.Error("Peek() on empty queue should report false")
	}
	q.Enqueue("a")
	q.Enqueue("b")
	got, ok := q.Peek()
	if !ok || got != "a" {
		t.Errorf("Peek() = %q,%v", got, ok)
	}
	if q.Len() != 2 {
		t.Errorf("Peek must not remove: Len() = %d", q.Len())
	}
}
