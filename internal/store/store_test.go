package store

import "testing"

type exprID int

func TestContainerAllocateSet(t *testing.T) {
	c := New[exprID, string]()
	id := c.Allocate()
	if id != 0 {
		t.Fatalf("first id = %d, want 0", id)
	}
	c.Set(id, "hello")
	if got := c.Get(id); got != "hello" {
		t.Errorf("Get = %q, want %q", got, "hello")
	}
	second := c.Add("world")
	if second != 1 {
		t.Fatalf("second id = %d, want 1", second)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestContainerEachOrder(t *testing.T) {
	c := New[exprID, int]()
	for i := 0; i < 5; i++ {
		c.Add(i * 10)
	}
	var seen []int
	c.Each(func(id exprID, item int) {
		seen = append(seen, item)
	})
	for i, item := range seen {
		if item != i*10 {
			t.Errorf("item %d = %d, want %d", i, item, i*10)
		}
	}
}

func TestContainerOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range id")
		}
	}()
	c := New[exprID, int]()
	c.Get(3)
}

func TestCounter(t *testing.T) {
	var c Counter
	if c.Peek() != 0 {
		t.Fatalf("Peek = %d, want 0", c.Peek())
	}
	if c.Next() != 0 || c.Next() != 1 || c.Next() != 2 {
		t.Error("Next did not issue consecutive values")
	}
}
