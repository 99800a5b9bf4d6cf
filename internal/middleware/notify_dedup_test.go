package middleware

import (
	"context"
	"testing"
	"time"
)

func TestMemoryNotificationDeduper(t *testing.T) {
	t.Run("Given an unmarked key When checked repeatedly Then it is never a duplicate", func(t *testing.T) {
		d := newMemoryNotificationDeduper(time.Minute)

		for i := 0; i < 2; i++ {
			if seen, err := d.Seen(context.Background(), "PS-1-abc:captured"); err != nil || seen {
				t.Fatalf("check %d = %v, %v; want false, nil until marked", i, seen, err)
			}
		}
	})

	t.Run("Given a marked key When checked Then it is a duplicate", func(t *testing.T) {
		d := newMemoryNotificationDeduper(time.Minute)
		if err := d.Mark(context.Background(), "PS-1-abc:captured"); err != nil {
			t.Fatalf("mark: %v", err)
		}

		if seen, err := d.Seen(context.Background(), "PS-1-abc:captured"); err != nil || !seen {
			t.Fatalf("check = %v, %v; want true, nil", seen, err)
		}
	})

	t.Run("Given different keys When one is marked Then they do not collide", func(t *testing.T) {
		d := newMemoryNotificationDeduper(time.Minute)
		d.Mark(context.Background(), "PS-1-abc:captured")

		if seen, _ := d.Seen(context.Background(), "PS-1-abc:failed"); seen {
			t.Fatal("unrelated key reported as duplicate")
		}
	})

	t.Run("Given an expired entry When checked again Then it counts as fresh", func(t *testing.T) {
		d := newMemoryNotificationDeduper(10 * time.Millisecond)
		d.Mark(context.Background(), "PS-1-abc:captured")
		time.Sleep(20 * time.Millisecond)

		if seen, _ := d.Seen(context.Background(), "PS-1-abc:captured"); seen {
			t.Fatal("expired entry should not be a duplicate")
		}
	})
}

func TestNewNotificationDeduper(t *testing.T) {
	t.Run("Given no redis address When constructed Then the memory fallback is used without error", func(t *testing.T) {
		d, err := NewNotificationDeduper("", "", 0, time.Minute)
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if _, ok := d.(*memoryNotificationDeduper); !ok {
			t.Fatalf("deduper type = %T, want memory fallback", d)
		}
	})

	t.Run("Given an unreachable redis When constructed Then it still returns a working fallback", func(t *testing.T) {
		d, err := NewNotificationDeduper("127.0.0.1:1", "", 0, time.Minute)
		if err == nil {
			t.Fatal("want a connection error alongside the fallback")
		}
		if d == nil {
			t.Fatal("fallback deduper must not be nil")
		}
		if seen, serr := d.Seen(context.Background(), "x"); serr != nil || seen {
			t.Fatalf("fallback Seen = %v, %v", seen, serr)
		}
		if merr := d.Mark(context.Background(), "x"); merr != nil {
			t.Fatalf("fallback Mark = %v", merr)
		}
		if seen, _ := d.Seen(context.Background(), "x"); !seen {
			t.Fatal("fallback lost the marked key")
		}
	})
}
