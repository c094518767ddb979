package storage

import (
	"context"
	"testing"
)

func TestOpenRequiresKind(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatal("Open with empty kind should fail")
	}
	if _, err := Open(context.Background(), Config{Kind: "oracle"}); err == nil {
		t.Fatal("Open with unregistered kind should fail")
	}
}

func TestRegisterGuards(t *testing.T) {
	t.Parallel()

	expectPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	expectPanic("empty kind", func() { Register("", nil) })
	expectPanic("nil factory", func() {
		Register("somekind", nil)
	})
}
