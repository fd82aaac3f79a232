package iox

import (
	"errors"
	"testing"
)

type spyCloser struct{ closed bool }

func (s *spyCloser) Close() error { s.closed = true; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestCloseAll_JoinsErrors(t *testing.T) {
	a := &spyCloser{}
	b := &spyCloser{}

	err := CloseAll(a, nil, b)
	if !a.closed || !b.closed {
		t.Fatal("CloseAll did not close every closer")
	}
	if err == nil {
		t.Fatal("expected joined error")
	}
}

func TestCloseAll_Empty(t *testing.T) {
	if err := CloseAll(); err != nil {
		t.Errorf("CloseAll() = %v, want nil", err)
	}
}
