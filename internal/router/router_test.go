package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/cfaprep/cfaprep/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	closed  bool
}

func (s *stubScreen) Close() { s.closed = true }

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	s2 := &stubScreen{title: "picker"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "picker" {
		t.Errorf("expected active 'picker', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	s2 := &stubScreen{title: "picker"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "home" {
		t.Errorf("expected active 'home', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	s2 := &stubScreen{title: "picker"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "picker" {
		t.Errorf("expected active 'picker', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	s2 := &stubScreen{title: "picker"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "picker" {
		t.Errorf("expected active 'picker', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)

	s2 := &stubScreen{title: "picker"}
	r.Push(s2)

	s3 := &stubScreen{title: "test"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "test" {
		t.Errorf("expected active 'test', got %q", r.Active().Title())
	}
}

func TestPopClosesScreen(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	s2 := &stubScreen{title: "picker"}
	r.Push(s2)
	r.Pop()

	if !s2.closed {
		t.Error("expected popped screen to be closed")
	}
}

func TestReplaceClosesScreen(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)
	r.Replace(&stubScreen{title: "picker"})

	if !s1.closed {
		t.Error("expected replaced screen to be closed")
	}
}

func TestPopToRoot(t *testing.T) {
	s1 := &stubScreen{title: "home"}
	r := New(s1)
	s2 := &stubScreen{title: "picker"}
	s3 := &stubScreen{title: "test"}
	r.Push(s2)
	r.Push(s3)

	r.Update(PopToRootMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if !s2.closed || !s3.closed {
		t.Error("expected every popped screen to be closed")
	}
	if s1.closed {
		t.Error("root screen must stay open")
	}
}
