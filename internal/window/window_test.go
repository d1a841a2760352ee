package window

import "testing"

// TestStaticProvider tests the fixed-answer provider
func TestStaticProvider(t *testing.T) {
	s := NewStatic(Info{ID: "1", Title: "Editor"}, true)

	info, ok := s.Foreground()
	if !ok || info.Title != "Editor" {
		t.Errorf("Expected Editor, got %+v (ok=%v)", info, ok)
	}

	s.Set(Info{}, false)
	if _, ok := s.Foreground(); ok {
		t.Error("Expected no foreground window after Set")
	}
	if s.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", s.Calls())
	}

	s.SetList([]Info{{ID: "1"}, {ID: "2"}})
	list := s.List()
	list[0].ID = "changed"
	if s.List()[0].ID != "1" {
		t.Error("Expected List to return a copy")
	}
}

type listOnly struct{}

func (listOnly) Foreground() (Info, bool) { return Info{}, false }
func (listOnly) List() []Info             { return nil }

// TestFocus tests dispatch to providers with and without focus support
func TestFocus(t *testing.T) {
	s := NewStatic(Info{}, false)
	if err := Focus(s, "42"); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if got := s.Focused(); len(got) != 1 || got[0] != "42" {
		t.Errorf("Expected [42], got %v", got)
	}

	if err := Focus(listOnly{}, "42"); err != ErrFocusUnsupported {
		t.Errorf("Expected ErrFocusUnsupported, got %v", err)
	}
}
