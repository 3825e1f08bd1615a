package itempath

import (
	"errors"
	"reflect"
	"testing"

	"arbor/internal/domain"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name       string
		parentPath string
		id         string
		want       string
		wantErr    bool
	}{
		{name: "root item", parentPath: "", id: "a1", want: "a1"},
		{name: "child item", parentPath: "a1", id: "b2", want: "a1.b2"},
		{name: "grandchild item", parentPath: "a1.b2", id: "c3", want: "a1.b2.c3"},
		{name: "id with separator", parentPath: "a1", id: "b.2", wantErr: true},
		{name: "empty id", parentPath: "a1", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Append(tt.parentPath, tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Append(%q, %q): expected error, got %q", tt.parentPath, tt.id, got)
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("Append error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Append(%q, %q): unexpected error %v", tt.parentPath, tt.id, err)
			}
			if got != tt.want {
				t.Errorf("Append(%q, %q) = %q, want %q", tt.parentPath, tt.id, got, tt.want)
			}
		})
	}
}

func TestParent(t *testing.T) {
	if _, ok := Parent("root"); ok {
		t.Error("Parent of a root path should report no parent")
	}

	parent, ok := Parent("a.b.c")
	if !ok || parent != "a.b" {
		t.Errorf("Parent(a.b.c) = %q, %v; want a.b, true", parent, ok)
	}
}

func TestDepthAndLast(t *testing.T) {
	if d := Depth(""); d != 0 {
		t.Errorf("Depth(\"\") = %d, want 0", d)
	}
	if d := Depth("a"); d != 1 {
		t.Errorf("Depth(a) = %d, want 1", d)
	}
	if d := Depth("a.b.c"); d != 3 {
		t.Errorf("Depth(a.b.c) = %d, want 3", d)
	}
	if last := Last("a.b.c"); last != "c" {
		t.Errorf("Last(a.b.c) = %q, want c", last)
	}
	if last := Last("a"); last != "a" {
		t.Errorf("Last(a) = %q, want a", last)
	}
}

func TestIsDescendant(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		ancestor string
		want     bool
	}{
		{name: "self", path: "a.b", ancestor: "a.b", want: true},
		{name: "direct child", path: "a.b", ancestor: "a", want: true},
		{name: "deep descendant", path: "a.b.c.d", ancestor: "a", want: true},
		{name: "sibling", path: "a.c", ancestor: "a.b", want: false},
		{name: "reversed", path: "a", ancestor: "a.b", want: false},
		// The classic id-prefix collision: "12" is not an ancestor of "123".
		{name: "segment prefix collision", path: "123", ancestor: "12", want: false},
		{name: "segment prefix collision nested", path: "a.123.b", ancestor: "a.12", want: false},
		{name: "empty ancestor", path: "a", ancestor: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescendant(tt.path, tt.ancestor); got != tt.want {
				t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.path, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestRewritePrefix(t *testing.T) {
	got, err := RewritePrefix("a.b.c", "a.b", "x.y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x.y.c" {
		t.Errorf("RewritePrefix = %q, want x.y.c", got)
	}

	got, err = RewritePrefix("a.b", "a.b", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x" {
		t.Errorf("RewritePrefix on the prefix itself = %q, want x", got)
	}

	if _, err := RewritePrefix("a.b.c", "a.c", "x"); err == nil {
		t.Error("expected error when oldPrefix is not a prefix")
	}
	if _, err := RewritePrefix("a.bc", "a.b", "x"); err == nil {
		t.Error("expected error on partial-segment prefix")
	}
}

func TestAncestors(t *testing.T) {
	got := Ancestors("a.b.c")
	want := []string{"a.b.c", "a.b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ancestors(a.b.c) = %v, want %v", got, want)
	}

	if got := Ancestors(""); got != nil {
		t.Errorf("Ancestors(\"\") = %v, want nil", got)
	}
}
