package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeUnchanged(t *testing.T) {
	cs := Compute("a.css", []byte("a {\n}\n"), []byte("a {\n}\n"))
	if cs.Changed() {
		t.Fatal("identical input reported as changed")
	}
	var b strings.Builder
	if err := cs.WriteUnified(&b, nil); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Fatalf("unexpected output %q", b.String())
	}
}

func TestWriteUnified(t *testing.T) {
	before := "a {\ncolor:red\n}\n"
	after := "a {\n    color: red;\n}\n"
	cs := Compute("style.css", []byte(before), []byte(after))
	if !cs.Changed() {
		t.Fatal("expected change")
	}

	var b strings.Builder
	if err := cs.WriteUnified(&b, PlainColors()); err != nil {
		t.Fatal(err)
	}
	want := "--- style.css.orig\n+++ style.css\n@@ -1,3 +1,3 @@\n a {\n-color:red\n+    color: red;\n }\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestHunksSplitOnDistantChanges(t *testing.T) {
	var before, after []string
	for i := range 20 {
		line := string(rune('a' + i))
		before = append(before, line)
		after = append(after, line)
	}
	after[1] = "B"
	after[18] = "S"

	cs := Compute("x", []byte(strings.Join(before, "\n")+"\n"), []byte(strings.Join(after, "\n")+"\n"))
	var b strings.Builder
	if err := cs.WriteUnified(&b, PlainColors()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if got := strings.Count(out, "@@ -"); got != 2 {
		t.Fatalf("got %d hunks, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "@@ -1,5 +1,5 @@\n") || !strings.Contains(out, "@@ -16,5 +16,5 @@\n") {
		t.Fatalf("unexpected hunk headers:\n%s", out)
	}
}

func TestInsertIntoEmpty(t *testing.T) {
	cs := Compute("x", nil, []byte("a\n"))
	var b strings.Builder
	if err := cs.WriteUnified(&b, PlainColors()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "@@ -0,0 +1,1 @@\n+a\n") {
		t.Fatalf("unexpected output:\n%s", b.String())
	}
}

func TestMissingTrailingNewline(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{
			name:   "original unterminated",
			before: "a\nb",
			after:  "a\nb\n",
			want:   "@@ -1,2 +1,2 @@\n a\n-b\n\\ No newline at end of file\n+b\n",
		},
		{
			name:   "formatted unterminated",
			before: "a\nb\n",
			after:  "a\nb",
			want:   "@@ -1,2 +1,2 @@\n a\n-b\n+b\n\\ No newline at end of file\n",
		},
		{
			name:   "both unterminated",
			before: "a\nb",
			after:  "c\nb",
			want:   "@@ -1,2 +1,2 @@\n-a\n+c\n b\n\\ No newline at end of file\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := Compute("x", []byte(tt.before), []byte(tt.after)).WriteUnified(&b, PlainColors()); err != nil {
				t.Fatal(err)
			}
			want := "--- x.orig\n+++ x\n" + tt.want
			if diff := cmp.Diff(want, b.String()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}
