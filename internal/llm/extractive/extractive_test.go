package extractive

import (
	"context"
	"strings"
	"testing"
)

func TestCompleteUsesQuotedMaterial(t *testing.T) {
	prompt := "You are a helpful assistant. Answer using only the context.\n\n" +
		"Context:\n" + Fence + "\nTitle: Go\n\nContent: Go has goroutines. Goroutines are cheap threads.\n\nAuthor: gopher\n" + Fence + "\n\n" +
		"Question: what are goroutines?"

	out, err := New(1).Complete(context.Background(), prompt)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "oroutines") {
		t.Errorf("answer %q does not come from the context", out)
	}
	for _, leaked := range []string{"helpful assistant", "gopher", "Question"} {
		if strings.Contains(out, leaked) {
			t.Errorf("answer %q leaked %q", out, leaked)
		}
	}
}

func TestCompleteWithoutFences(t *testing.T) {
	out, err := New(2).Complete(context.Background(), "Write about pho. Pho is a noodle soup.")
	if err != nil {
		t.Fatal(err)
	}
	if out == "" {
		t.Error("empty completion")
	}
}

func TestCompleteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(1).Complete(ctx, "x"); err == nil {
		t.Error("expected context error")
	}
}

func TestCompleteAddsKeywordsWhenAsked(t *testing.T) {
	prompt := "List the important keywords.\n" + Fence + "\nContent: Broth simmers for hours. The broth uses ginger and broth bones.\n" + Fence
	out, err := New(1).Complete(context.Background(), prompt)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Keywords: broth") {
		t.Errorf("completion %q lacks the keyword line", out)
	}

	plain, err := New(1).Complete(context.Background(), Fence+"\nBroth simmers for hours.\n"+Fence)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain, "Keywords:") {
		t.Errorf("keywords added without being asked: %q", plain)
	}
}
