package nntp

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGroupStructuralDiff(t *testing.T) {
	want := Group{
		Name:             "example.all",
		Number:           1,
		Low:              1,
		High:             1,
		Created:          time.Unix(0, 0).UTC(),
		PostingPermitted: true,
	}
	got := Group{
		Name:             "example.all",
		Number:           1,
		Low:              1,
		High:             2,
		Created:          time.Unix(0, 0).UTC(),
		PostingPermitted: true,
	}
	if diff := cmp.Diff(want, got); diff == "" {
		t.Fatal("expected a diff between groups with different High watermarks")
	}

	got.High = 1
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected diff after equalizing High: %s", diff)
	}
}

func TestArticleInfoStructuralDiffComparesHeadersByContent(t *testing.T) {
	base := ArticleInfo{
		Number:    1,
		Subject:   "hello",
		From:      "a@x",
		Date:      time.Unix(1000, 0).UTC(),
		MessageID: "<1@x>",
	}
	withHeaders := base
	withHeaders.Headers = NewOrderedHeaders([2]string{"X-Custom", "value"})

	if diff := cmp.Diff(base, withHeaders); diff == "" {
		t.Fatal("expected a diff once extra headers are attached")
	}

	other := base
	other.Headers = NewOrderedHeaders([2]string{"X-Custom", "value"})
	if diff := cmp.Diff(withHeaders, other); diff != "" {
		t.Fatalf("expected OrderedHeaders.Equal to make these match, got diff: %s", diff)
	}
}
