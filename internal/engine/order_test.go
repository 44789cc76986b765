package engine

import (
	"testing"

	"github.com/lychee-technology/formapage"
)

func TestOrderBuilderRendersAscendingAndDescending(t *testing.T) {
	r := NewPathResolver(sampleMetadata(), nil)
	ob := NewOrderBuilder(r, fakeBackend{})

	clause, err := ob.Build([]formapage.Ordering{
		{Field: "name", Ascending: true},
		{Field: "status", Ascending: false},
	}, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "o.name ASC, o.status DESC" {
		t.Fatalf("unexpected clause: %s", clause)
	}
}

func TestOrderBuilderSkipsSingleRowWindow(t *testing.T) {
	r := NewPathResolver(sampleMetadata(), nil)
	ob := NewOrderBuilder(r, fakeBackend{})

	clause, err := ob.Build([]formapage.Ordering{{Field: "name", Ascending: true}}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "" {
		t.Fatalf("expected no ORDER BY for a single-row window, got %q", clause)
	}
}

func TestOrderBuilderRefusesToManyOnPostponedBackend(t *testing.T) {
	r := NewPathResolver(sampleMetadata(), nil)
	ob := NewOrderBuilder(r, fakeBackend{postponed: PostponedFetchSecondary})

	_, err := ob.Build([]formapage.Ordering{{Field: "lineItems", Ascending: true}}, 0, 10)
	if err == nil {
		t.Fatal("expected an error ordering through a to-many path on a secondary-fetch backend")
	}
}

func TestOrderBuilderAllowsToManyWhenBackendSupportsItNatively(t *testing.T) {
	r := NewPathResolver(sampleMetadata(), nil)
	ob := NewOrderBuilder(r, fakeBackend{postponed: PostponedFetchNone})

	if _, err := ob.Build([]formapage.Ordering{{Field: "lineItems", Ascending: true}}, 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
