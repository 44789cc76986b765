package duckdb

import (
	"testing"

	"github.com/lychee-technology/formapage/internal/engine"
)

func TestBackendForcesSecondaryPostponedFetch(t *testing.T) {
	b := &Backend{}
	if b.PostponedFetchKind() != engine.PostponedFetchSecondary {
		t.Fatalf("expected duckdb backend to force Secondary, got %s", b.PostponedFetchKind())
	}
}

func TestBackendCastAsString(t *testing.T) {
	b := &Backend{}
	if b.CastAsString("o.price") != "CAST(o.price AS VARCHAR)" {
		t.Fatalf("unexpected cast: %s", b.CastAsString("o.price"))
	}
}

func TestBackendIsAggregationRecognizesListAgg(t *testing.T) {
	b := &Backend{}
	if !b.IsAggregation("LIST(o.tag)") {
		t.Fatal("expected LIST(...) to classify as an aggregate")
	}
}
