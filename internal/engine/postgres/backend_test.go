package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestBackendQueryDecodesRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"o", "name"}).
		AddRow("row-1", "acme").
		AddRow("row-2", "widgets")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT o, name FROM orders")).WillReturnRows(rows)

	b := New(mock)
	result, err := b.Query(context.Background(), "SELECT o, name FROM orders", nil)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, "acme", result[0]["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBackendQueryCountScansScalar(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	b := New(mock)
	count, err := b.QueryCount(context.Background(), "SELECT COUNT(*) FROM orders", nil)
	require.NoError(t, err)
	require.Equal(t, 7, count)
}

func TestBackendIsAggregationRecognizesAggregateFunctions(t *testing.T) {
	b := &Backend{}
	if !b.IsAggregation("COUNT(o.id)") {
		t.Fatal("expected COUNT(...) to classify as an aggregate")
	}
	if b.IsAggregation("o.name") {
		t.Fatal("expected a plain column reference not to classify as an aggregate")
	}
}

func TestBackendCastAsString(t *testing.T) {
	b := &Backend{}
	if b.CastAsString("o.price") != "o.price::text" {
		t.Fatalf("unexpected cast: %s", b.CastAsString("o.price"))
	}
}
