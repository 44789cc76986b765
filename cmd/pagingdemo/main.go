// Command pagingdemo wires a Postgres backend to the paging engine against
// a small "orders" table and runs one filtered, sorted, paginated search.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lychee-technology/formapage"
	"github.com/lychee-technology/formapage/internal/engine"
	"github.com/lychee-technology/formapage/internal/engine/postgres"
)

type order struct {
	ID     uuid.UUID
	Name   string
	Status string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("pagingdemo: logger init failed: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := formapage.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	dsn := os.Getenv("PAGINGDEMO_DSN")
	if dsn == "" {
		dsn = "postgres://localhost:5432/pagingdemo"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer pool.Close()

	backend := postgres.New(pool)

	metadata := engine.EntityMetadata{
		Root: "orders",
		Attributes: map[string]engine.AttributeDescriptor{
			"id":     {Column: "id", Kind: formapage.PathKindString},
			"name":   {Column: "name", Kind: formapage.PathKindString},
			"status": {Column: "status", Kind: formapage.PathKindEnum, EnumOrdinal: false, EnumNames: []string{"NEW", "BOOKED", "CLOSED"}},
		},
		ElementCollections: map[string]bool{"tags": true},
	}

	request := formapage.PageRequest{
		Offset:   0,
		Limit:    cfg.Query.DefaultPageSize,
		Ordering: []formapage.Ordering{{Field: "name", Ascending: true}},
		Required: map[string]formapage.Criteria{
			"status": formapage.Enumerated{Raw: "BOOKED"},
		},
		Optional: map[string]formapage.Criteria{
			"name": formapage.Like{Mode: formapage.LikeContains, Value: "acme"},
		},
	}

	page, err := engine.GetPage[order](
		context.Background(),
		engine.PageEngineConfig{Metadata: metadata, Backend: backend},
		request,
		true,
		cfg.Query.DefaultCacheable,
		func(o order) formapage.EntityID { return o.ID },
		mapOrderRow,
		nil,
		nil,
		engine.PageHooks{},
	)
	if err != nil {
		logger.Fatal("page query failed", zap.Error(err))
	}

	fmt.Printf("found %d orders (estimated total %d)\n", len(page.Items), page.EstimatedTotal)
	for _, o := range page.Items {
		fmt.Printf("  %s %s %s\n", o.ID, o.Name, o.Status)
	}
}

func mapOrderRow(row engine.Row) (order, error) {
	id, _ := row["id"].(uuid.UUID)
	name, _ := row["name"].(string)
	status, _ := row["status"].(string)
	return order{ID: id, Name: name, Status: status}, nil
}
