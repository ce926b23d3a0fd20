package memory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/trailhead/trailhead/pkg/store/document"
	"github.com/trailhead/trailhead/pkg/store/document/memory"
)

// Walking a paginated query to exhaustion must visit every matching
// document exactly once, for any collection size, page size, and sort
// direction. Duplicate sort values are generated deliberately so the
// id tie-break is exercised.
func TestProperty_PaginationCompleteness(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	genDocCount := gen.IntRange(1, 40)
	genPageSize := gen.IntRange(1, 10)
	genDescending := gen.Bool()

	props.Property("every document is seen exactly once", prop.ForAll(
		func(docCount, pageSize int, descending bool) bool {
			s := memory.NewStore()
			ctx := context.Background()
			for i := 0; i < docCount; i++ {
				d := document.Document{
					document.FieldID:           fmt.Sprintf("doc-%03d", i),
					document.FieldPartitionKey: "p1",
					"score":                    i % 5,
				}
				if _, err := s.Create(ctx, "items", d); err != nil {
					return false
				}
			}

			order := document.SortAsc
			if descending {
				order = document.SortDesc
			}
			q := document.Query{Sort: document.Sort{Field: "score", Order: order}}

			seen := make(map[string]int)
			token := ""
			for {
				page, err := s.Query(ctx, "items", q, document.QueryOptions{
					MaxItemCount:      pageSize,
					ContinuationToken: token,
				})
				if err != nil {
					return false
				}
				if len(page.Items) > pageSize {
					return false
				}
				for _, d := range page.Items {
					id, _ := d[document.FieldID].(string)
					seen[id]++
				}
				if page.ContinuationToken == "" {
					break
				}
				token = page.ContinuationToken
			}

			if len(seen) != docCount {
				return false
			}
			for _, n := range seen {
				if n != 1 {
					return false
				}
			}
			return true
		},
		genDocCount, genPageSize, genDescending,
	))

	props.Property("pages concatenate into the one-shot result order", prop.ForAll(
		func(docCount, pageSize int) bool {
			s := memory.NewStore()
			ctx := context.Background()
			for i := 0; i < docCount; i++ {
				d := document.Document{
					document.FieldID:           fmt.Sprintf("doc-%03d", i),
					document.FieldPartitionKey: "p1",
					"score":                    (i * 7) % 11,
				}
				if _, err := s.Create(ctx, "items", d); err != nil {
					return false
				}
			}

			q := document.Query{Sort: document.Sort{Field: "score", Order: document.SortAsc}}

			oneShot, err := s.Query(ctx, "items", q, document.QueryOptions{})
			if err != nil {
				return false
			}

			var paged []document.Document
			token := ""
			for {
				page, err := s.Query(ctx, "items", q, document.QueryOptions{
					MaxItemCount:      pageSize,
					ContinuationToken: token,
				})
				if err != nil {
					return false
				}
				paged = append(paged, page.Items...)
				if page.ContinuationToken == "" {
					break
				}
				token = page.ContinuationToken
			}

			if len(paged) != len(oneShot.Items) {
				return false
			}
			for i := range paged {
				if paged[i][document.FieldID] != oneShot.Items[i][document.FieldID] {
					return false
				}
			}
			return true
		},
		genDocCount, genPageSize,
	))

	props.TestingRun(t, gopter.ConsoleReporter(false))
}
