// Package recall is a Go client for the recall multimodal search service.
//
// Collections are bound to one embedding model. Documents are ingested
// asynchronously: Ingest returns a task id, and the task service reports
// per-document progress until every job has completed or failed.
//
//	client, _ := recall.New("http://localhost:8000", recall.WithAPIKey(key))
//	_, _ = client.Collections().Ensure(ctx, "shoes", "all-MiniLM-L6-v2",
//	    recall.WithField("price", recall.FieldFloat),
//	    recall.WithField("brand", recall.FieldKeyword),
//	)
//	res, _ := client.Documents("shoes").Ingest(ctx, []recall.Document{
//	    {ID: "sku-1", ContentRaw: "red running shoe", Payload: map[string]any{"price": 59.9, "brand": "acme"}},
//	})
//	_, _ = client.Tasks().Wait(ctx, res.TaskID)
//
//	hits, _ := client.Search("shoes").Query(ctx, recall.SearchQuery{
//	    Query:  "trail runners",
//	    Filter: recall.And(recall.Lt("price", 100), recall.In("brand", "acme", "zeta")),
//	    Limit:  5,
//	})
package recall
