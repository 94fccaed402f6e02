// Package docsearch embeds the docsearch engine in a Go program without the HTTP server.
//
// The client scans one collection of a memory, Redis, Valkey, PostgreSQL or SQLite store,
// matches the query against the configured searchable fields with optional typo tolerance,
// and returns normalized JSON-ready documents.
//
//	client, _ := docsearch.New(ctx,
//	    docsearch.WithSQLite("docs.db"),
//	    docsearch.WithCollection("users"),
//	    docsearch.WithSearchableFields("name", "email"),
//	    docsearch.WithFuzzy(4),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, docsearch.SearchRequest{SearchValue: "jahn", Limit: 5})
//	for _, m := range res.Matches {
//	    fmt.Println(m["id"], m["name"])
//	}
//
// Callers that serve untrusted traffic can gate searches with Admit, which applies the
// configured sliding-window limit per caller key.
package docsearch
