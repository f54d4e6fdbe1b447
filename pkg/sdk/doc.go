// Package askrank embeds the campus feed's "Ask AI" ranking engine as a Go
// library: a Redis-backed post corpus, one batched embedding call per
// query, and a fixed-weight blend of semantic and lexical relevance.
//
//	client, _ := askrank.New(ctx,
//	    askrank.WithRedis("localhost:6379"),
//	    askrank.WithOpenAI(apiKey, "", "text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//
//	hits, _ := client.Ask(ctx, "free pizza tonight")
//	for _, h := range hits {
//	    fmt.Println(h.Title, h.Why.Overlap)
//	}
package askrank
