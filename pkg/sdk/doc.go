// Package pathwise embeds the PathWise content aggregation engine in a Go
// program without the HTTP API.
//
// The client fans a query out to the book, paper and video catalogs, merges
// the answers round-robin and caches them in Redis or an embedded Badger
// store. Scholarship matching works offline against the built-in catalog;
// AI generation needs an OpenAI-compatible key or a custom Generator.
//
//	client, _ := pathwise.New(ctx,
//	    pathwise.WithBadger(""),
//	    pathwise.WithYouTube(os.Getenv("YOUTUBE_API_KEY")),
//	)
//	defer client.Close()
//
//	res, _ := client.SearchText(ctx, pathwise.Query{Subject: "Matemáticas", Topic: "derivadas"})
//	for _, item := range res.Items {
//	    fmt.Println(item.Source, item.Title)
//	}
//
//	matches, _ := client.MatchScholarships(ctx, pathwise.Profile{
//	    Name:  "Ana",
//	    Level: "universidad",
//	})
package pathwise
