// Package devsift is an embeddable client for searching device inventories.
//
// A Client owns a query engine: it loads an inventory from a locator
// (http(s) URL, file path, or redis://<key> when WithRedis is set), then
// answers fuzzy text queries combined with facet filters, numeric ranges and
// multi-key sorting. Each successful load installs a new generation; a failed
// load keeps the previous one.
//
//	client, _ := devsift.New(ctx, devsift.WithCacheSize(256))
//	defer client.Close()
//
//	_, _ = client.Load(ctx, "https://example.com/devices.json")
//	res, _ := client.Query(ctx, devsift.QueryInput{
//	    Q:     "sonoff basic",
//	    Enums: devsift.EnumFilters{Online: []bool{true}},
//	    Sort:  []devsift.SortSpec{{ID: "brandName"}, {ID: "ordinal"}},
//	})
//	for _, row := range res.Rows {
//	    fmt.Println(row.Ordinal, *row.Name)
//	}
package devsift
