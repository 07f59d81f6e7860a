// Package esdata maps Go structs and declarative schemas onto Elasticsearch indices.
//
// Every entity is described once, either by `es` struct tags or by a Schema
// loaded from YAML. The mapping context scans it into a sealed PersistentEntity
// that knows the index, the field name and mapping type of every property, and
// which properties carry the document id, version and score.
//
// # Typed repositories
//
//	type Book struct {
//	    _       struct{} `es:"index=books,shards=1"`
//	    ID      string   `es:"id,id"`
//	    Title   string   `es:"title,type=text,analyzer=english"`
//	    Author  string   `es:"author_name,type=keyword"`
//	    Version int64    `es:",version"`
//	    Score   float64  `es:",score"`
//	}
//
//	client, _ := esdata.New(esdata.WithElasticsearch("http://localhost:9200"))
//	books, _ := esdata.NewRepository[Book](client)
//	_, _ = books.EnsureIndex(ctx)
//	saved, _ := books.Save(ctx, Book{ID: "dune", Title: "Dune"})
//	hits, _ := books.Search().Match("dune").Where("Author", "Frank Herbert").Do(ctx)
//
// A non-zero version property selects external versioning: Elasticsearch
// accepts the write only when the version is higher than the stored one, and
// the rejection surfaces as ErrVersionConflict.
//
// # Schema files
//
// Entities without a Go type are declared in YAML and registered with
// WithSchemaFiles. They are served by the HTTP admin API in cmd/esdata.
package esdata
