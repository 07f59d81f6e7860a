package index

import (
	"fmt"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Definition derives the index definition of an entity.
// Version and score properties live in hit metadata and never get a mapping.
func Definition(e *mapping.PersistentEntity) (*db.IndexDefinition, error) {
	s := e.Schema()
	b := db.NewIndex(e.IndexName()).
		Shards(s.Shards).
		RefreshInterval(s.RefreshInterval)
	if s.Replicas != nil {
		b = b.Replicas(*s.Replicas)
	}

	for _, p := range e.Properties() {
		if !p.IsWritable() {
			continue
		}
		b = b.Field(db.IndexField{
			Name:           p.FieldName(),
			Type:           db.IndexFieldType(p.FieldType()),
			Analyzer:       p.Analyzer(),
			SearchAnalyzer: p.SearchAnalyzer(),
			Format:         p.Format(),
			NotIndexed:     !p.Indexed(),
		})
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: entity %s: %w", domain.ErrInvalidMapping, e.Type(), err)
	}
	return def, nil
}
