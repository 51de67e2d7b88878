package collection

import (
	"fmt"

	"github.com/kailas-cloud/recall/internal/db"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
)

// buildDefinition creates the vector collection definition: cosine distance over the
// model's dimensions plus one payload index per schema field.
func buildDefinition(col domcol.Collection) (*db.CollectionDefinition, error) {
	def := &db.CollectionDefinition{
		Name:       col.Name(),
		VectorSize: col.VectorDim(),
		Distance:   db.DistanceCosine,
		Indexes:    make([]db.PayloadIndex, 0, len(col.Fields())),
	}

	for _, f := range col.Fields() {
		var t db.PayloadIndexType
		switch f.FieldType() {
		case field.Keyword:
			t = db.PayloadIndexKeyword
		case field.Int:
			t = db.PayloadIndexInteger
		case field.Float:
			t = db.PayloadIndexFloat
		case field.Bool:
			t = db.PayloadIndexBool
		case field.Text:
			t = db.PayloadIndexText
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}
		def.Indexes = append(def.Indexes, db.PayloadIndex{Field: f.Name(), Type: t})
	}

	return def, nil
}
