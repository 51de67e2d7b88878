package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/recall/internal/db"
)

// CreateCollection creates the vector collection and one payload index per field.
// Returns db.ErrCollectionExists if the name is taken. A failed payload index drops
// the half-built collection so the name stays usable.
func (s *Store) CreateCollection(ctx context.Context, def *db.CollectionDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid collection definition: %w", err)
	}

	exists, err := s.CollectionExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return db.ErrCollectionExists
	}

	err = s.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: def.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(def.VectorSize),
			Distance: distance(def.Distance),
		}),
	})
	if err != nil {
		return wrap(db.OpCreateCollection, err)
	}

	wait := true
	for _, idx := range def.Indexes {
		_, err := s.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: def.Name,
			Wait:           &wait,
			FieldName:      idx.Field,
			FieldType:      fieldType(idx.Type).Enum(),
		})
		if err != nil {
			indexErr := wrap(db.OpCreateFieldIndex, fmt.Errorf("field %s: %w", idx.Field, err))
			if dropErr := s.api.DeleteCollection(ctx, def.Name); dropErr != nil {
				return errors.Join(indexErr, wrap(db.OpDeleteCollection, dropErr))
			}
			return indexErr
		}
	}
	return nil
}

// DeleteCollection drops a collection and all its points. Returns false if it did not exist.
func (s *Store) DeleteCollection(ctx context.Context, name string) (bool, error) {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := s.api.DeleteCollection(ctx, name); err != nil {
		return false, wrap(db.OpDeleteCollection, err)
	}
	return true, nil
}

// CollectionExists reports whether a collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	ok, err := s.api.CollectionExists(ctx, name)
	if err != nil {
		return false, wrap(db.OpCollectionExists, err)
	}
	return ok, nil
}

func distance(d db.DistanceMetric) qdrant.Distance {
	switch d {
	case db.DistanceDot:
		return qdrant.Distance_Dot
	case db.DistanceEuclid:
		return qdrant.Distance_Euclid
	default:
		return qdrant.Distance_Cosine
	}
}

func fieldType(t db.PayloadIndexType) qdrant.FieldType {
	switch t {
	case db.PayloadIndexInteger:
		return qdrant.FieldType_FieldTypeInteger
	case db.PayloadIndexFloat:
		return qdrant.FieldType_FieldTypeFloat
	case db.PayloadIndexBool:
		return qdrant.FieldType_FieldTypeBool
	case db.PayloadIndexText:
		return qdrant.FieldType_FieldTypeText
	default:
		return qdrant.FieldType_FieldTypeKeyword
	}
}
