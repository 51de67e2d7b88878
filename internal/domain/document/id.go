package document

import "github.com/google/uuid"

// PointNamespace is the UUIDv5 namespace for point ids. Changing it orphans every stored point.
var PointNamespace = uuid.MustParse("a3d5e7f9-1b2c-4d6e-8f0a-9c8b7d6e5f4a")

// PointID derives the vector database point id for a document.
// Same collection and doc id always map to the same point, so re-ingestion overwrites.
func PointID(collection, docID string) uuid.UUID {
	return uuid.NewSHA1(PointNamespace, []byte(collection+":"+docID))
}
