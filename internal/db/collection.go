package db

import (
	"errors"
	"strconv"
)

// DistanceMetric used by vector similarity search.
type DistanceMetric string

const (
	// DistanceCosine is cosine similarity.
	DistanceCosine DistanceMetric = "COSINE"
	// DistanceDot is dot product.
	DistanceDot DistanceMetric = "DOT"
	// DistanceEuclid is Euclidean distance.
	DistanceEuclid DistanceMetric = "EUCLID"
)

// PayloadIndexType enumerates payload index kinds.
type PayloadIndexType int

const (
	// PayloadIndexKeyword is an exact-match string index.
	PayloadIndexKeyword PayloadIndexType = iota
	// PayloadIndexInteger is an integer index.
	PayloadIndexInteger
	// PayloadIndexFloat is a floating point index.
	PayloadIndexFloat
	// PayloadIndexBool is a boolean index.
	PayloadIndexBool
	// PayloadIndexText is a full-text index.
	PayloadIndexText
)

// PayloadIndex describes one indexed payload field.
type PayloadIndex struct {
	Field string
	Type  PayloadIndexType
}

// CollectionDefinition is a complete vector collection definition.
type CollectionDefinition struct {
	Name       string
	VectorSize int
	Distance   DistanceMetric
	Indexes    []PayloadIndex
}

// Validate checks that the definition is well-formed.
func (d *CollectionDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("collection name is required")
	}
	if !IsValidIdentifier(d.Name) {
		return errors.New("collection name contains invalid characters")
	}
	if d.VectorSize <= 0 {
		return errors.New("vector size must be positive")
	}

	seen := make(map[string]bool)
	for i, idx := range d.Indexes {
		if idx.Field == "" {
			return errors.New("index field name is required at index " + strconv.Itoa(i))
		}
		if seen[idx.Field] {
			return errors.New("duplicate index field: " + idx.Field)
		}
		seen[idx.Field] = true
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
