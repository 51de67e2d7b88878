package embedding

import (
	"sort"

	"github.com/kailas-cloud/recall/internal/domain"
)

// Default models per modality.
const (
	DefaultTextModel  = "all-MiniLM-L6-v2"
	DefaultImageModel = "clip-ViT-B-32"
)

// Model is one entry of the static model table.
type Model struct {
	Name       string
	Modality   domain.Modality
	Dimensions int
}

// models is the supported model table. Dimensions are fixed by the model weights.
var models = map[string]Model{
	"all-MiniLM-L6-v2":          {Name: "all-MiniLM-L6-v2", Modality: domain.ModalityText, Dimensions: 384},
	"all-mpnet-base-v2":         {Name: "all-mpnet-base-v2", Modality: domain.ModalityText, Dimensions: 768},
	"paraphrase-MiniLM-L6-v2":   {Name: "paraphrase-MiniLM-L6-v2", Modality: domain.ModalityText, Dimensions: 384},
	"multi-qa-MiniLM-L6-cos-v1": {Name: "multi-qa-MiniLM-L6-cos-v1", Modality: domain.ModalityText, Dimensions: 384},
	"clip-ViT-B-32":             {Name: "clip-ViT-B-32", Modality: domain.ModalityImage, Dimensions: 512},
	"clip-ViT-B-16":             {Name: "clip-ViT-B-16", Modality: domain.ModalityImage, Dimensions: 512},
	"clip-ViT-L-14":             {Name: "clip-ViT-L-14", Modality: domain.ModalityImage, Dimensions: 768},
}

// Lookup returns the table entry for a model name or an *domain.UnsupportedModelError.
func Lookup(name string) (Model, error) {
	m, ok := models[name]
	if !ok {
		return Model{}, &domain.UnsupportedModelError{Model: name, Supported: SupportedNames()}
	}
	return m, nil
}

// Supported returns the sorted model names of one modality.
func Supported(modality domain.Modality) []string {
	var names []string
	for name, m := range models {
		if m.Modality == modality {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SupportedNames returns every supported model name, text models first.
func SupportedNames() []string {
	return append(Supported(domain.ModalityText), Supported(domain.ModalityImage)...)
}
