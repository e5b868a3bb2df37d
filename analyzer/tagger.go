// analyzer/tagger.go
package analyzer

import (
	"errors"
	"fmt"
	"os"

	"github.com/jdkato/prose/v2"
	"github.com/rotisserie/eris"
)

// LabelGPE is the entity label for geopolitical places (countries, states, cities).
const LabelGPE = "GPE"

// ErrModelUnavailable is returned when the NER model cannot be loaded at startup.
var ErrModelUnavailable = errors.New("ner model unavailable")

// Entity is one tagged span of text.
type Entity struct {
	Text  string
	Label string
}

// EntityTagger tags named entities in text, in left-to-right order.
type EntityTagger interface {
	Entities(text string) ([]Entity, error)
}

// ProseTagger tags entities with prose's averaged-perceptron NER model.
type ProseTagger struct {
	opts []prose.DocOpt
}

const probeSentence = "Antidumping duty order on steel nails from the United Arab Emirates."

// NewProseTagger loads the NER model once and checks it can tag a sentence.
// modelPath selects a model directory on disk; empty uses the model bundled with prose.
// The loaded model is reused for every later document.
func NewProseTagger(modelPath string) (*ProseTagger, error) {
	var opts []prose.DocOpt
	if modelPath != "" {
		if _, err := os.Stat(modelPath); err != nil {
			return nil, fmt.Errorf("%w: model path %s: %v", ErrModelUnavailable, modelPath, err)
		}
		model, err := loadModel(modelPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, prose.UsingModel(model))
	}

	probe, err := newDocument(probeSentence, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: probe failed: %v", ErrModelUnavailable, err)
	}
	if probe.Model == nil {
		return nil, fmt.Errorf("%w: probe document has no model", ErrModelUnavailable)
	}
	return &ProseTagger{opts: []prose.DocOpt{prose.UsingModel(probe.Model)}}, nil
}

func loadModel(path string) (model *prose.Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: load %s: %v", ErrModelUnavailable, path, r)
		}
	}()
	return prose.ModelFromDisk(path), nil
}

// Entities runs the tagger over text. A panic inside the model is reported as an error.
func (t *ProseTagger) Entities(text string) ([]Entity, error) {
	doc, err := newDocument(text, t.opts)
	if err != nil {
		return nil, err
	}
	var ents []Entity
	for _, ent := range doc.Entities() {
		ents = append(ents, Entity{Text: ent.Text, Label: ent.Label})
	}
	return ents, nil
}

func newDocument(text string, opts []prose.DocOpt) (doc *prose.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prose tagger panic: %v", r)
		}
	}()

	doc, err = prose.NewDocument(text, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to tag text")
	}
	return doc, nil
}
