package viewmodel

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/liftlog/liftlog/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// TemplateSet is one prescribed set.
type TemplateSet struct {
	Reps   int     `yaml:"reps" json:"reps"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// TemplateExercise is one exercise slot of a template.
type TemplateExercise struct {
	Name string        `yaml:"name" json:"name"`
	Sets []TemplateSet `yaml:"sets" json:"sets"`
}

// Template is the ordered exercise list for a workout type.
type Template struct {
	Type      string             `yaml:"type" json:"type"`
	Exercises []TemplateExercise `yaml:"exercises" json:"exercises"`
}

// Templates is the ordered template configuration.
type Templates []Template

type templateFile struct {
	Templates Templates `yaml:"templates"`
}

// ParseTemplates parses a YAML template document.
func ParseTemplates(data []byte) (Templates, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	seen := make(map[string]bool, len(f.Templates))
	for i := range f.Templates {
		t := &f.Templates[i]
		t.Type = strings.TrimSpace(t.Type)
		if t.Type == "" {
			return nil, fmt.Errorf("template %d: type is required", i)
		}
		if seen[t.Type] {
			return nil, fmt.Errorf("template %q: duplicate type", t.Type)
		}
		seen[t.Type] = true
		for j := range t.Exercises {
			t.Exercises[j].Name = strings.TrimSpace(t.Exercises[j].Name)
			if t.Exercises[j].Name == "" {
				return nil, fmt.Errorf("template %q exercise %d: name is required", t.Type, j)
			}
		}
	}
	return f.Templates, nil
}

// LoadTemplatesFile reads templates from path.
func LoadTemplatesFile(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates file: %w", err)
	}
	return ParseTemplates(data)
}

// DefaultTemplates returns the built-in Push/Pull/Legs templates.
func DefaultTemplates() Templates {
	ts, err := ParseTemplates(embeddedTemplates)
	if err != nil {
		panic("viewmodel: embedded templates: " + err.Error())
	}
	return ts
}

// Lookup returns the template for a workout type.
func (ts Templates) Lookup(label string) (Template, bool) {
	for _, t := range ts {
		if t.Type == label {
			return t, true
		}
	}
	return Template{}, false
}

// Labels returns the workout types in declaration order.
func (ts Templates) Labels() []string {
	labels := make([]string, len(ts))
	for i, t := range ts {
		labels[i] = t.Type
	}
	return labels
}

// Catalog is the list of known exercises.
type Catalog []models.Exercise

// FindByName returns the exercise whose name matches exactly.
func (c Catalog) FindByName(name string) (models.Exercise, bool) {
	for _, ex := range c {
		if ex.Name == name {
			return ex, true
		}
	}
	return models.Exercise{}, false
}

// Name returns the catalog name for id, or "" when unknown.
func (c Catalog) Name(id models.ID) string {
	for _, ex := range c {
		if ex.ID == id {
			return ex.Name
		}
	}
	return ""
}

// TemplateResult is the outcome of LoadTemplate.
type TemplateResult struct {
	Groups []ExerciseGroup
	// Catalog is the input catalog plus any exercises created on the way.
	Catalog Catalog
	Created []models.Exercise
}

// LoadTemplate replaces the editor groups with the template for label.
// Exercises missing from the catalog are created one at a time, in template
// order. An unknown label yields no groups.
func LoadTemplate(ctx context.Context, label string, templates Templates, catalog Catalog, creator ExerciseCreator, opts Options) (TemplateResult, error) {
	res := TemplateResult{
		Groups:  []ExerciseGroup{},
		Catalog: append(Catalog(nil), catalog...),
	}

	tmpl, ok := templates.Lookup(label)
	if !ok {
		return res, nil
	}

	res, err := foldSequential(ctx, tmpl.Exercises, res, func(ctx context.Context, acc TemplateResult, te TemplateExercise) (TemplateResult, error) {
		name := strings.TrimSpace(te.Name)
		ex, found := acc.Catalog.FindByName(name)
		if !found {
			if creator == nil {
				return acc, fmt.Errorf("exercise %q not in catalog", name)
			}
			created, err := creator.CreateExercise(ctx, models.NewExercise{
				Name:     name,
				Category: opts.NewExerciseCategory,
			})
			if err != nil {
				return acc, fmt.Errorf("creating exercise %q: %w", name, err)
			}
			acc.Catalog = append(acc.Catalog, created)
			acc.Created = append(acc.Created, created)
			ex = created
		}
		if !ex.ID.Valid() {
			return acc, nil
		}

		sets := make([]EditableSet, len(te.Sets))
		for i, s := range te.Sets {
			sets[i] = EditableSet{Reps: IntValue(s.Reps), Weight: FloatValue(s.Weight)}
		}
		acc.Groups = append(acc.Groups, ExerciseGroup{ExerciseID: ex.ID, Sets: sets})
		return acc, nil
	})
	if err != nil {
		return TemplateResult{}, err
	}
	return res, nil
}
