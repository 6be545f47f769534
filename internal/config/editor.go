package config

import (
	"fmt"

	"github.com/liftlog/liftlog/internal/viewmodel"
)

// ViewOptions turns the editor section into view-model options.
func (e EditorConfig) ViewOptions() (viewmodel.Options, error) {
	loc, err := e.Location()
	if err != nil {
		return viewmodel.Options{}, fmt.Errorf("editor.timezone: %w", err)
	}
	opts := viewmodel.DefaultOptions()
	if e.DefaultType != "" {
		opts.DefaultType = e.DefaultType
	}
	if e.DefaultLabel != "" {
		opts.DefaultLabel = e.DefaultLabel
	}
	if e.NewExerciseCategory != "" {
		opts.NewExerciseCategory = e.NewExerciseCategory
	}
	opts.Location = loc
	return opts, nil
}

// Templates loads templates_file, or the built-in set when it is empty.
func (e EditorConfig) Templates() (viewmodel.Templates, error) {
	if e.TemplatesFile == "" {
		return viewmodel.DefaultTemplates(), nil
	}
	return viewmodel.LoadTemplatesFile(e.TemplatesFile)
}
