package main

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/load"
)

// prompter asks for the parts of a run not given by flags.
type prompter interface {
	Tables([]load.Table) ([]string, error)
	Kinds([]*gen.Descriptor) ([]gen.Kind, error)
	Confirm(source string) (bool, error)
}

type huhPrompter struct{}

func (huhPrompter) Tables(tables []load.Table) ([]string, error) {
	options := make([]huh.Option[string], 0, len(tables))
	for _, t := range tables {
		options = append(options, huh.NewOption(tableLabel(t), t.Name))
	}
	var selected []string
	err := huh.NewMultiSelect[string]().
		Title("Tables").
		Options(options...).
		Filterable(true).
		Validate(notEmpty[string]("select at least one table")).
		Value(&selected).
		Run()
	return selected, err
}

func (huhPrompter) Kinds(descs []*gen.Descriptor) ([]gen.Kind, error) {
	options := make([]huh.Option[gen.Kind], 0, len(descs))
	for _, d := range descs {
		options = append(options, huh.NewOption(string(d.Kind)+" -- "+d.Description, d.Kind).Selected(true))
	}
	var selected []gen.Kind
	err := huh.NewMultiSelect[gen.Kind]().
		Title("Artifacts").
		Options(options...).
		Validate(notEmpty[gen.Kind]("select at least one artifact")).
		Value(&selected).
		Run()
	return selected, err
}

func (huhPrompter) Confirm(source string) (bool, error) {
	ok := true
	err := huh.NewConfirm().
		Title("Generate from " + source + "?").
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func tableLabel(t load.Table) string {
	label := t.Name
	if t.View() {
		label += " (view)"
	}
	if t.Comment != "" {
		label += " -- " + t.Comment
	}
	return label
}

func notEmpty[T any](msg string) func([]T) error {
	return func(v []T) error {
		if len(v) == 0 {
			return errors.New(msg)
		}
		return nil
	}
}
