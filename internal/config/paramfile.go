package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// paramDocument is the on-disk parameter file shape: a `setting` section of
// option overrides, a `featureClass` section selecting classes (and,
// optionally, individual features), and an `imageType` section enabling
// input image types.
type paramDocument struct {
	Setting      map[string]interface{} `yaml:"setting"`
	FeatureClass map[string][]string    `yaml:"featureClass"`
	ImageType    map[string]yaml.Node   `yaml:"imageType"`
}

// LoadParams reads a YAML parameter file and returns the settings it
// describes, starting from defaults.
func LoadParams(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read parameter file: %w", err)
	}
	settings, err := ParseParams(data)
	if err != nil {
		return Settings{}, fmt.Errorf("parameter file %s: %w", path, err)
	}
	return settings, nil
}

// ParseParams parses parameter file contents.
func ParseParams(data []byte) (Settings, error) {
	var doc paramDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}

	settings := Default()

	if err := settings.Apply(doc.Setting); err != nil {
		return Settings{}, err
	}

	// A featureClass section replaces the default class selection.
	if doc.FeatureClass != nil {
		settings.EnabledClasses = make(map[string][]string, len(doc.FeatureClass))
		for class, features := range doc.FeatureClass {
			settings.EnabledClasses[class] = features
		}
	}

	// Same for imageType; per-type option payloads are accepted but only
	// enablement is read.
	if doc.ImageType != nil {
		settings.EnabledImageTypes = make(map[string]bool, len(doc.ImageType))
		for imageType := range doc.ImageType {
			settings.EnabledImageTypes[imageType] = true
		}
	}

	return settings, nil
}
