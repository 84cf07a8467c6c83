package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-watch-listings/models"
)

// LoadMatchFile reads match rules from a YAML file, e.g.
//
//	max_price_gbp: 14000
//	min_year: 2016
//	include_keywords: [automatic]
//	exclude_keywords: [damaged, "cat n"]
//
// Omitted keys leave the corresponding rule disabled.
func LoadMatchFile(path string) (models.MatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.MatchConfig{}, fmt.Errorf("read match file: %w", err)
	}

	var match models.MatchConfig
	if err := yaml.Unmarshal(data, &match); err != nil {
		return models.MatchConfig{}, fmt.Errorf("parse match file %s: %w", path, err)
	}
	return match, nil
}
