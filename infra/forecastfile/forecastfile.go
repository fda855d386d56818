// Package forecastfile loads solar forecast points from local JSON or YAML
// files, mainly for one-shot CLI runs and tests. The production forecast
// provider lives in the surrounding system.
package forecastfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/microgrid/core/model"
)

// Load reads forecast points from a JSON or YAML file and returns them in
// chronological order.
func Load(path string) ([]model.ForecastPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads forecast points from r in the given format ("json", "yaml").
func Decode(r io.Reader, format string) ([]model.ForecastPoint, error) {
	var points []model.ForecastPoint
	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&points); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&points); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported forecast format: %s", format)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}
