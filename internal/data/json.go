package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fuel-rl/internal/model"
)

// LoadFuelJSON reads a JSON array of fuel records.
func LoadFuelJSON(path string) (*model.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []model.FuelRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds, err := model.NewDataset(recs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Load picks the loader from the file extension (.json, otherwise CSV).
func Load(path string) (*model.Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadFuelJSON(path)
	}
	return LoadFuelCSV(path)
}
