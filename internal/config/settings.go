package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings mirrors the application settings the template tags read:
// classification choices, data product types and the observing sites.
type Settings struct {
	TargetClassifications []string           `yaml:"target_classifications"`
	DataProductTypes      []DataProductType  `yaml:"data_product_types"`
	Facilities            []FacilitySettings `yaml:"facilities"`
}

// DataProductType is a (key, display name) choice
type DataProductType struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// FacilitySettings lists the observing sites of one facility
type FacilitySettings struct {
	Name  string        `yaml:"name"`
	Sites []SiteSetting `yaml:"sites"`
}

// SiteSetting describes one observing site
type SiteSetting struct {
	Name      string  `yaml:"name"`
	Code      string  `yaml:"code"`
	Longitude float64 `yaml:"longitude"` // degrees, east positive
	Latitude  float64 `yaml:"latitude"`  // degrees
	Elevation float64 `yaml:"elevation"` // meters
	Color     string  `yaml:"color"`
}

// DefaultSettings returns the built-in settings: the LCO network sites with
// the colors used on the airmass plots.
func DefaultSettings() *Settings {
	return &Settings{
		TargetClassifications: []string{
			"Unknown", "SN", "SN Ia", "SN Ia-91T", "SN Ia-91bg", "SN Iax",
			"SN Ib", "SN Ibn", "SN Ic", "SN Ic-BL", "SN II", "SN IIP", "SN IIL",
			"SN IIn", "SN IIb", "SLSN-I", "SLSN-II", "TDE", "Kilonova", "Nova",
			"AGN", "CV", "Variable star", "Other",
		},
		DataProductTypes: []DataProductType{
			{Key: "photometry", Label: "Photometry"},
			{Key: "fits_file", Label: "FITS File"},
			{Key: "spectroscopy", Label: "Spectroscopy"},
			{Key: "image_file", Label: "Image File"},
		},
		Facilities: []FacilitySettings{
			{
				Name: "LCO",
				Sites: []SiteSetting{
					{Name: "Siding Spring", Code: "coj", Longitude: 149.07, Latitude: -31.272, Elevation: 1116, Color: "#3366cc"},
					{Name: "Sutherland", Code: "cpt", Longitude: 20.81, Latitude: -32.38, Elevation: 1804, Color: "#dc3912"},
					{Name: "Teide", Code: "tfn", Longitude: -16.511, Latitude: 28.3, Elevation: 2390, Color: "#8c6239"},
					{Name: "Cerro Tololo", Code: "lsc", Longitude: -70.804, Latitude: -30.167, Elevation: 2198, Color: "#ff9900"},
					{Name: "McDonald", Code: "elp", Longitude: -104.015, Latitude: 30.679, Elevation: 2027, Color: "#109618"},
					{Name: "Haleakala", Code: "ogg", Longitude: -156.258, Latitude: 20.706, Elevation: 3055, Color: "#990099"},
				},
			},
		},
	}
}

// LoadSettings reads the settings file at path. Sections absent from the
// file keep their defaults. An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var fromFile Settings
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if len(fromFile.TargetClassifications) > 0 {
		settings.TargetClassifications = fromFile.TargetClassifications
	}
	if len(fromFile.DataProductTypes) > 0 {
		settings.DataProductTypes = fromFile.DataProductTypes
	}
	if len(fromFile.Facilities) > 0 {
		settings.Facilities = fromFile.Facilities
	}
	return settings, nil
}
