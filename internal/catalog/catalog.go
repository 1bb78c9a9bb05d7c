// Package catalog holds the immutable service catalog.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"zencontrol/internal/models"
)

// File is the root of catalog.yaml.
type File struct {
	Services []models.ServiceType `yaml:"services"`
}

// Catalog is a read-only lookup over service entries.
type Catalog struct {
	services []models.ServiceType
	byID     map[string]int
	byName   map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultServices())
	if err != nil {
		// The built-in table has unique ids and names and positive durations,
		// so New cannot reject it.
		panic(err)
	}
	return c
}

// Load reads a catalog from YAML. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c, err := New(f.Services)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return c, nil
}

// New validates entries and builds the lookup indexes.
func New(services []models.ServiceType) (*Catalog, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("no services defined")
	}

	c := &Catalog{
		services: make([]models.ServiceType, len(services)),
		byID:     make(map[string]int, len(services)),
		byName:   make(map[string]int, len(services)),
	}
	copy(c.services, services)

	for i, s := range c.services {
		if s.ID == "" {
			return nil, fmt.Errorf("service[%d]: id is required", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("service[%d]: duplicate id '%s'", i, s.ID)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("service[%d]: name is required", i)
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("service[%d]: duplicate name '%s'", i, s.Name)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("service[%d]: duration must be positive, got %d", i, s.Duration)
		}
		if s.Price < 0 {
			return nil, fmt.Errorf("service[%d]: price cannot be negative", i)
		}
		c.byID[s.ID] = i
		c.byName[s.Name] = i
	}

	return c, nil
}

// Get returns the entry with the given identifier.
func (c *Catalog) Get(id string) (models.ServiceType, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.ServiceType{}, false
	}
	return c.services[i], true
}

// ByName returns the entry with the given display name.
func (c *Catalog) ByName(name string) (models.ServiceType, bool) {
	i, ok := c.byName[name]
	if !ok {
		return models.ServiceType{}, false
	}
	return c.services[i], true
}

// Duration returns the service duration in minutes.
func (c *Catalog) Duration(id string) (int, bool) {
	s, ok := c.Get(id)
	return s.Duration, ok
}

// First returns the entry used when a remote row names an unknown service.
func (c *Catalog) First() models.ServiceType {
	return c.services[0]
}

// All returns a copy of every entry in catalog order.
func (c *Catalog) All() []models.ServiceType {
	out := make([]models.ServiceType, len(c.services))
	copy(out, c.services)
	return out
}

// String returns a summary of the catalog.
func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog: %d services", len(c.services))
}

func defaultServices() []models.ServiceType {
	return []models.ServiceType{
		{ID: "1", Name: "Massagem Relaxante + Aromaterapia", Price: 150, Duration: 50},
		{ID: "2", Name: "Gomagem Corporal", Price: 150, Duration: 50},
		{ID: "3", Name: "Massagem com Velas", Price: 200, Duration: 50},
		{ID: "4", Name: "Drenagem Linfática", Price: 150, Duration: 50},
		{ID: "5", Name: "Ventosa Terapia", Price: 140, Duration: 50},
		{ID: "6", Name: "Hidratação + Massagem Facial", Price: 120, Duration: 40},
		{ID: "7", Name: "Pedras Quentes", Price: 200, Duration: 50},
		{ID: "8", Name: "Escalda Pés", Price: 80, Duration: 30},
		{ID: "9", Name: "Massagem Divertida (Kids)", Price: 60, Duration: 30},
		{ID: "10", Name: "Combo 01", Price: 250, Duration: 80},
		{ID: "11", Name: "Combo 02", Price: 250, Duration: 90},
		{ID: "12", Name: "Combo 03", Price: 150, Duration: 40},
	}
}
