package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/venue-booking/internal/model"
)

type seedFile struct {
	Venues []seedVenue `yaml:"venues"`
}

type seedVenue struct {
	Name          string   `yaml:"name"`
	Address       string   `yaml:"address"`
	Lat           float64  `yaml:"lat"`
	Lng           float64  `yaml:"lng"`
	Capacity      int      `yaml:"capacity"`
	BasePrice     float64  `yaml:"base_price"`
	PricePerGuest float64  `yaml:"price_per_guest"`
	Description   string   `yaml:"description"`
	Services      []string `yaml:"services"`
	ImageURL      string   `yaml:"image_url"`
	Owner         struct {
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
		Email string `yaml:"email"`
	} `yaml:"owner"`
}

// parseSeed reads a venue list.  Names must be present and unique within
// the file; numbers must not be negative.
func parseSeed(r io.Reader) ([]model.Venue, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]model.Venue, 0, len(f.Venues))
	now := time.Now().UTC()
	for i, s := range f.Venues {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("venue #%d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("venue %q listed twice", name)
		}
		seen[key] = true
		if s.Capacity < 0 || s.BasePrice < 0 || s.PricePerGuest < 0 {
			return nil, fmt.Errorf("venue %q: capacity and prices cannot be negative", name)
		}
		out = append(out, model.Venue{
			Name:          name,
			Address:       s.Address,
			Lat:           s.Lat,
			Lng:           s.Lng,
			Capacity:      s.Capacity,
			BasePrice:     s.BasePrice,
			PricePerGuest: s.PricePerGuest,
			Description:   s.Description,
			Services:      strings.Join(s.Services, ", "),
			ImageURL:      s.ImageURL,
			OwnerName:     s.Owner.Name,
			OwnerPhone:    s.Owner.Phone,
			OwnerEmail:    s.Owner.Email,
			Status:        model.VenueAvailable,
			CreatedAt:     now,
		})
	}
	return out, nil
}
