package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mamadbah2/mealledger/internal/domain/models"
)

// ReadOrganizersFile decodes a JSON array of organizers and checks that each
// has an id and a known school type.
func ReadOrganizersFile(path string) ([]models.Organizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read organizers file %s: %w", path, err)
	}

	var organizers []models.Organizer
	if err := json.Unmarshal(data, &organizers); err != nil {
		return nil, fmt.Errorf("decode organizers file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(organizers))
	for i, o := range organizers {
		if o.ID == "" {
			return nil, fmt.Errorf("organizer #%d: id is required", i)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("organizer %s: duplicate id", o.ID)
		}
		seen[o.ID] = true
		if !o.SchoolType.Valid() {
			return nil, fmt.Errorf("organizer %s: %w %q", o.ID, models.ErrUnknownSchoolType, o.SchoolType)
		}
	}
	return organizers, nil
}
