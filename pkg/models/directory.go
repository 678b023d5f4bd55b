package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Directory is the serialized form of a whole directory: the seed fixture
// and the input of the in-memory store.
type Directory struct {
	Users    []User           `json:"users"`
	Profiles []StudentProfile `json:"profiles"`
	Jobs     []JobPost        `json:"jobs"`
}

// DecodeDirectory reads a JSON directory document and validates it.
func DecodeDirectory(r io.Reader) (*Directory, error) {
	var d Directory
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.Hydrate()
	return &d, nil
}

// Validate checks the referential invariants of the directory: every foreign
// key resolves to a user, ids are unique within their owning collection and
// project ids are unique across the directory.
func (d *Directory) Validate() error {
	var errs []error

	users := make(map[string]User, len(d.Users))
	emails := make(map[string]struct{}, len(d.Users))
	for _, u := range d.Users {
		if u.ID == "" {
			errs = append(errs, errors.New("user with empty id"))
			continue
		}
		if _, dup := users[u.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate user id %q", u.ID))
		}
		if _, dup := emails[u.Email]; dup {
			errs = append(errs, fmt.Errorf("duplicate user email %q", u.Email))
		}
		if !u.Role.Valid() {
			errs = append(errs, fmt.Errorf("user %q: invalid role %q", u.ID, u.Role))
		}
		users[u.ID] = u
		emails[u.Email] = struct{}{}
	}

	resolve := func(kind, id string) {
		if _, ok := users[id]; !ok {
			errs = append(errs, fmt.Errorf("%s %q does not resolve to a user", kind, id))
		}
	}

	profiles := make(map[string]struct{}, len(d.Profiles))
	projects := make(map[string]struct{})
	for _, p := range d.Profiles {
		resolve("profile userId", p.UserID)
		if _, dup := profiles[p.UserID]; dup {
			errs = append(errs, fmt.Errorf("duplicate profile for user %q", p.UserID))
		}
		profiles[p.UserID] = struct{}{}
		if p.User.ID != "" && p.User.ID != p.UserID {
			errs = append(errs, fmt.Errorf("profile %q embeds user %q", p.UserID, p.User.ID))
		}

		seen := make(map[string]struct{})
		for _, e := range p.Education {
			if _, dup := seen[e.ID]; dup {
				errs = append(errs, fmt.Errorf("profile %q: duplicate education id %q", p.UserID, e.ID))
			}
			seen[e.ID] = struct{}{}
		}

		seen = make(map[string]struct{})
		for _, s := range p.Skills {
			if _, dup := seen[s.ID]; dup {
				errs = append(errs, fmt.Errorf("profile %q: duplicate skill id %q", p.UserID, s.ID))
			}
			seen[s.ID] = struct{}{}
			if s.Proficiency < 1 || s.Proficiency > 5 {
				errs = append(errs, fmt.Errorf("profile %q: skill %q proficiency %d out of range [1,5]", p.UserID, s.ID, s.Proficiency))
			}
		}

		for _, pr := range p.Projects {
			if _, dup := projects[pr.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate project id %q", pr.ID))
			}
			projects[pr.ID] = struct{}{}
			resolve("project ownerId", pr.OwnerID)
			for _, m := range pr.Media {
				if !m.Type.Valid() {
					errs = append(errs, fmt.Errorf("project %q: media %q has invalid type %q", pr.ID, m.ID, m.Type))
				}
			}
			for _, v := range pr.Verifications {
				resolve("verifierId", v.VerifierID)
			}
		}
	}

	jobs := make(map[string]struct{}, len(d.Jobs))
	for _, j := range d.Jobs {
		if _, dup := jobs[j.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate job id %q", j.ID))
		}
		jobs[j.ID] = struct{}{}
		resolve("job employerId", j.EmployerID)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid directory: %w", errors.Join(errs...))
	}
	return nil
}

// Hydrate fills each profile's embedded user from the user list.
func (d *Directory) Hydrate() {
	byID := make(map[string]User, len(d.Users))
	for _, u := range d.Users {
		byID[u.ID] = u
	}
	for i := range d.Profiles {
		if u, ok := byID[d.Profiles[i].UserID]; ok {
			d.Profiles[i].User = u
		}
	}
}
