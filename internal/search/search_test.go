package search_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	dbfs "github.com/garnizeh/eduverify/db"
	"github.com/garnizeh/eduverify/internal/directory"
	"github.com/garnizeh/eduverify/internal/search"
	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository/mock"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixtureEngine(t *testing.T) (*search.Engine, *directory.Store) {
	t.Helper()
	fixture, err := dbfs.Fixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	store, err := directory.New(fixture, directory.WithLogger(quiet))
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	return search.New(store, quiet), store
}

func ids(profiles []models.StudentProfile) []string {
	out := []string{}
	for _, p := range profiles {
		out = append(out, p.UserID)
	}
	return out
}

func hasSkill(p models.StudentProfile, want string) bool {
	want = strings.ToLower(want)
	for _, s := range p.Skills {
		if strings.Contains(strings.ToLower(s.Name), want) {
			return true
		}
	}
	return false
}

func hasVerifiedProject(p models.StudentProfile) bool {
	for i := range p.Projects {
		if p.Projects[i].IsVerified() {
			return true
		}
	}
	return false
}

func TestSearch_Fixture(t *testing.T) {
	engine, _ := fixtureEngine(t)

	cases := []struct {
		name    string
		query   string
		skills  []string
		filters search.Filters
		want    []string
	}{
		{name: "NoFilters", want: []string{"u1", "u2", "u3"}},
		{name: "SkillAndVideo", skills: []string{"IoT"}, filters: search.Filters{HasVideo: true}, want: []string{"u2"}},
		{name: "VerifiedOnly", filters: search.Filters{VerifiedOnly: true}, want: []string{"u1"}},
		{name: "QueryProjectTitle", query: "malaria", want: []string{"u1"}},
		{name: "QueryName", query: "ROSSINI", want: []string{"u3"}},
		{name: "QueryHeadline", query: "agricultural", want: []string{"u2"}},
		{name: "QueryWhitespaceOnly", query: "   ", want: []string{"u1", "u2", "u3"}},
		{name: "SkillSubstring", skills: []string{"data"}, want: []string{"u1"}},
		{name: "SkillsAllRequired", skills: []string{"python", "react"}, want: []string{"u1"}},
		{name: "SkillsOneMissing", skills: []string{"python", "figma"}, want: []string{}},
		{name: "BlankSkillIgnored", skills: []string{"", "  "}, want: []string{"u1", "u2", "u3"}},
		{name: "HasDataset", filters: search.Filters{HasDataset: true}, want: []string{"u1"}},
		{name: "MinCollaborators", filters: search.Filters{MinCollaborators: 1}, want: []string{"u1", "u2"}},
		{name: "MinCollaboratorsTooHigh", filters: search.Filters{MinCollaborators: 2}, want: []string{}},
		{name: "NoMatch", query: "quantum", want: []string{}},
		{name: "Combined", query: "smart", skills: []string{"iot"}, filters: search.Filters{HasVideo: true, MinCollaborators: 1}, want: []string{"u2"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := engine.Search(context.Background(), c.query, c.skills, c.filters)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got == nil {
				t.Fatalf("expected non-nil result")
			}
			if !reflect.DeepEqual(ids(got), c.want) {
				t.Fatalf("got %v, want %v", ids(got), c.want)
			}
		})
	}
}

func TestSearch_NegativeMinCollaborators(t *testing.T) {
	engine, _ := fixtureEngine(t)
	_, err := engine.Search(context.Background(), "", nil, search.Filters{MinCollaborators: -1})
	if !errors.Is(err, search.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestSearch_ResultIsSubsetAndDeterministic(t *testing.T) {
	engine, store := fixtureEngine(t)
	ctx := context.Background()

	all, _ := store.ListProfiles(ctx)
	inStore := map[string]bool{}
	for _, p := range all {
		inStore[p.UserID] = true
	}

	queries := []string{"", "a", "smart", "python", "designer"}
	skillSets := [][]string{nil, {"iot"}, {"python"}, {"a"}}
	filterSets := []search.Filters{{}, {VerifiedOnly: true}, {HasVideo: true}, {HasDataset: true, MinCollaborators: 1}}

	for _, q := range queries {
		for _, sk := range skillSets {
			for _, f := range filterSets {
				first, err := engine.Search(ctx, q, sk, f)
				if err != nil {
					t.Fatalf("Search: %v", err)
				}
				second, _ := engine.Search(ctx, q, sk, f)
				if !reflect.DeepEqual(ids(first), ids(second)) {
					t.Fatalf("non-deterministic result for %q %v %+v", q, sk, f)
				}
				for _, id := range ids(first) {
					if !inStore[id] {
						t.Fatalf("result %s not in store", id)
					}
				}
				for _, p := range first {
					for _, want := range sk {
						if !hasSkill(p, want) {
							t.Fatalf("%s lacks required skill %q for %q %+v", p.UserID, want, q, f)
						}
					}
					if f.VerifiedOnly && !hasVerifiedProject(p) {
						t.Fatalf("%s has no verified project for %q %v", p.UserID, q, sk)
					}
				}

				// adding a skill or enabling a filter never grows the result
				narrower, _ := engine.Search(ctx, q, append(append([]string{}, sk...), "python"), f)
				if len(narrower) > len(first) {
					t.Fatalf("extra skill grew result for %q %v %+v", q, sk, f)
				}
				f2 := f
				f2.VerifiedOnly = true
				narrower, _ = engine.Search(ctx, q, sk, f2)
				if len(narrower) > len(first) {
					t.Fatalf("verifiedOnly grew result for %q %v %+v", q, sk, f)
				}
			}
		}
	}
}

func TestSearch_SeesAppendedVerification(t *testing.T) {
	engine, store := fixtureEngine(t)
	ctx := context.Background()

	if _, err := store.AppendVerification(ctx, "p3", "v1", "Prof. Mensah", "Great research."); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := engine.Search(ctx, "", nil, search.Filters{VerifiedOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Join(ids(got), ",") != "u1,u3" {
		t.Fatalf("expected u1,u3 got %v", ids(got))
	}
}

func TestSearch_UnicodeFold(t *testing.T) {
	repo := &mock.Directory{Profiles: []models.StudentProfile{
		{UserID: "x", User: models.User{Name: "Jürgen Straße"}, Skills: []models.Skill{{Name: "ÉTUDES"}}},
	}}
	engine := search.New(repo, quiet)

	got, err := engine.Search(context.Background(), "JÜRGEN", []string{"études"}, search.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected fold match, got %v", ids(got))
	}
}

func TestSearch_StoreError(t *testing.T) {
	boom := errors.New("boom")
	engine := search.New(&mock.Directory{Err: boom}, quiet)
	if _, err := engine.Search(context.Background(), "", nil, search.Filters{}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
