package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	dbfs "github.com/garnizeh/eduverify/db"
	dbpkg "github.com/garnizeh/eduverify/internal/db"
	sqlite "github.com/garnizeh/eduverify/internal/repository/sqlite"
	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
	"github.com/garnizeh/eduverify/pkg/signature"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	return setupRepoDSN(t, dbpkg.MemoryDSN(t.Name()))
}

// setupFileRepo opens an on-disk database, which uses a full connection pool
// unlike the single-connection memory DSN.
func setupFileRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	return setupRepoDSN(t, dbpkg.FileDSN(filepath.Join(t.TempDir(), "eduverify.db")))
}

func setupRepoDSN(t *testing.T, dsn string) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fixture, err := dbfs.Fixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	repo := sqlite.New(d, nil)
	if err := repo.Seed(ctx, fixture); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestSeed_RoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fixture, err := dbfs.Fixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	profiles, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != len(fixture.Profiles) {
		t.Fatalf("expected %d profiles, got %d", len(fixture.Profiles), len(profiles))
	}
	for i, p := range profiles {
		want := fixture.Profiles[i]
		if p.UserID != want.UserID {
			t.Fatalf("profile %d: expected %s, got %s (insertion order lost)", i, want.UserID, p.UserID)
		}
		if p.User.Name != want.User.Name {
			t.Fatalf("profile %s: user not hydrated: %+v", p.UserID, p.User)
		}
		if len(p.Skills) != len(want.Skills) || len(p.Projects) != len(want.Projects) || len(p.Education) != len(want.Education) {
			t.Fatalf("profile %s: nested collections differ: %+v", p.UserID, p)
		}
		for j, pr := range p.Projects {
			if pr.ID != want.Projects[j].ID {
				t.Fatalf("project order: expected %s, got %s", want.Projects[j].ID, pr.ID)
			}
			if len(pr.Verifications) != len(want.Projects[j].Verifications) {
				t.Fatalf("project %s: expected %d verifications, got %d", pr.ID, len(want.Projects[j].Verifications), len(pr.Verifications))
			}
			if pr.HasVideo() != want.Projects[j].HasVideo() || pr.HasDataset() != want.Projects[j].HasDataset() {
				t.Fatalf("project %s: media did not round-trip", pr.ID)
			}
			if !pr.CreatedAt.Equal(want.Projects[j].CreatedAt) {
				t.Fatalf("project %s: createdAt %v != %v", pr.ID, pr.CreatedAt, want.Projects[j].CreatedAt)
			}
		}
	}

	// seeding again inserts nothing new
	if err := repo.Seed(ctx, fixture); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	again, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(again) != len(profiles) {
		t.Fatalf("reseed changed profile count: %d != %d", len(again), len(profiles))
	}
}

func TestUsers(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	u, err := repo.GetUser(ctx, "v1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Role != models.RoleVerifier {
		t.Fatalf("expected VERIFIER, got %s", u.Role)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "ALICE@uni.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != "u1" {
		t.Fatalf("expected u1, got %s", byEmail.ID)
	}

	if _, err := repo.GetUser(ctx, "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@x"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p, err := repo.GetProfile(ctx, "u2")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(p.Projects) != 1 || p.Projects[0].ID != "p2" {
		t.Fatalf("unexpected projects: %+v", p.Projects)
	}
	if p.Education[0].GPA == nil || *p.Education[0].GPA != 3.6 {
		t.Fatalf("gpa did not round-trip: %+v", p.Education[0])
	}

	if _, err := repo.GetProfile(ctx, "v1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-student, got %v", err)
	}
}

func TestListJobs(t *testing.T) {
	repo := setupRepo(t)
	jobs, err := repo.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "j1" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
	if len(jobs[0].RequiredSkills) == 0 {
		t.Fatalf("required skills lost: %+v", jobs[0])
	}
}

func TestAppendVerification(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	repo.WithClock(func() time.Time { return at })

	before, err := repo.GetProject(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if before.IsVerified() {
		t.Fatalf("p2 should start unverified")
	}

	v, err := repo.AppendVerification(ctx, "p2", "v1", "Prof. Mensah", "Solid build.")
	if err != nil {
		t.Fatalf("AppendVerification: %v", err)
	}
	if v.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !v.VerifiedAt.Equal(at.Truncate(time.Millisecond)) {
		t.Fatalf("unexpected timestamp %v", v.VerifiedAt)
	}
	if !signature.Verify(v.SignatureHash, "p2", "v1", "Solid build.", v.VerifiedAt) {
		t.Fatalf("signature does not match stored fields")
	}

	after, err := repo.GetProject(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(after.Verifications) != 1 || !after.IsVerified() {
		t.Fatalf("expected one verification, got %+v", after.Verifications)
	}
	got := after.Verifications[0]
	if got.ID != v.ID || got.Comment != "Solid build." || !got.VerifiedAt.Equal(v.VerifiedAt) {
		t.Fatalf("stored verification differs: %+v vs %+v", got, v)
	}

	// earlier snapshot is unaffected
	if len(before.Verifications) != 0 {
		t.Fatalf("snapshot mutated")
	}

	// appending again keeps both in order
	if _, err := repo.AppendVerification(ctx, "p2", "v1", "Prof. Mensah", "second"); err != nil {
		t.Fatalf("second append: %v", err)
	}
	after, _ = repo.GetProject(ctx, "p2")
	if len(after.Verifications) != 2 || after.Verifications[1].Comment != "second" {
		t.Fatalf("expected ordered append, got %+v", after.Verifications)
	}
}

func TestAppendVerification_NotFoundLeavesStoreUnchanged(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	before, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}

	cases := []struct {
		name     string
		project  string
		verifier string
	}{
		{name: "UnknownProject", project: "p404", verifier: "v1"},
		{name: "UnknownVerifier", project: "p2", verifier: "ghost"},
	}
	for _, c := range cases {
		if _, err := repo.AppendVerification(ctx, c.project, c.verifier, "x", "x"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", c.name, err)
		}
	}

	after, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	for i := range before {
		for j := range before[i].Projects {
			if len(after[i].Projects[j].Verifications) != len(before[i].Projects[j].Verifications) {
				t.Fatalf("project %s changed after failed append", before[i].Projects[j].ID)
			}
		}
	}
}

func TestAppendVerification_Concurrent(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AppendVerification(ctx, "p3", "v1", "Prof. Mensah", "ok"); err != nil {
				errs <- err
			}
			if _, err := repo.ListProfiles(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent op failed: %v", err)
	}

	p, err := repo.GetProject(ctx, "p3")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(p.Verifications) != n {
		t.Fatalf("expected %d verifications, got %d", n, len(p.Verifications))
	}
}

func TestAppendVerification_ConcurrentRepos(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "eduverify.db")
	first := setupRepoDSN(t, dbpkg.FileDSN(path))

	// a second pool on the same file stands in for another process
	conn, err := dbpkg.New(ctx, dbpkg.FileDSN(path))
	if err != nil {
		t.Fatalf("open second pool: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	second := sqlite.New(conn, nil)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		for _, repo := range []*sqlite.SQLiteRepo{first, second} {
			wg.Add(1)
			go func(repo *sqlite.SQLiteRepo) {
				defer wg.Done()
				if _, err := repo.AppendVerification(ctx, "p2", "v1", "Prof. Mensah", "ok"); err != nil {
					errs <- err
				}
			}(repo)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent append failed: %v", err)
	}

	p, err := second.GetProject(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(p.Verifications) != 2*n {
		t.Fatalf("expected %d verifications, got %d", 2*n, len(p.Verifications))
	}
}

func TestSchemaAndTemplateCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// migration seeds v1
	s, err := repo.GetSchemaByVersion(ctx, "v1")
	if err != nil || s == nil {
		t.Fatalf("expected seeded schema v1, got %v, %v", s, err)
	}

	if _, err := repo.CreateSchema(ctx, "v2", "desc", `{"type":"object"}`); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	schemas, err := repo.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("ListSchemas: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("expected 2 schemas, got %d", len(schemas))
	}
	if err := repo.DeleteSchema(ctx, "v2"); err != nil {
		t.Fatalf("DeleteSchema: %v", err)
	}
	if s, _ := repo.GetSchemaByVersion(ctx, "v2"); s != nil {
		t.Fatalf("expected schema deleted")
	}

	tpl, err := repo.GetTemplate(ctx, "skills", "v1")
	if err != nil || tpl == nil {
		t.Fatalf("expected seeded template, got %v, %v", tpl, err)
	}
	if tpl.SchemaVer == nil || *tpl.SchemaVer != "v1" {
		t.Fatalf("expected template bound to schema v1: %+v", tpl)
	}

	sv := "v1"
	if _, err := repo.CreateTemplate(ctx, "skills", "v2", "Describe: {{.Description}}", &sv, nil); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	tpls, err := repo.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(tpls) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(tpls))
	}
	if err := repo.DeleteTemplate(ctx, "skills", "v2"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if got, _ := repo.GetTemplate(ctx, "skills", "v2"); got != nil {
		t.Fatalf("expected template deleted")
	}
}
