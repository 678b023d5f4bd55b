package db

import (
	"embed"
	"fmt"

	"github.com/garnizeh/eduverify/pkg/models"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/*.*
var SeedFiles embed.FS

// DirectoryFixture is the path of the demo directory inside SeedFiles.
const DirectoryFixture = "seed/directory.json"

// Fixture decodes the embedded demo directory.
func Fixture() (*models.Directory, error) {
	f, err := SeedFiles.Open(DirectoryFixture)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	return models.DecodeDirectory(f)
}
