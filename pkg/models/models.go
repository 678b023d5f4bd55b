package models

import (
	"strings"
	"time"
)

// Domain models for the verification directory. Table mapping lives in
// db/migrations/0001_init.sql.

type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleVerifier Role = "VERIFIER"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleVerifier, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Role      Role   `json:"role" db:"role"`
	AvatarURL string `json:"avatarUrl,omitempty" db:"avatar_url"`
}

type Skill struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Proficiency int    `json:"proficiency" db:"proficiency"`
	Verified    bool   `json:"verified" db:"verified"`
}

type EducationRecord struct {
	ID          string   `json:"id" db:"id"`
	Institution string   `json:"institution" db:"institution"`
	Degree      string   `json:"degree" db:"degree"`
	Field       string   `json:"field" db:"field"`
	StartDate   string   `json:"startDate" db:"start_date"`
	EndDate     string   `json:"endDate" db:"end_date"`
	GPA         *float64 `json:"gpa,omitempty" db:"gpa"`
	Verified    bool     `json:"verified" db:"verified"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaPDF   MediaType = "pdf"
	MediaLink  MediaType = "link"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaPDF, MediaLink:
		return true
	}
	return false
}

// CategoryDataset marks an artifact as a dataset explicitly.
const CategoryDataset = "dataset"

type MediaArtifact struct {
	ID           string    `json:"id"`
	Type         MediaType `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Title        string    `json:"title"`
	Category     string    `json:"category,omitempty"`
}

func (m MediaArtifact) IsVideo() bool {
	return m.Type == MediaVideo
}

// IsDataset reports whether the artifact is a dataset. Artifacts without an
// explicit category fall back to the title convention: a link whose title
// contains "dataset" in any case.
func (m MediaArtifact) IsDataset() bool {
	if strings.EqualFold(m.Category, CategoryDataset) {
		return true
	}
	return m.Type == MediaLink && strings.Contains(strings.ToLower(m.Title), CategoryDataset)
}

type Collaborator struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type Verification struct {
	ID            string    `json:"id" db:"id"`
	VerifierID    string    `json:"verifierId" db:"verifier_id"`
	VerifierName  string    `json:"verifierName" db:"verifier_name"`
	VerifiedAt    time.Time `json:"verifiedAt" db:"verified_at"`
	Comment       string    `json:"comment" db:"comment"`
	SignatureHash string    `json:"signatureHash" db:"signature_hash"`
}

type Project struct {
	ID               string          `json:"id" db:"id"`
	OwnerID          string          `json:"ownerId" db:"owner_id"`
	Title            string          `json:"title" db:"title"`
	DescriptionShort string          `json:"descriptionShort" db:"description_short"`
	DescriptionLong  string          `json:"descriptionLong" db:"description_long"`
	Skills           []string        `json:"skills" db:"skills_json"`
	Media            []MediaArtifact `json:"media" db:"media_json"`
	Collaborators    []Collaborator  `json:"collaborators" db:"collaborators_json"`
	Verifications    []Verification  `json:"verifications"`
	Tags             []string        `json:"tags" db:"tags_json"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// IsVerified is derived, never stored: a project is verified once it holds
// at least one verification.
func (p *Project) IsVerified() bool {
	return len(p.Verifications) > 0
}

func (p *Project) HasVideo() bool {
	for _, m := range p.Media {
		if m.IsVideo() {
			return true
		}
	}
	return false
}

func (p *Project) HasDataset() bool {
	for _, m := range p.Media {
		if m.IsDataset() {
			return true
		}
	}
	return false
}

func (p *Project) CollaboratorCount() int {
	return len(p.Collaborators)
}

// Clone returns a deep copy so callers can hold a snapshot while the store mutates.
func (p Project) Clone() Project {
	out := p
	out.Skills = cloneSlice(p.Skills)
	out.Media = cloneSlice(p.Media)
	out.Collaborators = cloneSlice(p.Collaborators)
	out.Verifications = cloneSlice(p.Verifications)
	out.Tags = cloneSlice(p.Tags)
	return out
}

type StudentProfile struct {
	UserID    string            `json:"userId" db:"user_id"`
	User      User              `json:"user"`
	Headline  string            `json:"headline" db:"headline"`
	About     string            `json:"about" db:"about"`
	Location  string            `json:"location" db:"location"`
	Education []EducationRecord `json:"education"`
	Skills    []Skill           `json:"skills"`
	Projects  []Project         `json:"projects"`
}

func (sp StudentProfile) Clone() StudentProfile {
	out := sp
	out.Education = make([]EducationRecord, len(sp.Education))
	for i, e := range sp.Education {
		if e.GPA != nil {
			g := *e.GPA
			e.GPA = &g
		}
		out.Education[i] = e
	}
	out.Skills = cloneSlice(sp.Skills)
	out.Projects = make([]Project, len(sp.Projects))
	for i := range sp.Projects {
		out.Projects[i] = sp.Projects[i].Clone()
	}
	return out
}

type JobPost struct {
	ID             string    `json:"id" db:"id"`
	EmployerID     string    `json:"employerId" db:"employer_id"`
	CompanyName    string    `json:"companyName" db:"company_name"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	RequiredSkills []string  `json:"requiredSkills" db:"required_skills_json"`
	PostedAt       time.Time `json:"postedAt" db:"posted_at"`
}

// cloneSlice copies s, keeping empty slices non-nil so they encode as [].
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
