package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/garnizeh/eduverify/pkg/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProfiles(w io.Writer, profiles []models.StudentProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tNAME\tHEADLINE\tSKILLS\tVERIFIED")
	for _, p := range profiles {
		names := make([]string, 0, len(p.Skills))
		for _, s := range p.Skills {
			names = append(names, s.Name)
		}
		verified := 0
		for i := range p.Projects {
			if p.Projects[i].IsVerified() {
				verified++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\n", p.UserID, p.User.Name, p.Headline, strings.Join(names, ", "), verified, len(p.Projects))
	}
	return tw.Flush()
}

func printProjects(w io.Writer, projects []models.Project) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tOWNER\tTITLE")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.OwnerID, p.Title)
	}
	return tw.Flush()
}
