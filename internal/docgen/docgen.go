// Package docgen compiles a collected SRS record into the instruction
// text for long-form document generation.
package docgen

import (
	"fmt"
	"strings"

	"github.com/ad-code1993/aisrsback/internal/schema"
)

// Placeholder marks fields the interview did not fill, so generated
// documents stay auditable against the schema.
const Placeholder = "[TBD]"

// Options adjust a compiled instruction without changing its section
// skeleton.
type Options struct {
	Style string
	Tone  string
	Extra string // free-text additional instructions
}

// section is one fixed block of the document skeleton. Entries pair a
// bold label with a schema field; the mapping never varies between calls.
type section struct {
	Heading string
	Entries []entry
}

type entry struct {
	Label string
	Field string
}

// sections returns the fixed document skeleton. Every schema field
// appears exactly once under a deterministic heading.
func sections() []section {
	return []section{
		{
			Heading: "# 1. PROJECT IDENTIFICATION",
			Entries: []entry{
				{Label: "Project Name", Field: "project_name"},
				{Label: "SRS Version", Field: "srs_version"},
				{Label: "Creation Date", Field: "creation_date"},
				{Label: "Authors", Field: "authors"},
				{Label: "Stakeholders", Field: "stakeholders"},
				{Label: "Expected Release", Field: "expected_release_date"},
			},
		},
		{
			Heading: "# 2. INTRODUCTION",
			Entries: []entry{
				{Label: "Document Purpose", Field: "srs_purpose"},
				{Label: "System Purpose", Field: "main_purpose"},
				{Label: "Scope", Field: "scope"},
				{Label: "Overview", Field: "overview_summary"},
				{Label: "Problem Statement", Field: "problem"},
			},
		},
		{
			Heading: "# 3. DEFINITIONS & REFERENCE",
			Entries: []entry{
				{Label: "Acronyms", Field: "acronyms"},
			},
		},
		{
			Heading: "# 4. USER CHARACTERISTICS",
			Entries: []entry{
				{Label: "Intended Users", Field: "intended_users"},
				{Label: "Affected Parties", Field: "affected_parties"},
			},
		},
		{
			Heading: "# 5. REQUIREMENTS",
			Entries: []entry{
				{Label: "Major Features", Field: "major_features"},
				{Label: "MVP Definition", Field: "mvp"},
				{Label: "Database Design", Field: "db_design"},
				{Label: "Datasheets", Field: "datasheets"},
				{Label: "UI/UX Design", Field: "uiux"},
			},
		},
		{
			Heading: "# 6. CONSTRAINTS",
			Entries: []entry{
				{Label: "Resources", Field: "resources"},
				{Label: "Constraints", Field: "constraints"},
			},
		},
		{
			Heading: "# 7. SOLUTION APPROACH",
			Entries: []entry{
				{Label: "Vision", Field: "ideal_solution"},
				{Label: "Deliverables", Field: "deliverables"},
				{Label: "Delivery Stages", Field: "delivery_stages"},
			},
		},
		{
			Heading: "# 8. SUPPLEMENTAL INFORMATION",
			Entries: []entry{
				{Label: "Assumptions", Field: "assumptions"},
				{Label: "Rabbit Holes", Field: "rabbit_holes"},
				{Label: "Out of Scope", Field: "out_of_scope"},
				{Label: "Restrictions", Field: "restrictions"},
			},
		},
		{
			Heading: "# 9. IMPACT ANALYSIS",
			Entries: []entry{
				{Label: "Impacts", Field: "impacts"},
			},
		},
	}
}

// Compile deterministically builds the generation instruction from a
// possibly partially empty schema instance. Empty values render the
// Placeholder marker instead of being omitted. Compile never calls a
// collaborator itself.
func Compile(instance *schema.Instance, opts Options) string {
	var b strings.Builder

	b.WriteString(`You are a senior technical writer creating a formal Software Requirements Specification document.
Produce a complete, professional SRS that would span 4-12 pages when formatted, using all provided information.

STRUCTURE THE DOCUMENT AS FOLLOWS:

`)

	for _, sec := range sections() {
		b.WriteString(sec.Heading)
		b.WriteString("\n\n")
		for _, e := range sec.Entries {
			value := ""
			if instance != nil {
				value = strings.TrimSpace(instance.Get(e.Field))
			}
			if value == "" {
				value = Placeholder
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", e.Label, value)
		}
		b.WriteString("\n")
	}

	b.WriteString(`DOCUMENTATION STANDARDS:
1. Use IEEE SRS format conventions
2. Number all requirements (REQ-001, etc.)
3. Maintain a consistent heading hierarchy
4. Maintain professional technical tone
5. Keep ` + Placeholder + ` markers for missing information
6. All requirements must be testable
7. Output a complete Markdown document with proper section numbering
`)

	if opts.Style != "" {
		fmt.Fprintf(&b, "\nStyle: %s.", opts.Style)
	}
	if opts.Tone != "" {
		fmt.Fprintf(&b, "\nTone: %s.", opts.Tone)
	}
	if opts.Extra != "" {
		fmt.Fprintf(&b, "\n\nAdditional Instructions: %s", opts.Extra)
	}

	return b.String()
}
