// Package schema defines the canonical SRS field set collected by the interview.
package schema

import (
	"encoding/json"
	"fmt"
)

// Field describes one entry of the SRS record.
type Field struct {
	Name        string
	Required    bool
	Description string
}

// Fields returns the canonical SRS fields in interview order.
// The order is significant: it is the sequence the interviewer walks through.
func Fields() []Field {
	return []Field{
		{Name: "project_name", Required: true, Description: "Project name"},
		{Name: "srs_version", Description: "Version of the SRS document"},
		{Name: "authors", Description: "Authors or contributors"},
		{Name: "creation_date", Description: "Date of creation"},
		{Name: "stakeholders", Description: "Stakeholders involved"},
		{Name: "expected_release_date", Description: "Expected delivery or release date"},
		{Name: "overview_summary", Description: "Brief summary of the system"},
		{Name: "main_purpose", Description: "Main purpose of the project"},
		{Name: "intended_users", Description: "Intended users or beneficiaries"},
		{Name: "srs_purpose", Description: "Purpose of this SRS document"},
		{Name: "scope", Description: "Scope of the software system"},
		{Name: "assumptions", Description: "Assumptions, dependencies, or constraints"},
		{Name: "acronyms", Description: "Acronyms, abbreviations, or references to explain"},
		{Name: "problem", Description: "Problem or challenge addressed"},
		{Name: "affected_parties", Description: "Who is affected and in what context"},
		{Name: "impacts", Description: "Impacts or inefficiencies caused by current state"},
		{Name: "resources", Description: "Resources and time allocated"},
		{Name: "constraints", Description: "Budgetary or technical constraints"},
		{Name: "mvp", Description: "Minimum viable solution"},
		{Name: "ideal_solution", Description: "Ideal solution if no constraints"},
		{Name: "deliverables", Description: "Expected deliverables of the system"},
		{Name: "delivery_stages", Description: "Important delivery stages or milestones"},
		{Name: "major_features", Description: "Major features or capabilities planned"},
		{Name: "datasheets", Description: "Technical specifications or datasheets"},
		{Name: "db_design", Description: "Main entities/tables and relationships"},
		{Name: "uiux", Description: "UI/UX design details"},
		{Name: "rabbit_holes", Description: "Feature ideas or areas for future exploration"},
		{Name: "out_of_scope", Description: "Explicitly out of scope items"},
		{Name: "restrictions", Description: "Technologies/methods/tools not to be used or legal/ethical restrictions"},
	}
}

// FieldNames returns the canonical field names in interview order.
func FieldNames() []string {
	fields := Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Instance holds one value per field. Values may be empty; the document
// compiler marks empty values visibly instead of failing.
type Instance struct {
	values map[string]string
}

// NewInstance returns an Instance with an empty value for every field.
func NewInstance() *Instance {
	values := make(map[string]string, len(Fields()))
	for _, f := range Fields() {
		values[f.Name] = ""
	}
	return &Instance{values: values}
}

// Get returns the value for a field name, or "" for unknown names.
func (in *Instance) Get(name string) string {
	if in == nil || in.values == nil {
		return ""
	}
	return in.values[name]
}

// Set stores a value. Names outside the canonical field set are rejected
// so extraction output cannot widen the record.
func (in *Instance) Set(name, value string) error {
	if _, ok := in.values[name]; !ok {
		return fmt.Errorf("unknown schema field %q", name)
	}
	in.values[name] = value
	return nil
}

// MarshalJSON encodes the instance as a flat name→value object.
func (in *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.values)
}

// UnmarshalJSON decodes a flat name→value object, dropping unknown keys
// and filling absent fields with empty values.
func (in *Instance) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode schema instance: %w", err)
	}
	in.values = make(map[string]string, len(Fields()))
	for _, f := range Fields() {
		in.values[f.Name] = raw[f.Name]
	}
	return nil
}
