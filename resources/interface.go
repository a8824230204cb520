package resources

import "context"

// Lister fetches one resource type and describes how it is reported
type Lister interface {
	// Type returns the resource type handled by this lister
	Type() Type
	// Title is the report title without the region suffix
	Title() string
	// Columns returns the report header
	Columns() Columns
	// Scope tells whether List is called per region or once
	Scope() Scope
	// Project turns a record into a table row
	Project(Record) Row
	// List retrieves the records for one region
	List(ctx context.Context, config ListerConfig) ([]Record, error)
}

// ListerConfig is the per-call configuration handed to a lister
type ListerConfig struct {
	Region  string
	Profile string
	// ExcludeDefaultVPC drops default VPCs from the vpc report
	ExcludeDefaultVPC bool
}

// Descriptor implements the static part of Lister. Listers embed it and add List.
type Descriptor struct {
	ResourceType Type
	ReportTitle  string
	Header       Columns
	ListScope    Scope
}

// Type returns the resource type handled by the lister
func (d Descriptor) Type() Type { return d.ResourceType }

// Title returns the report title without the region suffix
func (d Descriptor) Title() string { return d.ReportTitle }

// Columns returns the report header
func (d Descriptor) Columns() Columns { return d.Header }

// Scope returns whether the lister is queried per region or once
func (d Descriptor) Scope() Scope { return d.ListScope }

// Project reads every column through the field accessor
func (d Descriptor) Project(r Record) Row { return r.Project(d.Header) }
