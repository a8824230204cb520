// Package report runs resource listers across regions and renders their results.
//
// Listers are invoked strictly one after another. Every invocation produces a
// Result; a failing region or resource type is logged and skipped unless the
// driver is configured to fail fast.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/moepig/aws-inventory/renderer"
	"github.com/moepig/aws-inventory/resources"
)

// Renderer receives the sections to print
type Renderer interface {
	Render(renderer.Section) error
}

// Options configure a Driver
type Options struct {
	Regions []string
	Profile string
	// Verbose renders the title of empty reports too
	Verbose           bool
	ExcludeDefaultVPC bool
	// FailFast aborts the run on the first data-source error
	FailFast bool
}

// Result is the outcome of one lister invocation
type Result struct {
	Type    resources.Type
	Region  string
	Title   string
	Columns resources.Columns
	Rows    []resources.Row
	Err     error
}

// Failed reports whether the invocation failed
func (r Result) Failed() bool {
	return r.Err != nil
}

// Summary collects the results of a run
type Summary struct {
	Results []Result
	// Skipped lists resource types left out because they rejected the arguments
	Skipped []resources.Type
}

// Failures returns the failed results
func (s *Summary) Failures() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Driver runs listers and hands their rows to a renderer
type Driver struct {
	registry *resources.Registry
	renderer Renderer
	opts     Options
}

// NewDriver creates a new Driver
func NewDriver(registry *resources.Registry, rend Renderer, opts Options) *Driver {
	return &Driver{
		registry: registry,
		renderer: rend,
		opts:     opts,
	}
}

type invocation struct {
	lister resources.Lister
	query  resources.Query
}

// Run reports the given resource types. args are the residual command
// arguments (sort column and column=value filters). With a single type an
// argument error aborts the run; with several types the offending types are
// skipped.
func (d *Driver) Run(ctx context.Context, types []resources.Type, args []string) (*Summary, error) {
	summary := &Summary{}

	plan, err := d.plan(types, args, summary)
	if err != nil {
		return summary, err
	}

	// Global listers do not depend on the region and run once
	for _, inv := range plan {
		if inv.lister.Scope() != resources.ScopeGlobal {
			continue
		}
		if err := d.invoke(ctx, inv, "", summary); err != nil {
			return summary, err
		}
	}

	for _, region := range d.opts.Regions {
		for _, inv := range plan {
			if inv.lister.Scope() != resources.ScopeRegional {
				continue
			}
			if err := d.invoke(ctx, inv, region, summary); err != nil {
				return summary, err
			}
		}
	}

	return summary, nil
}

func (d *Driver) plan(types []resources.Type, args []string, summary *Summary) ([]invocation, error) {
	plan := make([]invocation, 0, len(types))
	for _, t := range types {
		lister, err := d.registry.Get(t)
		if err != nil {
			return nil, err
		}

		opts, err := resources.ParseOptions(args, lister.Columns())
		if err != nil {
			if len(types) == 1 {
				return nil, err
			}
			slog.Warn("Skipping resource type", "type", t, "error", err)
			summary.Skipped = append(summary.Skipped, t)
			continue
		}
		for _, word := range opts.Skipped {
			slog.Warn("Skipped argument", "type", t, "argument", word)
		}

		plan = append(plan, invocation{
			lister: lister,
			query: resources.Query{
				Columns: lister.Columns(),
				Options: opts,
				Project: lister.Project,
			},
		})
	}
	return plan, nil
}

// invoke runs one lister for one region and renders its result. It returns an
// error only when the run has to stop.
func (d *Driver) invoke(ctx context.Context, inv invocation, region string, summary *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result := d.collect(ctx, inv, region)
	summary.Results = append(summary.Results, result)

	if result.Failed() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("Failed to list resources",
			"type", result.Type,
			"region", region,
			"error", result.Err)
		if d.opts.FailFast {
			return fmt.Errorf("failed to list %s in %s: %w", result.Type, regionLabel(region), result.Err)
		}
		return nil
	}

	slog.Info("Listed resources",
		"type", result.Type,
		"region", region,
		"count", len(result.Rows))

	if len(result.Rows) == 0 && !d.opts.Verbose {
		return nil
	}
	section := renderer.Section{
		Title:   result.Title,
		Type:    result.Type,
		Region:  region,
		Columns: result.Columns,
		Rows:    result.Rows,
	}
	if err := d.renderer.Render(section); err != nil {
		return fmt.Errorf("failed to render %q: %w", result.Title, err)
	}
	return nil
}

func (d *Driver) collect(ctx context.Context, inv invocation, region string) Result {
	result := Result{
		Type:    inv.lister.Type(),
		Region:  region,
		Title:   Title(inv.lister.Title(), region),
		Columns: inv.lister.Columns(),
	}

	records, err := inv.lister.List(ctx, resources.ListerConfig{
		Region:            region,
		Profile:           d.opts.Profile,
		ExcludeDefaultVPC: d.opts.ExcludeDefaultVPC,
	})
	if err != nil {
		result.Err = err
		return result
	}

	rows, err := inv.query.Run(records)
	if err != nil {
		result.Err = err
		return result
	}
	result.Rows = slices.Collect(rows)
	return result
}

// Title formats a report title for a region; global reports have no region
func Title(title, region string) string {
	if region == "" {
		return fmt.Sprintf("%s @ 'worldwide'", title)
	}
	return fmt.Sprintf("%s @ region '%s'", title, region)
}

func regionLabel(region string) string {
	if region == "" {
		return "all regions"
	}
	return region
}
