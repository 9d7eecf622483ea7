// Package hclpipeline loads pipeline definitions from HCL files.
//
// A file holds any number of pipeline blocks. Each pipeline lists its steps
// in execution order; a step's label is the node name and its optional
// params attribute is an object of node parameters:
//
//	pipeline "adults" {
//	  schedule = "@every 1h"
//
//	  step "LoadTitanic" {
//	    params = { path = "data/titanic.csv" }
//	  }
//
//	  step "Filter" {
//	    params = { query = "Age >= 18" }
//	  }
//	}
package hclpipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/dukex/cognipipe/pkg/models"
)

// Extension is the file suffix LoadDir picks up.
const Extension = ".hcl"

var (
	ErrDuplicatePipeline = errors.New("duplicate pipeline name")
	ErrInvalidParams     = errors.New("step params must be an object")
)

// Pipeline is one decoded pipeline block.
type Pipeline struct {
	Name     string
	Schedule string // cron spec, empty when the pipeline only runs on demand
	File     string
	Request  models.PipelineRequest
}

type hclFile struct {
	Pipelines []*hclPipeline `hcl:"pipeline,block"`
}

type hclPipeline struct {
	Name     string     `hcl:"name,label"`
	Schedule *string    `hcl:"schedule,optional"`
	Steps    []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	Node   string         `hcl:"node,label"`
	Params hcl.Expression `hcl:"params,optional"`
}

// ParseFile reads and decodes the pipelines defined in path.
func ParseFile(path string) ([]*Pipeline, error) {
	return parseFile(hclparse.NewParser(), path)
}

// Parse decodes the pipelines defined in src; filename is used in diagnostics.
func Parse(src []byte, filename string) ([]*Pipeline, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	return decode(file, filename)
}

// LoadDir decodes every .hcl file directly inside dir, in lexical file order.
// Pipeline names must be unique across the directory.
func LoadDir(dir string) ([]*Pipeline, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+Extension))
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline files in %s: %w", dir, err)
	}

	if len(files) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("failed to read pipeline directory: %w", err)
		}
	}

	slices.Sort(files)

	parser := hclparse.NewParser()
	seen := map[string]string{}

	var pipelines []*Pipeline

	for _, path := range files {
		decoded, err := parseFile(parser, path)
		if err != nil {
			return nil, err
		}

		for _, p := range decoded {
			if other, ok := seen[p.Name]; ok {
				return nil, fmt.Errorf("%w %q in %s, first defined in %s", ErrDuplicatePipeline, p.Name, path, other)
			}

			seen[p.Name] = path
		}

		pipelines = append(pipelines, decoded...)
	}

	return pipelines, nil
}

func parseFile(parser *hclparse.Parser, path string) ([]*Pipeline, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	return decode(file, path)
}

func decode(file *hcl.File, filename string) ([]*Pipeline, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	pipelines := make([]*Pipeline, 0, len(parsed.Pipelines))
	names := map[string]bool{}

	for _, block := range parsed.Pipelines {
		if names[block.Name] {
			return nil, fmt.Errorf("%w %q in %s", ErrDuplicatePipeline, block.Name, filename)
		}

		names[block.Name] = true

		pipeline := &Pipeline{
			Name:    block.Name,
			File:    filename,
			Request: models.PipelineRequest{Steps: make([]models.NodeDescriptor, 0, len(block.Steps))},
		}

		if block.Schedule != nil {
			pipeline.Schedule = *block.Schedule
		}

		for i, step := range block.Steps {
			params, err := decodeParams(step.Params)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q step %d (%s) in %s: %w", block.Name, i, step.Node, filename, err)
			}

			pipeline.Request.Steps = append(pipeline.Request.Steps, models.NodeDescriptor{Name: step.Node, Params: params})
		}

		pipelines = append(pipelines, pipeline)
	}

	return pipelines, nil
}

func decodeParams(expr hcl.Expression) (map[string]any, error) {
	if expr == nil {
		return nil, nil
	}

	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	if value.IsNull() {
		return nil, nil
	}

	ty := value.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidParams, ty.FriendlyName())
	}

	native, err := ctyToNative(value)
	if err != nil {
		return nil, err
	}

	return native.(map[string]any), nil
}
