package models

import "encoding/json"

// NodeDescriptor is one requested pipeline step.
type NodeDescriptor struct {
	Name   string         `json:"name"   validate:"required"`
	Params map[string]any `json:"params"`
}

// UnmarshalJSON accepts both "name" and the legacy "node" key for the node name.
func (d *NodeDescriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string         `json:"name"`
		Node   string         `json:"node"`
		Params map[string]any `json:"params"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Name = raw.Name
	if d.Name == "" {
		d.Name = raw.Node
	}

	d.Params = raw.Params

	return nil
}

// PipelineRequest is an ordered list of steps; execution order is list order.
type PipelineRequest struct {
	Steps []NodeDescriptor `json:"steps" validate:"dive"`
}

// PipelineOutput is the transport-friendly projection of a pipeline's terminal result.
type PipelineOutput struct {
	Kind    ResultKind `json:"-"`
	Columns []string   `json:"columns,omitempty"`
	Preview []Record   `json:"preview,omitempty"`
	Result  any        `json:"result,omitempty"`
}

// NewPipelineOutput projects a terminal result. Tables are reduced to their
// column names and at most previewRows leading rows.
func NewPipelineOutput(result Result, previewRows int) *PipelineOutput {
	if result.IsTable() {
		return &PipelineOutput{
			Kind:    ResultKindTable,
			Columns: result.Table.ColumnNames(),
			Preview: result.Table.Head(previewRows),
		}
	}

	return &PipelineOutput{
		Kind:   result.Kind,
		Result: result.Value,
	}
}

// IsTable reports whether the output is a table preview.
func (o *PipelineOutput) IsTable() bool {
	return o.Kind == ResultKindTable
}

// MarshalJSON renders {"columns", "preview"} for tables and {"result"} otherwise.
func (o *PipelineOutput) MarshalJSON() ([]byte, error) {
	if o.IsTable() {
		columns := o.Columns
		if columns == nil {
			columns = []string{}
		}

		preview := o.Preview
		if preview == nil {
			preview = []Record{}
		}

		return json.Marshal(struct {
			Columns []string `json:"columns"`
			Preview []Record `json:"preview"`
		}{columns, preview})
	}

	return json.Marshal(struct {
		Result any `json:"result"`
	}{o.Result})
}

// UnmarshalJSON restores an output from either wire shape.
func (o *PipelineOutput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns []string `json:"columns"`
		Preview []Record `json:"preview"`
		Result  any      `json:"result"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Columns != nil {
		o.Kind = ResultKindTable
		o.Columns = raw.Columns
		o.Preview = raw.Preview

		return nil
	}

	o.Kind = ResultKindStructured
	if raw.Result == nil {
		o.Kind = ResultKindNone
	}

	o.Result = raw.Result

	return nil
}
