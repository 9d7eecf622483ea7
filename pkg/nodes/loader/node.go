package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

// Config holds the LoadTitanic parameters.
type Config struct {
	Path string `json:"path" validate:"required"`
}

// LoaderNode reads one CSV file into a table. It ignores its input.
type LoaderNode struct {
	config Config
	opts   Options
}

// Run performs the bounded read.
func (n *LoaderNode) Run(ctx context.Context, _ *models.Frame) (models.Result, error) {
	if cache := n.opts.Cache; cache != nil && filepath.Clean(cache.Path()) == filepath.Clean(n.config.Path) {
		frame, err := cache.Frame(ctx)
		if err != nil {
			return models.Result{}, protocol.NewExecutionError(NodeID, err)
		}

		return models.TableResult(frame), nil
	}

	frame, err := n.read()
	if err != nil {
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	return models.TableResult(frame), nil
}

func (n *LoaderNode) read() (*models.Frame, error) {
	if n.opts.Root == "" {
		return dataset.ReadCSVFile(n.config.Path, n.opts.MaxBytes)
	}

	root, err := os.OpenRoot(n.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open data root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(n.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", n.config.Path, err)
	}
	defer file.Close()

	frame, err := dataset.ReadCSV(file, n.opts.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", n.config.Path, err)
	}

	return frame, nil
}
