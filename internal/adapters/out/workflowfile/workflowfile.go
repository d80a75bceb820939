// Package workflowfile loads workflow definitions from YAML files.
//
// A workflow directory holds one file per workspace, named after the
// workspace ID:
//
//	workflows/
//	  5f0c8d7e-3b7a-4c1e-9a55-0d2f5b7c9e11.yaml
//	  b1c2...yaml
package workflowfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
)

// Load reads and validates a single workflow definition.
func Load(path string) (*services.OrderWorkflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := services.LoadWorkflowDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wf, err := services.NewOrderWorkflow(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// LoadDir reads every *.yaml and *.yml file in dir as a workspace override.
// An empty dir yields no overrides. Every broken file is reported.
func LoadDir(dir string) (map[kernel.UUID]*services.OrderWorkflow, error) {
	overrides := map[kernel.UUID]*services.OrderWorkflow{}
	if strings.TrimSpace(dir) == "" {
		return overrides, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workflow directory: %w", err)
	}

	var problems []error
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		workspaceID, parseErr := kernel.UUIDFromString(strings.TrimSuffix(entry.Name(), ext))
		if parseErr != nil {
			problems = append(problems, fmt.Errorf("%s: file name is not a workspace id: %w", entry.Name(), parseErr))
			continue
		}

		wf, loadErr := Load(filepath.Join(dir, entry.Name()))
		if loadErr != nil {
			problems = append(problems, loadErr)
			continue
		}
		overrides[workspaceID] = wf
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return overrides, nil
}
