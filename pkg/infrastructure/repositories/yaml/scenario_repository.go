package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	"github.com/vsinha/factoryplan/pkg/infrastructure/repositories/memory"
)

// ScenarioRepository serves the scenario files of one directory
type ScenarioRepository struct {
	*memory.ScenarioRepository
	dir   string
	files map[string]string
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// OpenDir loads every *.yaml and *.yml file in dir. Two files declaring the
// same scenario name are rejected.
func OpenDir(dir string) (*ScenarioRepository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	repo := &ScenarioRepository{
		ScenarioRepository: memory.NewScenarioRepository(len(paths)),
		dir:                dir,
		files:              make(map[string]string, len(paths)),
	}
	for _, path := range paths {
		params, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if previous, exists := repo.files[params.Name]; exists {
			return nil, fmt.Errorf("scenario %s is defined in both %s and %s", params.Name, previous, path)
		}
		if err := repo.AddScenario(params); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		repo.files[params.Name] = path
	}

	zap.L().Debug("Scenarios loaded",
		zap.String("dir", dir),
		zap.Int("count", len(paths)))
	return repo, nil
}

// Dir returns the directory the repository was opened on
func (r *ScenarioRepository) Dir() string {
	return r.dir
}

// Path returns the file a scenario was read from
func (r *ScenarioRepository) Path(name string) (string, error) {
	path, ok := r.files[name]
	if !ok {
		return "", fmt.Errorf("scenario %s: %w", name, repositories.ErrNotFound)
	}
	return path, nil
}
