package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marketshare/internal/api/models"
	"marketshare/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errScenarioNotFound = errors.New("scenario not found")
	errScenarioRequired = errors.New("scenario_id or scenario is required")
)

// ScenarioStore resolves scenarios from a directory of YAML files.
type ScenarioStore struct {
	dir string
}

func NewScenarioStore(dir string) *ScenarioStore {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &ScenarioStore{dir: dir}
}

// Dir returns the scenario directory path.
func (s *ScenarioStore) Dir() string {
	return s.dir
}

func (s *ScenarioStore) path(id string) (string, error) {
	if id == "" || strings.HasPrefix(id, ".") || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid scenario id %q", id)
	}
	return filepath.Join(s.dir, id+".yaml"), nil
}

// Resolve loads the stored scenario id or parses the inline document, exactly one
// of which must be set. It returns the raw document along with the parsed and
// validated scenario.
func (s *ScenarioStore) Resolve(id, inline string) (*config.Scenario, []byte, error) {
	var raw []byte
	switch {
	case id != "" && inline != "":
		return nil, nil, errors.New("set scenario_id or scenario, not both")
	case id != "":
		p, err := s.path(id)
		if err != nil {
			return nil, nil, err
		}
		raw, err = os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", errScenarioNotFound, id)
		}
		if err != nil {
			return nil, nil, err
		}
	case inline != "":
		raw = []byte(inline)
	default:
		return nil, nil, errScenarioRequired
	}

	sc, err := s.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	return sc, raw, nil
}

// Parse decodes a scenario document. Its prices file must live in the store.
func (s *ScenarioStore) Parse(raw []byte) (*config.Scenario, error) {
	return config.ParseIn(raw, s.dir)
}

// List describes every readable scenario file, sorted by ID.
func (s *ScenarioStore) List(log *zap.Logger) ([]models.ScenarioInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	out := []models.ScenarioInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		var sc *config.Scenario
		raw, err := os.ReadFile(path)
		if err == nil {
			sc, err = s.Parse(raw)
		}
		if err != nil {
			log.Warn("skipping unreadable scenario", zap.String("file", path), zap.Error(err))
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".yaml")
		name := sc.Name
		if name == "" {
			name = id
		}
		groups := make([]string, 0, len(sc.Groups))
		for _, g := range sc.Groups {
			groups = append(groups, g.Name)
		}
		out = append(out, models.ScenarioInfo{
			ID:        id,
			Name:      name,
			File:      path,
			Sector:    sc.Sector,
			Region:    sc.Region,
			StartYear: sc.Modeltime.StartYear,
			Periods:   sc.Modeltime.Periods,
			Groups:    groups,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ScenarioHandler handles scenario-related requests
type ScenarioHandler struct {
	store *ScenarioStore
	log   *zap.Logger
}

func NewScenarioHandler(store *ScenarioStore, log *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{store: store, log: log}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios, err := h.store.List(h.log)
	if err != nil {
		// A missing directory is an empty catalog, not a server fault.
		h.log.Warn("cannot read scenario directory", zap.String("dir", h.store.Dir()), zap.Error(err))
		scenarios = []models.ScenarioInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

// scenarioStatus maps a Resolve error onto an HTTP status and error code.
func scenarioStatus(err error) (int, string) {
	if errors.Is(err, errScenarioNotFound) {
		return http.StatusNotFound, "SCENARIO_NOT_FOUND"
	}
	return http.StatusBadRequest, "INVALID_SCENARIO"
}
