package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketshare/internal/api/models"
	"marketshare/internal/config"
	"marketshare/internal/data"
	"marketshare/internal/diag"
	"marketshare/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunHandler handles simulation runs
type RunHandler struct {
	store   *ScenarioStore
	cache   *data.RunCache
	metrics *diag.Metrics
	log     *zap.Logger
}

// NewRunHandler creates a run handler. metrics may be nil.
func NewRunHandler(store *ScenarioStore, cache *data.RunCache, metrics *diag.Metrics, log *zap.Logger) *RunHandler {
	return &RunHandler{store: store, cache: cache, metrics: metrics, log: log}
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	sc, raw, err := h.store.Resolve(req.ScenarioID, req.Scenario)
	if err != nil {
		status, code := scenarioStatus(err)
		abortWithError(c, status, code, err)
		return
	}

	res, mem, err := h.execute(c.Request.Context(), sc, req.Options, nil)
	if err != nil {
		abortWithError(c, runErrorStatus(err), "RUN_ERROR", err)
		return
	}

	run := &data.Run{
		ID:          uuid.NewString(),
		Scenario:    sc.Name,
		Digest:      data.ScenarioDigest(raw),
		CreatedAt:   time.Now().UTC(),
		Result:      res,
		Diagnostics: mem.Events(),
	}
	h.cache.Set(run)
	h.log.Info("run completed",
		zap.String("id", run.ID),
		zap.String("scenario", run.Scenario),
		zap.Int("periods", len(res.Periods)),
		zap.Int("diagnostics", len(run.Diagnostics)),
	)

	c.JSON(http.StatusCreated, buildResponse(run, req.Options.IncludeLedger))
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildResponse(run, c.Query("include_ledger") == "true"))
}

// GetLedger handles GET /api/v1/runs/:id/ledger
//
// format=csv streams the ledger as CSV; group=<name> keeps one group's rows.
func (h *RunHandler) GetLedger(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}

	rows := run.Result.Ledger
	if group := c.Query("group"); group != "" {
		filtered := make([]simulation.LedgerRow, 0, len(rows))
		for _, r := range rows {
			if r.Group == group {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, gin.H{"id": run.ID, "ledger": rows})
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", run.ID))
		c.Status(http.StatusOK)
		if err := simulation.WriteLedger(c.Writer, rows); err != nil {
			_ = c.Error(err)
		}
	default:
		abortWithError(c, http.StatusBadRequest, "INVALID_FORMAT", fmt.Errorf("unsupported format %q", format))
	}
}

// CompareRuns handles POST /api/v1/runs/compare
func (h *RunHandler) CompareRuns(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	_, raw, err := h.store.Resolve(req.ScenarioID, req.Scenario)
	if err != nil {
		status, code := scenarioStatus(err)
		abortWithError(c, status, code, err)
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, v := range req.Variations {
		result := models.ComparisonResult{Name: v.Name}

		// Every variation starts from a fresh decode of the base document.
		sc, err := h.store.Parse(raw)
		if err == nil {
			err = applyVariation(sc, v)
		}
		if err != nil {
			result.Error = err.Error()
			comparison = append(comparison, result)
			continue
		}

		res, mem, err := h.execute(c.Request.Context(), sc, models.RunOptions{}, v.ShareWeightScale)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				abortWithError(c, runErrorStatus(err), "RUN_ERROR", err)
				return
			}
			result.Error = err.Error()
			comparison = append(comparison, result)
			continue
		}
		result.Summary = summarize(res, mem.Events())
		result.Periods = res.Periods
		comparison = append(comparison, result)
	}

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

func (h *RunHandler) lookup(c *gin.Context) (*data.Run, bool) {
	id := c.Param("id")
	run, ok := h.cache.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "RUN_NOT_FOUND", fmt.Errorf("run %q not found or expired", id))
		return nil, false
	}
	return run, true
}

// execute builds and runs a validated scenario, recording diagnostics in memory,
// in the log and in the metrics. weightScale multiplies group share weights.
func (h *RunHandler) execute(ctx context.Context, sc *config.Scenario, opts models.RunOptions, weightScale map[string]float64) (*simulation.Result, *diag.Memory, error) {
	a, err := sc.Build()
	if err != nil {
		return nil, nil, err
	}

	mem := &diag.Memory{}
	rec := diag.Multi{mem, diag.NewZap(h.log.With(zap.String("sector", sc.Sector)))}
	if h.metrics != nil {
		rec = append(rec, h.metrics)
	}

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = sc.Calibration.MaxIterations
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = sc.Calibration.Tolerance
	}

	d := sc.Driver(a, rec)
	for group, scale := range weightScale {
		if scale <= 0 {
			return nil, nil, fmt.Errorf("share_weight_scale.%s must be > 0, got %g", group, scale)
		}
		if !d.ScaleShareWeight(group, scale) {
			return nil, nil, fmt.Errorf("share_weight_scale: unknown group %q", group)
		}
	}

	res, err := simulation.New(maxIter, tol).Run(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	return res, mem, nil
}

func applyVariation(sc *config.Scenario, v models.Variation) error {
	if v.CalibrationActive != nil {
		sc.Calibration.Active = *v.CalibrationActive
	}
	if v.DemandScale < 0 {
		return fmt.Errorf("demand_scale must be >= 0, got %g", v.DemandScale)
	}
	if v.DemandScale > 0 {
		for i := range sc.Demand {
			sc.Demand[i] *= v.DemandScale
		}
	}
	if len(v.Prices) > 0 && sc.Prices == nil {
		sc.Prices = map[string][]float64{}
	}
	for good, prices := range v.Prices {
		sc.Prices[good] = prices
	}
	return sc.Validate()
}

func runErrorStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func buildResponse(run *data.Run, includeLedger bool) models.RunResponse {
	resp := models.RunResponse{
		ID:          run.ID,
		Status:      "completed",
		Scenario:    run.Scenario,
		Digest:      run.Digest,
		CreatedAt:   run.CreatedAt,
		Summary:     summarize(run.Result, run.Diagnostics),
		Periods:     run.Result.Periods,
		Diagnostics: diagnostics(run.Diagnostics),
	}
	if includeLedger {
		resp.Ledger = run.Result.Ledger
	}
	return resp
}

func summarize(res *simulation.Result, events []diag.Event) models.RunSummary {
	s := models.RunSummary{
		Sector:  res.Sector,
		Region:  res.Region,
		Periods: len(res.Periods),
	}
	if len(res.Periods) > 0 {
		s.StartYear = res.Periods[0].Year
		s.EndYear = res.Periods[len(res.Periods)-1].Year
	}
	for _, p := range res.Periods {
		s.TotalOutput += p.Output
		if p.CalibrationMiss > s.MaxCalibrationMiss {
			s.MaxCalibrationMiss = p.CalibrationMiss
		}
	}
	for _, ev := range events {
		switch ev.Severity {
		case diag.Warning:
			s.Warnings++
		case diag.Error:
			s.Errors++
		}
	}
	return s
}
