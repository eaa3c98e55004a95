package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"kscore-go/internal/metrics"
	"kscore-go/internal/models"
	"kscore-go/internal/services"
	"kscore-go/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

type ResultsHandler struct {
	log        *zap.Logger
	controller *session.Controller
}

func NewResultsHandler(log *zap.Logger, controller *session.Controller) *ResultsHandler {
	return &ResultsHandler{log: log, controller: controller}
}

// exportRequest carries the destination chosen in the save dialog. An empty
// path means the dialog was dismissed.
type exportRequest struct {
	Path string `json:"path"`
}

// Export writes the archive for the current session.
func (h *ResultsHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	result, err := h.controller.Export(c.Request.Context(), services.FixedPicker(req.Path))
	if errors.Is(err, services.ErrUserCancelled) {
		c.JSON(http.StatusOK, gin.H{"exported": false})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": true, "path": result.Path, "entries": result.Entries})
}

// Chart renders the inter-key intervals of every ended phase as an HTML
// line chart.
func (h *ResultsHandler) Chart(c *gin.Context) {
	payload := h.controller.Session().Snapshot()

	phases := make([]models.Phase, 0, len(payload.Summaries))
	for _, s := range payload.Summaries {
		phases = append(phases, s.Phase)
	}

	line := generateIntervalChart(payload.Keystrokes, phases)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render interval chart", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

func generateIntervalChart(events []models.KeystrokeEvent, phases []models.Phase) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Inter-key Intervals",
			Subtitle: "Milliseconds between consecutive keydowns",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  "ms",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	longest := 0
	series := make(map[models.Phase][]opts.LineData, len(phases))
	for _, phase := range phases {
		intervals := metrics.PhaseIntervals(events, phase)
		items := make([]opts.LineData, 0, len(intervals))
		for _, v := range intervals {
			items = append(items, opts.LineData{Value: v})
		}
		series[phase] = items
		longest = max(longest, len(items))
	}

	axis := make([]string, longest)
	for i := range axis {
		axis[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(axis)
	for _, phase := range phases {
		line.AddSeries(phase.String(), series[phase])
	}
	line.SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
