package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pipeline-insights-go/internal/explain"
	"pipeline-insights-go/internal/ingest"
	"pipeline-insights-go/internal/report"
	"pipeline-insights-go/internal/risk"
	"pipeline-insights-go/internal/scheme"
	"pipeline-insights-go/internal/summary"
	"pipeline-insights-go/internal/types"
)

const maxUploadBytes = 64 << 20

type errResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.WithRequest(r).WithField("error", err.Error()).Warn("request failed")
	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

// uploadResponse is the JSON contract of a processed upload.
type uploadResponse struct {
	Summary        types.InspectionSummary `json:"summary"`
	Delta          types.Delta             `json:"delta"`
	Infrastructure map[string]int          `json:"infrastructure"`
	CoordPoints    int                     `json:"coord_points"`
}

// handleUpload ingests one inspection: "workbook" (xlsx, required), "survey"
// (MFL csv, optional metadata + coordinates) and "previous" (xlsx, optional)
// for the comparison delta. The processed inspection replaces the current one.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "upload")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}

	workbook, _, err := r.FormFile("workbook")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("missing workbook file"))
		return
	}
	defer workbook.Close()

	defects, err := ingest.LoadDefects(workbook, s.cfg.AnomalySheet)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, fmt.Errorf("load workbook: %w", err))
		return
	}

	meta := s.defaultMeta()
	var coords []types.CoordPoint
	if survey, _, err := r.FormFile("survey"); err == nil {
		defer survey.Close()
		surveyMeta, surveyCoords, err := ingest.ParseSurveyCSV(survey)
		if err != nil {
			reqLog.WithField("error", err.Error()).Warn("survey csv unreadable, using defaults")
		} else {
			meta = mergeMeta(meta, surveyMeta)
			coords = surveyCoords
		}
	}

	thresholds := s.thresholds()
	current := summary.Aggregate(defects, meta, thresholds)
	current.Defects = s.placeDefects(current.Defects)

	delta := types.Delta{}
	if prevFile, _, err := r.FormFile("previous"); err == nil {
		defer prevFile.Close()
		prev, err := s.loadPrevious(prevFile, meta, thresholds)
		if err != nil {
			s.fail(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		delta = summary.Compare(current, prev)
	} else {
		delta = summary.Compare(current, nil)
	}

	s.store(&inspection{Meta: meta, Summary: current, Delta: delta, Coords: coords})

	reqLog.WithField("defects", current.Overview.TotalDefects).
		WithField("high_risk", current.ByRisk[types.RiskHigh]).
		Info("inspection processed")

	render.JSON(w, r, uploadResponse{
		Summary:        current,
		Delta:          delta,
		Infrastructure: scheme.GroupByInfrastructure(current.Defects),
		CoordPoints:    len(coords),
	})
}

func (s *Server) loadPrevious(f multipart.File, meta types.InspectionMeta, t risk.Thresholds) (*types.InspectionSummary, error) {
	defects, err := ingest.LoadDefects(f, s.cfg.AnomalySheet)
	if err != nil {
		return nil, fmt.Errorf("load previous workbook: %w", err)
	}
	prev := summary.Aggregate(defects, meta, t)
	return &prev, nil
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}
	render.JSON(w, r, uploadResponse{
		Summary:        ins.Summary,
		Delta:          ins.Delta,
		Infrastructure: scheme.GroupByInfrastructure(ins.Summary.Defects),
		CoordPoints:    len(ins.Coords),
	})
}

func (s *Server) handleDefects(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}
	render.JSON(w, r, ins.Summary.Defects)
}

func (s *Server) handleScheme(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}

	var buf bytes.Buffer
	if err := s.renderer().Render(ins.Summary.Defects, &buf); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "report")

	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}

	rc := report.BuildContext(ins.Summary, ins.Meta, &ins.Delta)
	texts := report.GenerateTexts(r.Context(), s.gen, rc)

	var schemePNG bytes.Buffer
	if err := s.renderer().Render(ins.Summary.Defects, &schemePNG); err != nil {
		reqLog.WithField("error", err.Error()).Warn("scheme render failed, report goes without it")
		schemePNG.Reset()
	}

	var buf bytes.Buffer
	if err := report.RenderDocx(rc, texts, schemePNG.Bytes(), &buf); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	reqLog.WithField("bytes", buf.Len()).Info("report rendered")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="inspection_report.docx"`)
	w.Write(buf.Bytes())
}

// handleExplain drafts the LLM explanation for one defect, looked up by its
// identification (or DEF-<n> position when the sheet carries no ids).
// ?mode=location switches to the infrastructure-association prompt.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}

	id := chi.URLParam(r, "id")
	rec, ok := findDefect(ins.Summary.Defects, id)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("defect %q not found", id))
		return
	}

	var text string
	var err error
	if r.URL.Query().Get("mode") == "location" {
		text, err = explain.ExplainLocation(r.Context(), s.gen, rec)
	} else {
		text, err = explain.ExplainDefect(r.Context(), s.gen, rec)
	}
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, fmt.Errorf("explanation failed: %w", err))
		return
	}

	render.JSON(w, r, map[string]string{
		"identification": id,
		"explanation":    text,
	})
}

// clickTolerancePx is the search radius around a reported click position.
const clickTolerancePx = 15

// handleDefectAt resolves a click position on the rendered scheme to the
// defect sitting under it.
func (s *Server) handleDefectAt(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}

	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("x and y query parameters are required integers"))
		return
	}

	rec, ok := scheme.DefectAt(ins.Summary.Defects, x, y, clickTolerancePx)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no defect within %dpx of (%d, %d)", clickTolerancePx, x, y))
		return
	}
	render.JSON(w, r, rec)
}

func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}
	coords := ins.Coords
	if coords == nil {
		coords = []types.CoordPoint{}
	}
	render.JSON(w, r, coords)
}

type questionRequest struct {
	Question string `json:"question"`
}

// handleQuestion answers a free-text question about the current inspection,
// grounded on the report context and the infrastructure defect groups.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	ins := s.snapshot()
	if ins == nil {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no inspection uploaded"))
		return
	}

	var req questionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode question: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	rc := report.BuildContext(ins.Summary, ins.Meta, &ins.Delta)
	answer, err := report.AnswerQuestion(r.Context(), s.gen, rc, ins.Summary.Defects, req.Question)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, fmt.Errorf("answer question: %w", err))
		return
	}

	render.JSON(w, r, map[string]string{
		"question": req.Question,
		"answer":   answer,
	})
}

func findDefect(defects []types.DefectRecord, id string) (types.DefectRecord, bool) {
	for i, rec := range defects {
		if rec.Identification == id || fmt.Sprintf("DEF-%d", i+1) == id {
			return rec, true
		}
	}
	return types.DefectRecord{}, false
}

func (s *Server) defaultMeta() types.InspectionMeta {
	return types.InspectionMeta{
		PipelineName: s.cfg.PipelineName,
		SegmentKM:    s.cfg.SegmentKM,
		DiameterMM:   s.cfg.DiameterMM,
		Method:       s.cfg.Method,
	}
}

func (s *Server) thresholds() risk.Thresholds {
	return risk.Thresholds{
		ERFHighRisk:      s.cfg.Risk.ERFHighRisk,
		ERFMediumRisk:    s.cfg.Risk.ERFMediumRisk,
		WallCriticalMM:   s.cfg.Risk.WallCriticalMM,
		DepthCriticalPct: s.cfg.Risk.DepthCriticalPct,
		DepthHighPct:     s.cfg.Risk.DepthHighPct,
		RepairTriggers:   s.cfg.Risk.RepairTriggers(),
	}
}

// mergeMeta overlays survey metadata on the configured defaults, keeping a
// default wherever the survey line had nothing usable.
func mergeMeta(base, survey types.InspectionMeta) types.InspectionMeta {
	out := base
	if survey.PipelineName != "" && survey.PipelineName != "Unknown" {
		out.PipelineName = survey.PipelineName
	}
	if survey.SegmentKM != "" && survey.SegmentKM != "Unknown" {
		out.SegmentKM = survey.SegmentKM
	}
	if survey.DiameterMM > 0 {
		out.DiameterMM = survey.DiameterMM
	}
	if survey.Method != "" {
		out.Method = survey.Method
	}
	if survey.StartDate != nil {
		out.StartDate = survey.StartDate
	}
	if survey.EndDate != nil {
		out.EndDate = survey.EndDate
	}
	return out
}
