package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/beamforge/pkg/buildinfo"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/pipeline"
	"github.com/matzehuels/beamforge/pkg/render"
)

// maxManifestBytes caps inline manifest uploads. Lattice descriptions are
// small text files; anything beyond this is a client mistake.
const maxManifestBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleSurveyPost surveys a manifest posted as the request body.
func (s *Server) handleSurveyPost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxManifestBytes))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading request body"))
		return
	}
	if len(body) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body must contain a TOML manifest"))
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Manifest = body
	s.respondSurvey(w, r, opts)
}

// handleSurveyGet surveys a manifest referenced by the manifest query
// parameter, which may be a local path or an http(s) URL.
func (s *Server) handleSurveyGet(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if opts.ManifestPath == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "manifest query parameter is required"))
		return
	}
	s.respondSurvey(w, r, opts)
}

func (s *Server) respondSurvey(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	opts.Formats = []string{string(render.FormatJSON)}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Survey-Hash", result.SurveyHash)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.SurveyHit))
	w.Write(result.Artifacts[string(render.FormatJSON)])
}

// handleSchematic renders the surveyed line as SVG.
func (s *Server) handleSchematic(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if opts.ManifestPath == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "manifest query parameter is required"))
		return
	}

	opts.Formats = []string{string(render.FormatSVG)}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Survey-Hash", result.SurveyHash)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.RenderHit))
	w.Write(result.Artifacts[string(render.FormatSVG)])
}

// optionsFromQuery builds pipeline options from the shared query parameters.
// Parameter names match the JSON tags on [pipeline.Options].
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		ManifestPath: q.Get("manifest"),
		Sequence:     q.Get("sequence"),
	}

	var err error
	if opts.OriginX, err = floatParam(q, "origin_x"); err != nil {
		return opts, err
	}
	if opts.OriginY, err = floatParam(q, "origin_y"); err != nil {
		return opts, err
	}
	if opts.OriginHeading, err = floatParam(q, "origin_heading_deg"); err != nil {
		return opts, err
	}

	switch q.Get("refresh") {
	case "", "0", "false":
	case "1", "true":
		opts.Refresh = true
	default:
		return opts, errors.New(errors.ErrCodeInvalidInput, "invalid refresh value %q", q.Get("refresh"))
	}
	return opts, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s value %q", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": err.Error(),
	})
}

// statusForError maps error codes onto HTTP status codes. Unknown codes
// are treated as internal failures.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLabel, errors.ErrCodeInvalidAlignment,
		errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInconsistent, errors.ErrCodeMissingKinematics, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeElementNotFound, errors.ErrCodeSequenceNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeRunNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
