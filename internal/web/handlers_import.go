package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/liftlog/liftlog/internal/importer"
)

// maxImportBytes caps an uploaded export.
const maxImportBytes = 10 << 20

// handleImport takes an Alpha Progression CSV export as the request body.
// Query flags replace, warmups and dry_run map to importer.Options.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := importer.Options{}
	for name, dst := range map[string]*bool{"replace": &opts.Replace, "warmups": &opts.Warmups, "dry_run": &opts.DryRun} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name + ": " + v})
				return
			}
			*dst = b
		}
	}

	workouts, err := importer.ParseAlpha(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "export too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := importer.New(s.clientFor(r), s.cfg.Options, s.log).Import(r.Context(), workouts, opts)
	if err != nil {
		s.writeBackendError(w, "import", err)
		return
	}
	s.log.Info("import finished", "workouts", len(workouts), "imported", res.Imported, "replaced", res.Replaced, "skipped", res.Skipped)
	writeJSON(w, http.StatusOK, res)
}
