package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pricewatch-service/internal/config"
	"pricewatch-service/internal/fileio"
	"pricewatch-service/internal/pricing/model"
	"pricewatch-service/internal/pricing/service"
	"pricewatch-service/internal/pricing/session"
)

// uploadResult reports one file's build outcome. A failed file carries an
// error and aborts for that file only; the batch keeps going.
type uploadResult struct {
	File       string `json:"file"`
	Format     string `json:"format,omitempty"`
	Records    int    `json:"records,omitempty"`
	Facilities int    `json:"facilities,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Upload handles multipart spreadsheet/CSV uploads. Each file is decoded,
// detected and built independently; each successful build is applied to the
// session atomically. The requested mode applies to the first file of the
// batch, later files union in so one batch always loads as a whole.
func Upload(cfg config.Config, logger zerolog.Logger, sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			writeError(w, http.StatusBadRequest, "missing files")
			return
		}
		mode := session.ModeReplace
		if r.FormValue("mode") == string(session.ModeUnion) {
			mode = session.ModeUnion
		}

		results := make([]uploadResult, 0, len(files))
		loaded := 0
		for _, fh := range files {
			res := uploadResult{File: fh.Filename}
			f, err := fh.Open()
			if err != nil {
				res.Error = "open: " + err.Error()
				results = append(results, res)
				continue
			}
			rows, err := fileio.ReadTable(f, fh.Filename)
			_ = f.Close()
			if err != nil {
				// whole-file decode failure is the one user-visible error
				res.Error = fmt.Sprintf("cannot read %s: %v", fh.Filename, err)
				results = append(results, res)
				continue
			}
			format := service.Detect(rows)
			ds, err := service.Build(rows, format)
			if err != nil {
				res.Error = fmt.Sprintf("cannot parse %s: %v", fh.Filename, err)
				results = append(results, res)
				continue
			}
			ds.SourceFile = fh.Filename

			effective := mode
			if loaded > 0 {
				effective = session.ModeUnion
			}
			sess.LoadDataset(ds, effective)
			loaded++

			res.Format = format.String()
			res.Records = len(ds.Records)
			res.Facilities = len(ds.Facilities)
			res.Skipped = ds.Skipped
			results = append(results, res)

			logger.Info().
				Str("file", fh.Filename).
				Str("format", format.String()).
				Int("records", len(ds.Records)).
				Int("skipped", ds.Skipped).
				Msg("table loaded")
		}

		status := http.StatusOK
		if loaded == 0 {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{"results": results})
	}
}

// Records returns the filtered snapshot plus the derived sets.
func Records(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facilities, dates, total := sess.Dataset()
		writeJSON(w, http.StatusOK, map[string]any{
			"records":    sess.FilteredRecords(),
			"facilities": facilities,
			"dates":      dates,
			"total":      total,
			"filter":     sess.Filter(),
		})
	}
}

// Stats serves the aggregate statistics over the filtered snapshot.
func Stats(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := sess.FilteredRecords()
		writeJSON(w, http.StatusOK, map[string]any{
			"summary":         service.Summarize(records),
			"weekdayAverages": service.WeekdayAverages(records),
			"monthlyAverages": service.MonthlyAverages(records),
			"tiers":           service.TierCounts(records),
			"holidays":        service.HolidayDates(records),
		})
	}
}

// Pivot serves the facility×date lookup with multi-plan bundles.
func Pivot(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.Pivot(sess.FilteredRecords(), sess.Details()))
	}
}

// UpdateFilter replaces the filter state from a JSON body.
func UpdateFilter(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fs model.FilterState
		if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
			writeError(w, http.StatusBadRequest, "bad filter: "+err.Error())
			return
		}
		sess.SetFilter(fs)
		writeJSON(w, http.StatusOK, map[string]any{
			"filter":  fs,
			"matched": len(sess.FilteredRecords()),
		})
	}
}

// ListAlerts returns the stored alert list.
func ListAlerts(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"alerts": sess.Alerts()})
	}
}

// CreateAlert validates and stores a new alert; misconfiguration is a 422
// and nothing is stored.
func CreateAlert(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a model.Alert
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeError(w, http.StatusBadRequest, "bad alert: "+err.Error())
			return
		}
		created, err := sess.AddAlert(a)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// DeleteAlert removes an alert by ID.
func DeleteAlert(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !sess.DeleteAlert(id) {
			writeError(w, http.StatusNotFound, "unknown alert: "+id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

// ToggleAlert flips an alert's active flag.
func ToggleAlert(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		a, ok := sess.ToggleAlert(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown alert: "+id)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// TriggeredAlerts evaluates all active alerts against the filtered snapshot.
func TriggeredAlerts(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		triggered := sess.EvaluateAlerts()
		if triggered == nil {
			triggered = []model.Triggered{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"triggered": triggered})
	}
}

// Forecast projects prices per facility over the requested horizon.
func Forecast(sess *session.Session, forecaster *service.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Query().Get("method")
		switch method {
		case service.MethodLinear, service.MethodSeasonal, service.MethodARIMA:
		case "":
			method = service.MethodLinear
		default:
			writeError(w, http.StatusBadRequest, "unknown method: "+method)
			return
		}
		days := atoi(r.URL.Query().Get("days"), 7)
		if days < 1 {
			days = 1
		}
		if days > 30 {
			days = 30
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"method":    method,
			"days":      days,
			"forecasts": forecaster.ForecastAll(sess.FilteredRecords(), days, method),
		})
	}
}

// ExportCSV streams the filtered pivot as a BOM-prefixed CSV download.
func ExportCSV(logger zerolog.Logger, sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		annotate := toBool(r.URL.Query().Get("weekday"), false)
		name := fmt.Sprintf("prices_%s.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		if err := service.WritePivotCSV(w, sess.FilteredRecords(), sess.Details(), annotate); err != nil {
			logger.Error().Err(err).Msg("csv export")
		}
	}
}

// chart types the dashboard renders client-side.
var chartTypes = map[string]bool{"price": true, "availability": true, "forecast": true}

// ChartName hands the client the canonical filename for a chart image it is
// about to save, so downloads from every browser share one naming scheme.
func ChartName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chartType := r.URL.Query().Get("type")
		if chartType == "" {
			chartType = "price"
		}
		if !chartTypes[chartType] {
			writeError(w, http.StatusBadRequest, "unknown chart type: "+chartType)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"filename": service.ChartFilename("hotel_prices", chartType, time.Now()),
		})
	}
}

// ListFavorites / AddFavorite / RemoveFavorite manage the persisted
// favorite-facility set.
func ListFavorites(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"favorites": sess.Favorites()})
	}
}

func AddFavorite(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Facility string `json:"facility"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Facility == "" {
			writeError(w, http.StatusBadRequest, "missing facility")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"favorites": sess.AddFavorite(body.Facility)})
	}
}

func RemoveFavorite(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facility := chi.URLParam(r, "facility")
		writeJSON(w, http.StatusOK, map[string]any{"favorites": sess.RemoveFavorite(facility)})
	}
}

// Preferences round-trips the dark-mode flag.
func GetPreferences(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"darkMode": sess.DarkMode()})
	}
}

func PutPreferences(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DarkMode bool `json:"darkMode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad preferences: "+err.Error())
			return
		}
		sess.SetDarkMode(body.DarkMode)
		writeJSON(w, http.StatusOK, map[string]any{"darkMode": body.DarkMode})
	}
}
