package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch-service/internal/config"
	"pricewatch-service/internal/pricing/service"
	"pricewatch-service/internal/pricing/session"
)

func multipartCSV(t *testing.T, files map[string]string, mode string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if mode != "" {
		require.NoError(t, mw.WriteField("mode", mode))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadHandler(sess *session.Session) http.HandlerFunc {
	return Upload(config.Config{MaxUploadMB: 8}, zerolog.Nop(), sess)
}

const wideCSV = "ホテル名,2024-01-05,2024-01-06\nグランドホテル,12000,0\nシーサイド旅館,9800,10200\n"

func TestUploadWideCSV(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{"prices.csv": wideCSV}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	uploadHandler(sess)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Results []struct {
			File    string `json:"file"`
			Format  string `json:"format"`
			Records int    `json:"records"`
			Error   string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, "wide-pivot", resp.Results[0].Format)
	assert.Equal(t, 4, resp.Results[0].Records)

	facilities, dates, total := sess.Dataset()
	assert.Equal(t, []string{"グランドホテル", "シーサイド旅館"}, facilities)
	assert.Equal(t, []string{"2024-01-05", "2024-01-06"}, dates)
	assert.Equal(t, 4, total)
}

func TestUploadBatchMixesGoodAndBad(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{
		"good.csv": wideCSV,
		"bad.dat":  "not a table",
	}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	uploadHandler(sess)(rr, req)

	// one file loaded, so the batch as a whole succeeds
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Results []struct {
			File  string `json:"file"`
			Error string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	byFile := map[string]string{}
	for _, r := range resp.Results {
		byFile[r.File] = r.Error
	}
	assert.Empty(t, byFile["good.csv"])
	assert.NotEmpty(t, byFile["bad.dat"])
}

func TestUploadMissingFiles(t *testing.T) {
	body, ctype := multipartCSV(t, nil, "replace")
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	uploadHandler(session.New(nil, zerolog.Nop()))(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadUnionKeepsExistingFacilities(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())

	upload := func(name, content, mode string) {
		body, ctype := multipartCSV(t, map[string]string{name: content}, mode)
		req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
		req.Header.Set("Content-Type", ctype)
		rr := httptest.NewRecorder()
		uploadHandler(sess)(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	upload("first.csv", "ホテル名,2024-01-05\nグランドホテル,12000\n", "")
	upload("second.csv", "ホテル名,2024-01-05\nシーサイド旅館,9800\n", "union")

	facilities, _, total := sess.Dataset()
	assert.Equal(t, []string{"グランドホテル", "シーサイド旅館"}, facilities)
	assert.Equal(t, 2, total)
}

func TestRecordsAndStats(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{"prices.csv": wideCSV}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	uploadHandler(sess)(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	Records(sess)(rr, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var rec struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, 4, rec.Total)

	rr = httptest.NewRecorder()
	Stats(sess)(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st struct {
		Summary struct {
			Count int `json:"count"`
		} `json:"summary"`
		Holidays map[string]string `json:"holidays"`
	}
	// one sold-out cell, so three positive-price records feed the summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, 3, st.Summary.Count)
	assert.Empty(t, st.Holidays) // early January weekdays, no holidays
}

func TestStatsReportsHolidays(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{
		"prices.csv": "ホテル名,2024-01-01,2024-01-02\nグランドホテル,18000,12000\n",
	}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	uploadHandler(sess)(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	Stats(sess)(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st struct {
		Holidays map[string]string `json:"holidays"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, map[string]string{"2024-01-01": "元日"}, st.Holidays)
}

func TestChartName(t *testing.T) {
	rr := httptest.NewRecorder()
	ChartName()(rr, httptest.NewRequest(http.MethodGet, "/api/export/chart-name?type=forecast", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Regexp(t, `^hotel_prices_forecast_\d{4}-\d{2}-\d{2}\.png$`, resp.Filename)

	rr = httptest.NewRecorder()
	ChartName()(rr, httptest.NewRequest(http.MethodGet, "/api/export/chart-name?type=pie", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateFilterNarrowsRecords(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{"prices.csv": wideCSV}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	uploadHandler(sess)(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	UpdateFilter(sess)(rr, httptest.NewRequest(http.MethodPut, "/api/filter",
		strings.NewReader(`{"facilities":["グランドホテル"]}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Matched int `json:"matched"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Matched)
}

func TestCreateAlertValidation(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())

	rr := httptest.NewRecorder()
	CreateAlert(sess)(rr, httptest.NewRequest(http.MethodPost, "/api/alerts",
		strings.NewReader(`{"facilities":[],"condition":"below","threshold":10000}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	CreateAlert(sess)(rr, httptest.NewRequest(http.MethodPost, "/api/alerts",
		strings.NewReader(`{"facilities":["グランドホテル"],"condition":"below","threshold":10000}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, sess.Alerts(), 1)
	assert.True(t, sess.Alerts()[0].Active)
}

func TestForecastRejectsUnknownMethod(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	fc := Forecast(sess, service.NewForecaster(1))

	rr := httptest.NewRecorder()
	fc(rr, httptest.NewRequest(http.MethodGet, "/api/forecast?method=prophet", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	fc(rr, httptest.NewRequest(http.MethodGet, "/api/forecast?days=99", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Method string `json:"method"`
		Days   int    `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "linear", resp.Method)
	assert.Equal(t, 30, resp.Days)
}

func TestExportCSVHeaders(t *testing.T) {
	sess := session.New(nil, zerolog.Nop())
	body, ctype := multipartCSV(t, map[string]string{"prices.csv": wideCSV}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", ctype)
	uploadHandler(sess)(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	ExportCSV(zerolog.Nop(), sess)(rr, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "prices_")
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rr.Body.String(), "施設名")
}
