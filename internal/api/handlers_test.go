package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/calcount/calcount/internal/core"
	"github.com/calcount/calcount/internal/core/mocks"
	"github.com/calcount/calcount/internal/store"
	"github.com/calcount/calcount/internal/utils"
)

type testServer struct {
	handler  http.Handler
	analyzer *mocks.MockAnalyzer
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api_test.db"), store.Options{})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	analyzer := mocks.NewMockAnalyzer(gomock.NewController(t))
	h := NewAPIHandler(core.NewTrackerService(st), core.NewInBodyService(st, 10), analyzer, maxUpload)
	return &testServer{handler: NewRouter(h), analyzer: analyzer}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 1<<20)
	rec := s.do(t, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %q, want ok", got)
	}
}

func TestCreateAndListEntry(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := s.do(t, http.MethodPost, "/api/food-entries",
		`{"name":"ข้าวผัด","calories":550,"meal":"lunch","date":"2024-01-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decode[store.FoodEntry](t, rec)

	rec = s.do(t, http.MethodGet, "/api/food-entries?date=2024-01-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"nutrition"`) {
		t.Errorf("entry without nutrition serialized a nutrition field: %s", rec.Body.String())
	}
	entries := decode[[]store.FoodEntry](t, rec)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != created.ID || got.Name != "ข้าวผัด" || got.Calories != 550 || got.Meal != store.MealLunch {
		t.Errorf("entry = %+v", got)
	}

	rec = s.do(t, http.MethodGet, "/api/days/2024-01-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("day status = %d, body = %s", rec.Code, rec.Body.String())
	}
	day := decode[core.DaySummary](t, rec)
	if day.TotalCalories != 550 || len(day.Meals.Lunch) != 1 || day.Nutrition != nil {
		t.Errorf("day summary = %+v", day)
	}
}

func TestTodaySummary(t *testing.T) {
	s := newTestServer(t, 1<<20)
	today := utils.Today()

	rec := s.do(t, http.MethodPost, "/api/food-entries",
		fmt.Sprintf(`{"name":"โจ๊ก","calories":250,"meal":"breakfast","date":%q}`, today))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/days/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	day := decode[core.DaySummary](t, rec)
	if day.Date != today || len(day.Meals.Breakfast) != 1 || day.MealCalories.Breakfast != 250 {
		t.Errorf("today summary = %+v", day)
	}
}

func TestCreateEntryCaloriesAsString(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := s.do(t, http.MethodPost, "/api/food-entries",
		`{"name":"ส้มตำ","calories":"120","meal":"dinner","date":"2024-01-01","nutrition":{"protein":3,"carbs":20,"fat":1,"fiber":4,"sugar":8,"sodium":1100}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[store.FoodEntry](t, rec)
	if got.Calories != 120 || got.Nutrition == nil || got.Nutrition.Sodium != 1100 {
		t.Errorf("entry = %+v", got)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	s := newTestServer(t, 1<<20)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"missing calories", `{"name":"a","meal":"lunch","date":"2024-01-01"}`},
		{"missing name", `{"calories":100,"meal":"lunch","date":"2024-01-01"}`},
		{"missing date", `{"name":"a","calories":100,"meal":"lunch"}`},
		{"calories not numeric", `{"name":"a","calories":"many","meal":"lunch","date":"2024-01-01"}`},
		{"negative calories", `{"name":"a","calories":-5,"meal":"lunch","date":"2024-01-01"}`},
		{"bad meal", `{"name":"a","calories":5,"meal":"supper","date":"2024-01-01"}`},
		{"calories beyond int32", `{"name":"a","calories":3000000000,"meal":"lunch","date":"2024-01-01"}`},
		{"calories float beyond int32", `{"name":"a","calories":1e12,"meal":"lunch","date":"2024-01-01"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/food-entries", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if errorBody(t, rec) == "" {
				t.Error("error message is empty")
			}
		})
	}

	rec := s.do(t, http.MethodGet, "/api/food-entries", "")
	if rec.Code != http.StatusBadRequest || errorBody(t, rec) != "Date parameter is required" {
		t.Errorf("GET without date = %d", rec.Code)
	}
}

func TestUpdateEntryMovesMeal(t *testing.T) {
	s := newTestServer(t, 1<<20)

	created := decode[store.FoodEntry](t, s.do(t, http.MethodPost, "/api/food-entries",
		`{"name":"ข้าวผัด","calories":550,"meal":"lunch","date":"2024-01-01"}`))

	rec := s.do(t, http.MethodPut, "/api/food-entries", fmt.Sprintf(`{"id":%q,"meal":"dinner"}`, created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	day := decode[core.DaySummary](t, s.do(t, http.MethodGet, "/api/days/2024-01-01", ""))
	if len(day.Meals.Lunch) != 0 || len(day.Meals.Dinner) != 1 || day.TotalCalories != 550 {
		t.Errorf("after move: lunch=%d dinner=%d total=%d", len(day.Meals.Lunch), len(day.Meals.Dinner), day.TotalCalories)
	}

	rec = s.do(t, http.MethodPut, "/api/food-entries", fmt.Sprintf(`{"id":%q,"calories":"3000000000"}`, created.ID))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT oversized calories status = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodPut, "/api/food-entries", `{"id":"missing","name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT unknown id status = %d, want 404", rec.Code)
	}
	rec = s.do(t, http.MethodPut, "/api/food-entries", `{"name":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT without id status = %d, want 400", rec.Code)
	}
}

func TestUpdateEntryPartialNutrition(t *testing.T) {
	s := newTestServer(t, 1<<20)

	created := decode[store.FoodEntry](t, s.do(t, http.MethodPost, "/api/food-entries",
		`{"name":"ผัดไทย","calories":600,"meal":"dinner","date":"2024-01-01","nutrition":{"protein":10,"carbs":80,"fat":5,"fiber":2,"sugar":1,"sodium":300}}`))

	rec := s.do(t, http.MethodPut, "/api/food-entries", fmt.Sprintf(`{"id":%q,"nutrition":{"protein":12}}`, created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	entries := decode[[]store.FoodEntry](t, s.do(t, http.MethodGet, "/api/food-entries?date=2024-01-01", ""))
	if len(entries) != 1 || entries[0].Nutrition == nil {
		t.Fatalf("entries = %+v", entries)
	}
	want := store.Nutrition{Protein: 12, Carbs: 80, Fat: 5, Fiber: 2, Sugar: 1, Sodium: 300}
	if *entries[0].Nutrition != want {
		t.Errorf("nutrition = %+v, want %+v", *entries[0].Nutrition, want)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestServer(t, 1<<20)

	created := decode[store.FoodEntry](t, s.do(t, http.MethodPost, "/api/food-entries",
		`{"name":"ไข่ต้ม","calories":70,"meal":"breakfast","date":"2024-01-01"}`))

	rec := s.do(t, http.MethodDelete, "/api/food-entries?id="+created.ID, "")
	if rec.Code != http.StatusOK || !decode[map[string]bool](t, rec)["success"] {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/food-entries?id="+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/food-entries", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("DELETE without id status = %d, want 400", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, 1<<20)

	for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02", "2024-01-03"} {
		rec := s.do(t, http.MethodPost, "/api/food-entries",
			fmt.Sprintf(`{"name":"x","calories":500,"meal":"lunch","date":%q}`, d))
		if rec.Code != http.StatusCreated {
			t.Fatalf("POST status = %d", rec.Code)
		}
	}

	dates := decode[[]string](t, s.do(t, http.MethodGet, "/api/history?limit=2", ""))
	if len(dates) != 2 || dates[0] != "2024-01-03" || dates[1] != "2024-01-02" {
		t.Errorf("history = %v", dates)
	}

	summaries := decode[[]core.HistorySummary](t, s.do(t, http.MethodGet, "/api/history/summary", ""))
	if len(summaries) != 3 || summaries[0].Calories.Current != 1000 || summaries[0].Calories.Percent != 50 {
		t.Errorf("history summary = %+v", summaries)
	}

	rec := s.do(t, http.MethodGet, "/api/history?limit=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("limit=0 status = %d", rec.Code)
	}
	if none := decode[[]string](t, rec); len(none) != 0 {
		t.Errorf("history with limit=0 = %v, want []", none)
	}
	if all := decode[[]string](t, s.do(t, http.MethodGet, "/api/history", "")); len(all) != 3 {
		t.Errorf("history without limit = %v, want all 3 dates", all)
	}

	if rec := s.do(t, http.MethodGet, "/api/history?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t, 1<<20)

	got := decode[store.Setting](t, s.do(t, http.MethodGet, "/api/settings?key=goal", ""))
	if got != (store.Setting{Key: "goal", Value: "2000"}) {
		t.Errorf("default goal = %+v", got)
	}

	rec := s.do(t, http.MethodPost, "/api/settings", `{"key":"goal","value":"1800"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPost, "/api/settings", `{"key":"macro_goals","value":{"protein":120,"carbs":200,"fat":50}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST macro_goals status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got = decode[store.Setting](t, s.do(t, http.MethodGet, "/api/settings?key=macro_goals", ""))
	if got.Value != `{"protein":120,"carbs":200,"fat":50}` {
		t.Errorf("macro_goals = %q", got.Value)
	}

	all := decode[[]store.Setting](t, s.do(t, http.MethodGet, "/api/settings", ""))
	if len(all) != 2 {
		t.Errorf("all settings = %+v", all)
	}

	for _, body := range []string{`{"key":"goal"}`, `{"value":"1"}`, `{"key":"goal","value":"0"}`} {
		if rec := s.do(t, http.MethodPost, "/api/settings", body); rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s status = %d, want 400", body, rec.Code)
		}
	}
}

func TestInBodyRetention(t *testing.T) {
	s := newTestServer(t, 1<<20)

	if rec := s.do(t, http.MethodGet, "/api/inbody/latest", ""); rec.Code != http.StatusNotFound {
		t.Errorf("latest on empty store status = %d, want 404", rec.Code)
	}

	var ids []string
	for i := 0; i < 11; i++ {
		rec := s.do(t, http.MethodPost, "/api/inbody",
			fmt.Sprintf(`{"recommendedCalories":%d,"analysis":{"weight":70.5,"age":"35","recommendations":"ok"}}`, 2000+i))
		if rec.Code != http.StatusCreated {
			t.Fatalf("POST #%d status = %d, body = %s", i, rec.Code, rec.Body.String())
		}
		ids = append(ids, decode[store.InBodyAnalysis](t, rec).ID)
	}

	list := decode[[]store.InBodyAnalysis](t, s.do(t, http.MethodGet, "/api/inbody", ""))
	if len(list) != 10 {
		t.Fatalf("kept %d analyses, want 10", len(list))
	}
	for _, a := range list {
		if a.ID == ids[0] {
			t.Error("oldest analysis survived the retention trim")
		}
	}

	if rec := s.do(t, http.MethodPost, "/api/inbody", `{"analysis":{}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("POST without calories status = %d, want 400", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/inbody?id="+ids[10], ""); rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/inbody?id="+ids[10], ""); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", rec.Code)
	}
}

func TestEstimateHandler(t *testing.T) {
	s := newTestServer(t, 1<<20)

	s.analyzer.EXPECT().
		EstimateFood(gomock.Any(), "ข้าวผัด").
		Return(&core.FoodEstimate{Calories: 550, Nutrition: &store.Nutrition{Protein: 15}}, nil)

	rec := s.do(t, http.MethodPost, "/api/estimate", `{"foodName":"ข้าวผัด"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[core.FoodEstimate](t, rec)
	if got.Calories != 550 || got.Nutrition == nil || got.Nutrition.Protein != 15 {
		t.Errorf("estimate = %+v", got)
	}

	if rec := s.do(t, http.MethodPost, "/api/estimate", `{"foodName":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank food name status = %d, want 400", rec.Code)
	}
}

func TestEstimateHandlerAIError(t *testing.T) {
	s := newTestServer(t, 1<<20)

	s.analyzer.EXPECT().
		EstimateFood(gomock.Any(), gomock.Any()).
		Return(nil, core.ErrNoJSON)

	rec := s.do(t, http.MethodPost, "/api/estimate", `{"foodName":"ต้มยำ"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := errorBody(t, rec); got != "Invalid JSON response from AI" {
		t.Errorf("error = %q, want %q", got, "Invalid JSON response from AI")
	}
}

func TestAnalyzeInBodyHandlerEmptyReply(t *testing.T) {
	s := newTestServer(t, 1<<20)
	image := []byte("\x89PNG\r\n\x1a\nfake image bytes")

	s.analyzer.EXPECT().
		AnalyzeInBody(gomock.Any(), image, "image/png").
		Return(nil, core.ErrEmptyResponse)

	body, contentType := multipartImage(t, "image", "image/png", image)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-inbody", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError || errorBody(t, rec) != "No response from AI" {
		t.Errorf("status = %d, want 500 with the upstream message", rec.Code)
	}
}

func multipartImage(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="report.png"`, field))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeInBodyHandler(t *testing.T) {
	s := newTestServer(t, 1<<20)
	image := []byte("\x89PNG\r\n\x1a\nfake image bytes")

	s.analyzer.EXPECT().
		AnalyzeInBody(gomock.Any(), image, "image/png").
		Return(&core.InBodyResult{RecommendedCalories: 2100, Analysis: store.Analysis{Recommendations: "ok"}}, nil)

	body, contentType := multipartImage(t, "image", "image/png", image)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-inbody", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[core.InBodyResult](t, rec)
	if got.RecommendedCalories != 2100 {
		t.Errorf("result = %+v", got)
	}
}

func TestAnalyzeInBodyHandlerRejects(t *testing.T) {
	s := newTestServer(t, 1024)

	t.Run("missing image field", func(t *testing.T) {
		body, contentType := multipartImage(t, "file", "image/png", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze-inbody", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest || errorBody(t, rec) != "No image provided" {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		body, contentType := multipartImage(t, "image", "image/png", bytes.Repeat([]byte{0xAB}, 4096))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze-inbody", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/analyze-inbody", `{"image":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`550`, 550, false},
		{`"550"`, 550, false},
		{`" 42 "`, 42, false},
		{`549.9`, 549, false},
		{`"abc"`, 0, true},
		{`null`, 0, true},
		{`true`, 0, true},
		{`1e12`, 0, true},
	}
	for _, tt := range tests {
		var f flexInt
		err := json.Unmarshal([]byte(tt.in), &f)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && int(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, f, tt.want)
		}
	}
}
