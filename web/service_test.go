package web

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/dashboard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticData struct {
	ds *dashboard.Dataset
}

func (sd *staticData) Current() *dashboard.Dataset {
	return sd.ds
}

func testService() *Service {
	ds := dashboard.GenerateSample(rand.New(rand.NewSource(7)), time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC))
	return New(&staticData{ds: ds}, NewConfig())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	service := testService()
	w := get(t, service.Handler(), "/")

	if expected, actual := http.StatusOK, w.Code; actual != expected {
		t.Fatalf("Expected status=%v but actual=%v body=%s", expected, actual, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		"ETO Manufacturing Dashboard",
		"On-Time Delivery",
		"First Pass Yield",
		"Active Projects",
		"Resource Utilization",
		`id="panel-inventory"`,
		`id="projects-by-status"`,
		`id="safety-incidents"`,
		"Sample data",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected index body to contain %q", want)
		}
	}
}

func TestAPI(t *testing.T) {
	service := testService()
	ds := service.Data.Current()

	testCases := []struct {
		path     string
		expected int
	}{
		{"/api/v1/projects", len(ds.Projects)},
		{"/api/v1/resources", len(ds.Resources)},
		{"/api/v1/inventory", len(ds.Inventory)},
		{"/api/v1/kpis", len(ds.KPIs)},
		{"/api/v1/charts", len(dashboard.Charts(ds))},
		{"/api/v1/charts?tab=kpis", 3},
	}
	for _, testCase := range testCases {
		w := get(t, service.Handler(), testCase.path)
		if expected, actual := http.StatusOK, w.Code; actual != expected {
			t.Errorf("[%v] Expected status=%v but actual=%v", testCase.path, expected, actual)
			continue
		}
		var items []map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Errorf("[%v] %s", testCase.path, err)
			continue
		}
		if expected, actual := testCase.expected, len(items); actual != expected {
			t.Errorf("[%v] Expected len=%v but actual=%v", testCase.path, expected, actual)
		}
	}
}

func TestKPIsIncludeMonth(t *testing.T) {
	service := testService()
	w := get(t, service.Handler(), "/api/v1/kpis")

	var rows []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if expected, actual := "2024-03", rows[len(rows)-1]["month"]; actual != expected {
		t.Errorf("Expected latest month=%v but actual=%v", expected, actual)
	}
	if _, ok := rows[0]["on_time_delivery"]; !ok {
		t.Errorf("Expected on_time_delivery field in %v", rows[0])
	}
}

func TestSummary(t *testing.T) {
	service := testService()
	w := get(t, service.Handler(), "/api/v1/summary")

	var s dashboard.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if expected, actual := dashboard.Summarize(service.Data.Current()), s; actual != expected {
		t.Errorf("Expected summary=%+v but actual=%+v", expected, actual)
	}
}

func TestNotLoaded(t *testing.T) {
	service := New(&staticData{}, NewConfig())

	for _, path := range []string{"/", "/healthz", "/api/v1/summary", "/api/v1/charts"} {
		if expected, actual := http.StatusServiceUnavailable, get(t, service.Handler(), path).Code; actual != expected {
			t.Errorf("[%v] Expected status=%v but actual=%v", path, expected, actual)
		}
	}
}

func TestHealthz(t *testing.T) {
	w := get(t, testService().Handler(), "/healthz")
	if expected, actual := http.StatusOK, w.Code; actual != expected {
		t.Fatalf("Expected status=%v but actual=%v", expected, actual)
	}
	if !strings.Contains(w.Body.String(), `"source":"sample"`) {
		t.Errorf("Expected sample source in body=%s", w.Body.String())
	}
}

func TestStartStop(t *testing.T) {
	cfg := NewConfig()
	cfg.Addr = "127.0.0.1:0"
	service := New(testService().Data, cfg)

	if err := service.Stop(); err != ErrNotRunning {
		t.Errorf("Expected err=%v but actual=%v", ErrNotRunning, err)
	}
	if err := service.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := service.Stop(); err != nil {
			t.Fatal(err)
		}
	}()

	resp, err := http.Get(fmt.Sprintf("http://%v/healthz", service.Addr()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if expected, actual := http.StatusOK, resp.StatusCode; actual != expected {
		t.Errorf("Expected status=%v but actual=%v body=%s", expected, actual, body)
	}
}
