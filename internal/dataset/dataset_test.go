package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/humtemp/internal/model"
)

func TestParse(t *testing.T) {
	input := "tanggal,kelembaban,suhu\n2024-01-01,85,27.4\n\n2024-01-02, 90 ,26.1,extra\n"
	samples, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	want := model.Sample{Label: "2024-01-02", Humidity: 90, Temperature: 26.1}
	if samples[1] != want {
		t.Fatalf("unexpected sample: %+v", samples[1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"header only":  "date,humidity,temperature\n",
		"bad number":   "date,humidity,temperature\n2024-01-01,abc,27\n",
		"nan":          "date,humidity,temperature\n2024-01-01,NaN,27\n",
		"infinite":     "date,humidity,temperature\n2024-01-01,80,+Inf\n",
		"short record": "date,humidity,temperature\n2024-01-01,80\n",
	}
	for name, input := range cases {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseReportsLine(t *testing.T) {
	input := "date,humidity,temperature\n2024-01-01,80,27\n2024-01-02,x,27\n"
	_, err := Parse(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line 3 in error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("date,humidity,temperature\n2024-01-01,80,28\n2024-01-02,90,26\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	samples, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hum, temp := Columns(samples)
	if len(hum) != 2 || hum[1] != 90 || temp[0] != 28 {
		t.Fatalf("unexpected columns: %v %v", hum, temp)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSummarize(t *testing.T) {
	samples := []model.Sample{
		{Humidity: 80, Temperature: 28},
		{Humidity: 90, Temperature: 26},
		{Humidity: 85, Temperature: 27},
	}
	s := Summarize(samples)
	if s.Count != 3 || s.HumidityMin != 80 || s.HumidityMax != 90 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.HumidityMean != 85 || s.TemperatureMean != 27 {
		t.Fatalf("unexpected means: %+v", s)
	}
	if (Summarize(nil) != Summary{}) {
		t.Fatalf("expected zero summary for empty input")
	}
}

func TestFingerprint(t *testing.T) {
	a := []model.Sample{{Label: "a", Humidity: 80, Temperature: 28}, {Label: "b", Humidity: 90, Temperature: 26}}
	b := []model.Sample{{Label: "x", Humidity: 80, Temperature: 28}, {Label: "y", Humidity: 90, Temperature: 26}}
	c := []model.Sample{{Humidity: 90, Temperature: 26}, {Humidity: 80, Temperature: 28}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("labels should not affect fingerprint")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("order should affect fingerprint")
	}
}
