package storage

import (
	"testing"
	"time"
)

func TestDefaultRouter_Route(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		bucket   string
		basePath string
		logName  string
		want     string
	}{
		{"s3", "s3", "my-bucket", "xes", "orders", "s3://my-bucket/xes/orders/dt=2026-03-14/"},
		{"no base path", "gs", "my-bucket", "", "orders", "gs://my-bucket/orders/dt=2026-03-14/"},
		{"slashes trimmed", "wasbs", "container", "/a/b/", "orders", "wasbs://container/a/b/orders/dt=2026-03-14/"},
		{"file", "", "", "", "orders", "orders/dt=2026-03-14/"},
		{"default log name", "", "", "", "", "eventlog/dt=2026-03-14/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(tt.protocol, tt.bucket, tt.basePath)
			if got := router.Route(tt.logName, testTime); got != tt.want {
				t.Errorf("Route() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultRouter_RouteUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2026, 3, 15, 5, 0, 0, 0, loc)

	got := NewRouter("s3", "b", "").Route("app", local)
	if got != "s3://b/app/dt=2026-03-14/" {
		t.Errorf("Route() = %v", got)
	}
}

func TestProtocol(t *testing.T) {
	tests := map[string]string{
		"s3":    "s3",
		"gcs":   "gs",
		"azure": "wasbs",
		"file":  "",
	}
	for backend, want := range tests {
		if got := Protocol(backend); got != want {
			t.Errorf("Protocol(%q) = %q, want %q", backend, got, want)
		}
	}
}
