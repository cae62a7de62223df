package storage

import (
	"regexp"
	"testing"
	"time"
)

func TestFileNamer_Next(t *testing.T) {
	clock := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	n := newFileNamer("orders")
	n.now = func() time.Time { return clock }

	if got := n.next(".xes"); got != "orders_20260314_092653_001.xes" {
		t.Errorf("first name = %q", got)
	}
	if got := n.next(".xes"); got != "orders_20260314_092653_002.xes" {
		t.Errorf("second name in same second = %q", got)
	}

	clock = clock.Add(time.Second)
	if got := n.next(".xes.gz"); got != "orders_20260314_092654_001.xes.gz" {
		t.Errorf("name after clock moved = %q", got)
	}
}

func TestFileNamer_DefaultLogName(t *testing.T) {
	name := newFileNamer("").next(".json")
	if !regexp.MustCompile(`^eventlog_\d{8}_\d{6}_\d{3}\.json$`).MatchString(name) {
		t.Errorf("next() = %q", name)
	}
}

func TestFileNamer_Resolve(t *testing.T) {
	n := newFileNamer("app")
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	tests := []struct {
		name string
		path string
		want string
	}{
		{"exact name", "out/app.xes", "out/app.xes"},
		{"directory", "out/", "out/app_20260102_030405_001.xes"},
		{"empty", "", "app_20260102_030405_002.xes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.resolve(tt.path, ".xes"); got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		path   string
		scheme string
		want   string
	}{
		{"s3://bucket/logs/app/", "s3", "logs/app/"},
		{"s3://bucket", "s3", ""},
		{"/logs/app.xes", "s3", "logs/app.xes"},
		{"logs/app.xes", "gs", "logs/app.xes"},
		{"gs://bucket/a/b.xes", "gs", "a/b.xes"},
		{"wasbs://container/x/", "wasbs", "x/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := objectKey(tt.path, tt.scheme); got != tt.want {
				t.Errorf("objectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	recordSuccess(nil, "file", "xes", 10, time.Second)
	recordFailure(nil, "file", "xes", "encode")
}
