package storage

import (
	"strings"
	"time"

	"github.com/jittakal/xesgen/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Router = (*DefaultRouter)(nil)

// DefaultRouter implements Hive-style date partitioning for storage paths.
type DefaultRouter struct {
	protocol string
	bucket   string
	basePath string
}

// NewRouter creates a new storage router.
func NewRouter(protocol, bucket, basePath string) *DefaultRouter {
	return &DefaultRouter{
		protocol: protocol,
		bucket:   bucket,
		basePath: basePath,
	}
}

// Route returns the directory for a log built at t.
// Format: protocol://bucket/basePath/logName/dt=YYYY-MM-DD/
// Empty segments are skipped. Without a protocol the path is relative.
func (r *DefaultRouter) Route(logName string, t time.Time) string {
	if logName == "" {
		logName = DefaultLogName
	}

	segments := make([]string, 0, 4)
	for _, s := range []string{r.bucket, r.basePath, logName} {
		if s = strings.Trim(s, "/"); s != "" {
			segments = append(segments, s)
		}
	}
	segments = append(segments, "dt="+t.UTC().Format("2006-01-02"))

	path := strings.Join(segments, "/") + "/"
	if r.protocol == "" {
		return path
	}
	return r.protocol + "://" + path
}

// Protocol returns the URI scheme used for paths of a storage backend.
func Protocol(backend string) string {
	switch backend {
	case "s3":
		return "s3"
	case "gcs":
		return "gs"
	case "azure":
		return "wasbs"
	default:
		return ""
	}
}
