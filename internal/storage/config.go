package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/lovestory/lovestory/backend/go-services/internal/config"
)

// ObjectKey names an uploaded image: <projectID>/<field>-<unix nanos><ext>.
// Keys are unique per upload so a replaced image never serves a stale copy
// from a CDN.
func ObjectKey(projectID, field, ext string, at time.Time) string {
	field = strings.NewReplacer("/", "-", " ", "-").Replace(field)
	return path.Join(projectID, fmt.Sprintf("%s-%d%s", field, at.UnixNano(), ext))
}

// publicBase returns the URL prefix objects in cfg's bucket are served from.
func publicBase(cfg *config.MinIOConfig) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL + "/" + cfg.Bucket
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}
