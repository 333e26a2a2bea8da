package metrics_test

import (
	"testing"

	"github.com/log4j_xml_reader_service/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
)

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/var/log/app/app.xml", "app.xml"},
		{"/var/log/app/app.xml.1", "app.xml"},
		{"/var/log/app/app.xml.3.gz", "app.xml"},
		{"/var/log/app/app.xml.2024-05-01", "app.xml"},
		{"/srv/a/app.xml", "app.xml"},
		{"relative.log", "relative.log"},
		{".hidden", ".hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.SourceLabel(tt.path), tt.path)
	}
}
