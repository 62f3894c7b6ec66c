package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"github.com/juliusiqbal/ai-img-gen/internal/http/handlers"
)

func TestRouterServesHealthAndSizes(t *testing.T) {
	app := &handlers.App{Logger: zerolog.Nop()}
	h := NewRouter(app, Options{RateLimitPerMin: 60})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/v1/healthz", wantCode: http.StatusOK, wantBody: `"status":"ok"`},
		{path: "/api/sizes", wantCode: http.StatusOK, wantBody: `"name":"A4"`},
		{path: "/api/jobs/abc", wantCode: http.StatusBadRequest, wantBody: "invalid job id"},
		{path: "/api/unknown", wantCode: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			if tc.wantBody != "" && !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Fatalf("body = %s, want it to contain %s", rr.Body.String(), tc.wantBody)
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Fatalf("missing X-Request-ID header")
			}
		})
	}
}

func TestRouterServesStoredFiles(t *testing.T) {
	files := fstest.MapFS{"templates/1/a.svg": {Data: []byte("<svg/>")}}
	h := NewRouter(&handlers.App{Logger: zerolog.Nop()}, Options{FilesPrefix: "/storage", Files: http.FS(files)})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/storage/templates/1/a.svg", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "<svg/>" {
		t.Fatalf("status = %d body = %q", rr.Code, rr.Body.String())
	}
}
