package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRunSourceDone(t *testing.T) {
	r := NewRun()

	r.SourceDone("leaguefeed", nil)
	r.SourceDone("dexerto-lol", errors.New("timeout"))
	r.SourceDone("dot-esports", nil)

	require.Equal(t, 2, r.SourcesSucceeded)
	require.Equal(t, 1, r.SourcesFailed)
	require.Equal(t, SourceFailed, r.Sources["dexerto-lol"])
	require.Equal(t, SourceSucceeded, r.Sources["leaguefeed"])
	require.Equal(t, 1, r.Fields()["sources_failed"])
}

func TestExporterObserve(t *testing.T) {
	e := NewExporter()
	r := NewRun()
	r.ItemsSeen = 10
	r.ItemsNew = 4
	r.Translated = 3
	r.TranslationFailed = 1
	r.ArticlesPersisted = 9
	r.SourceDone("leaguefeed", nil)
	r.SourceDone("dexerto-lol", errors.New("boom"))

	e.Observe(r, 3*time.Second, nil)
	e.Observe(r, 2*time.Second, errors.New("store down"))

	require.Equal(t, 20.0, testutil.ToFloat64(e.items.WithLabelValues("seen")))
	require.Equal(t, 8.0, testutil.ToFloat64(e.items.WithLabelValues("new")))
	require.Equal(t, 6.0, testutil.ToFloat64(e.translations.WithLabelValues("translated")))
	require.Equal(t, 2.0, testutil.ToFloat64(e.sources.WithLabelValues("dexerto-lol", "failed")))
	require.Equal(t, 18.0, testutil.ToFloat64(e.persisted))
	require.Equal(t, 1.0, testutil.ToFloat64(e.runs.WithLabelValues("succeeded")))
	require.Equal(t, 1.0, testutil.ToFloat64(e.runs.WithLabelValues("failed")))
}

func TestExporterPush(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e := NewExporter()
	e.Observe(NewRun(), time.Second, nil)

	require.NoError(t, e.Push(context.Background(), server.URL, "lomigg_news"))
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/lomigg_news", path)
}

func TestExporterPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewExporter().Push(context.Background(), server.URL, "lomigg_news")
	require.Error(t, err)
}
