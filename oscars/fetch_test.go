package oscars

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(goodCSV))
	}))
	defer srv.Close()

	subjects, err := Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(subjects) != 3 {
		t.Errorf("subjects: got %d, want 3", len(subjects))
	}
}

func TestFetchNotFound(t *testing.T) {

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL); err == nil {
		t.Errorf("expected an error for a 404 response")
	}
}

func TestFetchCanceled(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Fetch(ctx, srv.URL); err == nil {
		t.Errorf("expected an error for a canceled context")
	}
}
