package network

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
)

// One client instance serves every page fan-out and multi-query run, so
// Do must tolerate concurrent callers (run with -race).
func TestClientConcurrentDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client, err := NewClient(nil, Trace{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := fhttp.NewRequest(fhttp.MethodGet, server.URL, nil)
			if err != nil {
				errs <- err
				return
			}
			resp, err := client.Do(req)
			if err != nil {
				errs <- err
				return
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("http %d", resp.StatusCode)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Do() error = %v", err)
	}
}

func TestClientSetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewClient(nil, Trace{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	req, err := fhttp.NewRequest(fhttp.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()

	if gotUA == "" {
		t.Fatalf("request went out without a User-Agent")
	}
}
