package picklist

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jimezsa/formcli/internal/models"
	"github.com/jimezsa/formcli/internal/network"
)

type portalRow struct {
	name string
	desc string
	year int
}

// fakePortal mimics the picklist endpoint: a landing page carrying the
// session token and paged result tables with the ShowByColumn counts cell.
type fakePortal struct {
	pageSize int
	rows     []portalRow

	mu      sync.Mutex
	offsets []int
	badPath bool
}

func (p *fakePortal) handler(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if values.Get("value") == "" {
		fmt.Fprint(w, `<html><head><script src="/js/init.js?sessionid=TESTTOKEN"></script></head><body></body></html>`)
		return
	}

	offset, _ := strconv.Atoi(values.Get("indexOfFirstRow"))
	p.mu.Lock()
	p.offsets = append(p.offsets, offset)
	if !strings.Contains(r.URL.Path, ";jsessionid=TESTTOKEN") {
		p.badPath = true
	}
	p.mu.Unlock()

	total := len(p.rows)
	end := offset + p.pageSize
	if end > total {
		end = total
	}
	first := 0
	if total > 0 {
		first = offset + 1
	}

	var b strings.Builder
	b.WriteString(`<html><body><table class="picklist-dataTable">`)
	fmt.Fprintf(&b, `<tr><th class="ShowByColumn">Results: %d - %d of %d files</th></tr>`, first, end, total)
	b.WriteString(`<tr><th>Product Number</th><th>Title</th><th>Revision Date</th></tr>`)
	for _, row := range p.rows[offset:end] {
		fmt.Fprintf(&b,
			`<tr><td><a href="/pub/irs-prior/%s--%d.pdf">%s</a></td><td>%s</td><td>%d</td></tr>`,
			strings.ReplaceAll(strings.ToLower(row.name), " ", ""), row.year, row.name, row.desc, row.year)
	}
	b.WriteString(`</table></body></html>`)
	fmt.Fprint(w, b.String())
}

func (p *fakePortal) fetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.offsets)
}

func newTestSession(t *testing.T, portal *fakePortal) (*Session, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(portal.handler))

	httpClient, err := network.NewClient(nil, network.Trace{})
	if err != nil {
		server.Close()
		t.Fatalf("new client: %v", err)
	}

	client := New(httpClient, WithBaseURL(server.URL), WithPageSize(portal.pageSize))
	session, err := client.Bootstrap(context.Background())
	if err != nil {
		server.Close()
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if session.Token() != "TESTTOKEN" {
		server.Close()
		t.Fatalf("token = %q, want TESTTOKEN", session.Token())
	}

	return session, server.Close
}

func manyRows(name string, count int) []portalRow {
	rows := make([]portalRow, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, portalRow{name: name, desc: name + " description", year: 1990 + i%40})
	}
	return rows
}

func TestSearch_SinglePageWhenTotalFits(t *testing.T) {
	portal := &fakePortal{pageSize: 10, rows: manyRows("Form 1040", 7)}
	session, closeServer := newTestSession(t, portal)
	defer closeServer()

	records, err := session.Search(context.Background(), models.SearchParams{Query: "form 1040"}, StrategyConcurrent)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("len(records) = %d, want 7", len(records))
	}
	if got := portal.fetchCount(); got != 1 {
		t.Fatalf("page fetches = %d, want 1", got)
	}
}

func TestSearch_FanOutFetchesEveryPage(t *testing.T) {
	// total=450 at pageSize=200 needs ceil(450/200)=3 fetches.
	portal := &fakePortal{pageSize: 200, rows: manyRows("Form 1040", 450)}
	session, closeServer := newTestSession(t, portal)
	defer closeServer()

	records, err := session.Search(context.Background(), models.SearchParams{Query: "Form 1040"}, StrategyConcurrent)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 450 {
		t.Fatalf("len(records) = %d, want 450", len(records))
	}
	if got := portal.fetchCount(); got != 3 {
		t.Fatalf("page fetches = %d, want 3", got)
	}
	if portal.badPath {
		t.Fatalf("paged request missing jsessionid path segment")
	}
}

func TestSearch_SerialMatchesConcurrent(t *testing.T) {
	rows := manyRows("Form 1040", 25)

	run := func(strategy Strategy) ([]models.FormRecord, int) {
		portal := &fakePortal{pageSize: 10, rows: rows}
		session, closeServer := newTestSession(t, portal)
		defer closeServer()

		records, err := session.Search(context.Background(), models.SearchParams{Query: "Form 1040"}, strategy)
		if err != nil {
			t.Fatalf("Search(%s) error = %v", strategy, err)
		}
		return records, portal.fetchCount()
	}

	serial, serialFetches := run(StrategySerial)
	concurrent, concurrentFetches := run(StrategyConcurrent)

	if len(serial) != 25 || len(concurrent) != 25 {
		t.Fatalf("record counts = %d serial, %d concurrent, want 25 each", len(serial), len(concurrent))
	}
	if serialFetches != 3 || concurrentFetches != 3 {
		t.Fatalf("fetches = %d serial, %d concurrent, want 3 each", serialFetches, concurrentFetches)
	}

	byYear := func(records []models.FormRecord) map[int]int {
		out := map[int]int{}
		for _, record := range records {
			out[record.Year]++
		}
		return out
	}
	serialYears, concurrentYears := byYear(serial), byYear(concurrent)
	for year, count := range serialYears {
		if concurrentYears[year] != count {
			t.Fatalf("year %d: serial %d records, concurrent %d", year, count, concurrentYears[year])
		}
	}
}

func TestSearch_ZeroResults(t *testing.T) {
	portal := &fakePortal{pageSize: 200}
	session, closeServer := newTestSession(t, portal)
	defer closeServer()

	records, err := session.Search(context.Background(), models.SearchParams{Query: "nosuchform"}, StrategyConcurrent)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("len(records) = %d, want 0", len(records))
	}
	if got := portal.fetchCount(); got != 1 {
		t.Fatalf("page fetches = %d, want 1", got)
	}
}

func TestSearch_YearFilterAppliesAcrossPages(t *testing.T) {
	rows := make([]portalRow, 0, 30)
	for year := 1991; year <= 2020; year++ {
		rows = append(rows, portalRow{name: "Form 1040", desc: "return", year: year})
	}
	portal := &fakePortal{pageSize: 10, rows: rows}
	session, closeServer := newTestSession(t, portal)
	defer closeServer()

	params := models.SearchParams{
		Query: "Form 1040",
		Years: &models.YearRange{Min: 2005, Max: 2014},
	}
	records, err := session.Search(context.Background(), params, StrategyConcurrent)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("len(records) = %d, want 10", len(records))
	}
	for _, record := range records {
		if record.Year < 2005 || record.Year > 2014 {
			t.Fatalf("year %d outside filter", record.Year)
		}
	}
}
