package fetch_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// recordingServer serves files below /presentation/<id>/ with Range support.
// Entries in truncate cut the matching response short that many times.
type recordingServer struct {
	t           *testing.T
	id          string
	files       map[string][]byte
	truncate    map[string]int
	ignoreRange bool
	chunked     bool

	mu     sync.Mutex
	agents []string
	ranges map[string][]string
}

func newRecordingServer(t *testing.T, id string, files map[string]string) (*recordingServer, *httptest.Server) {
	t.Helper()
	rs := &recordingServer{
		t:        t,
		id:       id,
		files:    make(map[string][]byte, len(files)),
		truncate: make(map[string]int),
		ranges:   make(map[string][]string),
	}
	for name, content := range files {
		rs.files[name] = []byte(content)
	}
	srv := httptest.NewServer(rs)
	t.Cleanup(srv.Close)
	return rs, srv
}

func (rs *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/presentation/" + rs.id + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rel := strings.TrimPrefix(r.URL.Path, prefix)

	rs.mu.Lock()
	rs.agents = append(rs.agents, r.UserAgent())
	rs.ranges[rel] = append(rs.ranges[rel], r.Header.Get("Range"))
	cut := rs.truncate[rel] > 0
	if cut {
		rs.truncate[rel]--
	}
	rs.mu.Unlock()

	data, ok := rs.files[rel]
	if !ok {
		http.NotFound(w, r)
		return
	}

	status := http.StatusOK
	offset := 0
	if rng := r.Header.Get("Range"); rng != "" && !rs.ignoreRange {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"))
		if err != nil || n > len(data) {
			http.Error(w, "bad range", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		offset = n
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", "bytes "+strconv.Itoa(n)+"-"+strconv.Itoa(len(data)-1)+"/"+strconv.Itoa(len(data)))
	}
	body := data[offset:]

	if rs.chunked {
		w.WriteHeader(status)
		w.(http.Flusher).Flush()
		_, _ = w.Write(body)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if cut && len(body) > 1 {
		_, _ = w.Write(body[:len(body)/2])
		return
	}
	_, _ = w.Write(body)
}

func (rs *recordingServer) rangesFor(rel string) []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.ranges[rel]...)
}

func (rs *recordingServer) userAgents() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.agents...)
}
