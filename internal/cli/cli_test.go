package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/dragdo/internal/model"
)

// isolate keeps real config files and DRAGDO_* variables out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{
		"DRAGDO_BASE_URL", "DRAGDO_BOX", "DRAGDO_RECORD", "DRAGDO_TIMEOUT_SECONDS", "DRAGDO_OFFLINE",
		"DRAGDO_CACHE", "DRAGDO_CACHE_DIR", "DRAGDO_CACHE_FALLBACK", "DRAGDO_DEBOUNCE_MS",
		"DRAGDO_LOG_LEVEL", "DRAGDO_LOG_FORMAT", "DRAGDO_LOG_FILE", "DRAGDO_THEME",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("DRAGDO_THEME", "mono")
	chdirForTest(t, dir)
	return dir
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = Run(args, Options{Out: &out, Err: &errb})
	return code, out.String(), errb.String()
}

func listJSON(t *testing.T, args ...string) []model.Item {
	t.Helper()
	code, out, stderr := run(t, append(args, "ls", "--format", "json")...)
	require.Equal(t, 0, code, stderr)
	var items []model.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	return items
}

func contents(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}

// fakeBox serves POST /{box} and GET|PUT /{box}/{id} from memory.
type fakeBox struct {
	mu      sync.Mutex
	box     string
	records map[string]string
	next    int
	failGet bool
}

func (f *fakeBox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if parts[0] != f.box {
		http.Error(w, `{"message":"Invalid box"}`, http.StatusBadRequest)
		return
	}
	var doc struct {
		Items string `json:"items"`
	}
	switch {
	case r.Method == http.MethodPost && len(parts) == 1:
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.next++
		id := fmt.Sprintf("rec%d", f.next)
		f.records[id] = doc.Items
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": id, "items": doc.Items})
	case r.Method == http.MethodPut && len(parts) == 2:
		if _, ok := f.records[parts[1]]; !ok {
			http.Error(w, `{"message":"Invalid record Id"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.records[parts[1]] = doc.Items
		_, _ = io.WriteString(w, `{"message":"Record updated."}`)
	case r.Method == http.MethodGet && len(parts) == 2:
		if f.failGet {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		items, ok := f.records[parts[1]]
		if !ok {
			http.Error(w, `{"message":"Record not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": parts[1], "items": items})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (f *fakeBox) record(id string) []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := model.Decode(f.records[id])
	if err != nil {
		return nil
	}
	return items
}

func newFakeBox(t *testing.T) (*fakeBox, string) {
	t.Helper()
	f := &fakeBox{box: "box_test", records: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func TestOffline_AddMoveToggle(t *testing.T) {
	dir := isolate(t)
	base := []string{"--offline", "--cache-dir", filepath.Join(dir, "cache")}
	with := func(args ...string) []string { return append(append([]string{}, base...), args...) }

	code, out, stderr := run(t, with("add", "buy", "milk")...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "added item-")

	code, _, stderr = run(t, with("add", "eggs")...)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"buy milk", "eggs"}, contents(listJSON(t, base...)))

	code, _, stderr = run(t, with("mv", "2", "1")...)
	require.Equal(t, 0, code, stderr)
	items := listJSON(t, base...)
	assert.Equal(t, []string{"eggs", "buy milk"}, contents(items))

	code, out, stderr = run(t, with("toggle", "1")...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "checked "+items[0].ID)

	code, out, _ = run(t, with("toggle", items[0].ID)...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "unchecked")

	code, out, _ = run(t, with("ls")...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "Todos")
}

func TestOffline_SQLiteCache(t *testing.T) {
	dir := isolate(t)
	base := []string{"--offline", "--cache", "sqlite", "--cache-dir", filepath.Join(dir, "db")}

	code, _, stderr := run(t, append(base, "add", "one")...)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"one"}, contents(listJSON(t, base...)))
}

func TestListFormats(t *testing.T) {
	dir := isolate(t)
	base := []string{"--offline", "--cache-dir", dir}
	code, out, _ := run(t, append(base, "ls", "--format", "json")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "[]\n", out, "empty list is an array")

	run(t, append(base, "add", "eggs")...)
	code, out, _ = run(t, append(base, "ls", "-f", "yaml")...)
	require.Equal(t, 0, code)
	var items []model.Item
	require.NoError(t, yaml.Unmarshal([]byte(out), &items))
	assert.Equal(t, []string{"eggs"}, contents(items))

	code, out, _ = run(t, append(base, "ls", "--group")...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Done")
}

func TestUsageErrors(t *testing.T) {
	dir := isolate(t)
	base := []string{"--offline", "--cache-dir", dir}
	run(t, append(base, "add", "only")...)

	for _, args := range [][]string{
		{"toggle", "9"},
		{"toggle", "nope"},
		{"mv", "1", "x"},
		{"mv", "0", "1"},
		{"add"},
		{"add", "   "},
		{"ls", "--format", "xml"},
		{"bogus"},
		{"ls", "--no-such-flag"},
	} {
		code, _, stderr := run(t, append(base, args...)...)
		assert.Equal(t, 2, code, "%v: %s", args, stderr)
	}

	code, _, stderr := run(t, "--cache", "redis", "ls")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown backend")
}

func TestRemote_CreateSaveAndPull(t *testing.T) {
	dir := isolate(t)
	box, url := newFakeBox(t)
	remote := []string{"--base-url", url, "--box", "box_test"}

	// Seed the cache offline, then publish it as a new record.
	cacheA := []string{"--cache-dir", filepath.Join(dir, "a")}
	run(t, append(append([]string{"--offline"}, cacheA...), "add", "A")...)

	code, out, stderr := run(t, append(append(remote, cacheA...), "remote", "create")...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "created record rec1 with 1 items")
	assert.Equal(t, []string{"A"}, contents(box.record("rec1")))

	withRec := append(append([]string{}, remote...), "--record", "rec1")
	code, _, stderr = run(t, append(append(withRec, cacheA...), "add", "B")...)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"A", "B"}, contents(box.record("rec1")))

	// A second machine pulls the record into its own cache.
	cacheB := []string{"--cache-dir", filepath.Join(dir, "b")}
	code, out, stderr = run(t, append(append(withRec, cacheB...), "remote", "pull")...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "pulled 2 items")
	assert.Equal(t, []string{"A", "B"}, contents(listJSON(t, append([]string{"--offline"}, cacheB...)...)))
}

func TestRemote_LoadFailure(t *testing.T) {
	dir := isolate(t)
	box, url := newFakeBox(t)
	box.records["rec1"] = `[{"id":"item-0","content":"A","checked":false}]`
	args := []string{"--base-url", url, "--box", "box_test", "--record", "rec1", "--cache-dir", dir}

	assert.Equal(t, []string{"A"}, contents(listJSON(t, args...)))

	box.mu.Lock()
	box.failGet = true
	box.mu.Unlock()

	code, _, stderr := run(t, append(args, "ls")...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load")

	// With fallback the mirrored copy stands in.
	t.Setenv("DRAGDO_CACHE_FALLBACK", "true")
	assert.Equal(t, []string{"A"}, contents(listJSON(t, args...)))
}

func TestRemote_SaveFailureIsReported(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeBox(t)
	t.Setenv("DRAGDO_CACHE_FALLBACK", "true")
	args := []string{"--base-url", url, "--box", "box_test", "--record", "missing", "--cache-dir", dir}

	code, _, stderr := run(t, append(args, "add", "A")...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "remote save failed")

	// The cache still took the write.
	assert.Equal(t, []string{"A"}, contents(listJSON(t, "--offline", "--cache-dir", dir)))
}

func TestRemoteCreate_NeedsBox(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "remote", "create")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "box id is required")
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	code, out, stderr := run(t, "--box", "box_x", "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, `box_id = "box_x"`)
	assert.Contains(t, out, "no config file found")
}
