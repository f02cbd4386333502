package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dockdeck/dockdeck/internal/config"
	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/notify"
)

var errEngineDown = errors.New("Cannot connect to the Docker daemon at unix:///var/run/docker.sock")

// fakeClient implements docker.Client in memory and records mutating calls.
type fakeClient struct {
	containers []docker.Container
	detail     docker.ContainerDetail
	images     []docker.Image
	volumes    []docker.Volume
	networks   []docker.Network
	logs       docker.Logs
	execResult docker.ExecResult
	entries    []docker.PathEntry
	file       docker.FileContent

	listErr    error
	inspectErr error
	actionErr  error

	calls    []string
	written  map[string][]byte
	recreate docker.ConfigPatch
}

func newFakeClient() *fakeClient {
	return &fakeClient{written: map[string][]byte{}}
}

func (f *fakeClient) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Info(ctx context.Context) (docker.EngineInfo, error) {
	return docker.EngineInfo{Name: "testhost", ServerVersion: "28.0.2"}, f.listErr
}

func (f *fakeClient) ListContainers(ctx context.Context, all bool) ([]docker.Container, error) {
	return f.containers, f.listErr
}
func (f *fakeClient) InspectContainer(ctx context.Context, id string) (docker.ContainerDetail, error) {
	return f.detail, f.inspectErr
}
func (f *fakeClient) StartContainer(ctx context.Context, id string) error {
	f.record("start " + id)
	return f.actionErr
}
func (f *fakeClient) StopContainer(ctx context.Context, id string) error {
	f.record("stop " + id)
	return f.actionErr
}
func (f *fakeClient) RestartContainer(ctx context.Context, id string) error {
	f.record("restart " + id)
	return f.actionErr
}
func (f *fakeClient) RemoveContainer(ctx context.Context, id string, force bool) error {
	f.record("remove " + id)
	return f.actionErr
}
func (f *fakeClient) RenameContainer(ctx context.Context, id, newName string) error {
	f.record("rename " + id + " " + newName)
	return f.actionErr
}
func (f *fakeClient) RecreateContainer(ctx context.Context, id string, patch docker.ConfigPatch) (string, error) {
	f.record("recreate " + id)
	f.recreate = patch
	return "new-id", f.actionErr
}

func (f *fakeClient) ListImages(ctx context.Context) ([]docker.Image, error) {
	return f.images, f.listErr
}
func (f *fakeClient) PullImage(ctx context.Context, ref string) (string, string, error) {
	f.record("pull " + ref)
	return "sha256:new", "", f.actionErr
}
func (f *fakeClient) RemoveImage(ctx context.Context, id string, force bool) error {
	f.record("rmi " + id)
	return f.actionErr
}

func (f *fakeClient) ListVolumes(ctx context.Context) ([]docker.Volume, error) {
	return f.volumes, f.listErr
}
func (f *fakeClient) CreateVolume(ctx context.Context, name, driver string, labels map[string]string) (docker.Volume, error) {
	f.record("volcreate " + name)
	return docker.Volume{Name: name}, f.actionErr
}
func (f *fakeClient) RemoveVolume(ctx context.Context, name string, force bool) error {
	f.record("volremove " + name)
	return f.actionErr
}
func (f *fakeClient) PruneVolumes(ctx context.Context) (int, error) { return 2, f.actionErr }

func (f *fakeClient) ListNetworks(ctx context.Context) ([]docker.Network, error) {
	return f.networks, f.listErr
}
func (f *fakeClient) CreateNetwork(ctx context.Context, name, driver, subnet, gateway string) (string, error) {
	f.record("netcreate " + name)
	return "net-id", f.actionErr
}
func (f *fakeClient) RemoveNetwork(ctx context.Context, id string) error {
	f.record("netremove " + id)
	return f.actionErr
}
func (f *fakeClient) ConnectContainer(ctx context.Context, networkID, containerID string) error {
	f.record("connect " + networkID + " " + containerID)
	return f.actionErr
}
func (f *fakeClient) DisconnectContainer(ctx context.Context, networkID, containerID string, force bool) error {
	f.record("disconnect " + networkID + " " + containerID)
	return f.actionErr
}
func (f *fakeClient) PruneNetworks(ctx context.Context) (int, error) { return 1, f.actionErr }

func (f *fakeClient) ContainerLogs(ctx context.Context, id string, tail int, since time.Duration) (docker.Logs, error) {
	return f.logs, f.listErr
}
func (f *fakeClient) Exec(ctx context.Context, id, workdir string, cmd []string) (docker.ExecResult, error) {
	f.record("exec " + workdir + " " + strings.Join(cmd, " "))
	return f.execResult, f.actionErr
}
func (f *fakeClient) PathExists(ctx context.Context, id, path string) (bool, error) {
	return true, nil
}
func (f *fakeClient) ListPath(ctx context.Context, id, path string) ([]docker.PathEntry, error) {
	return f.entries, f.listErr
}
func (f *fakeClient) ReadFile(ctx context.Context, id, path string) (docker.FileContent, error) {
	return f.file, f.listErr
}
func (f *fakeClient) WriteFile(ctx context.Context, id, dir, name string, data []byte) error {
	f.written[dir+"/"+name] = data
	return f.actionErr
}

func newTestServer(fc *fakeClient) *Server {
	cfg := config.DefaultConfig()
	return New(cfg, fc, notify.NewMultiNotifier())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func running(id, name string) docker.Container {
	return docker.Container{ID: id, Name: name, Image: "nginx:latest", State: "running", Status: "Up 1 hour"}
}

func TestContainersPageListsContainers(t *testing.T) {
	fc := newFakeClient()
	fc.containers = []docker.Container{running("aaa111222333", "web"), {ID: "bbb444555666", Name: "db", State: "exited"}}
	s := newTestServer(fc)

	rec := get(t, s, "/containers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"web", "db", "nginx:latest", "/containers/aaa111222333/stop", "/containers/bbb444555666/start"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestContainersPageShowsBannerAndCacheWhenEngineDown(t *testing.T) {
	fc := newFakeClient()
	fc.containers = []docker.Container{running("aaa111222333", "web")}
	s := newTestServer(fc)

	// first render succeeds and fills the snapshot
	if rec := get(t, s, "/containers"); rec.Code != http.StatusOK {
		t.Fatalf("warmup status = %d", rec.Code)
	}

	fc.listErr = errEngineDown
	rec := get(t, s, "/containers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "cannot reach the Docker daemon") {
		t.Error("expected unreachable banner")
	}
	if !strings.Contains(body, "web") {
		t.Error("expected last-good container list to still render")
	}
	if !strings.Contains(body, "Showing the last data fetched") {
		t.Error("expected stale-data notice")
	}
	// the nav badge must flip on the same render that failed, not the next
	if !strings.Contains(body, "engine unreachable") {
		t.Error("expected the nav badge to show unreachable on the first failing render")
	}
}

func TestStopActionCallsClientOnceAndRedirects(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc123/stop", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	want := []string{"stop abc123"}
	if diff := cmp.Diff(want, fc.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/containers?msg=") {
		t.Errorf("redirect = %q", loc)
	}
}

func TestFailedActionRedirectsWithErrorBanner(t *testing.T) {
	fc := newFakeClient()
	fc.actionErr = errors.New("something broke")
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc123/start", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	if loc.Query().Get("err") == "" {
		t.Errorf("expected err param in %q", rec.Header().Get("Location"))
	}
	// exactly one engine call, no retry
	if len(fc.calls) != 1 {
		t.Errorf("calls = %v, want exactly one", fc.calls)
	}
}

func TestRenameRejectsEmptyName(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc123/rename", url.Values{"name": {"   "}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(fc.calls) != 0 {
		t.Errorf("empty name must not reach the engine: %v", fc.calls)
	}
}

func TestConfigUpdateSendsPatch(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc123/config", url.Values{
		"image":          {"nginx:1.26"},
		"restart_policy": {"always"},
		"env":            {"A=1\n\nB=2\n"},
		"ports":          {"8080:80/tcp"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	want := docker.ConfigPatch{
		Image:         "nginx:1.26",
		RestartPolicy: "always",
		Env:           []string{"A=1", "B=2"},
		PortBindings:  []string{"8080:80/tcp"},
	}
	if diff := cmp.Diff(want, fc.recreate); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/containers/new-id") {
		t.Errorf("redirect = %q, want the new container's page", rec.Header().Get("Location"))
	}
}

func TestLogsPage(t *testing.T) {
	fc := newFakeClient()
	fc.detail = docker.ContainerDetail{ID: "abc", Name: "web", State: "running"}
	fc.logs = docker.Logs{Stdout: "hello stdout", Stderr: "hello stderr"}
	s := newTestServer(fc)

	rec := get(t, s, "/containers/abc/logs?tail=50&since=1h")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "hello stdout") || !strings.Contains(body, "hello stderr") {
		t.Error("expected both output streams on the page")
	}
}

func TestExecRunRendersOutput(t *testing.T) {
	fc := newFakeClient()
	fc.detail = docker.ContainerDetail{ID: "abc", Name: "web", State: "running"}
	fc.execResult = docker.ExecResult{ExitCode: 0, Stdout: "total 4\n"}
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc/exec", url.Values{
		"workdir": {"/app"},
		"command": {"ls -la"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "total 4") {
		t.Error("expected command output on the page")
	}
	found := false
	for _, c := range fc.calls {
		if c == "exec /app sh -c ls -la" {
			found = true
		}
	}
	if !found {
		t.Errorf("exec not run as sh -c in workdir: %v", fc.calls)
	}
}

func TestExecRejectsRelativeWorkdir(t *testing.T) {
	fc := newFakeClient()
	fc.detail = docker.ContainerDetail{ID: "abc", Name: "web", State: "running"}
	s := newTestServer(fc)

	rec := post(t, s, "/containers/abc/exec", url.Values{
		"workdir": {"app"},
		"command": {"ls"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "absolute path") {
		t.Error("expected validation message")
	}
	if len(fc.calls) != 0 {
		t.Errorf("invalid form must not reach the engine: %v", fc.calls)
	}
}

func TestFilesPageListsEntries(t *testing.T) {
	fc := newFakeClient()
	fc.detail = docker.ContainerDetail{ID: "abc", Name: "web", State: "running"}
	fc.entries = []docker.PathEntry{{Name: "etc", IsDir: true}, {Name: "app.log"}}
	s := newTestServer(fc)

	rec := get(t, s, "/containers/abc/files?path=/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "etc/") || !strings.Contains(body, "app.log") {
		t.Error("expected directory entries on the page")
	}
}

func TestFileDownloadSetsHeaders(t *testing.T) {
	fc := newFakeClient()
	fc.file = docker.FileContent{Name: "config.yml", Size: 11, Data: []byte("key: value\n")}
	s := newTestServer(fc)

	rec := get(t, s, "/containers/abc/files/download?path=/app/config.yml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "config.yml") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "key: value\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func multipartUpload(t *testing.T, dir, filename string, size int64) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("path", dir); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.CopyN(fw, zeroReader{}, size); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

// zeroReader yields arbitrary bytes forever; only the length matters here.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) { return len(p), nil }

func TestFileUploadWritesFile(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	body, contentType := multipartUpload(t, "/app", "notes.txt", 5)
	req := httptest.NewRequest(http.MethodPost, "/containers/abc/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	data, ok := fc.written["/app/notes.txt"]
	if !ok {
		t.Fatalf("file not written: %v", fc.written)
	}
	if len(data) != 5 {
		t.Errorf("wrote %d bytes, want 5", len(data))
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Query().Get("msg") == "" {
		t.Errorf("expected success notice in %q", rec.Header().Get("Location"))
	}
}

func TestFileUploadRejectsOversizedFile(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	body, contentType := multipartUpload(t, "/app", "huge.bin", uploadLimit+1)
	req := httptest.NewRequest(http.MethodPost, "/containers/abc/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	if loc.Query().Get("err") == "" {
		t.Errorf("expected error notice in %q", rec.Header().Get("Location"))
	}
	if len(fc.written) != 0 {
		t.Errorf("oversized upload must not reach the container: %d files written", len(fc.written))
	}
}

func TestImagesPage(t *testing.T) {
	fc := newFakeClient()
	fc.images = []docker.Image{{ID: "ffffffffffff", Reference: "redis:7", Size: 1 << 20, Containers: 1}}
	s := newTestServer(fc)

	rec := get(t, s, "/images")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "redis:7") {
		t.Error("expected image reference on page")
	}
}

func TestImagePullRequiresReference(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	post(t, s, "/images/pull", url.Values{"reference": {""}})
	if len(fc.calls) != 0 {
		t.Errorf("empty reference must not reach the engine: %v", fc.calls)
	}
}

func TestNetworkCreateRequiresSubnetForGateway(t *testing.T) {
	fc := newFakeClient()
	s := newTestServer(fc)

	rec := post(t, s, "/networks/create", url.Values{"name": {"backend"}, "gateway": {"10.0.0.1"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(fc.calls) != 0 {
		t.Errorf("gateway without subnet must not reach the engine: %v", fc.calls)
	}
}

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"":            "/",
		"/":           "/",
		"/app":        "/app",
		"app":         "/app",
		"/app/../etc": "/etc",
		"/a/b/..":     "/a",
	}
	for in, want := range cases {
		if got := cleanPath(in); got != want {
			t.Errorf("cleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPastTense(t *testing.T) {
	cases := map[string]string{
		"start":      "started",
		"stop":       "stopped",
		"remove":     "removed",
		"pull":       "pulled",
		"connect":    "connected",
		"disconnect": "disconnected",
		"sideways":   "completed", // unknown verbs get a neutral form
	}
	for in, want := range cases {
		if got := pastTense(in); got != want {
			t.Errorf("pastTense(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorTextWording(t *testing.T) {
	if got := errorText("container x", errEngineDown); !strings.Contains(got, "cannot reach the Docker daemon") {
		t.Errorf("unreachable wording = %q", got)
	}
}
