package web

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/metrics"
)

// uploadLimit bounds the multipart form held in memory for file uploads.
const uploadLimit = 64 << 20

type filesPage struct {
	basePage
	ID      string
	Name    string
	Path    string
	Parent  string
	Entries []docker.PathEntry
}

// handleFiles lists a directory inside the container. The ?path= query is
// cleaned to an absolute path so ".." cannot walk anywhere the engine
// would not already allow.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	id := chi.URLParam(r, "id")
	dir := cleanPath(r.URL.Query().Get("path"))

	page := filesPage{
		basePage: s.base("Files", "containers", r),
		ID:       id,
		Path:     dir,
		Parent:   path.Dir(dir),
	}
	detail, err := s.client.InspectContainer(ctx, id)
	s.recordFetch(err)
	if err != nil {
		redirectErr(w, r, "/containers", errorText("container "+id, err))
		return
	}
	page.Name = detail.Name
	if !isRunning(detail) {
		page.Banner = &Banner{Kind: "warn", Text: "container is not running, its filesystem cannot be browsed"}
		s.render(w, "files", page)
		return
	}

	entries, err := s.client.ListPath(ctx, id, dir)
	s.recordFetch(err)
	if err != nil {
		page.Banner = &Banner{Kind: "error", Text: errorText(dir, err)}
	} else {
		page.Entries = entries
	}
	s.render(w, "files", page)
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	id := chi.URLParam(r, "id")
	p := cleanPath(r.URL.Query().Get("path"))

	file, err := s.client.ReadFile(ctx, id, p)
	metrics.IncAction("download", err == nil)
	s.recordFetch(err)
	if err != nil {
		redirectErr(w, r, "/containers/"+id+"/files?path="+path.Dir(p), errorText(p, err))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Write(file.Data)
}

func (s *Server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fallback := "/containers/" + id + "/files"

	// The form must be parsed with the cap in place before any field is
	// read, otherwise the default parser runs first and the cap never
	// applies. The extra MiB covers multipart framing around a
	// full-size file.
	r.Body = http.MaxBytesReader(w, r.Body, uploadLimit+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		redirectErr(w, r, fallback, "upload too large or malformed")
		return
	}
	dir := cleanPath(r.FormValue("path"))
	backURL := fallback + "?path=" + dir

	f, header, err := r.FormFile("file")
	if err != nil {
		redirectErr(w, r, backURL, "no file selected")
		return
	}
	defer f.Close()

	name := path.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		redirectErr(w, r, backURL, "upload has no usable file name")
		return
	}
	if header.Size > uploadLimit {
		redirectErr(w, r, backURL, fmt.Sprintf("%s is larger than the %d MiB upload limit", name, uploadLimit>>20))
		return
	}

	data, err := io.ReadAll(io.LimitReader(f, uploadLimit+1))
	if err != nil {
		redirectErr(w, r, backURL, "reading upload failed: "+err.Error())
		return
	}
	// A read past the limit means the advertised size lied; never write a
	// truncated file into the container.
	if len(data) > uploadLimit {
		redirectErr(w, r, backURL, fmt.Sprintf("%s is larger than the %d MiB upload limit", name, uploadLimit>>20))
		return
	}

	ctx, cancel := s.callCtx(r)
	defer cancel()
	err = s.client.WriteFile(ctx, id, dir, name, data)
	metrics.IncAction("upload", err == nil)
	s.recordFetch(err)
	if err != nil {
		redirectErr(w, r, backURL, errorText("upload of "+name, err))
		return
	}
	redirectMsg(w, r, backURL, name+" uploaded to "+dir)
}

// cleanPath normalizes a user-supplied container path to an absolute one.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
