package inkgallery

import (
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inkgallery/inkgallery/profile"
	"github.com/inkgallery/inkgallery/transcode"
)

const maxProfileDocument = 1 << 20

// Server exposes the gallery and the e-ink rendition endpoints over HTTP.
type Server struct {
	gallery *Gallery
}

// NewServer returns an HTTP front end for g.
func NewServer(g *Gallery) *Server {
	return &Server{gallery: g}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/images", s.handleListImages)
	mux.HandleFunc("GET /api/images/eink/random", s.handleRandomEink)
	mux.HandleFunc("GET /api/images/eink/next", s.handleNextEink)
	mux.HandleFunc("GET /api/images/eink/{basename}", s.handleEink)

	mux.HandleFunc("GET /api/displays", s.handleListDisplays)
	mux.HandleFunc("POST /api/displays/import", s.handleImportDisplay)
	mux.HandleFunc("GET /api/displays/{name}", s.handleExportDisplay)
	mux.HandleFunc("PUT /api/displays/{name}", s.handleSaveDisplay)
	mux.HandleFunc("DELETE /api/displays/{name}", s.handleDeleteDisplay)
	mux.HandleFunc("POST /api/displays/{name}/duplicate", s.handleDuplicateDisplay)
	mux.HandleFunc("POST /api/displays/{name}/reset", s.handleResetDisplay)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": msg,
	})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, profile.ErrInvalid),
		errors.Is(err, transcode.ErrDecode),
		errors.Is(err, transcode.ErrUnsupportedColorMode):
		return http.StatusBadRequest
	case errors.Is(err, profile.ErrExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryBool(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func queryTags(r *http.Request) []string {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.gallery.db.Images(queryTags(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"images": images,
	})
}

// render transcodes the named gallery image for the display given in the
// query string and writes it out, either as the raw packed framebuffer or
// as a PNG preview of the panel rendition.
func (s *Server) render(w http.ResponseWriter, r *http.Request, filename string) {
	display := r.URL.Query().Get("display")
	if display == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: display")
		return
	}

	p, err := s.gallery.profiles.Load(display)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			available, _ := s.gallery.profiles.List()
			names := make([]string, len(available))
			for i, info := range available {
				names[i] = info.Name
			}
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"status":             "error",
				"message":            "Display type '" + display + "' not found",
				"available_displays": names,
			})
			return
		}
		writeError(w, errStatus(err), err.Error())
		return
	}

	// Filenames may carry a subdirectory component relative to the images
	// directory; refuse anything that would escape it.
	name := filepath.Clean(filepath.FromSlash(filename))
	if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		writeError(w, http.StatusNotFound, "Image not found: "+filename)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.gallery.imagesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "Image not found: "+filename)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	o := transcode.Options{NoDither: !queryBool(r, "dither", true)}
	if queryBool(r, "crop", true) {
		o.Fit = transcode.FitCover
	} else {
		o.Fit = transcode.FitContain
	}

	if r.URL.Query().Get("format") == "raw" {
		packed, err := s.gallery.transcoder.TranscodeOptions(data, p, o)
		if err != nil {
			writeError(w, errStatus(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(packed)))
		w.Write(packed)
		return
	}

	m, err := s.gallery.transcoder.TranscodeImage(data, p, o)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, m)
}

func (s *Server) handleEink(w http.ResponseWriter, r *http.Request) {
	basename := r.PathValue("basename")

	filename, err := s.gallery.db.FindByBasename(basename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if filename == "" {
		filename = basename
	}

	s.render(w, r, filename)
}

func (s *Server) handleRandomEink(w http.ResponseWriter, r *http.Request) {
	img, err := s.gallery.db.RandomImage(queryTags(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if img == nil {
		writeError(w, http.StatusNotFound, "No images available in gallery")
		return
	}

	w.Header().Set("X-Selected-Image", img.Filename)
	s.render(w, r, img.Filename)
}

func (s *Server) handleNextEink(w http.ResponseWriter, r *http.Request) {
	currentStr := r.URL.Query().Get("current_index")
	if currentStr == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: current_index")
		return
	}
	current, err := strconv.Atoi(currentStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid current_index value: "+currentStr)
		return
	}

	img, next, err := s.gallery.db.NextImage(current, queryTags(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if img == nil {
		writeError(w, http.StatusNotFound, "No images available in gallery")
		return
	}

	w.Header().Set("X-Selected-Image", img.Filename)
	w.Header().Set("X-Image-Index", strconv.Itoa(next))
	s.render(w, r, img.Filename)
}

func (s *Server) handleListDisplays(w http.ResponseWriter, r *http.Request) {
	displays, err := s.gallery.profiles.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"displays": displays,
	})
}

func (s *Server) handleExportDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	b, err := s.gallery.profiles.Export(name)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.yaml"`)
	w.Write(b)
}

func (s *Server) handleSaveDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	b, err := io.ReadAll(io.LimitReader(r.Body, maxProfileDocument))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.gallery.profiles.Save(name, b); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Configuration for '" + name + "' saved successfully",
		"display_name": name,
		"is_custom":    true,
	})
}

func (s *Server) handleDeleteDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.gallery.profiles.Delete(name); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Configuration '" + name + "' deleted successfully",
		"display_name": name,
	})
}

func (s *Server) handleDuplicateDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	to := r.URL.Query().Get("to")
	if to == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: to")
		return
	}

	if err := s.gallery.profiles.Duplicate(name, to); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"message":     "Configuration '" + name + "' duplicated as '" + to + "'",
		"source_name": name,
		"new_name":    to,
		"is_custom":   true,
	})
}

func (s *Server) handleResetDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.gallery.profiles.Reset(name); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Configuration for '" + name + "' reset to default",
		"display_name": name,
		"is_custom":    false,
	})
}

func (s *Server) handleImportDisplay(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: filename")
		return
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, maxProfileDocument))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := s.gallery.profiles.Import(filename, b, queryBool(r, "overwrite", false))
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Configuration '" + name + "' imported successfully",
		"display_name": name,
		"is_custom":    true,
	})
}
