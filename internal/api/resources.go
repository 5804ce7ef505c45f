package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/store"
)

func (s *Server) listResources(src ModuleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := src.ListResources(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(res))
	}
}

// handleCreateResource accepts either a JSON body or a multipart form whose
// "file" part carries the upload.
func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	moduleID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in store.ResourceInput
	var up *files.Upload

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, files.MaxUploadSize+1<<20)
		if err := r.ParseMultipartForm(files.MaxUploadSize); err != nil {
			s.writeError(w, r, badRequest("failed to parse form: %v", err))
			return
		}
		in.Title = r.FormValue("title")
		in.Type = r.FormValue("type")
		in.Content = r.FormValue("content")

		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			up = &files.Upload{Name: header.Filename, Body: file}
		case !errors.Is(err, http.ErrMissingFile):
			s.writeError(w, r, badRequest("failed to read file: %v", err))
			return
		}
	} else if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.backend.CreateResource(r.Context(), moduleID, in, up)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in store.ResourceInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.backend.UpdateResource(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.backend.DeleteResource(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "resource deleted")
}

func (s *Server) handleAccessResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.backend.AccessResource(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, res, err := s.backend.OpenUpload(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res != nil {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": res.Content}))
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}
