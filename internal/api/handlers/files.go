package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/service"
)

const maxUploadBytes = 32 << 20

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type UploadResponse struct {
	Filenames []string `json:"filenames"`
}

type FileDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"fileSize"`
	Mimetype  string    `json:"mimetype"`
	CreatedAt time.Time `json:"createdAt"`
}

type FileListResponse struct {
	Data           []FileDetailResponse `json:"data"`
	NextCursor     string               `json:"nextCursor"`
	PreviousCursor string               `json:"previousCursor"`
}

func newFileDetailResponse(detail *domain.UploadDetail) FileDetailResponse {
	return FileDetailResponse{
		ID:        detail.ID,
		Filename:  detail.Filename,
		FileSize:  detail.FileSize,
		Mimetype:  detail.Mimetype,
		CreatedAt: detail.CreatedAt,
	}
}

// Upload accepts multipart form data under the "files" field and stores
// every part in one transaction.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		http.Error(w, "No files provided", http.StatusBadRequest)
		return
	}

	inputs := make([]service.UploadInput, 0, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		inputs = append(inputs, service.UploadInput{
			Filename: part.Filename,
			Mimetype: part.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	filenames, err := h.fileService.Upload(r.Context(), inputs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, UploadResponse{Filenames: filenames})
}

// Serve streams a stored file. Uploaded files never change, so clients
// may cache aggressively.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	detail, err := h.fileService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", detail.Mimetype)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, h.fileService.DiskPath(detail))
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := service.ListFilesOptions{
		NextCursor:     r.URL.Query().Get("nextCursor"),
		PreviousCursor: r.URL.Query().Get("previousCursor"),
	}
	if raw := r.URL.Query().Get("take"); raw != "" {
		take, err := strconv.Atoi(raw)
		if err != nil || take <= 0 {
			http.Error(w, "Invalid take", http.StatusBadRequest)
			return
		}
		opts.Take = take
	}

	page, err := h.fileService.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := FileListResponse{
		Data:           make([]FileDetailResponse, 0, len(page.Data)),
		NextCursor:     page.NextCursor,
		PreviousCursor: page.PreviousCursor,
	}
	for i := range page.Data {
		resp.Data = append(resp.Data, newFileDetailResponse(&page.Data[i]))
	}

	writeJSON(w, resp)
}
