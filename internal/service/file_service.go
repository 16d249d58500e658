package service

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/pagination"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

const defaultListTake = 20

// FileService stores uploaded files on disk under their upload-detail id
// and keeps one upload_detail row per file.
type FileService struct {
	db        *gorm.DB
	repo      repository.UploadDetailRepository
	filesPath string
}

func NewFileService(db *gorm.DB, repo repository.UploadDetailRepository, filesPath string) *FileService {
	return &FileService{
		db:        db,
		repo:      repo,
		filesPath: filesPath,
	}
}

type UploadInput struct {
	Filename string
	Mimetype string
	Data     []byte
}

// Upload writes each file to disk and records its upload detail, all rows
// in one transaction. Returns the stored names (id + original extension).
// Files already written are removed again when the transaction fails.
func (s *FileService) Upload(ctx context.Context, inputs []UploadInput) ([]string, error) {
	if err := os.MkdirAll(s.filesPath, 0o755); err != nil {
		return nil, err
	}

	var written []string
	names := make([]string, 0, len(inputs))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, input := range inputs {
			id := uuid.New()
			storedName := id.String() + filepath.Ext(input.Filename)
			path := filepath.Join(s.filesPath, storedName)

			if err := os.WriteFile(path, input.Data, 0o644); err != nil {
				return err
			}
			written = append(written, path)

			if err := repo.Create(ctx, &domain.UploadDetail{
				ID:          id,
				StoragePath: s.filesPath,
				Filename:    storedName,
				FileSize:    int64(len(input.Data)),
				Mimetype:    input.Mimetype,
				CreatedAt:   time.Now(),
			}); err != nil {
				return err
			}

			names = append(names, storedName)
		}
		return nil
	})
	if err != nil {
		for _, path := range written {
			if removeErr := os.Remove(path); removeErr != nil {
				log.Printf("ERROR [FileService.Upload] failed to clean up %s: %v", path, removeErr)
			}
		}
		return nil, err
	}

	return names, nil
}

func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*domain.UploadDetail, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUploadDetailNotFound
		}
		return nil, err
	}
	return detail, nil
}

// DiskPath returns the on-disk location of the stored file.
func (s *FileService) DiskPath(detail *domain.UploadDetail) string {
	return filepath.Join(detail.StoragePath, detail.Filename)
}

// Delete removes the upload detail row, then the file on disk best-effort.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, detail.ID); err != nil {
		return err
	}

	if err := os.Remove(s.DiskPath(detail)); err != nil && !os.IsNotExist(err) {
		log.Printf("ERROR [FileService.Delete] failed to remove %s: %v", s.DiskPath(detail), err)
	}
	return nil
}

type ListFilesOptions struct {
	NextCursor     string
	PreviousCursor string
	Take           int
}

// List pages over upload details, newest first, using cursor pagination
// keyed on (created_at, filename).
func (s *FileService) List(ctx context.Context, opts ListFilesOptions) (*pagination.Page[domain.UploadDetail], error) {
	take := opts.Take
	if take <= 0 {
		take = defaultListTake
	}

	return pagination.Paginate(ctx, pagination.Options[domain.UploadDetail]{
		Query:          s.repo.Query(ctx),
		KeyColumns:     []string{"created_at", "filename"},
		Order:          pagination.OrderDesc,
		NextCursor:     opts.NextCursor,
		PreviousCursor: opts.PreviousCursor,
		Take:           take,
		CursorBuilder: func(item domain.UploadDetail) []any {
			return []any{item.CreatedAt, item.Filename}
		},
	})
}
