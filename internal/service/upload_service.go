package service

import (
	"bytes"
	"context"
	"sync"

	"github.com/spec-kit/complaint-service/internal/storage"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// UploadService stores attachment files in the object store before their
// complaint exists. Files in one submission are uploaded concurrently and
// awaited jointly; if any of them fails the whole submission is rejected,
// so a complaint is never created with a partial attachment set.
type UploadService struct {
	store storage.ObjectStore
}

// NewUploadService constructs the service.
func NewUploadService(store storage.ObjectStore) *UploadService {
	return &UploadService{store: store}
}

// UploadFileInput is one file from a multipart submission.
type UploadFileInput struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadedFile reports where an uploaded file landed.
type UploadedFile struct {
	FileURL  string
	FileType string
	FileName string
}

// UploadAll uploads every file under a randomly generated object name and
// returns the public URL, mime type, and original name for each.
func (s *UploadService) UploadAll(ctx context.Context, files []UploadFileInput) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files provided", nil)
	}

	results := make([]UploadedFile, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			file := files[i]
			key := storage.RandomKey(file.Name)
			if err := s.store.Upload(ctx, key, bytes.NewReader(file.Content), file.ContentType); err != nil {
				errs[i] = err
				return
			}
			results[i] = UploadedFile{
				FileURL:  s.store.PublicURL(key),
				FileType: file.ContentType,
				FileName: file.Name,
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			// Files that already made it stay orphaned in storage; no
			// complaint record ever references them.
			return nil, apperrors.NewInternalError(err)
		}
	}
	return results, nil
}
