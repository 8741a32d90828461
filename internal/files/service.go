package files

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-scorer/internal/extract"
	"resume-scorer/internal/shared/storage/object"
	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/shared/util"
)

const defaultListLimit = 50

// Service registers uploaded blobs and serves their content.
type Service struct {
	Repo      Repo
	Store     object.Store
	Locations LocationPolicy
	Now       func() time.Time
}

// ConfirmInput describes a blob the client has already uploaded.
type ConfirmInput struct {
	OriginalName string
	Location     string
	MimeType     string
	Size         int64
	Extension    string
	IsPublic     bool
	Description  string
	Tags         []string
}

// Confirm creates the file record with a generated unique file name of the
// form <basename>_<epochMillis>.<ext>.
func (s *Service) Confirm(ctx context.Context, userID string, in ConfirmInput) (UploadedFile, error) {
	if strings.TrimSpace(userID) == "" {
		return UploadedFile{}, ErrUnauthorized
	}
	if in.Size < 0 {
		return UploadedFile{}, fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	}
	loc, err := url.Parse(strings.TrimSpace(in.Location))
	if err != nil || loc.Scheme == "" {
		return UploadedFile{}, fmt.Errorf("%w: path must be an absolute URL", ErrInvalidInput)
	}
	if err := s.Locations.Check(loc, userID); err != nil {
		return UploadedFile{}, err
	}
	original, err := util.SanitizeFileName(in.OriginalName)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("%w: originalName is invalid", ErrInvalidInput)
	}

	now := s.now()
	base, ext := util.SplitExt(original)
	if e := strings.TrimPrefix(strings.TrimSpace(in.Extension), "."); e != "" {
		ext = e
	}
	fileName := base + "_" + strconv.FormatInt(now.UnixMilli(), 10)
	if ext != "" {
		fileName += "." + ext
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}

	f := UploadedFile{
		ID:           uuid.NewString(),
		UserID:       userID,
		OriginalName: original,
		FileName:     fileName,
		Location:     loc.String(),
		MimeType:     extract.NormalizeMimeType(in.MimeType),
		Size:         in.Size,
		Extension:    ext,
		IsPublic:     in.IsPublic,
		Description:  strings.TrimSpace(in.Description),
		Tags:         tags,
		CreatedAt:    now,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return UploadedFile{}, fmt.Errorf("create file: %w", err)
	}
	telemetry.Info("file.registered", map[string]any{
		"file_id":   f.ID,
		"user_id":   userID,
		"mime_type": f.MimeType,
		"size":      f.Size,
	})
	return f, nil
}

// List returns a page of the owner's files and the total count.
func (s *Service) List(ctx context.Context, userID string, isPublic *bool, limit, offset int) ([]UploadedFile, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrUnauthorized
	}
	return s.Repo.ListByUser(ctx, userID, isPublic, limit, offset)
}

// Get returns a file visible to userID.
func (s *Service) Get(ctx context.Context, id, userID string) (UploadedFile, error) {
	if strings.TrimSpace(userID) == "" {
		return UploadedFile{}, ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return UploadedFile{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id, userID)
}

// Open resolves the file and opens its blob. The caller closes the body.
func (s *Service) Open(ctx context.Context, id, userID string) (UploadedFile, *object.Object, error) {
	f, err := s.Get(ctx, id, userID)
	if err != nil {
		return UploadedFile{}, nil, err
	}
	if strings.TrimSpace(f.Location) == "" {
		return f, nil, ErrNoLocation
	}
	obj, err := s.Store.Open(ctx, f.Location)
	if err != nil {
		return f, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return f, obj, nil
}

// ResumeText re-extracts the text of a registered resume.
func (s *Service) ResumeText(ctx context.Context, id, userID string) (string, error) {
	f, err := s.Get(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(f.Location) == "" {
		return "", ErrNoLocation
	}
	text, err := extract.ExtractFromStore(ctx, s.Store, f.Location, f.MimeType)
	if err != nil {
		var extractErr *extract.Error
		if errors.As(err, &extractErr) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return text, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
