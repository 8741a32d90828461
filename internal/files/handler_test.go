package files

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postConfirm(t *testing.T, payload map[string]any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestConfirmUpload(t *testing.T) {
	router, _, repo := setupRouter(t, &fakeStore{})

	req := postConfirm(t, map[string]any{
		"originalName": "resume.pdf",
		"path":         "https://blobs.example.com/resume.pdf",
		"mimetype":     "application/pdf",
		"size":         1234,
		"isPublic":     true,
		"tags":         []string{"2025"},
	})
	authorize(t, req, "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Success bool         `json:"success"`
		File    UploadedFile `json:"file"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.File.ID == "" || body.File.UserID != "owner" || !body.File.IsPublic {
		t.Fatalf("unexpected body: %+v", body)
	}
	if _, err := repo.GetByID(context.Background(), body.File.ID, "owner"); err != nil {
		t.Fatalf("file not persisted: %v", err)
	}
}

func TestConfirmRequiresFields(t *testing.T) {
	full := map[string]any{
		"originalName": "resume.pdf",
		"path":         "https://blobs.example.com/resume.pdf",
		"mimetype":     "application/pdf",
		"size":         0,
	}
	for _, field := range []string{"originalName", "path", "mimetype", "size"} {
		t.Run(field, func(t *testing.T) {
			router, _, _ := setupRouter(t, &fakeStore{})
			payload := map[string]any{}
			for k, v := range full {
				if k != field {
					payload[k] = v
				}
			}
			req := postConfirm(t, payload)
			authorize(t, req, "owner")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 without %s, got %d", field, resp.Code)
			}
		})
	}

	router, _, _ := setupRouter(t, &fakeStore{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, postConfirm(t, full))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.Code)
	}
}

func TestConfirmRejectsInternalURL(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("AWS_SECRET=internal-only"))
	}))
	defer internal.Close()

	router, _, repo := setupRouter(t, &fakeStore{})
	req := postConfirm(t, map[string]any{
		"originalName": "resume.pdf",
		"path":         internal.URL + "/latest/meta-data/iam/security-credentials/role",
		"mimetype":     "application/pdf",
		"size":         10,
	})
	authorize(t, req, "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if _, total, _ := repo.ListByUser(context.Background(), "owner", nil, 10, 0); total != 0 {
		t.Fatalf("rejected location must not be registered")
	}
}

func TestListFilesPaginates(t *testing.T) {
	router, svc, _ := setupRouter(t, &fakeStore{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Confirm(ctx, "owner", ConfirmInput{OriginalName: "r.pdf", Location: "https://x/r", MimeType: "application/pdf", Size: 1, IsPublic: i == 0}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := svc.Confirm(ctx, "someone-else", ConfirmInput{OriginalName: "r.pdf", Location: "https://x/r", MimeType: "application/pdf", Size: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files?limit=2", nil)
	authorize(t, req, "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var page listResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Files) != 2 || page.Pagination != (pagination{Total: 3, Limit: 2, Offset: 0, HasMore: true}) {
		t.Fatalf("unexpected page: %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files?isPublic=true", nil)
	authorize(t, req, "owner")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.Total != 1 || page.Pagination.Limit != defaultListLimit || page.Pagination.HasMore {
		t.Fatalf("unexpected filtered page: %+v", page.Pagination)
	}
}

func TestFileContentProxiesBlob(t *testing.T) {
	store := &fakeStore{blobs: map[string]blob{"https://x/r.pdf": {data: "%PDF-1.4 bytes", contentType: ""}}}
	router, svc, _ := setupRouter(t, store)
	f, err := svc.Confirm(context.Background(), "owner", ConfirmInput{OriginalName: "resume.pdf", Location: "https://x/r.pdf", MimeType: "application/pdf", Size: 14})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+f.ID+"/content", nil)
	authorize(t, req, "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected stored mimetype fallback, got %q", got)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `inline; filename="resume.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := resp.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Fatalf("unexpected cache control %q", got)
	}
	if resp.Body.String() != "%PDF-1.4 bytes" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestFileContentErrors(t *testing.T) {
	store := &fakeStore{blobs: map[string]blob{}}
	router, svc, repo := setupRouter(t, store)
	ctx := context.Background()
	f, _ := svc.Confirm(ctx, "owner", ConfirmInput{OriginalName: "r.pdf", Location: "https://x/r.pdf", MimeType: "application/pdf", Size: 1})
	noLoc := UploadedFile{ID: "4a1d3a3e-7b8f-4c62-9d3e-0a4b3c2d1e0f", UserID: "owner", OriginalName: "x.pdf"}
	if err := repo.Create(ctx, noLoc); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name string
		id   string
		user string
		err  error
		want int
	}{
		{"unknown id", "0f8fad5b-d9cb-469f-a165-70867728950e", "owner", nil, http.StatusNotFound},
		{"foreign private", f.ID, "intruder", nil, http.StatusNotFound},
		{"location unset", noLoc.ID, "owner", nil, http.StatusNotFound},
		{"upstream failure", f.ID, "owner", errors.New("timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.err = tt.err
			req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+tt.id+"/content", nil)
			authorize(t, req, tt.user)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.Code)
			}
		})
	}
}
