package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

type stubUploader struct {
	url    string
	err    error
	folder string
}

func (s *stubUploader) Upload(_ context.Context, file io.Reader, folder string) (string, error) {
	_, _ = io.ReadAll(file)
	s.folder = folder
	return s.url, s.err
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestUploadImage(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO uploaded_images`).
		WithArgs(pgxmock.AnyArg(), "user-1", "https://res.cloudinary.com/demo/image/upload/v1/trail_objects/pic.jpg", "trail_objects").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	up := &stubUploader{url: "https://res.cloudinary.com/demo/image/upload/v1/trail_objects/pic.jpg"}
	svc := NewService(mock, up)

	img, err := svc.UploadImage(context.Background(), "user-1", strings.NewReader("bytes"), "")
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if img.ID == "" || img.URL != up.url {
		t.Fatalf("unexpected image: %+v", img)
	}
	if !strings.Contains(img.ThumbnailURL, "/upload/w_200,h_200,c_thumb,g_face/") {
		t.Fatalf("unexpected thumbnail url: %s", img.ThumbnailURL)
	}
	if up.folder != "trail_objects" {
		t.Fatalf("expected default folder, got %q", up.folder)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUploadImageCustomFolder(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO uploaded_images`).
		WithArgs(pgxmock.AnyArg(), "user-1", "https://res.cloudinary.com/demo/image/upload/v1/avatars/me.jpg", "avatars").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	up := &stubUploader{url: "https://res.cloudinary.com/demo/image/upload/v1/avatars/me.jpg"}
	svc := NewService(mock, up)

	if _, err := svc.UploadImage(context.Background(), "user-1", strings.NewReader("bytes"), "avatars"); err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if up.folder != "avatars" {
		t.Fatalf("expected custom folder, got %q", up.folder)
	}
}

func TestUploadImageProviderError(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, &stubUploader{err: errors.New("provider down")})

	if _, err := svc.UploadImage(context.Background(), "user-1", strings.NewReader("bytes"), ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUploadImageInsertError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO uploaded_images`).
		WithArgs(pgxmock.AnyArg(), "user-1", "https://res.cloudinary.com/x/image/upload/v1/a.jpg", "trail_objects").
		WillReturnError(errors.New("insert error"))

	svc := NewService(mock, &stubUploader{url: "https://res.cloudinary.com/x/image/upload/v1/a.jpg"})
	if _, err := svc.UploadImage(context.Background(), "user-1", strings.NewReader("bytes"), ""); err == nil {
		t.Fatalf("expected error")
	}
}
