package trailobject

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func testApp(svc *Service) *fiber.App {
	app := fiber.New()
	asUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/objects"), svc, asUser)
	return app
}

func TestCreateObjectHandler(t *testing.T) {
	mock := newMock(t)
	app := testApp(NewService(mock, nil, &stubAwarder{}))

	mock.ExpectQuery(`SELECT name FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Nikola"))
	mock.ExpectQuery(`INSERT INTO trail_objects`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Nikola", "VIEWPOINT", "Summit view", "",
			21.8961, 43.3214, []string(nil), "", "", 0, 1400.0, []string(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "last_interaction_at"}).
			AddRow(time.Now(), time.Now()))

	body, _ := json.Marshal(NewObject{
		Type: TypeViewpoint, Title: "Summit view",
		Lat: 43.3214, Lng: 21.8961, ElevationM: 1400,
	})
	req := httptest.NewRequest(http.MethodPost, "/objects/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create object status: %v %v", err, resp.StatusCode)
	}
}

func TestCreateObjectHandlerValidation(t *testing.T) {
	app := testApp(NewService(nil, nil, &stubAwarder{}))

	body, _ := json.Marshal(NewObject{Type: TypeTrail})
	req := httptest.NewRequest(http.MethodPost, "/objects/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestListObjectsHandler(t *testing.T) {
	mock := newMock(t)
	app := testApp(NewService(mock, nil, &stubAwarder{}))

	mock.ExpectQuery(`FROM trail_objects ORDER BY created_at DESC`).
		WillReturnRows(objectRows("obj-1"))
	mock.ExpectQuery(`SELECT object_id, user_id, rating`).
		WithArgs([]string{"obj-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"object_id", "user_id", "rating"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/objects/", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	var objects []TrailObject
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(objects) != 1 || objects[0].ID != "obj-1" {
		t.Fatalf("unexpected objects: %v", objects)
	}
}

func TestListObjectsHandlerBadFilter(t *testing.T) {
	app := testApp(NewService(nil, nil, &stubAwarder{}))

	for _, query := range []string{
		"min_rating=abc",
		"date_from=yesterday",
		"lat=43.3&lng=21.9&radius_m=abc",
	} {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/objects/?"+query, nil))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected bad request for %q, got %d", query, resp.StatusCode)
		}
	}
}

func TestGetObjectHandlerNotFound(t *testing.T) {
	mock := newMock(t)
	app := testApp(NewService(mock, nil, &stubAwarder{}))

	mock.ExpectQuery(`FROM trail_objects WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/objects/missing", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestDeleteObjectHandlerForbidden(t *testing.T) {
	mock := newMock(t)
	app := testApp(NewService(mock, nil, &stubAwarder{}))

	mock.ExpectQuery(`SELECT author_id FROM trail_objects`).
		WithArgs("obj-1").
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow("someone-else"))

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/objects/obj-1", nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", resp.StatusCode)
	}
}

func TestRateObjectHandlerBadRating(t *testing.T) {
	app := testApp(NewService(nil, nil, &stubAwarder{}))

	body := bytes.NewReader([]byte(`{"rating": 9}`))
	req := httptest.NewRequest(http.MethodPost, "/objects/obj-1/ratings", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestCommentHandler(t *testing.T) {
	mock := newMock(t)
	app := testApp(NewService(mock, nil, &stubAwarder{}))

	mock.ExpectQuery(`SELECT name FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Nikola"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM trail_objects`).
		WithArgs("obj-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("obj-1"))
	mock.ExpectQuery(`INSERT INTO object_comments`).
		WithArgs(pgxmock.AnyArg(), "obj-1", "user-1", "Nikola", "nice spot").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`UPDATE trail_objects SET last_interaction_at`).
		WithArgs("obj-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	body := bytes.NewReader([]byte(`{"text": "nice spot"}`))
	req := httptest.NewRequest(http.MethodPost, "/objects/obj-1/comments", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment status: %v", err)
	}
}
