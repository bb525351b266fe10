package router

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/api"
	"github.com/sahilchouksey/campus-events/config"
	"github.com/sahilchouksey/campus-events/database"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/services/archive"
	"github.com/sahilchouksey/campus-events/services/media"
	"github.com/sahilchouksey/campus-events/utils/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Error   bool            `json:"error"`
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app       *fiber.App
	publicDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	auth.Cost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.NewGORMStore(db).Init(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	publicDir := t.TempDir()
	env := &config.EnviornmentVariable{
		JWT_SECRET:      "router-test-secret",
		JWT_ISSUER:      "campus-events-test",
		JWT_EXPIRY:      time.Hour,
		PUBLIC_DIR:      publicDir,
		UPLOAD_BASE_URL: "http://localhost:8080",
		ALLOWED_ORIGINS: "*",
	}

	store := media.NewStore(publicDir, nil)
	events := services.NewEventService(db, store, nil)
	app := api.NewApp()
	SetupRoutes(app, Deps{
		Config:   env,
		DB:       db,
		Events:   events,
		Archives: archive.NewBuilder(events, store.PublicDir(), env.UPLOAD_BASE_URL),
	})

	return &testServer{app: app, publicDir: publicDir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid envelope %q: %v", method, path, raw, err)
	}
	if env.Error == env.Success {
		t.Fatalf("%s %s: error and success must differ: %s", method, path, raw)
	}
	return resp.StatusCode, env
}

// login registers the first (admin) account and returns its token
func (s *testServer) login(t *testing.T) string {
	t.Helper()

	status, env := s.do(t, http.MethodPost, "/users", "", map[string]string{
		"firstName": "Campus",
		"lastName":  "Admin",
		"email":     "admin@example.edu",
		"password":  "secret-pass",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %s", status, env.Msg)
	}

	status, env = s.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "admin@example.edu",
		"password": "secret-pass",
	})
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, env.Msg)
	}

	var data struct {
		AuthKey   string `json:"authKey"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AuthKey == "" {
		t.Fatalf("login returned no token: %s", env.Data)
	}
	if data.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Errorf("expiresIn = %d, want %d", data.ExpiresIn, int64(time.Hour.Seconds()))
	}
	return data.AuthKey
}

func dataURI(content string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(content))
}

func eventBody(name string, images ...string) map[string]interface{} {
	start := time.Now().Add(-72 * time.Hour).UTC().Truncate(time.Second)
	uploads := make([]map[string]string, 0, len(images))
	for _, img := range images {
		uploads = append(uploads, map[string]string{"name": img, "url": dataURI(img)})
	}
	return map[string]interface{}{
		"name":        name,
		"organizer":   "CSCLUB",
		"description": "coding marathon",
		"startDate":   start,
		"endDate":     start.Add(24 * time.Hour),
		"startTime":   start,
		"endTime":     start.Add(6 * time.Hour),
		"images":      uploads,
		"coordinators": []map[string]string{
			{"name": "Asha", "email": "asha@example.edu", "contNo": "9000000001", "type": "FACULTY", "department": "IT"},
		},
	}
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/ping", "", nil)
	if status != http.StatusOK || env.Msg != "pong" {
		t.Errorf("ping: %d %+v", status, env)
	}
}

func TestRegisterAssignsRoles(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, env := s.do(t, http.MethodPost, "/users", "", map[string]string{
		"firstName": "Second",
		"lastName":  "User",
		"email":     "second@example.edu",
		"password":  "another-pass",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for anonymous second registration, got %d %s", status, env.Msg)
	}
	var user struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role %s, got %s", model.RoleUser, user.Role)
	}

	status, env = s.do(t, http.MethodPost, "/users", "", map[string]string{
		"firstName": "Second",
		"lastName":  "Again",
		"email":     "second@example.edu",
		"password":  "another-pass",
	})
	if status != http.StatusBadRequest || env.Msg != "user already exists" {
		t.Errorf("duplicate: %d %q", status, env.Msg)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, env := s.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "admin@example.edu",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized || env.Msg != "invalid credentials" {
		t.Errorf("expected 401 invalid credentials, got %d %q", status, env.Msg)
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/users/me", "", nil)
	if status != http.StatusUnauthorized || env.Msg != "auth token not found" {
		t.Errorf("no token: %d %q", status, env.Msg)
	}

	status, _ = s.do(t, http.MethodGet, "/users/me", "garbage", nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad token: expected 400, got %d", status)
	}

	token := s.login(t)
	status, env = s.do(t, http.MethodGet, "/users/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: %d %s", status, env.Msg)
	}

	var user struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.ID == 0 || user.Email != "admin@example.edu" || user.Role != "ADMIN" {
		t.Errorf("unexpected user %+v", user)
	}
	if bytes.Contains(env.Data, []byte("secret-pass")) || bytes.Contains(env.Data, []byte("password")) {
		t.Errorf("user payload leaks password: %s", env.Data)
	}
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/event", "", eventBody("Hackathon"))
	if status != http.StatusUnauthorized {
		t.Errorf("create without token: expected 401, got %d", status)
	}

	status, _ = s.do(t, http.MethodDelete, "/event/1", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("delete without token: expected 401, got %d", status)
	}
}

func TestEventLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, env := s.do(t, http.MethodPost, "/event", token, eventBody("Hackathon", "a.png", "b.png"))
	if status != http.StatusCreated || env.Msg != "event created" {
		t.Fatalf("create: %d %s %s", status, env.Msg, env.Data)
	}

	var created struct {
		ID     uint `json:"id"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID == 0 {
		t.Fatalf("decode event: %v %s", err, env.Data)
	}
	if len(created.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(created.Images))
	}
	if _, err := os.Stat(filepath.Join(s.publicDir, filepath.FromSlash(created.Images[0].URL))); err != nil {
		t.Errorf("image not written under public dir: %v", err)
	}

	status, env = s.do(t, http.MethodGet, "/event?name=hack", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %s", status, env.Msg)
	}
	var list []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("unexpected list %s", env.Data)
	}

	status, env = s.do(t, http.MethodGet, "/event", "", nil)
	if status != http.StatusBadRequest || env.Msg != "unsufficient search parameters" {
		t.Errorf("list without filter: %d %q", status, env.Msg)
	}

	status, env = s.do(t, http.MethodGet, "/event/recent", "", nil)
	if status != http.StatusOK {
		t.Errorf("recent: %d %s", status, env.Msg)
	}

	path := "/event/" + itoa(created.ID)
	status, env = s.do(t, http.MethodDelete, path, token, nil)
	if status != http.StatusOK || env.Msg != `Event - "Hackathon" Deleted ` {
		t.Errorf("delete: %d %q", status, env.Msg)
	}

	status, _ = s.do(t, http.MethodGet, "/event?name=hack", "", nil)
	if status != http.StatusOK {
		t.Errorf("list after delete: %d", status)
	}
}

func TestDeletedImageStillFetchableByID(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, env := s.do(t, http.MethodPost, "/event", token, eventBody("Robotics", "bot.png"))
	var created struct {
		ID     uint `json:"id"`
		Images []struct {
			ID uint `json:"id"`
		} `json:"images"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || len(created.Images) != 1 {
		t.Fatalf("decode event: %v %s", err, env.Data)
	}

	imagePath := "/event/image/" + itoa(created.ID) + "/" + itoa(created.Images[0].ID)
	if status, env := s.do(t, http.MethodDelete, imagePath, token, nil); status != http.StatusOK {
		t.Fatalf("delete image: %d %s", status, env.Msg)
	}

	status, env := s.do(t, http.MethodGet, imagePath, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get deleted image: %d %s", status, env.Msg)
	}
	var image struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.Unmarshal(env.Data, &image); err != nil || image.IsActive {
		t.Errorf("expected isActive=false, got %s", env.Data)
	}

	status, env = s.do(t, http.MethodGet, "/event/image/"+itoa(created.ID), "", nil)
	if status != http.StatusOK {
		t.Fatalf("list images: %d %s", status, env.Msg)
	}
	var active []json.RawMessage
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &active); err != nil {
			t.Fatalf("decode images: %v", err)
		}
	}
	if len(active) != 0 {
		t.Errorf("expected no active images listed, got %s", env.Data)
	}
}

func TestZip(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, env := s.do(t, http.MethodGet, "/event/image/99/zip", token, nil)
	if status != http.StatusNotFound || env.Msg != "no event found for eventID: 99" {
		t.Errorf("zip of missing event: %d %q", status, env.Msg)
	}

	_, env = s.do(t, http.MethodPost, "/event", token, eventBody("Empty Fest"))
	var empty struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &empty)

	status, env = s.do(t, http.MethodGet, "/event/image/"+itoa(empty.ID)+"/zip", token, nil)
	if status != http.StatusNotFound || env.Msg != "Event - Empty Fest has no images" {
		t.Errorf("zip without images: %d %q", status, env.Msg)
	}

	_, env = s.do(t, http.MethodPost, "/event", token, eventBody("Photo Walk", "walk.png"))
	var full struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &full)

	status, env = s.do(t, http.MethodGet, "/event/image/"+itoa(full.ID)+"/zip", token, nil)
	if status != http.StatusCreated {
		t.Fatalf("zip: %d %s", status, env.Msg)
	}
	var result archive.Result
	if err := json.Unmarshal(env.Data, &result); err != nil || result.ZipName == "" {
		t.Fatalf("decode zip result: %v %s", err, env.Data)
	}

	status, env = s.do(t, http.MethodDelete, "/event/image/"+itoa(full.ID)+"/zip", token, map[string]string{"name": result.ZipName})
	if status != http.StatusOK {
		t.Errorf("remove zip: %d %q", status, env.Msg)
	}

	status, env = s.do(t, http.MethodDelete, "/event/image/"+itoa(full.ID)+"/zip", token, map[string]string{"name": result.ZipName})
	if status != http.StatusNotFound {
		t.Errorf("remove missing zip: %d %q", status, env.Msg)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
