package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/chatprofiles"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type brokenAccounts struct{}

var errBroken = errors.New("pq: connection reset by peer")

func (brokenAccounts) Create(context.Context, *models.Account) (*models.Account, error) {
	return nil, errBroken
}
func (brokenAccounts) ExistsByEmailOrPhone(context.Context, string, string) (bool, error) {
	return false, errBroken
}
func (brokenAccounts) FindByEmail(context.Context, string) (*models.Account, error) {
	return nil, errBroken
}
func (brokenAccounts) FindByID(context.Context, string) (*models.Account, error) {
	return nil, errBroken
}
func (brokenAccounts) UpdateFields(context.Context, string, models.AccountPatch) (*models.Account, error) {
	return nil, errBroken
}

type testEnv struct {
	router    *gin.Engine
	tokens    *auth.TokenService
	accounts  *accounts.MemoryRepository
	chats     *chatprofiles.MemoryRepository
	uploadDir string
}

type envOption func(*envConfig)

type envConfig struct {
	accounts accounts.Repository
	pinger   Pinger
	maxBytes int64
}

func withAccounts(r accounts.Repository) envOption { return func(c *envConfig) { c.accounts = r } }
func withPinger(p Pinger) envOption               { return func(c *envConfig) { c.pinger = p } }
func withMaxBytes(n int64) envOption              { return func(c *envConfig) { c.maxBytes = n } }

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		accounts:  accounts.NewMemoryRepository(),
		chats:     chatprofiles.NewMemoryRepository(),
		uploadDir: t.TempDir(),
	}
	cfg := envConfig{accounts: env.accounts, pinger: fakePinger{}, maxBytes: 1 << 20}
	for _, o := range opts {
		o(&cfg)
	}

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	env.tokens = tokens

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	files, err := storage.NewLocalStore(env.uploadDir)
	require.NoError(t, err)

	log := logging.Nop()
	h := NewHandler(
		services.NewAccountService(cfg.accounts, hasher, tokens, files, time.Second, log),
		services.NewChatProfileService(env.chats, files, time.Second, log),
		cfg.pinger,
		log,
	)
	env.router = NewRouter(h, tokens, log, RouterOptions{MaxUploadBytes: cfg.maxBytes})
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart/form-data request with the given
// fields and an optional file.
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func signupBody() map[string]string {
	return map[string]string{
		"salutation":  "Ms",
		"name":        "Jane",
		"email":       "jane@example.com",
		"phoneNumber": "+15550001",
		"dateOfBirth": "1992-07-01",
		"address":     "2 Side st",
		"password":    "hunter22",
	}
}

func (e *testEnv) signup(t *testing.T) string {
	t.Helper()
	w := e.do(jsonRequest(t, http.MethodPost, "/auth/signup", signupBody()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func formRequest(target string, values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func httptestGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func httptestPost(target, contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}
