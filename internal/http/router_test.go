package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/export"
	kyatHttp "github.com/MrJamesThe3rd/kyat/internal/http"
	"github.com/MrJamesThe3rd/kyat/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/kyat/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/kyat/internal/http/importer"
	ledgerHandler "github.com/MrJamesThe3rd/kyat/internal/http/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/kyat/internal/ledger/store"
	"github.com/MrJamesThe3rd/kyat/internal/session"
	"github.com/MrJamesThe3rd/kyat/internal/user"
	userStore "github.com/MrJamesThe3rd/kyat/internal/user/store"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) *client {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "kyat.db"))
	require.NoError(t, database.Migrate(database.SQLite, dsn))

	db, err := database.New(database.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var (
		sessions      = session.NewManager("test-secret", time.Hour, false)
		userService   = user.NewService(userStore.New(db, database.SQLite), user.WithCost(bcrypt.MinCost))
		ledgerService = ledger.NewService(ledgerStore.New(db, database.SQLite))
		exportService = export.NewService(ledgerService, export.Options{PDFEnabled: false})
		importService = importer.NewService(ledgerService)
	)

	router := kyatHttp.New(
		sessions,
		auth.NewHandler(userService, sessions),
		ledgerHandler.NewHandler(ledgerService, sessions),
		exportHandler.NewHandler(exportService),
		importHandler.NewHandler(importService, sessions),
		kyatHttp.Options{AllowedOrigins: []string{"http://localhost:3000"}},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req)
}

func (c *client) send(req *http.Request) (int, map[string]any) {
	c.t.Helper()

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var v any
		require.NoError(c.t, json.Unmarshal(raw, &v))

		if m, ok := v.(map[string]any); ok {
			out = m
		} else {
			out["list"] = v
		}
	}

	return resp.StatusCode, out
}

func (c *client) upload(text string, force bool) (int, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "summary_2024_03.txt")
	require.NoError(c.t, err)
	_, err = io.WriteString(fw, text)
	require.NoError(c.t, err)

	if force {
		require.NoError(c.t, mw.WriteField("force", "true"))
	}

	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+"/api/v1/import/", &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req)
}

func (c *client) login() {
	c.t.Helper()

	status, _ := c.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "aung", "password": "secret", "confirm": "secret",
	})
	require.Equal(c.t, http.StatusCreated, status)

	status, body := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "aung", "password": "secret"})
	require.Equal(c.t, http.StatusOK, status, body)

	status, body = c.do(http.MethodPut, "/api/v1/ledger/period", map[string]string{"period": "2024-03"})
	require.Equal(c.t, http.StatusOK, status, body)
	require.Equal(c.t, "2024-03", body["period"])
}

func entryKey(t *testing.T, body map[string]any) string {
	t.Helper()

	entry, ok := body["entry"].(map[string]any)
	require.True(t, ok, body)

	return entry["key"].(string)
}

func TestAuth(t *testing.T) {
	c := newServer(t)

	status, _ := c.do(http.MethodGet, "/api/v1/ledger/", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := c.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "aung", "password": "secret", "confirm": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Confirm Password မတူပါ", body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "aung", "password": "secret", "confirm": "secret",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Account တင်ပြီးပါပြီ! Login ပြန်ဝင်ပါ", body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "aung", "password": "other", "confirm": "other",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ဤ Username နာမည်ရှိပြီးသား ဖြစ်နေပါသည်", body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "aung", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Username / Password မှားနေပါတယ်", body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "aung", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "aung", body["username"])

	status, _ = c.do(http.MethodGet, "/api/v1/ledger/", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/api/v1/ledger/", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLedgerFlow(t *testing.T) {
	c := newServer(t)
	c.login()

	status, body := c.do(http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"kind": "expense", "description": "Lunch", "amount": "၅,၀၀၀",
		"occurred_at": "2024-03-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "၅၀၀၀ ကျပ် အသစ်ထည့်ပြီးပါပြီ ✔", body["message"])
	lunch := entryKey(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"kind": "expense", "description": "  ", "amount": "100",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ledger.MsgExpenseDescriptionRequired, body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"kind": "income", "amount": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ledger.MsgInvalidAmount, body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"kind": "income", "amount": "50000", "occurred_at": "2024-03-01T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Income (Income) ၅၀၀၀၀ ကျပ် ထည့်ပြီးပါပြီ ✔", body["message"])
	salary := entryKey(t, body)

	status, body = c.do(http.MethodGet, "/api/v1/ledger/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2024-03", body["period"])
	assert.Equal(t, salary, body["last_touched"])
	assert.Equal(t, "5000", body["month_total"])
	assert.Equal(t, "၅,၀၀၀", body["month_total_display"])

	rows := body["rows"].([]any)
	require.Len(t, rows, 4)

	first := rows[0].(map[string]any)
	assert.Equal(t, "income", first["kind"])
	assert.Equal(t, salary, first["key"])
	assert.Equal(t, true, first["highlight"])
	assert.Equal(t, "total", rows[2].(map[string]any)["kind"])
	assert.Equal(t, "divider", rows[3].(map[string]any)["kind"])

	status, body = c.do(http.MethodGet, "/api/v1/ledger/entries/"+lunch, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lunch", body["description"])

	status, body = c.do(http.MethodGet, "/api/v1/ledger/months/2024/13", nil)
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = c.do(http.MethodGet, "/api/v1/ledger/months/2024/2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["rows"])

	status, body = c.do(http.MethodPatch, "/api/v1/ledger/entries/"+lunch, map[string]any{
		"description": "Lunch", "amount": "6000", "note": "team",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "၆၀၀၀ ကျပ် ပြင်ပြီးပါပြီ ✔", body["message"])

	status, body = c.do(http.MethodPost, "/api/v1/ledger/close", nil)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "၃/၂၀၂၄ လ စုစုပေါင်း (သုံးငွေ): ၆,၀၀၀ ကျပ် ✔", body["message"])
	assert.Equal(t, "2024-04", body["period"])

	status, body = c.do(http.MethodPost, "/api/v1/ledger/close", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, ledger.MsgNoEntries, body["message"])

	status, body = c.do(http.MethodGet, "/api/v1/ledger/closures", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["list"], 1)
	assert.Equal(t, "2024-03", body["list"].([]any)[0].(map[string]any)["period"])

	status, _ = c.do(http.MethodDelete, "/api/v1/ledger/entries/"+lunch, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodDelete, "/api/v1/ledger/entries/"+lunch, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ledger.MsgNotFound, body["message"])

	status, _ = c.do(http.MethodGet, "/api/v1/ledger/entries/not-a-key", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestExportAndImport(t *testing.T) {
	c := newServer(t)
	c.login()

	for _, e := range []map[string]any{
		{"kind": "income", "description": "Salary", "amount": "50000", "occurred_at": "2024-03-01T09:00:00Z"},
		{"kind": "expense", "description": "Lunch", "amount": "5000", "occurred_at": "2024-03-01T10:00:00Z"},
	} {
		status, body := c.do(http.MethodPost, "/api/v1/ledger/entries", e)
		require.Equal(t, http.StatusCreated, status, body)
	}

	resp, err := c.http.Get(c.base + "/api/v1/export/txt")
	require.NoError(t, err)
	text, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "summary_2024_03.txt")
	assert.True(t, strings.HasPrefix(string(text), strings.Join(export.Columns[:], "\t")+"\n"))

	status, body := c.do(http.MethodGet, "/api/v1/export/pdf?year=2024&month=3", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, export.MsgPDFUnavailable, body["message"])

	status, _ = c.do(http.MethodGet, "/api/v1/export/xlsx", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = c.upload(string(text), false)
	require.Equal(t, http.StatusConflict, status, body)
	assert.Len(t, body["conflicts"], 2)
	assert.Empty(t, body["new"])

	status, body = c.upload(string(text), true)
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 0, body["imported"])
	assert.EqualValues(t, 2, body["skipped"])

	status, body = c.upload("not a statement", false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["detail"])

	// Importing into an empty month of another period copies the entries.
	moved := strings.ReplaceAll(string(text), "-၀၃-", "-၀၄-")
	status, body = c.upload(moved, false)
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 2, body["imported"])

	status, body = c.do(http.MethodGet, "/api/v1/ledger/months/2024/4", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5000", body["month_total"])
}
