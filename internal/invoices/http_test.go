package invoices

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk-backend/internal/auth"
	"github.com/clientdesk/clientdesk-backend/internal/clients"
	"github.com/clientdesk/clientdesk-backend/internal/users"
)

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := gin.New()
	// Stand-in for auth.WithOwner: the owner is already resolved.
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxOwnerID, testOwnerID)
		c.Next()
	})
	Register(r.Group("/invoices"), NewRepo(db, 5), users.NewRepo(db), clients.NewRepo(db))
	return r, mock
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type invoiceEnvelope struct {
	OK      bool    `json:"ok"`
	Invoice Invoice `json:"invoice"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	t.Run("creates the first invoice end to end", func(t *testing.T) {
		r, mock := setupRouter(t)

		expectLatestNumber(mock, "")
		mock.ExpectQuery(`insert into invoices`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("0d6e05a0-9a17-4c26-97a4-5f4b5de3a333", time.Now(), time.Now()))

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design", "qty": 2, "unitPriceCents": 10000},
				{"description": "Hosting", "qty": 1, "unitPriceCents": 5000},
			},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var resp invoiceEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "INV-00001", resp.Invoice.Number)
		assert.EqualValues(t, 25000, resp.Invoice.TotalCents)
		assert.Equal(t, StatusDraft, resp.Invoice.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an empty line-item list", func(t *testing.T) {
		r, _ := setupRouter(t)

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId":  testClientID,
			"lineItems": []gin.H{},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp invoiceEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION", resp.Error.Code)
	})

	t.Run("rejects descriptions outside the allowed charset", func(t *testing.T) {
		r, _ := setupRouter(t)

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design <script>", "qty": 1, "unitPriceCents": 100},
			},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		r, _ := setupRouter(t)

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design", "qty": 0, "unitPriceCents": 100},
			},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		r, _ := setupRouter(t)

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design", "qty": 1, "unitPriceCents": 100},
			},
			"issueDate": "08/01/2026",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps exhausted numbering retries to a conflict", func(t *testing.T) {
		r, mock := setupRouter(t)

		for i := 0; i < 5; i++ {
			expectLatestNumber(mock, "INV-00001")
			mock.ExpectQuery(`insert into invoices`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_owner_number_idx"})
		}

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design", "qty": 1, "unitPriceCents": 100},
			},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		var resp invoiceEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "NUMBER_CONFLICT", resp.Error.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a corrupt sequence to a data-integrity error", func(t *testing.T) {
		r, mock := setupRouter(t)

		expectLatestNumber(mock, "BROKEN-1")

		rr := doJSON(t, r, http.MethodPost, "/invoices", gin.H{
			"clientId": testClientID,
			"lineItems": []gin.H{
				{"description": "Design", "qty": 1, "unitPriceCents": 100},
			},
			"issueDate": "2026-08-01",
			"dueDate":   "2026-08-15",
		})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var resp invoiceEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "DATA_INTEGRITY", resp.Error.Code)
	})
}

func TestPatchInvoiceEndpoint(t *testing.T) {
	t.Run("marking paid returns the stamped invoice", func(t *testing.T) {
		r, mock := setupRouter(t)

		now := time.Now()
		mock.ExpectQuery(`update invoices`).
			WillReturnRows(sqlmock.NewRows(invoiceColumns()).AddRow(
				"inv-1", testClientID, "", "INV-00004", "paid",
				[]byte(`[{"description":"Design","qty":2,"unitPriceCents":10000}]`),
				int64(20000), now, now, now, "", now, now,
			))

		rr := doJSON(t, r, http.MethodPatch, "/invoices/inv-1", gin.H{"status": "paid"})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp invoiceEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, StatusPaid, resp.Invoice.Status)
		assert.NotNil(t, resp.Invoice.PaidDate)
		assert.EqualValues(t, 20000, resp.Invoice.TotalCents)
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		r, _ := setupRouter(t)

		rr := doJSON(t, r, http.MethodPatch, "/invoices/inv-1", gin.H{"status": "void"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing invoice is a 404", func(t *testing.T) {
		r, mock := setupRouter(t)

		mock.ExpectQuery(`update invoices`).WillReturnError(sql.ErrNoRows)

		rr := doJSON(t, r, http.MethodPatch, "/invoices/inv-x", gin.H{"notes": "late"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestInvoicePDFEndpoint(t *testing.T) {
	t.Run("streams a PDF with the download filename", func(t *testing.T) {
		r, mock := setupRouter(t)

		now := time.Now()
		mock.ExpectQuery(`select`).
			WillReturnRows(sqlmock.NewRows(invoiceColumns()).AddRow(
				"inv-1", testClientID, "", "INV-00007", "paid",
				[]byte(`[{"description":"Design","qty":2,"unitPriceCents":10000}]`),
				int64(20000), now, now, now, "", now, now,
			))
		mock.ExpectQuery(`select`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "external_uid", "email", "name", "organization"}).
				AddRow(testOwnerID, "demo-user", "ada@example.com", "Ada Freelance", "Ada Studio"))
		mock.ExpectQuery(`select`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "company", "notes"}).
				AddRow(testClientID, "Bob Buyer", "bob@example.com", "", "Buyer Co", ""))

		rr := doJSON(t, r, http.MethodGet, "/invoices/inv-1/pdf", nil)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="invoice-INV-00007.pdf"`, rr.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("missing invoice is a 404", func(t *testing.T) {
		r, mock := setupRouter(t)

		mock.ExpectQuery(`select`).WillReturnError(sql.ErrNoRows)

		rr := doJSON(t, r, http.MethodGet, "/invoices/inv-x/pdf", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
