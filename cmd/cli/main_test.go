package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

// fakeAPI answers every request with status and body and records what it received.
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.header = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.body); err != nil {
				t.Errorf("request body is not JSON: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestLoanCreateCmd(t *testing.T) {
	srv, rec := fakeAPI(t, http.StatusCreated, `{"loan_id":"loan-1","monthly_emi":"5000.00"}`)

	out, err := execute(t, srv, "loan", "create",
		"--customer", "cust-1", "--principal", "100000", "--years", "2", "--rate", "10",
		"--idempotency-key", "k-1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/api/v1/loans" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}
	if rec.header.Get("Idempotency-Key") != "k-1" {
		t.Fatalf("expected idempotency key header, got %q", rec.header.Get("Idempotency-Key"))
	}
	if rec.body["customer_id"] != "cust-1" || rec.body["principal"] != "100000" || rec.body["annual_rate_percent"] != "10" {
		t.Fatalf("unexpected request body %v", rec.body)
	}
	if rec.body["period_years"] != float64(2) {
		t.Fatalf("expected period_years 2, got %v", rec.body["period_years"])
	}
	if !strings.Contains(out, `"loan_id": "loan-1"`) {
		t.Fatalf("expected loan in output, got %q", out)
	}
}

func TestLoanCreateCmd_InvalidPrincipal(t *testing.T) {
	srv, rec := fakeAPI(t, http.StatusCreated, `{}`)

	_, err := execute(t, srv, "loan", "create",
		"--customer", "cust-1", "--principal", "lots", "--years", "2", "--rate", "10")
	if err == nil || !strings.Contains(err.Error(), "--principal") {
		t.Fatalf("expected principal error, got %v", err)
	}
	if rec.method != "" {
		t.Fatal("expected no request to be sent")
	}
}

func TestLoanQuoteCmd_OmitsCustomer(t *testing.T) {
	srv, rec := fakeAPI(t, http.StatusOK, `{"terms":{},"schedule":[]}`)

	if _, err := execute(t, srv, "loan", "quote", "--principal", "1000", "--years", "1", "--rate", "1"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if rec.path != "/api/v1/loans/quote" {
		t.Fatalf("unexpected path %s", rec.path)
	}
	if _, ok := rec.body["customer_id"]; ok {
		t.Fatal("quote must not send a customer")
	}
}

func TestLoanPayCmd(t *testing.T) {
	srv, rec := fakeAPI(t, http.StatusCreated, `{"payment":{"payment_id":"pay-1"}}`)

	if _, err := execute(t, srv, "loan", "pay", "loan-1", "--amount", "5000", "--type", "LUMP_SUM"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if rec.path != "/api/v1/loans/loan-1/payments" {
		t.Fatalf("unexpected path %s", rec.path)
	}
	if rec.body["amount"] != "5000" || rec.body["type"] != "LUMP_SUM" {
		t.Fatalf("unexpected request body %v", rec.body)
	}
	if _, ok := rec.header["Idempotency-Key"]; ok {
		t.Fatal("expected no idempotency key when the flag is unset")
	}
}

func TestLoanPayCmd_ExceedsBalance(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusConflict,
		`{"error":"failed to record payment","message":"payment exceeds balance","current_balance":"1200.00"}`)

	_, err := execute(t, srv, "loan", "pay", "loan-1", "--amount", "5000")

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Balance != "1200.00" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "current balance 1200.00") {
		t.Fatalf("expected balance in message, got %q", err.Error())
	}
}

func TestLoanVerifyCmd(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		srv, _ := fakeAPI(t, http.StatusOK, `{"consistent":true,"violations":[]}`)

		out, err := execute(t, srv, "loan", "verify", "loan-1")
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}
		if !strings.Contains(out, "PASSED") {
			t.Fatalf("expected PASSED, got %q", out)
		}
	})

	t.Run("inconsistent", func(t *testing.T) {
		srv, _ := fakeAPI(t, http.StatusOK, `{"consistent":false,"violations":["sum of payments != amount_paid"]}`)

		out, err := execute(t, srv, "loan", "verify", "loan-1")
		if !errors.Is(err, errInconsistent) {
			t.Fatalf("expected errInconsistent, got %v", err)
		}
		if !strings.Contains(out, "sum of payments != amount_paid") {
			t.Fatalf("expected violation in output, got %q", out)
		}
	})
}

func TestCustomerCommands(t *testing.T) {
	srv, rec := fakeAPI(t, http.StatusOK, `{"customer":{"id":"a/b"}}`)

	if _, err := execute(t, srv, "customer", "overview", "a/b"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if rec.path != "/api/v1/customers/a%2Fb/overview" {
		t.Fatalf("expected escaped customer id, got %s", rec.path)
	}

	if _, err := execute(t, srv, "customer", "register", "cust-1", "--name", "Ada"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if rec.method != http.MethodPost || rec.body["id"] != "cust-1" || rec.body["name"] != "Ada" {
		t.Fatalf("unexpected register request %s %v", rec.method, rec.body)
	}
}

func TestServerErrorWithoutJSONBody(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusBadGateway, "upstream down")

	_, err := execute(t, srv, "loan", "get", "loan-1")

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Code != "Bad Gateway" || apiErr.Message != "upstream down" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}
