package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"

	"raulwallet/internal/wallet"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// net/http keeps idle connections in a background goroutine pool.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, time.Second, nil)
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c
}

func TestUserDetailsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user-details" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected a request ID header")
		}
		var req CredentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Username != "lucia" || req.TotpToken != "123456" {
			t.Errorf("unexpected credentials %+v", req)
		}
		json.NewEncoder(w).Encode(UserDetailsResponse{
			Success: true,
			User:    &wallet.Identity{Name: "Lucia", Username: "lucia", Balance: 1000},
		})
	})

	resp, err := c.UserDetails(context.Background(), "lucia", "123456")
	if err != nil {
		t.Fatalf("UserDetails: %v", err)
	}
	if !resp.Success || resp.User == nil || resp.User.Balance != 1000 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRejectedFlagIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyTotpResponse{Success: false, Message: "invalid code"})
	})

	resp, err := c.VerifyTotp(context.Background(), "lucia", "000000")
	if err != nil {
		t.Fatalf("a 200 with success=false must not be a transport error, got %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Message != "invalid code" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestNonOKCarriesServiceMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "TOTP verification required"})
	})

	_, err := c.UserDetails(context.Background(), "lucia", "123456")
	if err == nil {
		t.Fatal("expected an error for a 403")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "TOTP verification required" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if !IsVerificationRequired(err) {
		t.Fatal("expected IsVerificationRequired to match")
	}
}

func TestIsVerificationRequired(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"403 other message", &Error{Status: 403, Message: "account locked"}, false},
		{"403 totp", &Error{Status: 403, Message: "TOTP verification required"}, true},
		{"400 totp", &Error{Status: 400, Message: "TOTP verification required"}, false},
	}
	for _, c := range cases {
		if got := IsVerificationRequired(c.err); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSearchUsersQueryEncoding(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(SearchUsersResponse{
			Success: true,
			Users:   []wallet.Recipient{{Name: "Alex Doe", Username: "alex"}},
		})
	})

	resp, err := c.SearchUsers(context.Background(), "alex d")
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if gotQuery != "alex d" {
		t.Errorf("query = %q, want %q", gotQuery, "alex d")
	}
	if len(resp.Users) != 1 || resp.Users[0].Username != "alex" {
		t.Fatalf("unexpected users %+v", resp.Users)
	}
}

func TestTransferRoundTrip(t *testing.T) {
	newBalance := 800.0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.OperationToken != "op-1" || req.Amount != 200 {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(TransferResponse{
			Success: true,
			Transfer: &wallet.Transaction{
				Type:      wallet.TypeSent,
				Amount:    200,
				CreatedAt: 1700000000,
				From:      &wallet.Party{Name: "Lucia", Username: "lucia", NewBalance: &newBalance},
				To:        &wallet.Party{Name: "Bob", Username: "bob"},
			},
		})
	})

	resp, err := c.Transfer(context.Background(), TransferRequest{
		FromUsername:   "lucia",
		ToUsername:     "bob",
		Amount:         200,
		OperationToken: "op-1",
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if resp.Transfer == nil || resp.Transfer.From == nil || resp.Transfer.From.NewBalance == nil {
		t.Fatal("expected sender new balance in response")
	}
	if *resp.Transfer.From.NewBalance != 800 {
		t.Fatalf("newBalance = %v, want 800", *resp.Transfer.From.NewBalance)
	}
}

func TestTimeoutSurfacesAsTransportError(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Transactions(context.Background(), "lucia", "123456")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Fatalf("timeout must not look like a service rejection, got %+v", apiErr)
	}
}

func TestMalformedBodyIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.Transactions(context.Background(), "lucia", "123456")
	if err == nil {
		t.Fatal("expected a decode error")
	}
}
