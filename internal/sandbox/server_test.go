package sandbox

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"raulwallet/internal/api"
	"raulwallet/internal/totp"
)

type ServerTestSuite struct {
	suite.Suite
	store   *Store
	service *Service
	app     *fiber.App
}

func (s *ServerTestSuite) SetupTest() {
	store, err := OpenStore(":memory:")
	require.NoError(s.T(), err)
	s.store = store
	s.service = NewService(store, nil, DefaultConfig())
	s.app = s.service.App()
}

func (s *ServerTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *ServerTestSuite) postJSON(path string, body any, out any) int {
	s.T().Helper()
	payload, err := json.Marshal(body)
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	if out != nil {
		require.NoError(s.T(), json.Unmarshal(data, out), "body: %s", data)
	}
	return resp.StatusCode
}

func (s *ServerTestSuite) getJSON(path string, out any) int {
	s.T().Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

// register creates and verifies an account, returning its TOTP secret.
func (s *ServerTestSuite) register(name, username string) string {
	s.T().Helper()
	var reg api.RegisterResponse
	s.postJSON("/api/register", api.RegisterRequest{Name: name, Username: username, Email: username + "@example.com"}, &reg)
	require.True(s.T(), reg.Success)
	require.NotNil(s.T(), reg.TotpSetup)

	code := s.code(reg.TotpSetup.Secret)
	var verify api.VerifySetupResponse
	s.postJSON("/api/verify-totp-setup", api.CredentialsRequest{Username: username, TotpToken: code}, &verify)
	require.True(s.T(), verify.Success)

	return reg.TotpSetup.Secret
}

func (s *ServerTestSuite) code(secret string) string {
	code, err := totp.Generate(secret, time.Now())
	require.NoError(s.T(), err)
	return code
}

func (s *ServerTestSuite) TestRegisterValidation() {
	var resp api.RegisterResponse
	s.postJSON("/api/register", api.RegisterRequest{Name: "No Email", Username: "noemail"}, &resp)
	assert.False(s.T(), resp.Success)

	s.register("Lucia Perez", "lucia")
	s.postJSON("/api/register", api.RegisterRequest{Name: "Other", Username: "lucia", Email: "x@example.com"}, &resp)
	assert.False(s.T(), resp.Success)
	assert.Contains(s.T(), resp.Message, "taken")
}

func (s *ServerTestSuite) TestLoginRequiresVerification() {
	var reg api.RegisterResponse
	s.postJSON("/api/register", api.RegisterRequest{Name: "Lucia", Username: "lucia", Email: "l@example.com"}, &reg)
	require.True(s.T(), reg.Success)

	var details api.UserDetailsResponse
	status := s.postJSON("/api/user-details", api.CredentialsRequest{Username: "lucia", TotpToken: s.code(reg.TotpSetup.Secret)}, &details)
	assert.Equal(s.T(), http.StatusForbidden, status)
	assert.False(s.T(), details.Success)
}

func (s *ServerTestSuite) TestLoginAndWelcomeAward() {
	secret := s.register("Lucia Perez", "lucia")

	var details api.UserDetailsResponse
	status := s.postJSON("/api/user-details", api.CredentialsRequest{Username: "lucia", TotpToken: s.code(secret)}, &details)
	require.Equal(s.T(), http.StatusOK, status)
	require.True(s.T(), details.Success)
	require.NotNil(s.T(), details.User)
	assert.Equal(s.T(), 1000.0, details.User.Balance)

	var history api.TransactionsResponse
	s.postJSON("/api/transactions", api.CredentialsRequest{Username: "lucia", TotpToken: s.code(secret)}, &history)
	require.True(s.T(), history.Success)
	require.Len(s.T(), history.Transactions, 1)
	assert.Equal(s.T(), "award", history.Transactions[0].Type)
}

func (s *ServerTestSuite) TestWrongCodeRejected() {
	s.register("Lucia Perez", "lucia")

	var details api.UserDetailsResponse
	status := s.postJSON("/api/user-details", api.CredentialsRequest{Username: "lucia", TotpToken: "000000"}, &details)
	assert.Equal(s.T(), http.StatusOK, status)
	assert.False(s.T(), details.Success)
}

func (s *ServerTestSuite) TestSearchUsers() {
	s.register("Lucia Perez", "lucia")
	s.register("Bob Smith", "bob")

	var resp api.SearchUsersResponse
	s.getJSON("/api/search-users?q=luc", &resp)
	require.True(s.T(), resp.Success)
	require.Len(s.T(), resp.Users, 1)
	assert.Equal(s.T(), "lucia", resp.Users[0].Username)

	// The service does not self-exclude; that is the client resolver's job.
	s.getJSON("/api/search-users?q=b", &resp)
	assert.NotEmpty(s.T(), resp.Users)

	s.getJSON("/api/search-users?q=", &resp)
	assert.Empty(s.T(), resp.Users)
}

func (s *ServerTestSuite) stepUp(username, secret string) string {
	s.T().Helper()
	var resp api.VerifyTotpResponse
	s.postJSON("/api/verify-totp", api.CredentialsRequest{Username: username, TotpToken: s.code(secret)}, &resp)
	require.True(s.T(), resp.Success)
	require.NotEmpty(s.T(), resp.OperationToken)
	return resp.OperationToken
}

func (s *ServerTestSuite) TestTransferFlow() {
	luciaSecret := s.register("Lucia Perez", "lucia")
	s.register("Bob Smith", "bob")

	token := s.stepUp("lucia", luciaSecret)

	var resp api.TransferResponse
	s.postJSON("/api/transfer", api.TransferRequest{
		FromUsername:   "lucia",
		ToUsername:     "bob",
		Amount:         200,
		Description:    "lunch",
		OperationToken: token,
	}, &resp)
	require.True(s.T(), resp.Success, "message: %s", resp.Message)
	require.NotNil(s.T(), resp.Transfer)
	require.NotNil(s.T(), resp.Transfer.From.NewBalance)
	assert.Equal(s.T(), 800.0, *resp.Transfer.From.NewBalance)

	// Both sides see the movement, typed relative to the viewer.
	var luciaHistory api.TransactionsResponse
	s.postJSON("/api/transactions", api.CredentialsRequest{Username: "lucia", TotpToken: s.code(luciaSecret)}, &luciaHistory)
	require.True(s.T(), luciaHistory.Success)
	assert.Equal(s.T(), "sent", luciaHistory.Transactions[0].Type)
	assert.Equal(s.T(), "lunch", luciaHistory.Transactions[0].Description)
}

func (s *ServerTestSuite) TestOperationTokenSingleUse() {
	luciaSecret := s.register("Lucia Perez", "lucia")
	s.register("Bob Smith", "bob")

	token := s.stepUp("lucia", luciaSecret)
	req := api.TransferRequest{FromUsername: "lucia", ToUsername: "bob", Amount: 10, OperationToken: token}

	var first, second api.TransferResponse
	s.postJSON("/api/transfer", req, &first)
	require.True(s.T(), first.Success)

	s.postJSON("/api/transfer", req, &second)
	assert.False(s.T(), second.Success)
	assert.Contains(s.T(), second.Message, "operation token")
}

func (s *ServerTestSuite) TestTransferRejections() {
	luciaSecret := s.register("Lucia Perez", "lucia")
	s.register("Bob Smith", "bob")

	var resp api.TransferResponse

	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "bob", Amount: 10, OperationToken: "bogus"}, &resp)
	assert.False(s.T(), resp.Success)

	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "lucia", Amount: 10, OperationToken: s.stepUp("lucia", luciaSecret)}, &resp)
	assert.False(s.T(), resp.Success)
	assert.Contains(s.T(), resp.Message, "yourself")

	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "bob", Amount: 5000, OperationToken: s.stepUp("lucia", luciaSecret)}, &resp)
	assert.False(s.T(), resp.Success)
	assert.Contains(s.T(), resp.Message, "insufficient")

	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "ghost", Amount: 10, OperationToken: s.stepUp("lucia", luciaSecret)}, &resp)
	assert.False(s.T(), resp.Success)
	assert.Contains(s.T(), resp.Message, "recipient")

	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "bob", Amount: -1, OperationToken: s.stepUp("lucia", luciaSecret)}, &resp)
	assert.False(s.T(), resp.Success)
	assert.Contains(s.T(), resp.Message, "amount")
}

func (s *ServerTestSuite) TestExpiredTokenRejected() {
	luciaSecret := s.register("Lucia Perez", "lucia")
	s.register("Bob Smith", "bob")

	token := s.stepUp("lucia", luciaSecret)
	s.service.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	var resp api.TransferResponse
	s.postJSON("/api/transfer", api.TransferRequest{FromUsername: "lucia", ToUsername: "bob", Amount: 10, OperationToken: token}, &resp)
	assert.False(s.T(), resp.Success)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
