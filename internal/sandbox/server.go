package sandbox

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"raulwallet/internal/api"
	"raulwallet/internal/totp"
	"raulwallet/internal/wallet"
)

// Config tunes the sandbox service.
type Config struct {
	// Issuer names the otpauth enrollment entries.
	Issuer string
	// WelcomeAward is credited to every new account.
	WelcomeAward float64
	// TokenTTL bounds how long an unused operation token stays valid.
	TokenTTL time.Duration
}

// DefaultConfig returns the settings used by `raulwallet sandbox`.
func DefaultConfig() Config {
	return Config{
		Issuer:       "RaulCoin",
		WelcomeAward: 1000,
		TokenTTL:     5 * time.Minute,
	}
}

type tokenGrant struct {
	username string
	expires  time.Time
}

// Service owns the sandbox state: the sqlite store plus the in-memory
// single-use operation tokens.
type Service struct {
	store *Store
	log   *zap.Logger
	cfg   Config

	mu     sync.Mutex
	tokens map[string]tokenGrant

	now func() time.Time
}

// NewService wires a sandbox service around a store.
func NewService(store *Store, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		log:    log,
		cfg:    cfg,
		tokens: make(map[string]tokenGrant),
		now:    time.Now,
	}
}

// App builds the fiber application exposing the wallet API routes.
func (s *Service) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestID())

	app.Post("/api/register", s.handleRegister)
	app.Post("/api/user-details", s.handleUserDetails)
	app.Post("/api/verify-totp-setup", s.handleVerifySetup)
	app.Post("/api/verify-totp", s.handleVerifyTotp)
	app.Get("/api/search-users", s.handleSearchUsers)
	app.Post("/api/transfer", s.handleTransfer)
	app.Post("/api/transactions", s.handleTransactions)

	return app
}

const requestIDHeader = "X-Request-ID"

// requestID ensures each request carries a stable identifier for tracing.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Locals(requestIDHeader, id)
		return c.Next()
	}
}

func (s *Service) handleRegister(c *fiber.Ctx) error {
	var req api.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Username == "" || req.Email == "" {
		return c.JSON(api.RegisterResponse{Success: false, Message: "name, username and email are required"})
	}

	if _, err := s.store.Account(req.Username); err == nil {
		return c.JSON(api.RegisterResponse{Success: false, Message: "username already taken"})
	} else if !errors.Is(err, ErrNotFound) {
		return s.internalError(c, "load account", err)
	}

	secret, err := totp.NewSecret()
	if err != nil {
		return s.internalError(c, "generate secret", err)
	}

	if err := s.store.CreateAccount(Account{
		Name:       req.Name,
		Username:   req.Username,
		Email:      req.Email,
		TotpSecret: secret,
	}); err != nil {
		return s.internalError(c, "create account", err)
	}
	if err := s.store.Award(req.Username, req.Name, s.cfg.WelcomeAward, "Welcome award", s.now()); err != nil {
		return s.internalError(c, "welcome award", err)
	}

	s.log.Info("account registered", zap.String("username", req.Username))
	return c.JSON(api.RegisterResponse{
		Success: true,
		TotpSetup: &api.TotpSetup{
			Secret:      secret,
			OtpauthURL:  totp.SetupURL(secret, req.Username, s.cfg.Issuer),
			Instruction: "Scan the otpauth URL with your authenticator app, then verify a code to activate the account.",
		},
	})
}

func (s *Service) handleUserDetails(c *fiber.Ctx) error {
	account, ok, err := s.authenticate(c)
	if err != nil || !ok {
		return err
	}
	return c.JSON(api.UserDetailsResponse{
		Success: true,
		User:    &wallet.Identity{Name: account.Name, Username: account.Username, Balance: account.Balance},
	})
}

func (s *Service) handleVerifySetup(c *fiber.Ctx) error {
	var req api.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, err := s.store.Account(req.Username)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(api.VerifySetupResponse{Success: false, Message: "user not found"})
	}
	if err != nil {
		return s.internalError(c, "load account", err)
	}

	if !totp.Verify(account.TotpSecret, req.TotpToken, s.now()) {
		return c.JSON(api.VerifySetupResponse{Success: false, Message: "invalid TOTP code"})
	}
	if err := s.store.MarkVerified(req.Username); err != nil {
		return s.internalError(c, "mark verified", err)
	}

	s.log.Info("account verified", zap.String("username", req.Username))
	return c.JSON(api.VerifySetupResponse{Success: true, Message: "account verified"})
}

func (s *Service) handleVerifyTotp(c *fiber.Ctx) error {
	account, ok, err := s.authenticate(c)
	if err != nil || !ok {
		return err
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = tokenGrant{username: account.Username, expires: s.now().Add(s.cfg.TokenTTL)}
	s.mu.Unlock()

	return c.JSON(api.VerifyTotpResponse{Success: true, OperationToken: token})
}

func (s *Service) handleSearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.JSON(api.SearchUsersResponse{Success: true, Users: []wallet.Recipient{}})
	}

	users, err := s.store.Search(query)
	if err != nil {
		return s.internalError(c, "search", err)
	}
	if users == nil {
		users = []wallet.Recipient{}
	}
	return c.JSON(api.SearchUsersResponse{Success: true, Users: users})
}

func (s *Service) handleTransfer(c *fiber.Ctx) error {
	var req api.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if !s.consumeToken(req.OperationToken, req.FromUsername) {
		return c.JSON(api.TransferResponse{Success: false, Message: "invalid or expired operation token"})
	}
	if req.Amount <= 0 {
		return c.JSON(api.TransferResponse{Success: false, Message: "invalid amount"})
	}
	if req.FromUsername == req.ToUsername {
		return c.JSON(api.TransferResponse{Success: false, Message: "cannot transfer to yourself"})
	}

	from, err := s.store.Account(req.FromUsername)
	if err != nil {
		return c.JSON(api.TransferResponse{Success: false, Message: "sender not found"})
	}
	to, err := s.store.Account(req.ToUsername)
	if err != nil {
		return c.JSON(api.TransferResponse{Success: false, Message: "recipient not found"})
	}

	at := s.now()
	newBalance, err := s.store.Transfer(from, to, req.Amount, strings.TrimSpace(req.Description), at)
	if errors.Is(err, ErrInsufficientFunds) {
		return c.JSON(api.TransferResponse{Success: false, Message: "insufficient funds"})
	}
	if err != nil {
		return s.internalError(c, "transfer", err)
	}

	s.log.Info("transfer executed",
		zap.String("from", from.Username),
		zap.String("to", to.Username),
		zap.Float64("amount", req.Amount))

	return c.JSON(api.TransferResponse{
		Success: true,
		Transfer: &wallet.Transaction{
			Type:        wallet.TypeSent,
			Amount:      req.Amount,
			Description: strings.TrimSpace(req.Description),
			CreatedAt:   at.Unix(),
			From:        &wallet.Party{Name: from.Name, Username: from.Username, NewBalance: &newBalance},
			To:          &wallet.Party{Name: to.Name, Username: to.Username},
		},
	})
}

func (s *Service) handleTransactions(c *fiber.Ctx) error {
	account, ok, err := s.authenticate(c)
	if err != nil || !ok {
		return err
	}

	list, err := s.store.TransactionsFor(account.Username)
	if err != nil {
		return s.internalError(c, "load transactions", err)
	}
	if list == nil {
		list = []wallet.Transaction{}
	}
	return c.JSON(api.TransactionsResponse{Success: true, Transactions: list})
}

// authenticate parses the {username, totpToken} body and checks it against
// the account. A handled failure is written to c and returned as (_, false,
// nil); the caller proceeds only when ok is true.
func (s *Service) authenticate(c *fiber.Ctx) (Account, bool, error) {
	var req api.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return Account{}, false, fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, err := s.store.Account(req.Username)
	if errors.Is(err, ErrNotFound) {
		return Account{}, false, c.JSON(fiber.Map{"success": false, "message": "user not found"})
	}
	if err != nil {
		return Account{}, false, s.internalError(c, "load account", err)
	}

	if !account.Verified {
		return Account{}, false, c.Status(http.StatusForbidden).
			JSON(fiber.Map{"success": false, "message": "TOTP verification required"})
	}
	if !totp.Verify(account.TotpSecret, req.TotpToken, s.now()) {
		return Account{}, false, c.JSON(fiber.Map{"success": false, "message": "invalid credentials"})
	}
	return account, true, nil
}

// consumeToken validates and burns an operation token. Tokens are single-use
// and scoped to the user they were issued for.
func (s *Service) consumeToken(token, username string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.tokens[token]
	if !ok {
		return false
	}
	delete(s.tokens, token)
	return grant.username == username && s.now().Before(grant.expires)
}

func (s *Service) internalError(c *fiber.Ctx, op string, err error) error {
	s.log.Error("sandbox failure", zap.String("op", op), zap.Error(err))
	return c.Status(http.StatusInternalServerError).
		JSON(fiber.Map{"success": false, "message": "internal error"})
}
