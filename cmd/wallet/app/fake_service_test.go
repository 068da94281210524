package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"raulwallet/internal/api"
)

// fakeService scripts the wallet service for screen tests and counts every
// call, so tests can assert both on navigation and on how many requests a
// flow actually made.
type fakeService struct {
	mu sync.Mutex

	registerResp    api.RegisterResponse
	registerErr     error
	detailsResp     api.UserDetailsResponse
	detailsErr      error
	verifySetupResp api.VerifySetupResponse
	verifySetupErr  error
	verifyResp      api.VerifyTotpResponse
	verifyErr       error
	searchResp      api.SearchUsersResponse
	searchErr       error
	transferResp    api.TransferResponse
	transferErr     error
	txResp          api.TransactionsResponse
	txErr           error

	registerCalls     int
	detailsCalls      int
	verifySetupCalls  int
	verifyCalls       int
	searchCalls       int
	transferCalls     int
	transactionsCalls int

	lastTransfer api.TransferRequest
	lastUsername string
	lastCode     string
	lastQuery    string
}

func (f *fakeService) Register(_ context.Context, req api.RegisterRequest) (api.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	f.lastUsername = req.Username
	return f.registerResp, f.registerErr
}

func (f *fakeService) UserDetails(_ context.Context, username, code string) (api.UserDetailsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalls++
	f.lastUsername, f.lastCode = username, code
	return f.detailsResp, f.detailsErr
}

func (f *fakeService) VerifyTotpSetup(_ context.Context, username, code string) (api.VerifySetupResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifySetupCalls++
	f.lastUsername, f.lastCode = username, code
	return f.verifySetupResp, f.verifySetupErr
}

func (f *fakeService) VerifyTotp(_ context.Context, username, code string) (api.VerifyTotpResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	f.lastUsername, f.lastCode = username, code
	return f.verifyResp, f.verifyErr
}

func (f *fakeService) SearchUsers(_ context.Context, query string) (api.SearchUsersResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery = query
	return f.searchResp, f.searchErr
}

func (f *fakeService) Transfer(_ context.Context, req api.TransferRequest) (api.TransferResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transferCalls++
	f.lastTransfer = req
	return f.transferResp, f.transferErr
}

func (f *fakeService) Transactions(_ context.Context, username, code string) (api.TransactionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactionsCalls++
	f.lastUsername, f.lastCode = username, code
	return f.txResp, f.txErr
}

// msgsOf runs a command tree and returns every message it yields, expanding
// batches. Callers pick which messages to feed back; nothing is pumped
// automatically.
func msgsOf(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, msgsOf(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// firstNav extracts the navigation message from a command tree, if any.
func firstNav(cmd tea.Cmd) (navigateMsg, bool) {
	for _, msg := range msgsOf(cmd) {
		if nav, ok := msg.(navigateMsg); ok {
			return nav, true
		}
	}
	return navigateMsg{}, false
}
