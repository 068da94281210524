package api

import "raulwallet/internal/wallet"

// TotpSetup is the enrollment material returned by registration.
type TotpSetup struct {
	Secret      string `json:"secret"`
	OtpauthURL  string `json:"otpauthUrl"`
	Instruction string `json:"instruction,omitempty"`
}

// RegisterRequest creates a wallet account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse carries the TOTP enrollment payload on success.
type RegisterResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	TotpSetup *TotpSetup `json:"totpSetup,omitempty"`
}

// CredentialsRequest is the {username, code} pair used by login, setup
// verification, step-up verification and the history fetch.
type CredentialsRequest struct {
	Username  string `json:"username"`
	TotpToken string `json:"totpToken"`
}

// UserDetailsResponse is the login / profile-fetch result.
type UserDetailsResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *wallet.Identity `json:"user,omitempty"`
}

// VerifySetupResponse reports whether first-time TOTP enrollment succeeded.
type VerifySetupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// VerifyTotpResponse is the step-up verification result. The operation token
// authorizes exactly one subsequent mutating call.
type VerifyTotpResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	OperationToken string `json:"operationToken,omitempty"`
}

// SearchUsersResponse lists directory matches for a free-text query.
type SearchUsersResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Users   []wallet.Recipient `json:"users"`
}

// TransferRequest executes a transfer authorized by a one-time operation
// token.
type TransferRequest struct {
	FromUsername   string  `json:"fromUsername"`
	ToUsername     string  `json:"toUsername"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description,omitempty"`
	OperationToken string  `json:"operationToken"`
}

// TransferResponse carries the resulting record, including the sender's
// authoritative new balance under transfer.from.newBalance.
type TransferResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message,omitempty"`
	Transfer *wallet.Transaction `json:"transfer,omitempty"`
}

// TransactionsResponse is the history fetch result, ordered by the service.
type TransactionsResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Transactions []wallet.Transaction `json:"transactions"`
}
