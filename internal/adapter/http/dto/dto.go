package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Role      string  `json:"role,omitempty"`
}

// LoginRequest is the request body for credential login.
type LoginRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	DeviceID *string `json:"device_id,omitempty" binding:"omitempty,max=200"`
}

// RefreshRequest is the request body for refresh token rotation.
type RefreshRequest struct {
	RefreshToken string  `json:"refresh_token" binding:"required"`
	DeviceID     *string `json:"device_id,omitempty" binding:"omitempty,max=200"`
}

// LogoutRequest is the request body for session termination.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Role      string  `json:"role"`
	Balance   string  `json:"balance"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// SessionResponse is the response body for login and refresh.
type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}

// QRPaymentRequest carries the raw scanned QR payload.
type QRPaymentRequest struct {
	Payload string `json:"payload" binding:"required,max=2048"`
}

// QRPaymentResponse is the settlement view returned to the terminal.
type QRPaymentResponse struct {
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	PayerBalance    string `json:"payer_balance"`
	TerminalBalance string `json:"terminal_balance"`
	PayerReceiptNo  string `json:"payer_receipt_no"`
	PayeeReceiptNo  string `json:"payee_receipt_no"`
	SchoolCode      string `json:"school_code"`
}

// TopUpCreateRequest is the request body for a child's top-up request.
type TopUpCreateRequest struct {
	Note *string `json:"note,omitempty" binding:"omitempty,max=500"`
}

// TopUpRequestResponse is the view of a created top-up request.
type TopUpRequestResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	RequestedAt string  `json:"requested_at"`
	Note        *string `json:"note,omitempty"`
}

// TopUpInboxItemResponse is one pending request in the parent's inbox.
type TopUpInboxItemResponse struct {
	ID            string  `json:"id"`
	ChildID       string  `json:"child_id"`
	ChildUsername string  `json:"child_username"`
	RequestedAt   string  `json:"requested_at"`
	Note          *string `json:"note,omitempty"`
}

// ApproveTopUpRequest is the request body for approving a top-up request.
type ApproveTopUpRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// TopUpChildRequest is the request body for a direct parent-to-child transfer.
type TopUpChildRequest struct {
	ChildID string `json:"child_id" binding:"required,uuid"`
	Amount  string `json:"amount" binding:"required"`
}

// TransferResponse reports a settled transfer back to its initiator.
type TransferResponse struct {
	Amount         string `json:"amount"`
	PayerReceiptNo string `json:"payer_receipt_no"`
	PayeeReceiptNo string `json:"payee_receipt_no"`
	PayerBalance   string `json:"payer_balance"`
	PayeeBalance   string `json:"payee_balance"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// ReceiptResponse is one receipt with names resolved for display.
type ReceiptResponse struct {
	ID         string  `json:"id"`
	ReceiptNo  string  `json:"receipt_no"`
	Amount     string  `json:"amount"`
	Kind       string  `json:"kind"`
	Direction  string  `json:"direction"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	SchoolName *string `json:"school_name,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// TransactionResponse is one ledger entry as shown to its owner.
type TransactionResponse struct {
	ID           string  `json:"id"`
	Amount       string  `json:"amount"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description"`
	Counterparty string  `json:"counterparty"`
	SchoolName   *string `json:"school_name,omitempty"`
	CreatedAt    string  `json:"created_at"`
}
