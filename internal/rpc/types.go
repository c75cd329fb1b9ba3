package rpc

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// ParsedTokenInfo is the parsed token-account state under jsonParsed encoding
type ParsedTokenInfo struct {
	IsNative    bool        `json:"isNative"`
	Mint        string      `json:"mint"`
	Owner       string      `json:"owner"`
	State       string      `json:"state"`
	TokenAmount TokenAmount `json:"tokenAmount"`
}

// ParsedTokenData wraps the parsed info with its account type tag
type ParsedTokenData struct {
	Info ParsedTokenInfo `json:"info"`
	Type string          `json:"type"`
}

// ParsedAccountData holds parsed account data plus the owning program name
type ParsedAccountData struct {
	Parsed  ParsedTokenData `json:"parsed"`
	Program string          `json:"program"`
	Space   int             `json:"space"`
}

// ParsedTokenAccountInfo is the account envelope for a parsed token account
type ParsedTokenAccountInfo struct {
	Data       ParsedAccountData `json:"data"`
	Executable bool              `json:"executable"`
	Lamports   uint64            `json:"lamports"`
	Owner      string            `json:"owner"`
}

// ParsedTokenAccount is one entry from getTokenAccountsByOwner
type ParsedTokenAccount struct {
	Pubkey  string                 `json:"pubkey"`
	Account ParsedTokenAccountInfo `json:"account"`
}

// TokenAccountsResponse is the response from getTokenAccountsByOwner
type TokenAccountsResponse struct {
	Result struct {
		Value []ParsedTokenAccount `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// AccountInfoValue is the value portion of a getAccountInfo response
type AccountInfoValue struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result struct {
		Value *AccountInfoValue `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
