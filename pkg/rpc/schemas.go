package rpc

// Base58-encoded identifiers, bounded per §6's bit-precision table.
type (
	Pubkey    string // base58, length <= 44
	Signature string // base58, length <= 88
	Hash      string // base58, length <= 44
)

// Base numeric types, per §6.
type (
	Lamport      uint64
	MicroLamport uint64
	Slot         uint64
	Timestamp    int64
)

// Commitment is Solana's finality guarantee level.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// DataSlice requests a byte range of account data.
type DataSlice struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// --- getAccountInfo ---------------------------------------------------

type GetAccountInfoParams struct {
	Pubkey Pubkey
	Config *GetAccountInfoConfig
}

type GetAccountInfoConfig struct {
	Commitment     *Commitment `json:"commitment,omitempty"`
	Encoding       *string     `json:"encoding,omitempty"`
	DataSlice      *DataSlice  `json:"dataSlice,omitempty"`
	MinContextSlot *Slot       `json:"minContextSlot,omitempty"`
}

type AccountInfo struct {
	Lamports  Lamport  `json:"lamports"`
	Owner     Pubkey   `json:"owner"`
	Data      []string `json:"data"`
	Executable bool    `json:"executable"`
	RentEpoch uint64   `json:"rentEpoch"`
}

type GetAccountInfoResult struct {
	Context ResponseContext `json:"context"`
	Value   *AccountInfo    `json:"value"`
}

type ResponseContext struct {
	Slot Slot `json:"slot"`
}

// --- getBalance ---------------------------------------------------------

type GetBalanceParams struct {
	Pubkey Pubkey
	Config *GetBalanceConfig
}

type GetBalanceConfig struct {
	Commitment     *Commitment `json:"commitment,omitempty"`
	MinContextSlot *Slot       `json:"minContextSlot,omitempty"`
}

type GetBalanceResult struct {
	Context ResponseContext `json:"context"`
	Value   Lamport         `json:"value"`
}

// --- getBlock -------------------------------------------------------------

type GetBlockParams struct {
	Slot   Slot
	Config *GetBlockConfig
}

type GetBlockConfig struct {
	Encoding                       *string     `json:"encoding,omitempty"`
	TransactionDetails             *string     `json:"transactionDetails,omitempty"`
	Rewards                        *bool       `json:"rewards,omitempty"`
	Commitment                     *Commitment `json:"commitment,omitempty"`
	MaxSupportedTransactionVersion *uint8      `json:"maxSupportedTransactionVersion,omitempty"`
}

type BlockRewardEntry struct {
	Pubkey     Pubkey `json:"pubkey"`
	Lamports   int64  `json:"lamports"`
	RewardType string `json:"rewardType"`
}

type BlockResult struct {
	BlockHeight       *int64             `json:"blockHeight"`
	BlockTime         *Timestamp         `json:"blockTime"`
	Blockhash         Hash               `json:"blockhash"`
	ParentSlot        Slot               `json:"parentSlot"`
	PreviousBlockhash Hash               `json:"previousBlockhash"`
	Rewards           []BlockRewardEntry `json:"rewards"`
	Transactions      []map[string]any   `json:"transactions"`
}

// --- getRecentPrioritizationFees ------------------------------------------

type GetRecentPrioritizationFeesParams struct {
	Addresses []Pubkey // <= 128 entries
}

type PrioritizationFeeEntry struct {
	Slot              Slot         `json:"slot"`
	PrioritizationFee MicroLamport `json:"prioritizationFee"`
}

type GetRecentPrioritizationFeesResult []PrioritizationFeeEntry

// --- getSignaturesForAddress -----------------------------------------------

type GetSignaturesForAddressParams struct {
	Address Pubkey
	Config  *GetSignaturesForAddressConfig
}

type GetSignaturesForAddressConfig struct {
	Limit      *uint64     `json:"limit,omitempty"` // [1,1000], default 1000
	Before     *Signature  `json:"before,omitempty"`
	Until      *Signature  `json:"until,omitempty"`
	Commitment *Commitment `json:"commitment,omitempty"`
}

type SignatureInfo struct {
	Signature Signature       `json:"signature"`
	Slot      Slot            `json:"slot"`
	Err       *map[string]any `json:"err"`
	Memo      *string         `json:"memo"`
	BlockTime *Timestamp      `json:"blockTime"`
}

type GetSignaturesForAddressResult []SignatureInfo

// --- getSignatureStatuses ---------------------------------------------------

type GetSignatureStatusesParams struct {
	Signatures              []Signature // <= 256 entries
	SearchTransactionHistory *bool
}

type SignatureStatus struct {
	Slot Slot `json:"slot"`
	// Confirmations is stripped by the normalizer before comparison (§4.2,
	// §8 invariant 4): it is populated here only while decoding the raw
	// provider response.
	Confirmations     *uint64         `json:"confirmations"`
	Err               *map[string]any `json:"err"`
	ConfirmationStatus *string        `json:"confirmationStatus"`
}

type GetSignatureStatusesResult []*SignatureStatus

// --- getSlot ----------------------------------------------------------------

type GetSlotParams struct {
	Commitment     *Commitment
	MinContextSlot *Slot
}

type GetSlotResult Slot

// --- getTokenAccountBalance --------------------------------------------------

type GetTokenAccountBalanceParams struct {
	Pubkey     Pubkey
	Commitment *Commitment
}

type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       uint8   `json:"decimals"`
	UiAmount       *float64 `json:"uiAmount"`
	UiAmountString string  `json:"uiAmountString"`
}

type GetTokenAccountBalanceResult struct {
	Context ResponseContext `json:"context"`
	Value   TokenAmount     `json:"value"`
}

// --- getTransaction -----------------------------------------------------------

type GetTransactionParams struct {
	Signature Signature
	Config    *GetTransactionConfig
}

type GetTransactionConfig struct {
	Encoding                       *string     `json:"encoding,omitempty"`
	Commitment                     *Commitment `json:"commitment,omitempty"`
	MaxSupportedTransactionVersion *uint8      `json:"maxSupportedTransactionVersion,omitempty"`
}

type TransactionResult struct {
	Slot        Slot           `json:"slot"`
	BlockTime   *Timestamp     `json:"blockTime"`
	Meta        map[string]any `json:"meta"`
	Transaction map[string]any `json:"transaction"`
	Version     *string        `json:"version"`
}

// --- sendTransaction -----------------------------------------------------------

type SendTransactionParams struct {
	Transaction string // base64-encoded signed transaction
	Config      *SendTransactionConfig
}

type SendTransactionConfig struct {
	Encoding            *string     `json:"encoding,omitempty"`
	SkipPreflight       *bool       `json:"skipPreflight,omitempty"`
	PreflightCommitment *Commitment `json:"preflightCommitment,omitempty"`
	MaxRetries          *uint32     `json:"maxRetries,omitempty"`
	MinContextSlot      *Slot       `json:"minContextSlot,omitempty"`
}

type SendTransactionResult Signature

// --- jsonRequest (raw escape hatch) ---------------------------------------

type JsonRequestParams struct {
	Payload string // caller-supplied raw JSON-RPC request text
}

type JsonRequestResult string
