package host

// Request/response unions for the Ethereum-family app. Same per-round
// discriminant rhythm as the Bitcoin app; the unsigned transaction is
// streamed in size-capped chunks because it can exceed one frame.

type EVMQueryTag int

const (
	EVMQuerySignTxn EVMQueryTag = iota + 1
)

type EVMQuery struct {
	Which   EVMQueryTag        `json:"which"`
	SignTxn *EVMSignTxnRequest `json:"sign_txn,omitempty"`
}

type EVMSignTxnTag int

const (
	EVMSignTxnInitiate EVMSignTxnTag = iota + 1
	EVMSignTxnData
	EVMSignTxnSignature
)

type EVMSignTxnRequest struct {
	Which     EVMSignTxnTag               `json:"which"`
	Initiate  *EVMSignTxnInitiateRequest  `json:"initiate,omitempty"`
	Data      *EVMSignTxnDataRequest      `json:"data,omitempty"`
	Signature *EVMSignTxnSignatureRequest `json:"signature,omitempty"`
}

type EVMSignTxnInitiateRequest struct {
	WalletID        []byte   `json:"wallet_id"`
	DerivationPath  []uint32 `json:"derivation_path"`
	ChainID         uint64   `json:"chain_id"`
	TransactionSize uint32   `json:"transaction_size"` // total RLP length, declared up front
}

type EVMSignTxnDataRequest struct {
	Chunk []byte `json:"chunk"`
}

type EVMSignTxnSignatureRequest struct{}

// Result side

type EVMResultTag int

const (
	EVMResultSignTxn EVMResultTag = iota + 1
)

type EVMResult struct {
	Which   EVMResultTag        `json:"which"`
	SignTxn *EVMSignTxnResponse `json:"sign_txn,omitempty"`
}

type EVMSignTxnResponseTag int

const (
	EVMSignTxnConfirmation EVMSignTxnResponseTag = iota + 1
	EVMSignTxnDataAccepted
	EVMSignTxnSignatureResponseTag
)

type EVMSignTxnResponse struct {
	Which     EVMSignTxnResponseTag        `json:"which"`
	Signature *EVMSignTxnSignatureResponse `json:"signature,omitempty"`
}

type EVMSignTxnSignatureResponse struct {
	R []byte `json:"r"`
	S []byte `json:"s"`
	V byte   `json:"v"`
}

// NewEVMSignTxnResult builds an empty accepted-response of the given tag.
func NewEVMSignTxnResult(which EVMSignTxnResponseTag) *Result {
	return &Result{
		App: AppEVM,
		EVM: &EVMResult{
			Which:   EVMResultSignTxn,
			SignTxn: &EVMSignTxnResponse{Which: which},
		},
	}
}
