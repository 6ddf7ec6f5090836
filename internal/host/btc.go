package host

// Request/response unions for the Bitcoin-family app. Each round is
// tagged with a discriminant; the flow never proceeds past a round whose
// discriminant does not match the phase it is in.

type BTCQueryTag int

const (
	BTCQuerySignTxn BTCQueryTag = iota + 1
	BTCQueryGetPublicKeys
)

type BTCQuery struct {
	Which         BTCQueryTag              `json:"which"`
	SignTxn       *BTCSignTxnRequest       `json:"sign_txn,omitempty"`
	GetPublicKeys *BTCGetPublicKeysRequest `json:"get_public_keys,omitempty"`
}

type BTCSignTxnTag int

const (
	BTCSignTxnInitiate BTCSignTxnTag = iota + 1
	BTCSignTxnMeta
	BTCSignTxnInput
	BTCSignTxnOutput
	BTCSignTxnSignature
)

type BTCSignTxnRequest struct {
	Which     BTCSignTxnTag               `json:"which"`
	Initiate  *BTCSignTxnInitiateRequest  `json:"initiate,omitempty"`
	Meta      *BTCSignTxnMetadata         `json:"meta,omitempty"`
	Input     *BTCSignTxnInputRequest     `json:"input,omitempty"`
	Output    *BTCTxnOutput               `json:"output,omitempty"`
	Signature *BTCSignTxnSignatureRequest `json:"signature,omitempty"`
}

type BTCSignTxnInitiateRequest struct {
	WalletID       []byte   `json:"wallet_id"`       // 32-byte wallet identifier
	DerivationPath []uint32 `json:"derivation_path"` // account-level path, e.g. 44'/0'/0'
}

type BTCSignTxnMetadata struct {
	Version     uint32 `json:"version"`
	Locktime    uint32 `json:"locktime"`
	Sighash     uint32 `json:"sighash"`
	InputCount  uint32 `json:"input_count"`
	OutputCount uint32 `json:"output_count"`
}

type BTCSignTxnInputRequest struct {
	PrevTxnHash     []byte `json:"prev_txn_hash"` // claimed txid commitment, 32 bytes
	PrevTxn         []byte `json:"prev_txn"`      // raw serialized previous transaction
	PrevOutputIndex uint32 `json:"prev_output_index"`
	AddressIndex    uint32 `json:"address_index"`
	ChangeIndex     uint32 `json:"change_index"`
	Value           uint64 `json:"value"` // claimed; must match the proven output value
	Sequence        uint32 `json:"sequence"`
}

type BTCTxnOutput struct {
	Value        uint64 `json:"value"`
	ScriptPubKey []byte `json:"script_pub_key"`
	IsChange     bool   `json:"is_change"`
}

type BTCSignTxnSignatureRequest struct {
	Index uint32 `json:"index"` // input index being requested, must arrive in order
}

type BTCGetPublicKeysRequest struct {
	WalletID        []byte     `json:"wallet_id"`
	DerivationPaths [][]uint32 `json:"derivation_paths"`
}

// Result side

type BTCResultTag int

const (
	BTCResultSignTxn BTCResultTag = iota + 1
	BTCResultGetPublicKeys
)

type BTCResult struct {
	Which         BTCResultTag              `json:"which"`
	SignTxn       *BTCSignTxnResponse       `json:"sign_txn,omitempty"`
	GetPublicKeys *BTCGetPublicKeysResponse `json:"get_public_keys,omitempty"`
}

type BTCSignTxnResponseTag int

const (
	BTCSignTxnConfirmation BTCSignTxnResponseTag = iota + 1
	BTCSignTxnMetaAccepted
	BTCSignTxnInputAccepted
	BTCSignTxnOutputAccepted
	BTCSignTxnSignatureResponseTag
)

type BTCSignTxnResponse struct {
	Which     BTCSignTxnResponseTag        `json:"which"`
	Signature *BTCSignTxnSignatureResponse `json:"signature,omitempty"`
}

type BTCSignTxnSignatureResponse struct {
	Index     uint32 `json:"index"`
	Signature []byte `json:"signature"` // DER-encoded, sighash byte appended
}

type BTCGetPublicKeysResponse struct {
	PublicKeys []string `json:"public_keys"` // serialized extended public keys
}

// NewBTCSignTxnResult builds an empty accepted-response of the given tag.
func NewBTCSignTxnResult(which BTCSignTxnResponseTag) *Result {
	return &Result{
		App: AppBTC,
		BTC: &BTCResult{
			Which:   BTCResultSignTxn,
			SignTxn: &BTCSignTxnResponse{Which: which},
		},
	}
}
