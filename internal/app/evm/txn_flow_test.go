package evm

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-core/internal/host"
	"device-core/internal/keyvault"
	"device-core/internal/ui"
	"device-core/internal/wallet"
	"device-core/pkg/config"
	"device-core/pkg/errno"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

var (
	testWalletID = bytes.Repeat([]byte{0xAB}, 32)
	testPath     = []uint32{hardenedOffset + 44, hardenedOffset + 60, hardenedOffset + 0, 0, 0}
)

type scriptedLink struct {
	queries []*host.Query
	results []*host.Result
	errors  []errno.Errno
}

func (l *scriptedLink) NextQuery(_ context.Context) (*host.Query, error) {
	if len(l.queries) == 0 {
		return nil, io.EOF
	}
	q := l.queries[0]
	l.queries = l.queries[1:]
	return q, nil
}

func (l *scriptedLink) SendResult(res *host.Result) error {
	l.results = append(l.results, res)
	return nil
}

func (l *scriptedLink) SendError(e errno.Errno) error {
	l.errors = append(l.errors, e)
	return nil
}

func newTestApp(t *testing.T, delegate ui.Delegate) *App {
	t.Helper()
	vault, err := keyvault.NewVaultFromMnemonic(testMnemonic, "", &chaincfg.MainNetParams)
	require.NoError(t, err)

	registry := wallet.NewRegistry([]config.WalletEntry{
		{ID: "abababababababababababababababababababababababababababababababab", Name: "personal"},
	})
	return New(config.EVMConfig{ChainID: 1}, registry, vault, delegate)
}

func signTxnQuery(req *host.EVMSignTxnRequest) *host.Query {
	return &host.Query{
		App: host.AppEVM,
		EVM: &host.EVMQuery{Which: host.EVMQuerySignTxn, SignTxn: req},
	}
}

func initiateQuery(size uint32) *host.Query {
	return signTxnQuery(&host.EVMSignTxnRequest{
		Which: host.EVMSignTxnInitiate,
		Initiate: &host.EVMSignTxnInitiateRequest{
			WalletID:        testWalletID,
			DerivationPath:  testPath,
			ChainID:         1,
			TransactionSize: size,
		},
	})
}

func dataQuery(chunk []byte) *host.Query {
	return signTxnQuery(&host.EVMSignTxnRequest{
		Which: host.EVMSignTxnData,
		Data:  &host.EVMSignTxnDataRequest{Chunk: chunk},
	})
}

func unsignedLegacyTxn(t *testing.T) (*types.Transaction, []byte) {
	t.Helper()
	to := common.HexToAddress("0x4242424242424242424242424242424242424242")
	txn := types.NewTransaction(7, to, big.NewInt(1500000000000000000), 21000, big.NewInt(20000000000), nil)
	raw, err := txn.MarshalBinary()
	require.NoError(t, err)
	return txn, raw
}

func TestSignTxnFlowCompletes(t *testing.T) {
	txn, raw := unsignedLegacyTxn(t)
	delegate := ui.NewScripted()
	app := newTestApp(t, delegate)

	half := len(raw) / 2
	link := &scriptedLink{queries: []*host.Query{
		dataQuery(raw[:half]),
		dataQuery(raw[half:]),
		signTxnQuery(&host.EVMSignTxnRequest{
			Which:     host.EVMSignTxnSignature,
			Signature: &host.EVMSignTxnSignatureRequest{},
		}),
	}}

	err := app.Handle(context.Background(), initiateQuery(uint32(len(raw))), link)
	require.NoError(t, err)
	require.Empty(t, link.errors)

	// confirmation, 2 data accepts, signature
	require.Len(t, link.results, 4)
	sigResponse := link.results[3].EVM.SignTxn.Signature
	require.NotNil(t, sigResponse)

	// the signature must recover to the device's own address
	signer := types.LatestSignerForChainID(big.NewInt(1))
	digest := signer.Hash(txn)
	sig65 := append(append(append([]byte{}, sigResponse.R...), sigResponse.S...), sigResponse.V)
	pub, err := ethcrypto.SigToPub(digest.Bytes(), sig65)
	require.NoError(t, err)

	priv, err := app.vault.DerivePrivKey(testPath)
	require.NoError(t, err)
	want := ethcrypto.PubkeyToAddress(priv.ToECDSA().PublicKey)
	assert.Equal(t, want, ethcrypto.PubkeyToAddress(*pub))

	// receiver, amount and max fee were all shown
	var scrolls []ui.Prompt
	for _, p := range delegate.Transcript {
		if p.Kind == ui.PromptScroll {
			scrolls = append(scrolls, p)
		}
	}
	require.Len(t, scrolls, 3)
	assert.Contains(t, scrolls[0].Body, "0x4242")
	assert.Equal(t, "1.5 ETH", scrolls[1].Body)
	assert.Equal(t, "0.00042 ETH", scrolls[2].Body) // 21000 * 20 gwei
}

func TestOversizedDeclarationRejected(t *testing.T) {
	app := newTestApp(t, ui.NewScripted())

	link := &scriptedLink{}
	err := app.Handle(context.Background(), initiateQuery(transactionSizeCap+1), link)
	require.Error(t, err)
	require.Len(t, link.errors, 1)
	assert.Equal(t, errno.ErrInvalidData, link.errors[0])
}

func TestOverDeliveryRejected(t *testing.T) {
	_, raw := unsignedLegacyTxn(t)
	app := newTestApp(t, ui.NewScripted())

	link := &scriptedLink{queries: []*host.Query{
		dataQuery(raw), // one byte more than declared
	}}
	err := app.Handle(context.Background(), initiateQuery(uint32(len(raw))-1), link)
	require.Error(t, err)
	require.Len(t, link.errors, 1)
	assert.Equal(t, errno.ErrInvalidData, link.errors[0])
}

func TestUndecodableTxnRejected(t *testing.T) {
	app := newTestApp(t, ui.NewScripted())

	garbage := bytes.Repeat([]byte{0x5A}, 32)
	link := &scriptedLink{queries: []*host.Query{dataQuery(garbage)}}

	err := app.Handle(context.Background(), initiateQuery(32), link)
	require.Error(t, err)
	require.Len(t, link.errors, 1)
	assert.Equal(t, errno.ErrInvalidData, link.errors[0])
}

func TestChainIDMismatchRejected(t *testing.T) {
	app := newTestApp(t, ui.NewScripted())

	q := signTxnQuery(&host.EVMSignTxnRequest{
		Which: host.EVMSignTxnInitiate,
		Initiate: &host.EVMSignTxnInitiateRequest{
			WalletID:        testWalletID,
			DerivationPath:  testPath,
			ChainID:         5,
			TransactionSize: 100,
		},
	})
	link := &scriptedLink{}
	err := app.Handle(context.Background(), q, link)
	require.Error(t, err)
	require.Len(t, link.errors, 1)
	assert.Equal(t, errno.ErrInvalidData, link.errors[0])
}

func TestUserDeclineAbortsSilently(t *testing.T) {
	_, raw := unsignedLegacyTxn(t)
	app := newTestApp(t, ui.NewScripted(false))

	link := &scriptedLink{queries: []*host.Query{dataQuery(raw)}}
	err := app.Handle(context.Background(), initiateQuery(uint32(len(raw))), link)
	require.ErrorIs(t, err, errUserRejected)
	assert.Empty(t, link.errors)
	assert.Empty(t, link.results)
}

func TestValidatePathPolicy(t *testing.T) {
	h := uint32(hardenedOffset)

	assert.True(t, validatePathPolicy([]uint32{h + 44, h + 60, h + 0, 0, 0}))
	assert.True(t, validatePathPolicy([]uint32{h + 44, h + 60, h + 2, 1, 9}))
	assert.False(t, validatePathPolicy([]uint32{h + 44, h + 0, h + 0, 0, 0}))  // wrong coin
	assert.False(t, validatePathPolicy([]uint32{h + 49, h + 60, h + 0, 0, 0})) // wrong purpose
	assert.False(t, validatePathPolicy([]uint32{h + 44, h + 60, h + 0, 2, 0})) // bad change
	assert.False(t, validatePathPolicy([]uint32{h + 44, h + 60, h + 0}))       // account-level only
}

func TestFormatWei(t *testing.T) {
	assert.Equal(t, "1.5 ETH", formatWei(big.NewInt(1500000000000000000)))
	assert.Equal(t, "0.000000000000000001 ETH", formatWei(big.NewInt(1)))
	assert.Equal(t, "0 ETH", formatWei(big.NewInt(0)))
}
