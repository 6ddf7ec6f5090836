package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"device-core/internal/host"
	"device-core/internal/status"
	"device-core/pkg/errno"
	"device-core/pkg/logger"
)

type flowState int

const (
	stateInit flowState = iota
	stateData
	stateVerify
	stateSign
	stateDone
)

var errUserRejected = errors.New("user rejected")

type txnFlow struct {
	app   *App
	link  host.Link
	state flowState
	txn   *txnContext
}

func newTxnFlow(a *App, link host.Link) *txnFlow {
	return &txnFlow{app: a, link: link, txn: &txnContext{}}
}

func (f *txnFlow) run(ctx context.Context, q *host.Query) error {
	defer f.txn.destroy()

	for f.state != stateDone {
		var err error
		switch f.state {
		case stateInit:
			err = f.handleInitiate(q)
		case stateData:
			err = f.fetchTxnData(ctx)
		case stateVerify:
			err = f.verifyWithUser()
		case stateSign:
			err = f.signAndReply(ctx)
		}
		if err != nil {
			f.abort(err)
			return err
		}
		f.state++
	}

	status.Set(string(host.AppEVM), status.Completed)
	status.FlowsTotal.WithLabelValues(string(host.AppEVM), "completed").Inc()
	return nil
}

func (f *txnFlow) abort(cause error) {
	var e errno.Errno
	switch {
	case errors.Is(cause, errUserRejected):
	case errors.As(cause, &e):
		if err := f.link.SendError(e); err != nil {
			logger.Warn("could not report abort to host", zap.Error(err))
		}
	default:
		logger.Warn("flow aborted without host report", zap.Error(cause))
	}

	f.app.ui.ShowNotice(uiTextResyncNotice)
	status.Set(string(host.AppEVM), status.Aborted)
	status.FlowsTotal.WithLabelValues(string(host.AppEVM), "aborted").Inc()
}

func (f *txnFlow) nextSignTxnRequest(ctx context.Context, which host.EVMSignTxnTag) (*host.EVMSignTxnRequest, error) {
	q, err := f.link.NextQuery(ctx)
	if err != nil {
		return nil, err
	}
	return checkSignTxnRequest(q, which)
}

func checkSignTxnRequest(q *host.Query, which host.EVMSignTxnTag) (*host.EVMSignTxnRequest, error) {
	if q.App != host.AppEVM || q.EVM == nil || q.EVM.Which != host.EVMQuerySignTxn || q.EVM.SignTxn == nil {
		return nil, errno.ErrInvalidRequest
	}
	if q.EVM.SignTxn.Which != which {
		return nil, errno.ErrInvalidRequest
	}
	return q.EVM.SignTxn, nil
}

func (f *txnFlow) handleInitiate(q *host.Query) error {
	req, err := checkSignTxnRequest(q, host.EVMSignTxnInitiate)
	if err != nil {
		return err
	}
	initiate := req.Initiate
	if initiate == nil || len(initiate.WalletID) != 32 {
		return errno.ErrInvalidData
	}
	if initiate.TransactionSize == 0 || initiate.TransactionSize > transactionSizeCap {
		return errno.ErrInvalidData
	}
	if !validatePathPolicy(initiate.DerivationPath) {
		return errno.ErrInvalidData
	}
	if initiate.ChainID != f.app.chainID {
		return errno.ErrInvalidData
	}

	walletName, err := f.app.registry.ResolveName(initiate.WalletID)
	if err != nil {
		return err
	}

	accepted, err := f.app.ui.Confirm(fmt.Sprintf(uiTextSendPrompt, f.app.name, walletName))
	if err != nil {
		return err
	}
	if !accepted {
		return errUserRejected
	}
	status.Set(string(host.AppEVM), status.AwaitingConfirmation)

	f.txn.initInfo = host.EVMSignTxnInitiateRequest{
		WalletID:        append([]byte(nil), initiate.WalletID...),
		DerivationPath:  append([]uint32(nil), initiate.DerivationPath...),
		ChainID:         initiate.ChainID,
		TransactionSize: initiate.TransactionSize,
	}
	f.txn.transaction = make([]byte, 0, initiate.TransactionSize)
	return f.link.SendResult(host.NewEVMSignTxnResult(host.EVMSignTxnConfirmation))
}

// fetchTxnData accumulates chunks until the declared size is reached,
// then decodes the RLP. Over-delivery is a hard abort.
func (f *txnFlow) fetchTxnData(ctx context.Context) error {
	status.Set(string(host.AppEVM), status.FetchingMeta)

	total := f.txn.initInfo.TransactionSize
	for f.txn.received < total {
		req, err := f.nextSignTxnRequest(ctx, host.EVMSignTxnData)
		if err != nil {
			return err
		}
		data := req.Data
		if data == nil || len(data.Chunk) == 0 {
			return errno.ErrInvalidData
		}
		if f.txn.received+uint32(len(data.Chunk)) > total {
			return errno.ErrInvalidData
		}

		f.txn.transaction = append(f.txn.transaction, data.Chunk...)
		f.txn.received += uint32(len(data.Chunk))

		if err := f.link.SendResult(host.NewEVMSignTxnResult(host.EVMSignTxnDataAccepted)); err != nil {
			return err
		}
	}

	decoded := new(types.Transaction)
	if err := decoded.UnmarshalBinary(f.txn.transaction); err != nil {
		logger.Debug("unsigned txn decode failed", zap.Error(err))
		return errno.ErrInvalidData
	}
	f.txn.decoded = decoded
	return nil
}

func (f *txnFlow) verifyWithUser() error {
	status.Set(string(host.AppEVM), status.VerifyingOutputs)

	txn := f.txn.decoded

	recipient := uiTextContractDeploy
	if to := txn.To(); to != nil {
		recipient = to.Hex()
	}
	if err := f.scrollOrReject(uiTextReceiverTitle, recipient); err != nil {
		return err
	}
	if err := f.scrollOrReject(uiTextValueTitle, formatWei(txn.Value())); err != nil {
		return err
	}

	// worst-case fee the sender can be charged
	maxFee := new(big.Int).Mul(txn.GasPrice(), new(big.Int).SetUint64(txn.Gas()))
	return f.scrollOrReject(uiTextFeeTitle, formatWei(maxFee))
}

func (f *txnFlow) scrollOrReject(title, body string) error {
	accepted, err := f.app.ui.ScrollPage(title, body)
	if err != nil {
		return err
	}
	if !accepted {
		return errUserRejected
	}
	return nil
}

func (f *txnFlow) signAndReply(ctx context.Context) error {
	status.Set(string(host.AppEVM), status.Signing)

	req, err := f.nextSignTxnRequest(ctx, host.EVMSignTxnSignature)
	if err != nil {
		return err
	}
	if req.Signature == nil {
		return errno.ErrInvalidData
	}

	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(f.txn.initInfo.ChainID))
	digest := signer.Hash(f.txn.decoded)

	signature, err := f.app.vault.SignRecoverable(f.txn.initInfo.DerivationPath, digest.Bytes())
	if err != nil {
		return errno.Internal
	}

	return f.link.SendResult(&host.Result{
		App: host.AppEVM,
		EVM: &host.EVMResult{
			Which: host.EVMResultSignTxn,
			SignTxn: &host.EVMSignTxnResponse{
				Which: host.EVMSignTxnSignatureResponseTag,
				Signature: &host.EVMSignTxnSignatureResponse{
					R: signature[:32],
					S: signature[32:64],
					V: signature[64],
				},
			},
		},
	})
}

// formatWei renders a wei amount as ETH, trimming trailing zeros.
func formatWei(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -18).String() + " ETH"
}
