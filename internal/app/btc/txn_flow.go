package btc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"device-core/internal/host"
	"device-core/internal/status"
	"device-core/pkg/errno"
	"device-core/pkg/logger"
)

// Flow states, strictly sequential. A state's entry precondition is the
// successful exit of the previous one; the first failure aborts the whole
// flow, later states are never attempted.
type flowState int

const (
	stateInit flowState = iota
	stateMeta
	stateInputs
	stateOutputs
	stateVerify
	stateSign
	stateDone
)

// errUserRejected aborts the flow silently: the host gets no error code,
// the device just shows the resync notice.
var errUserRejected = errors.New("user rejected")

// txnFlow executes one sign-transaction session. A fresh instance is
// constructed per session; nothing about it is shared or reused.
type txnFlow struct {
	app   *App
	link  host.Link
	state flowState
	txn   *txnContext
}

func newTxnFlow(a *App, link host.Link) *txnFlow {
	return &txnFlow{app: a, link: link, txn: &txnContext{}}
}

// run drives the state machine starting from the already-received
// initiate query. Returns the abort cause, nil on success.
func (f *txnFlow) run(ctx context.Context, q *host.Query) error {
	defer f.txn.destroy()

	for f.state != stateDone {
		var err error
		switch f.state {
		case stateInit:
			err = f.handleInitiate(q)
		case stateMeta:
			err = f.fetchMeta(ctx)
		case stateInputs:
			err = f.fetchInputs(ctx)
		case stateOutputs:
			err = f.fetchOutputs(ctx)
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

	status.Set(string(host.AppBTC), status.Completed)
	status.FlowsTotal.WithLabelValues(string(host.AppBTC), "completed").Inc()
	return nil
}

// abort reports the failure once (user rejections are silent), shows the
// generic resync notice and marks the flow aborted. Context cleanup is
// handled by run's deferred destroy.
func (f *txnFlow) abort(cause error) {
	var e errno.Errno
	switch {
	case errors.Is(cause, errUserRejected):
		// silent for the host
	case errors.As(cause, &e):
		if err := f.link.SendError(e); err != nil {
			logger.Warn("could not report abort to host", zap.Error(err))
		}
	default:
		// link failure or cancellation; nothing can be sent
		logger.Warn("flow aborted without host report", zap.Error(cause))
	}

	f.app.ui.ShowNotice(uiTextResyncNotice)
	status.Set(string(host.AppBTC), status.Aborted)
	status.FlowsTotal.WithLabelValues(string(host.AppBTC), "aborted").Inc()
}

// nextSignTxnRequest awaits the next host round and checks it carries the
// expected sign-txn discriminant. Any deviation is a protocol violation.
func (f *txnFlow) nextSignTxnRequest(ctx context.Context, which host.BTCSignTxnTag) (*host.BTCSignTxnRequest, error) {
	q, err := f.link.NextQuery(ctx)
	if err != nil {
		return nil, err
	}
	return checkSignTxnRequest(q, which)
}

// checkSignTxnRequest validates the discriminant chain of a query that is
// supposed to be a sign-txn round of the given kind.
func checkSignTxnRequest(q *host.Query, which host.BTCSignTxnTag) (*host.BTCSignTxnRequest, error) {
	if q.App != host.AppBTC || q.BTC == nil || q.BTC.Which != host.BTCQuerySignTxn || q.BTC.SignTxn == nil {
		return nil, errno.ErrInvalidRequest
	}
	if q.BTC.SignTxn.Which != which {
		return nil, errno.ErrInvalidRequest
	}
	return q.BTC.SignTxn, nil
}

// handleInitiate validates the initiate payload, resolves the wallet and
// takes the user's consent before anything is allocated.
func (f *txnFlow) handleInitiate(q *host.Query) error {
	req, err := checkSignTxnRequest(q, host.BTCSignTxnInitiate)
	if err != nil {
		return err
	}
	initiate := req.Initiate
	if initiate == nil || len(initiate.WalletID) != 32 {
		return errno.ErrInvalidData
	}

	if !validatePathPolicy(initiate.DerivationPath, f.app.coinIndex) {
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
	status.Set(string(host.AppBTC), status.AwaitingConfirmation)

	f.txn.initInfo = host.BTCSignTxnInitiateRequest{
		WalletID:       append([]byte(nil), initiate.WalletID...),
		DerivationPath: append([]uint32(nil), initiate.DerivationPath...),
	}
	return f.link.SendResult(host.NewBTCSignTxnResult(host.BTCSignTxnConfirmation))
}

// fetchMeta accepts the transaction shape and allocates the input/output
// storage. Counts are hard-capped before allocation so a malicious host
// cannot size the buffers.
func (f *txnFlow) fetchMeta(ctx context.Context) error {
	status.Set(string(host.AppBTC), status.FetchingMeta)

	req, err := f.nextSignTxnRequest(ctx, host.BTCSignTxnMeta)
	if err != nil {
		return err
	}
	meta := req.Meta
	if meta == nil {
		return errno.ErrInvalidData
	}

	// only SIGHASH_ALL is supported; empty transactions are meaningless
	if meta.Sighash != sighashAll || meta.InputCount == 0 || meta.OutputCount == 0 {
		return errno.ErrInvalidData
	}
	if meta.InputCount > f.app.maxInputCount || meta.OutputCount > f.app.maxOutputCount {
		return errno.ErrInvalidData
	}

	f.txn.metadata = *meta
	f.txn.inputs = make([]txnInput, meta.InputCount)
	f.txn.outputs = make([]host.BTCTxnOutput, 0, meta.OutputCount)
	return f.link.SendResult(host.NewBTCSignTxnResult(host.BTCSignTxnMetaAccepted))
}

// fetchInputs runs one round per declared input, binding each claim to
// its raw previous transaction before accepting it.
func (f *txnFlow) fetchInputs(ctx context.Context) error {
	status.Set(string(host.AppBTC), status.FetchingInputs)

	for idx := 0; idx < int(f.txn.metadata.InputCount); idx++ {
		req, err := f.nextSignTxnRequest(ctx, host.BTCSignTxnInput)
		if err != nil {
			return err
		}
		claim := req.Input
		if claim == nil {
			return errno.ErrInvalidData
		}

		if err := verifyInput(claim, &f.txn.inputs[idx]); err != nil {
			logger.Debug("input binding failed", zap.Int("index", idx), zap.Error(err))
			return errno.ErrInvalidData
		}

		if err := f.link.SendResult(host.NewBTCSignTxnResult(host.BTCSignTxnInputAccepted)); err != nil {
			return err
		}
	}
	return nil
}

// fetchOutputs runs one round per declared output. Data-carrier scripts
// must not lock value, and the output set as a whole must move some.
func (f *txnFlow) fetchOutputs(ctx context.Context) error {
	status.Set(string(host.AppBTC), status.FetchingOutputs)

	zeroValueTransaction := true
	for idx := 0; idx < int(f.txn.metadata.OutputCount); idx++ {
		req, err := f.nextSignTxnRequest(ctx, host.BTCSignTxnOutput)
		if err != nil {
			return err
		}
		out := req.Output
		if out == nil || len(out.ScriptPubKey) == 0 || len(out.ScriptPubKey) > maxScriptPubKeyLen {
			return errno.ErrInvalidData
		}

		if out.Value != 0 {
			zeroValueTransaction = false
		}
		if isDataCarrier(out.ScriptPubKey) && out.Value != 0 {
			// funds must never be rendered unspendable
			return errno.ErrInvalidData
		}

		f.txn.outputs = append(f.txn.outputs, host.BTCTxnOutput{
			Value:        out.Value,
			ScriptPubKey: append([]byte(nil), out.ScriptPubKey...),
			IsChange:     out.IsChange,
		})
		if err := f.link.SendResult(host.NewBTCSignTxnResult(host.BTCSignTxnOutputAccepted)); err != nil {
			return err
		}
	}

	if zeroValueTransaction {
		// the whole input set would be consumed by fee
		return errno.ErrInvalidData
	}
	return nil
}

// verifyWithUser walks every receiver output past the user, then the fee,
// with an extra warning when the fee exceeds the policy ceiling.
func (f *txnFlow) verifyWithUser() error {
	status.Set(string(host.AppBTC), status.VerifyingOutputs)

	for idx := range f.txn.outputs {
		out := &f.txn.outputs[idx]
		if out.IsChange {
			// change returns to the wallet, not shown as a payment
			continue
		}

		address, err := renderAddress(out.ScriptPubKey, f.app.params)
		if err != nil {
			return errno.ErrInvalidData
		}
		title := fmt.Sprintf(uiTextReceiverTitle, idx+1)

		if err := f.scrollOrReject(title, address); err != nil {
			return err
		}
		if err := f.scrollOrReject(title, formatValue(out.Value)); err != nil {
			return err
		}
	}

	fee, ok := f.txn.fee()
	if !ok {
		// overspend, never sign
		return errno.ErrInvalidData
	}

	ceiling := f.app.feeThreshold(len(f.txn.inputs), len(f.txn.outputs), f.txn.totalInputValue())
	if fee > ceiling {
		accepted, err := f.app.ui.Confirm(uiTextFeeTooHigh)
		if err != nil {
			return err
		}
		if !accepted {
			return errUserRejected
		}
	}

	return f.scrollOrReject(uiTextFeeTitle, formatValue(fee))
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

// signAndReply answers one signature round per bound input, in the order
// the inputs arrived.
func (f *txnFlow) signAndReply(ctx context.Context) error {
	status.Set(string(host.AppBTC), status.Signing)

	unsigned := buildUnsignedTxn(f.txn)
	for idx := 0; idx < len(f.txn.inputs); idx++ {
		req, err := f.nextSignTxnRequest(ctx, host.BTCSignTxnSignature)
		if err != nil {
			return err
		}
		if req.Signature == nil || req.Signature.Index != uint32(idx) {
			return errno.ErrInvalidData
		}

		signature, err := f.app.signInput(unsigned, f.txn, idx)
		if err != nil {
			return errno.Internal
		}

		res := &host.Result{
			App: host.AppBTC,
			BTC: &host.BTCResult{
				Which: host.BTCResultSignTxn,
				SignTxn: &host.BTCSignTxnResponse{
					Which: host.BTCSignTxnSignatureResponseTag,
					Signature: &host.BTCSignTxnSignatureResponse{
						Index:     uint32(idx),
						Signature: signature,
					},
				},
			},
		}
		if err := f.link.SendResult(res); err != nil {
			return err
		}
	}
	return nil
}
