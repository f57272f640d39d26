package wallet

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Events exchanged with the wallet bridge.
const (
	EventSignTransaction = "sign_transaction"
	EventSigned          = "signed_transaction"
	EventSignError       = "sign_error"
)

// DefaultTimeout bounds a signing round trip when none is configured.
const DefaultTimeout = 60 * time.Second

// ErrRejected is returned when the wallet declines to sign.
var ErrRejected = errors.New("wallet rejected the transaction")

// SocketIO asks a wallet bridge to sign over a socket.io connection. Every
// request opens its own connection.
type SocketIO struct {
	URL                string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type signRequest struct {
	XDR               string `json:"xdr"`
	NetworkPassphrase string `json:"networkPassphrase"`
	Address           string `json:"address,omitempty"`
}

type signOutcome struct {
	result SignResult
	err    error
}

// SignTransaction emits the transaction and waits for the bridge's answer.
func (s *SocketIO) SignTransaction(ctx context.Context, xdr string, opts SignOptions) (SignResult, error) {
	logger := ctxlog.FromContext(ctx).With("signer", "socketio", "url", s.URL)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return SignResult{}, fmt.Errorf("failed to parse wallet bridge URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	namespace := parsedURL.Path
	if namespace == "" {
		namespace = "/"
	}

	ioOpts := socket.DefaultOptions()
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		ioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	ioOpts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, ioOpts)
	io := manager.Socket(namespace, ioOpts)
	defer io.Disconnect()

	var isConnected atomic.Bool
	done := make(chan signOutcome, 1)
	settle := func(o signOutcome) {
		select {
		case done <- o:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected to wallet bridge.", "sid", io.Id())
		io.Emit(EventSignTransaction, signRequest{
			XDR:               xdr,
			NetworkPassphrase: opts.NetworkPassphrase,
			Address:           opts.Address,
		})
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		settle(signOutcome{err: fmt.Errorf("wallet bridge connection failed: %v", first(errs))})
	})
	io.On(types.EventName(EventSigned), func(data ...any) {
		res, err := decodeSigned(first(data))
		settle(signOutcome{result: res, err: err})
	})
	io.On(types.EventName(EventSignError), func(data ...any) {
		settle(signOutcome{err: fmt.Errorf("%w: %v", ErrRejected, first(data))})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if err := ctx.Err(); err != nil {
			return SignResult{}, fmt.Errorf("wallet signing cancelled: %w", err)
		}
		if isConnected.Load() {
			return SignResult{}, fmt.Errorf("timed out waiting for the wallet to sign")
		}
		return SignResult{}, fmt.Errorf("timed out connecting to the wallet bridge")
	case out := <-done:
		return out.result, out.err
	}
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// decodeSigned accepts either a bare XDR string or an object carrying
// signedTxXdr and signerAddress.
func decodeSigned(payload any) (SignResult, error) {
	switch v := payload.(type) {
	case string:
		return SignResult{SignedTxXDR: v}, nil
	case map[string]any:
		signed, _ := v["signedTxXdr"].(string)
		if signed == "" {
			return SignResult{}, errors.New("wallet bridge response is missing signedTxXdr")
		}
		signer, _ := v["signerAddress"].(string)
		return SignResult{SignedTxXDR: signed, SignerAddress: signer}, nil
	default:
		return SignResult{}, fmt.Errorf("unexpected wallet bridge response %T", payload)
	}
}
