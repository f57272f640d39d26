package wallet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sio "github.com/zishang520/socket.io/v2/socket"
)

func TestPassthrough(t *testing.T) {
	res, err := Passthrough{}.SignTransaction(context.Background(), "AAAA", SignOptions{Address: "GABC"})
	require.NoError(t, err)
	assert.Equal(t, SignResult{SignedTxXDR: "AAAA", SignerAddress: "GABC"}, res)
}

func TestDecodeSigned(t *testing.T) {
	res, err := decodeSigned("BBBB")
	require.NoError(t, err)
	assert.Equal(t, "BBBB", res.SignedTxXDR)

	res, err = decodeSigned(map[string]any{"signedTxXdr": "CCCC", "signerAddress": "GXYZ"})
	require.NoError(t, err)
	assert.Equal(t, SignResult{SignedTxXDR: "CCCC", SignerAddress: "GXYZ"}, res)

	_, err = decodeSigned(map[string]any{"other": 1})
	assert.Error(t, err)

	_, err = decodeSigned(42.0)
	assert.Error(t, err)
}

func TestSocketIO_InvalidURL(t *testing.T) {
	s := &SocketIO{URL: "://bad", Timeout: time.Second}
	_, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	assert.ErrorContains(t, err, "failed to parse wallet bridge URL")
}

func TestSocketIO_UnreachableBridge(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	s := &SocketIO{URL: "http://127.0.0.1:1/wallet", Timeout: 300 * time.Millisecond}
	_, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	assert.Error(t, err)
}

// newBridge starts a wallet bridge serving the /wallet namespace. reply is
// called for every sign request with the connected socket and the request.
func newBridge(t *testing.T, reply func(client *sio.Socket, req map[string]any)) string {
	t.Helper()
	io := sio.NewServer(nil, nil)
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})

	err := io.Of("/wallet", nil).On("connection", func(args ...any) {
		client := args[0].(*sio.Socket)
		_ = client.On(EventSignTransaction, func(data ...any) {
			req, _ := first(data).(map[string]any)
			reply(client, req)
		})
	})
	require.NoError(t, err)
	return srv.URL + "/wallet"
}

func TestSocketIO_Signed(t *testing.T) {
	received := make(chan map[string]any, 1)
	url := newBridge(t, func(client *sio.Socket, req map[string]any) {
		received <- req
		_ = client.Emit(EventSigned, map[string]any{
			"signedTxXdr":   "SIGNED-" + req["xdr"].(string),
			"signerAddress": req["address"],
		})
	})

	s := &SocketIO{URL: url, Timeout: 5 * time.Second}
	res, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{
		NetworkPassphrase: "Test SDF Network ; September 2015",
		Address:           "GABC",
	})
	require.NoError(t, err)
	assert.Equal(t, SignResult{SignedTxXDR: "SIGNED-AAAA", SignerAddress: "GABC"}, res)

	req := <-received
	assert.Equal(t, "Test SDF Network ; September 2015", req["networkPassphrase"])
}

func TestSocketIO_SignedBareString(t *testing.T) {
	url := newBridge(t, func(client *sio.Socket, _ map[string]any) {
		_ = client.Emit(EventSigned, "BBBB")
	})

	s := &SocketIO{URL: url, Timeout: 5 * time.Second}
	res, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, "BBBB", res.SignedTxXDR)
}

func TestSocketIO_Rejected(t *testing.T) {
	url := newBridge(t, func(client *sio.Socket, _ map[string]any) {
		_ = client.Emit(EventSignError, "user declined")
	})

	s := &SocketIO{URL: url, Timeout: 5 * time.Second}
	_, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	require.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "user declined")
}

func TestSocketIO_MalformedAnswer(t *testing.T) {
	url := newBridge(t, func(client *sio.Socket, _ map[string]any) {
		_ = client.Emit(EventSigned, map[string]any{"unexpected": true})
	})

	s := &SocketIO{URL: url, Timeout: 5 * time.Second}
	_, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	assert.ErrorContains(t, err, "missing signedTxXdr")
}

func TestSocketIO_WalletTimeout(t *testing.T) {
	url := newBridge(t, func(*sio.Socket, map[string]any) {})

	s := &SocketIO{URL: url, Timeout: 500 * time.Millisecond}
	_, err := s.SignTransaction(context.Background(), "AAAA", SignOptions{})
	assert.EqualError(t, err, "timed out waiting for the wallet to sign")
}

func TestSocketIO_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := newBridge(t, func(*sio.Socket, map[string]any) { cancel() })

	s := &SocketIO{URL: url, Timeout: 5 * time.Second}
	_, err := s.SignTransaction(ctx, "AAAA", SignOptions{})
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.NotContains(t, err.Error(), "timed out")
}
