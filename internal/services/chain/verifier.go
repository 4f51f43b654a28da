package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"tcw1/internal/models"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/gjson"
)

var ErrTransactionNotOnChain = errors.New("transaction not found on chain")

// Verification is what a chain reports about a transaction.
type Verification struct {
	Verified      bool
	Confirmations int
	BlockNumber   uint64
}

// Verifier looks a transaction up on its network.
type Verifier interface {
	Verify(ctx context.Context, tx *models.BlockchainTransaction) (*Verification, error)
}

// SimulatedVerifier derives confirmations from the transaction age,
// one block every BlockTime, capped at the finality depth.
type SimulatedVerifier struct {
	BlockTime time.Duration
	Now       func() time.Time
}

func NewSimulatedVerifier() *SimulatedVerifier {
	return &SimulatedVerifier{BlockTime: 12 * time.Second, Now: time.Now}
}

func (v *SimulatedVerifier) Verify(_ context.Context, tx *models.BlockchainTransaction) (*Verification, error) {
	age := v.Now().Sub(tx.CreatedAt)
	confirmations := 0
	if v.BlockTime > 0 && age > 0 {
		confirmations = int(age / v.BlockTime)
	}
	if confirmations > models.RequiredTxConfirmations {
		confirmations = models.RequiredTxConfirmations
	}
	if tx.Status == models.TxStatusConfirmed && confirmations < tx.Confirmations {
		confirmations = tx.Confirmations
	}

	var block uint64
	if tx.BlockNumber != nil {
		block = *tx.BlockNumber
	} else {
		b, err := SimulateBlockNumber()
		if err != nil {
			return nil, err
		}
		block = b
	}

	return &Verification{
		Verified:      confirmations > 0,
		Confirmations: confirmations,
		BlockNumber:   block,
	}, nil
}

// RPCVerifier asks an Ethereum JSON-RPC endpoint for the receipt and chain head.
type RPCVerifier struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

func NewRPCVerifier(url string, client *http.Client) *RPCVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RPCVerifier{url: url, client: client}
}

func (v *RPCVerifier) Verify(ctx context.Context, tx *models.BlockchainTransaction) (*Verification, error) {
	receipt, err := v.call(ctx, "eth_getTransactionReceipt", tx.TransactionHash)
	if err != nil {
		return nil, err
	}
	if !receipt.Exists() || receipt.Type == gjson.Null {
		return nil, ErrTransactionNotOnChain
	}

	txBlock, err := hexutil.DecodeUint64(receipt.Get("blockNumber").String())
	if err != nil {
		return nil, fmt.Errorf("receipt block number: %w", err)
	}

	head, err := v.call(ctx, "eth_blockNumber")
	if err != nil {
		return nil, err
	}
	headBlock, err := hexutil.DecodeUint64(head.String())
	if err != nil {
		return nil, fmt.Errorf("head block number: %w", err)
	}

	confirmations := 0
	if headBlock >= txBlock {
		confirmations = int(headBlock-txBlock) + 1
	}

	return &Verification{
		Verified:      receipt.Get("status").String() == "0x1",
		Confirmations: confirmations,
		BlockNumber:   txBlock,
	}, nil
}

func (v *RPCVerifier) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if params == nil {
		params = []interface{}{}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      v.nextID.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	parsed := gjson.ParseBytes(body)
	if rpcErr := parsed.Get("error"); rpcErr.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: %s", method, rpcErr.Get("message").String())
	}
	return parsed.Get("result"), nil
}
