package etherscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

const testAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
const testHash = "0xabababababababababababababababababababababababababababababababab"

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(httpx.New(2*time.Second), "test-key")
	c.apiBase = srv.URL
	return c, srv.Close
}

func TestBalancesConvertsWeiAndSetsChainID(t *testing.T) {
	var gotChainID, gotAction string
	c, done := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotChainID = r.URL.Query().Get("chainid")
		gotAction = r.URL.Query().Get("action")
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"1500000000000000000"}`))
	})
	defer done()

	chain, _ := id.ParseChain("base")
	got, err := c.Balances(context.Background(), providers.BalancesRequest{Address: testAddress, Chain: &chain})
	if err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	if gotChainID != "8453" || gotAction != "balance" {
		t.Fatalf("unexpected query: chainid=%s action=%s", gotChainID, gotAction)
	}
	if len(got.Assets) != 1 || got.Assets[0].Amount.String() != "1.5" {
		t.Fatalf("unexpected balance: %+v", got.Assets)
	}
	if got.Assets[0].Symbol != "ETH" || got.Chain != "base" {
		t.Fatalf("unexpected asset metadata: %+v", got.Assets[0])
	}
}

func TestHistoryRoundTripsCursor(t *testing.T) {
	var gotPage string
	c, done := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"hash":"0x1","from":"0xa","to":"0xb","value":"1000000000000000000","blockNumber":"100","timeStamp":"1700000000","gasUsed":"21000","isError":"0"},
			{"hash":"0x2","from":"0xa","to":"0xc","value":"0","blockNumber":"99","timeStamp":"1699999000","gasUsed":"21000","isError":"1"}
		]}`))
	})
	defer done()

	chain, _ := id.ParseChain("ethereum")
	got, err := c.History(context.Background(), providers.HistoryRequest{Address: testAddress, Chain: chain, Cursor: "3", Limit: 2})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if gotPage != "3" {
		t.Fatalf("cursor must be passed back verbatim as the page, got %s", gotPage)
	}
	if got.NextCursor != "4" {
		t.Fatalf("expected next cursor 4 on a full page, got %q", got.NextCursor)
	}
	if got.Items[0].Status != model.TxStatusSuccess || got.Items[1].Status != model.TxStatusFailed {
		t.Fatalf("unexpected statuses: %+v", got.Items)
	}
	if got.Items[0].Value.String() != "1" {
		t.Fatalf("unexpected value conversion: %s", got.Items[0].Value)
	}
}

func TestHistoryEmptyIsNotAnError(t *testing.T) {
	c, done := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	})
	defer done()

	chain, _ := id.ParseChain("ethereum")
	got, err := c.History(context.Background(), providers.HistoryRequest{Address: testAddress, Chain: chain})
	if err != nil {
		t.Fatalf("empty history must not fail: %v", err)
	}
	if len(got.Items) != 0 || got.NextCursor != "" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestTransactionNotFoundOnChain(t *testing.T) {
	c, done := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	})
	defer done()

	chain, _ := id.ParseChain("ethereum")
	_, err := c.Transaction(context.Background(), chain, testHash)
	if clierr.CodeOf(err) != clierr.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestTransactionStatusFromReceipt(t *testing.T) {
	c, done := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "eth_getTransactionByHash":
			_, _ = w.Write([]byte(`{"result":{"hash":"` + testHash + `","from":"0xa","to":"0xb","value":"0xde0b6b3a7640000","blockNumber":"0x64"}}`))
		case "eth_getTransactionReceipt":
			_, _ = w.Write([]byte(`{"result":{"status":"0x1","blockNumber":"0x64","gasUsed":"0x5208"}}`))
		}
	})
	defer done()

	chain, _ := id.ParseChain("ethereum")
	got, err := c.Transaction(context.Background(), chain, testHash)
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if got.Status != model.TxStatusSuccess || got.BlockNumber != "100" || got.GasUsed != "21000" {
		t.Fatalf("unexpected transaction: %+v", got)
	}
	if got.Value.String() != "1" {
		t.Fatalf("unexpected value: %s", got.Value)
	}
}

func TestPreByzantiumReceiptWithBlockIsSuccess(t *testing.T) {
	if got := classifyStatus(&proxyReceipt{Status: "", BlockNumber: "0x10"}); got != model.TxStatusSuccess {
		t.Fatalf("a mined receipt without a status flag is success, got %s", got)
	}
	if got := classifyStatus(nil); got != model.TxStatusPending {
		t.Fatalf("missing receipt is pending, got %s", got)
	}
	if got := classifyStatus(&proxyReceipt{Status: "0x0", BlockNumber: "0x10"}); got != model.TxStatusFailed {
		t.Fatalf("explicit failure flag wins, got %s", got)
	}
}
