package etherscan

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/httpx"
	"github.com/skillhq/onchain/internal/id"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

const defaultAPIBase = "https://api.etherscan.io/v2/api"

const defaultPageSize = 25

var nativeSymbol = map[string]string{
	"ethereum":  "ETH",
	"base":      "ETH",
	"arbitrum":  "ETH",
	"optimism":  "ETH",
	"polygon":   "POL",
	"bsc":       "BNB",
	"avalanche": "AVAX",
}

// Client is the EVM chain explorer. One key covers every chain through the
// v2 multi-chain API's chainid parameter.
type Client struct {
	http    *httpx.Client
	apiKey  string
	apiBase string
}

func New(httpClient *httpx.Client, apiKey string) *Client {
	return &Client{http: httpClient, apiKey: apiKey, apiBase: defaultAPIBase}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "etherscan",
		Type:         "chain-explorer",
		RequiresKey:  true,
		Capabilities: []string{"balances", "history", "tx"},
		KeyEnvVars:   []string{"ONCHAIN_ETHERSCAN_API_KEY"},
	}
}

type accountEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) query(chain id.Chain, module, action string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("chainid", strconv.FormatInt(chain.EVMChainID, 10))
	q.Set("module", module)
	q.Set("action", action)
	q.Set("apikey", c.apiKey)
	return c.apiBase + "?" + q.Encode()
}

func (c *Client) Balances(ctx context.Context, req providers.BalancesRequest) (model.WalletBalances, error) {
	chain := id.ProbeOrder()[0]
	if req.Chain != nil {
		chain = *req.Chain
	}

	var resp struct {
		accountEnvelope
		Result string `json:"result"`
	}
	endpoint := c.query(chain, "account", "balance", url.Values{
		"address": {req.Address},
		"tag":     {"latest"},
	})
	if _, err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return model.WalletBalances{}, err
	}
	if resp.Status != "1" {
		return model.WalletBalances{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("etherscan: %s", nonEmpty(resp.Message, "balance lookup failed")))
	}

	wei, ok := new(big.Int).SetString(resp.Result, 10)
	if !ok {
		return model.WalletBalances{}, clierr.New(clierr.CodeUnavailable, "etherscan: malformed balance payload")
	}
	amount := decimal.NewFromBigInt(wei, -18)

	symbol := nativeSymbol[chain.Slug]
	return model.WalletBalances{
		Address: req.Address,
		Chain:   chain.Slug,
		Assets: []model.AssetBalance{
			{Symbol: symbol, Name: chain.Name + " native", Chain: chain.Slug, Amount: amount},
		},
	}, nil
}

type txListEntry struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	GasUsed     string `json:"gasUsed"`
	IsError     string `json:"isError"`
}

func (c *Client) History(ctx context.Context, req providers.HistoryRequest) (model.TransactionPage, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := 1
	if req.Cursor != "" {
		parsed, err := strconv.Atoi(req.Cursor)
		if err != nil || parsed < 1 {
			return model.TransactionPage{}, clierr.New(clierr.CodeUsage, "invalid page cursor")
		}
		page = parsed
	}

	var resp struct {
		accountEnvelope
		Result []txListEntry `json:"result"`
	}
	endpoint := c.query(req.Chain, "account", "txlist", url.Values{
		"address": {req.Address},
		"page":    {strconv.Itoa(page)},
		"offset":  {strconv.Itoa(limit)},
		"sort":    {"desc"},
	})
	if _, err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return model.TransactionPage{}, err
	}
	// Status "0" with "No transactions found" is an empty page; any other
	// "0" response is a remote failure.
	if resp.Status != "1" && !strings.Contains(resp.Message, "No transactions") {
		return model.TransactionPage{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("etherscan: %s", nonEmpty(resp.Message, "history lookup failed")))
	}

	items := make([]model.Transaction, 0, len(resp.Result))
	for _, entry := range resp.Result {
		wei, ok := new(big.Int).SetString(entry.Value, 10)
		if !ok {
			wei = big.NewInt(0)
		}
		status := model.TxStatusSuccess
		if entry.IsError == "1" {
			status = model.TxStatusFailed
		}
		tx := model.Transaction{
			Hash:        entry.Hash,
			Chain:       req.Chain.Slug,
			From:        entry.From,
			To:          entry.To,
			ValueWei:    decimal.NewFromBigInt(wei, 0),
			Value:       decimal.NewFromBigInt(wei, -18),
			Status:      status,
			BlockNumber: entry.BlockNumber,
			GasUsed:     entry.GasUsed,
		}
		if secs, err := strconv.ParseInt(entry.TimeStamp, 10, 64); err == nil {
			tx.Timestamp = time.Unix(secs, 0).UTC()
		}
		items = append(items, tx)
	}

	out := model.TransactionPage{
		Address: req.Address,
		Chain:   req.Chain.Slug,
		Items:   items,
	}
	if len(items) == limit {
		out.NextCursor = strconv.Itoa(page + 1)
	}
	return out, nil
}

type proxyTx struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	BlockNumber string `json:"blockNumber"`
}

type proxyReceipt struct {
	Status      string `json:"status"`
	BlockNumber string `json:"blockNumber"`
	GasUsed     string `json:"gasUsed"`
}

func (c *Client) Transaction(ctx context.Context, chain id.Chain, hash string) (model.Transaction, error) {
	var txResp struct {
		Result *proxyTx `json:"result"`
	}
	endpoint := c.query(chain, "proxy", "eth_getTransactionByHash", url.Values{"txhash": {hash}})
	if _, err := c.http.GetJSON(ctx, endpoint, nil, &txResp); err != nil {
		return model.Transaction{}, err
	}
	if txResp.Result == nil || txResp.Result.Hash == "" {
		return model.Transaction{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("transaction %s not found on %s", hash, chain.Slug))
	}

	var receiptResp struct {
		Result *proxyReceipt `json:"result"`
	}
	endpoint = c.query(chain, "proxy", "eth_getTransactionReceipt", url.Values{"txhash": {hash}})
	if _, err := c.http.GetJSON(ctx, endpoint, nil, &receiptResp); err != nil {
		return model.Transaction{}, err
	}

	wei := parseHexBig(txResp.Result.Value)
	tx := model.Transaction{
		Hash:        txResp.Result.Hash,
		Chain:       chain.Slug,
		From:        txResp.Result.From,
		To:          txResp.Result.To,
		ValueWei:    decimal.NewFromBigInt(wei, 0),
		Value:       decimal.NewFromBigInt(wei, -18),
		BlockNumber: hexToDecString(txResp.Result.BlockNumber),
		Status:      classifyStatus(receiptResp.Result),
	}
	if receiptResp.Result != nil {
		tx.GasUsed = hexToDecString(receiptResp.Result.GasUsed)
	}
	return tx, nil
}

// classifyStatus derives a status from the receipt. Pre-Byzantium receipts
// carry no status field; a receipt that references a block still counts as
// success, never pending.
func classifyStatus(receipt *proxyReceipt) string {
	if receipt == nil {
		return model.TxStatusPending
	}
	switch receipt.Status {
	case "0x1":
		return model.TxStatusSuccess
	case "0x0":
		return model.TxStatusFailed
	}
	if receipt.BlockNumber != "" {
		return model.TxStatusSuccess
	}
	return model.TxStatusPending
}

func parseHexBig(input string) *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(input, "0x"), 16)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func hexToDecString(input string) string {
	if input == "" {
		return ""
	}
	return parseHexBig(input).String()
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
