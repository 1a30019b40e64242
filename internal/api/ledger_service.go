package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "sharedpot.v1.LedgerService"

// Procedure paths, in the form "/<service>/<method>".
const (
	LedgerServiceCreateLedgerProcedure      = "/" + LedgerServiceName + "/CreateLedger"
	LedgerServiceGetLedgerProcedure         = "/" + LedgerServiceName + "/GetLedger"
	LedgerServiceListLedgersProcedure       = "/" + LedgerServiceName + "/ListLedgers"
	LedgerServiceDeleteLedgerProcedure      = "/" + LedgerServiceName + "/DeleteLedger"
	LedgerServiceAddOutlayProcedure         = "/" + LedgerServiceName + "/AddOutlay"
	LedgerServiceAddRefundProcedure         = "/" + LedgerServiceName + "/AddRefund"
	LedgerServiceDeleteTransactionProcedure = "/" + LedgerServiceName + "/DeleteTransaction"
	LedgerServiceListTransactionsProcedure  = "/" + LedgerServiceName + "/ListTransactions"
	LedgerServiceGetBalancesProcedure       = "/" + LedgerServiceName + "/GetBalances"
	LedgerServiceGetDebtsProcedure          = "/" + LedgerServiceName + "/GetDebts"
	LedgerServiceGetStatementsProcedure     = "/" + LedgerServiceName + "/GetStatements"
	LedgerServiceSettleDebtProcedure        = "/" + LedgerServiceName + "/SettleDebt"
)

// LedgerServiceHandler is implemented by the ledger service. Every method
// requires an authenticated caller who owns the ledger involved.
type LedgerServiceHandler interface {
	CreateLedger(context.Context, *connect.Request[CreateLedgerRequest]) (*connect.Response[CreateLedgerResponse], error)
	GetLedger(context.Context, *connect.Request[GetLedgerRequest]) (*connect.Response[GetLedgerResponse], error)
	ListLedgers(context.Context, *connect.Request[ListLedgersRequest]) (*connect.Response[ListLedgersResponse], error)
	DeleteLedger(context.Context, *connect.Request[DeleteLedgerRequest]) (*connect.Response[DeleteLedgerResponse], error)
	AddOutlay(context.Context, *connect.Request[AddOutlayRequest]) (*connect.Response[AddOutlayResponse], error)
	AddRefund(context.Context, *connect.Request[AddRefundRequest]) (*connect.Response[AddRefundResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetDebts(context.Context, *connect.Request[GetDebtsRequest]) (*connect.Response[GetDebtsResponse], error)
	GetStatements(context.Context, *connect.Request[GetStatementsRequest]) (*connect.Response[GetStatementsResponse], error)
	SettleDebt(context.Context, *connect.Request[SettleDebtRequest]) (*connect.Response[SettleDebtResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler serving every LedgerService procedure.
// It returns the path prefix to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	rs := make(routes)
	unary(rs, LedgerServiceCreateLedgerProcedure, svc.CreateLedger, opts)
	unary(rs, LedgerServiceGetLedgerProcedure, svc.GetLedger, opts)
	unary(rs, LedgerServiceListLedgersProcedure, svc.ListLedgers, opts)
	unary(rs, LedgerServiceDeleteLedgerProcedure, svc.DeleteLedger, opts)
	unary(rs, LedgerServiceAddOutlayProcedure, svc.AddOutlay, opts)
	unary(rs, LedgerServiceAddRefundProcedure, svc.AddRefund, opts)
	unary(rs, LedgerServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts)
	unary(rs, LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts)
	unary(rs, LedgerServiceGetBalancesProcedure, svc.GetBalances, opts)
	unary(rs, LedgerServiceGetDebtsProcedure, svc.GetDebts, opts)
	unary(rs, LedgerServiceGetStatementsProcedure, svc.GetStatements, opts)
	unary(rs, LedgerServiceSettleDebtProcedure, svc.SettleDebt, opts)
	return "/" + LedgerServiceName + "/", rs
}

// LedgerServiceClient calls a remote LedgerService.
type LedgerServiceClient struct {
	createLedger      *connect.Client[CreateLedgerRequest, CreateLedgerResponse]
	getLedger         *connect.Client[GetLedgerRequest, GetLedgerResponse]
	listLedgers       *connect.Client[ListLedgersRequest, ListLedgersResponse]
	deleteLedger      *connect.Client[DeleteLedgerRequest, DeleteLedgerResponse]
	addOutlay         *connect.Client[AddOutlayRequest, AddOutlayResponse]
	addRefund         *connect.Client[AddRefundRequest, AddRefundResponse]
	deleteTransaction *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	listTransactions  *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	getBalances       *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getDebts          *connect.Client[GetDebtsRequest, GetDebtsResponse]
	getStatements     *connect.Client[GetStatementsRequest, GetStatementsResponse]
	settleDebt        *connect.Client[SettleDebtRequest, SettleDebtResponse]
}

// NewLedgerServiceClient returns a client for the LedgerService at baseURL
// (e.g. http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		createLedger:      connect.NewClient[CreateLedgerRequest, CreateLedgerResponse](httpClient, baseURL+LedgerServiceCreateLedgerProcedure, opts...),
		getLedger:         connect.NewClient[GetLedgerRequest, GetLedgerResponse](httpClient, baseURL+LedgerServiceGetLedgerProcedure, opts...),
		listLedgers:       connect.NewClient[ListLedgersRequest, ListLedgersResponse](httpClient, baseURL+LedgerServiceListLedgersProcedure, opts...),
		deleteLedger:      connect.NewClient[DeleteLedgerRequest, DeleteLedgerResponse](httpClient, baseURL+LedgerServiceDeleteLedgerProcedure, opts...),
		addOutlay:         connect.NewClient[AddOutlayRequest, AddOutlayResponse](httpClient, baseURL+LedgerServiceAddOutlayProcedure, opts...),
		addRefund:         connect.NewClient[AddRefundRequest, AddRefundResponse](httpClient, baseURL+LedgerServiceAddRefundProcedure, opts...),
		deleteTransaction: connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+LedgerServiceDeleteTransactionProcedure, opts...),
		listTransactions:  connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
		getBalances:       connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getDebts:          connect.NewClient[GetDebtsRequest, GetDebtsResponse](httpClient, baseURL+LedgerServiceGetDebtsProcedure, opts...),
		getStatements:     connect.NewClient[GetStatementsRequest, GetStatementsResponse](httpClient, baseURL+LedgerServiceGetStatementsProcedure, opts...),
		settleDebt:        connect.NewClient[SettleDebtRequest, SettleDebtResponse](httpClient, baseURL+LedgerServiceSettleDebtProcedure, opts...),
	}
}

func (c *LedgerServiceClient) CreateLedger(ctx context.Context, req *connect.Request[CreateLedgerRequest]) (*connect.Response[CreateLedgerResponse], error) {
	return c.createLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetLedger(ctx context.Context, req *connect.Request[GetLedgerRequest]) (*connect.Response[GetLedgerResponse], error) {
	return c.getLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListLedgers(ctx context.Context, req *connect.Request[ListLedgersRequest]) (*connect.Response[ListLedgersResponse], error) {
	return c.listLedgers.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteLedger(ctx context.Context, req *connect.Request[DeleteLedgerRequest]) (*connect.Response[DeleteLedgerResponse], error) {
	return c.deleteLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddOutlay(ctx context.Context, req *connect.Request[AddOutlayRequest]) (*connect.Response[AddOutlayResponse], error) {
	return c.addOutlay.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddRefund(ctx context.Context, req *connect.Request[AddRefundRequest]) (*connect.Response[AddRefundResponse], error) {
	return c.addRefund.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetDebts(ctx context.Context, req *connect.Request[GetDebtsRequest]) (*connect.Response[GetDebtsResponse], error) {
	return c.getDebts.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetStatements(ctx context.Context, req *connect.Request[GetStatementsRequest]) (*connect.Response[GetStatementsResponse], error) {
	return c.getStatements.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SettleDebt(ctx context.Context, req *connect.Request[SettleDebtRequest]) (*connect.Response[SettleDebtResponse], error) {
	return c.settleDebt.CallUnary(ctx, req)
}
