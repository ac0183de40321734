package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/poinku/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "poinku.v1.LedgerService"

// Procedure paths for LedgerService.
const (
	LedgerServiceRecordEarningProcedure    = "/poinku.v1.LedgerService/RecordEarning"
	LedgerServiceRecordRedeemProcedure     = "/poinku.v1.LedgerService/RecordRedeem"
	LedgerServiceGetBalanceProcedure       = "/poinku.v1.LedgerService/GetBalance"
	LedgerServiceReconcileBalanceProcedure = "/poinku.v1.LedgerService/ReconcileBalance"
	LedgerServiceListTransactionsProcedure = "/poinku.v1.LedgerService/ListTransactions"
)

// LedgerServiceClient is a client for the poinku.v1.LedgerService service.
type LedgerServiceClient interface {
	RecordEarning(context.Context, *connect.Request[api.RecordEarningRequest]) (*connect.Response[api.RecordEarningResponse], error)
	RecordRedeem(context.Context, *connect.Request[api.RecordRedeemRequest]) (*connect.Response[api.RecordRedeemResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ReconcileBalance(context.Context, *connect.Request[api.ReconcileBalanceRequest]) (*connect.Response[api.ReconcileBalanceResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
}

// NewLedgerServiceClient constructs a client for the poinku.v1.LedgerService service.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.WithCodec()}, opts...)
	return &ledgerServiceClient{
		recordEarning: connect.NewClient[api.RecordEarningRequest, api.RecordEarningResponse](
			httpClient, baseURL+LedgerServiceRecordEarningProcedure, opts...),
		recordRedeem: connect.NewClient[api.RecordRedeemRequest, api.RecordRedeemResponse](
			httpClient, baseURL+LedgerServiceRecordRedeemProcedure, opts...),
		getBalance: connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](
			httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		reconcileBalance: connect.NewClient[api.ReconcileBalanceRequest, api.ReconcileBalanceResponse](
			httpClient, baseURL+LedgerServiceReconcileBalanceProcedure, opts...),
		listTransactions: connect.NewClient[api.ListTransactionsRequest, api.ListTransactionsResponse](
			httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	recordEarning    *connect.Client[api.RecordEarningRequest, api.RecordEarningResponse]
	recordRedeem     *connect.Client[api.RecordRedeemRequest, api.RecordRedeemResponse]
	getBalance       *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	reconcileBalance *connect.Client[api.ReconcileBalanceRequest, api.ReconcileBalanceResponse]
	listTransactions *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
}

func (c *ledgerServiceClient) RecordEarning(ctx context.Context, req *connect.Request[api.RecordEarningRequest]) (*connect.Response[api.RecordEarningResponse], error) {
	return c.recordEarning.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordRedeem(ctx context.Context, req *connect.Request[api.RecordRedeemRequest]) (*connect.Response[api.RecordRedeemResponse], error) {
	return c.recordRedeem.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ReconcileBalance(ctx context.Context, req *connect.Request[api.ReconcileBalanceRequest]) (*connect.Response[api.ReconcileBalanceResponse], error) {
	return c.reconcileBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the poinku.v1.LedgerService server.
type LedgerServiceHandler interface {
	RecordEarning(context.Context, *connect.Request[api.RecordEarningRequest]) (*connect.Response[api.RecordEarningResponse], error)
	RecordRedeem(context.Context, *connect.Request[api.RecordRedeemRequest]) (*connect.Response[api.RecordRedeemResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ReconcileBalance(context.Context, *connect.Request[api.ReconcileBalanceRequest]) (*connect.Response[api.ReconcileBalanceResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithCodec()}, opts...)
	recordEarning := connect.NewUnaryHandler(LedgerServiceRecordEarningProcedure, svc.RecordEarning, opts...)
	recordRedeem := connect.NewUnaryHandler(LedgerServiceRecordRedeemProcedure, svc.RecordRedeem, opts...)
	getBalance := connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...)
	reconcileBalance := connect.NewUnaryHandler(LedgerServiceReconcileBalanceProcedure, svc.ReconcileBalance, opts...)
	listTransactions := connect.NewUnaryHandler(LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts...)
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceRecordEarningProcedure:
			recordEarning.ServeHTTP(w, r)
		case LedgerServiceRecordRedeemProcedure:
			recordRedeem.ServeHTTP(w, r)
		case LedgerServiceGetBalanceProcedure:
			getBalance.ServeHTTP(w, r)
		case LedgerServiceReconcileBalanceProcedure:
			reconcileBalance.ServeHTTP(w, r)
		case LedgerServiceListTransactionsProcedure:
			listTransactions.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
