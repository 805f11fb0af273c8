package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// These constants are the fully-qualified names of the RPCs defined in this
// service. They are used as the HTTP path and as Spec.Procedure in interceptors.
const (
	LedgerServiceAddExpenseProcedure       = "/splitledger.v1.LedgerService/AddExpense"
	LedgerServiceUpdateExpenseProcedure    = "/splitledger.v1.LedgerService/UpdateExpense"
	LedgerServiceRemoveExpenseProcedure    = "/splitledger.v1.LedgerService/RemoveExpense"
	LedgerServiceListExpensesProcedure     = "/splitledger.v1.LedgerService/ListExpenses"
	LedgerServiceGetBalancesProcedure      = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServicePlanSettlementProcedure   = "/splitledger.v1.LedgerService/PlanSettlement"
	LedgerServiceRecordSettlementProcedure = "/splitledger.v1.LedgerService/RecordSettlement"
	LedgerServiceListSettlementsProcedure  = "/splitledger.v1.LedgerService/ListSettlements"
	LedgerServiceDeleteSettlementProcedure = "/splitledger.v1.LedgerService/DeleteSettlement"
	LedgerServiceSetRateProcedure          = "/splitledger.v1.LedgerService/SetRate"
)

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient interface {
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	RemoveExpense(context.Context, *connect.Request[api.RemoveExpenseRequest]) (*connect.Response[api.RemoveExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	PlanSettlement(context.Context, *connect.Request[api.PlanSettlementRequest]) (*connect.Response[api.PlanSettlementResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	SetRate(context.Context, *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error)
}

// NewLedgerServiceClient constructs a client for the splitledger.v1.LedgerService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		addExpense: connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](
			httpClient,
			baseURL+LedgerServiceAddExpenseProcedure,
			opts...,
		),
		updateExpense: connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](
			httpClient,
			baseURL+LedgerServiceUpdateExpenseProcedure,
			opts...,
		),
		removeExpense: connect.NewClient[api.RemoveExpenseRequest, api.RemoveExpenseResponse](
			httpClient,
			baseURL+LedgerServiceRemoveExpenseProcedure,
			opts...,
		),
		listExpenses: connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](
			httpClient,
			baseURL+LedgerServiceListExpensesProcedure,
			opts...,
		),
		getBalances: connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](
			httpClient,
			baseURL+LedgerServiceGetBalancesProcedure,
			opts...,
		),
		planSettlement: connect.NewClient[api.PlanSettlementRequest, api.PlanSettlementResponse](
			httpClient,
			baseURL+LedgerServicePlanSettlementProcedure,
			opts...,
		),
		recordSettlement: connect.NewClient[api.RecordSettlementRequest, api.RecordSettlementResponse](
			httpClient,
			baseURL+LedgerServiceRecordSettlementProcedure,
			opts...,
		),
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](
			httpClient,
			baseURL+LedgerServiceListSettlementsProcedure,
			opts...,
		),
		deleteSettlement: connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](
			httpClient,
			baseURL+LedgerServiceDeleteSettlementProcedure,
			opts...,
		),
		setRate: connect.NewClient[api.SetRateRequest, api.SetRateResponse](
			httpClient,
			baseURL+LedgerServiceSetRateProcedure,
			opts...,
		),
	}
}

type ledgerServiceClient struct {
	addExpense       *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	updateExpense    *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	removeExpense    *connect.Client[api.RemoveExpenseRequest, api.RemoveExpenseResponse]
	listExpenses     *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getBalances      *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	planSettlement   *connect.Client[api.PlanSettlementRequest, api.PlanSettlementResponse]
	recordSettlement *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	listSettlements  *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	deleteSettlement *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
	setRate          *connect.Client[api.SetRateRequest, api.SetRateResponse]
}

func (c *ledgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RemoveExpense(ctx context.Context, req *connect.Request[api.RemoveExpenseRequest]) (*connect.Response[api.RemoveExpenseResponse], error) {
	return c.removeExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) PlanSettlement(ctx context.Context, req *connect.Request[api.PlanSettlementRequest]) (*connect.Response[api.PlanSettlementResponse], error) {
	return c.planSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SetRate(ctx context.Context, req *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error) {
	return c.setRate.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by servers of the splitledger.v1.LedgerService service.
type LedgerServiceHandler interface {
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	RemoveExpense(context.Context, *connect.Request[api.RemoveExpenseRequest]) (*connect.Response[api.RemoveExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	PlanSettlement(context.Context, *connect.Request[api.PlanSettlementRequest]) (*connect.Response[api.PlanSettlementResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	SetRate(context.Context, *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	addExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceAddExpenseProcedure,
		svc.AddExpense,
		opts...,
	)
	updateExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceUpdateExpenseProcedure,
		svc.UpdateExpense,
		opts...,
	)
	removeExpenseHandler := connect.NewUnaryHandler(
		LedgerServiceRemoveExpenseProcedure,
		svc.RemoveExpense,
		opts...,
	)
	listExpensesHandler := connect.NewUnaryHandler(
		LedgerServiceListExpensesProcedure,
		svc.ListExpenses,
		opts...,
	)
	getBalancesHandler := connect.NewUnaryHandler(
		LedgerServiceGetBalancesProcedure,
		svc.GetBalances,
		opts...,
	)
	planSettlementHandler := connect.NewUnaryHandler(
		LedgerServicePlanSettlementProcedure,
		svc.PlanSettlement,
		opts...,
	)
	recordSettlementHandler := connect.NewUnaryHandler(
		LedgerServiceRecordSettlementProcedure,
		svc.RecordSettlement,
		opts...,
	)
	listSettlementsHandler := connect.NewUnaryHandler(
		LedgerServiceListSettlementsProcedure,
		svc.ListSettlements,
		opts...,
	)
	deleteSettlementHandler := connect.NewUnaryHandler(
		LedgerServiceDeleteSettlementProcedure,
		svc.DeleteSettlement,
		opts...,
	)
	setRateHandler := connect.NewUnaryHandler(
		LedgerServiceSetRateProcedure,
		svc.SetRate,
		opts...,
	)
	return "/splitledger.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceAddExpenseProcedure:
			addExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceUpdateExpenseProcedure:
			updateExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceRemoveExpenseProcedure:
			removeExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceListExpensesProcedure:
			listExpensesHandler.ServeHTTP(w, r)
		case LedgerServiceGetBalancesProcedure:
			getBalancesHandler.ServeHTTP(w, r)
		case LedgerServicePlanSettlementProcedure:
			planSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceRecordSettlementProcedure:
			recordSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceListSettlementsProcedure:
			listSettlementsHandler.ServeHTTP(w, r)
		case LedgerServiceDeleteSettlementProcedure:
			deleteSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceSetRateProcedure:
			setRateHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
