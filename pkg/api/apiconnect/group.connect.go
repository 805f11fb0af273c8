package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "splitledger.v1.GroupService"

// These constants are the fully-qualified names of the RPCs defined in this
// service. They are used as the HTTP path and as Spec.Procedure in interceptors.
const (
	GroupServiceCreateGroupProcedure       = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceRenameGroupProcedure       = "/splitledger.v1.GroupService/RenameGroup"
	GroupServiceDeleteGroupProcedure       = "/splitledger.v1.GroupService/DeleteGroup"
	GroupServiceAddParticipantProcedure    = "/splitledger.v1.GroupService/AddParticipant"
	GroupServiceListParticipantsProcedure  = "/splitledger.v1.GroupService/ListParticipants"
	GroupServiceRenameParticipantProcedure = "/splitledger.v1.GroupService/RenameParticipant"
	GroupServiceRemoveParticipantProcedure = "/splitledger.v1.GroupService/RemoveParticipant"
	GroupServiceGetStatisticsProcedure     = "/splitledger.v1.GroupService/GetStatistics"
)

// GroupServiceClient is a client for the splitledger.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	RenameParticipant(context.Context, *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RenameParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	GetStatistics(context.Context, *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error)
}

// NewGroupServiceClient constructs a client for the splitledger.v1.GroupService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](
			httpClient,
			baseURL+GroupServiceCreateGroupProcedure,
			opts...,
		),
		getGroup: connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](
			httpClient,
			baseURL+GroupServiceGetGroupProcedure,
			opts...,
		),
		listGroups: connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](
			httpClient,
			baseURL+GroupServiceListGroupsProcedure,
			opts...,
		),
		renameGroup: connect.NewClient[api.RenameGroupRequest, api.RenameGroupResponse](
			httpClient,
			baseURL+GroupServiceRenameGroupProcedure,
			opts...,
		),
		deleteGroup: connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](
			httpClient,
			baseURL+GroupServiceDeleteGroupProcedure,
			opts...,
		),
		addParticipant: connect.NewClient[api.AddParticipantRequest, api.AddParticipantResponse](
			httpClient,
			baseURL+GroupServiceAddParticipantProcedure,
			opts...,
		),
		listParticipants: connect.NewClient[api.ListParticipantsRequest, api.ListParticipantsResponse](
			httpClient,
			baseURL+GroupServiceListParticipantsProcedure,
			opts...,
		),
		renameParticipant: connect.NewClient[api.RenameParticipantRequest, api.RenameParticipantResponse](
			httpClient,
			baseURL+GroupServiceRenameParticipantProcedure,
			opts...,
		),
		removeParticipant: connect.NewClient[api.RemoveParticipantRequest, api.RemoveParticipantResponse](
			httpClient,
			baseURL+GroupServiceRemoveParticipantProcedure,
			opts...,
		),
		getStatistics: connect.NewClient[api.GetStatisticsRequest, api.GetStatisticsResponse](
			httpClient,
			baseURL+GroupServiceGetStatisticsProcedure,
			opts...,
		),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup          *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups        *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	renameGroup       *connect.Client[api.RenameGroupRequest, api.RenameGroupResponse]
	deleteGroup       *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	addParticipant    *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	listParticipants  *connect.Client[api.ListParticipantsRequest, api.ListParticipantsResponse]
	renameParticipant *connect.Client[api.RenameParticipantRequest, api.RenameParticipantResponse]
	removeParticipant *connect.Client[api.RemoveParticipantRequest, api.RemoveParticipantResponse]
	getStatistics     *connect.Client[api.GetStatisticsRequest, api.GetStatisticsResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	return c.renameGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *groupServiceClient) RenameParticipant(ctx context.Context, req *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RenameParticipantResponse], error) {
	return c.renameParticipant.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetStatistics(ctx context.Context, req *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error) {
	return c.getStatistics.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by servers of the splitledger.v1.GroupService service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	RenameParticipant(context.Context, *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RenameParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	GetStatistics(context.Context, *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroupHandler := connect.NewUnaryHandler(
		GroupServiceCreateGroupProcedure,
		svc.CreateGroup,
		opts...,
	)
	getGroupHandler := connect.NewUnaryHandler(
		GroupServiceGetGroupProcedure,
		svc.GetGroup,
		opts...,
	)
	listGroupsHandler := connect.NewUnaryHandler(
		GroupServiceListGroupsProcedure,
		svc.ListGroups,
		opts...,
	)
	renameGroupHandler := connect.NewUnaryHandler(
		GroupServiceRenameGroupProcedure,
		svc.RenameGroup,
		opts...,
	)
	deleteGroupHandler := connect.NewUnaryHandler(
		GroupServiceDeleteGroupProcedure,
		svc.DeleteGroup,
		opts...,
	)
	addParticipantHandler := connect.NewUnaryHandler(
		GroupServiceAddParticipantProcedure,
		svc.AddParticipant,
		opts...,
	)
	listParticipantsHandler := connect.NewUnaryHandler(
		GroupServiceListParticipantsProcedure,
		svc.ListParticipants,
		opts...,
	)
	renameParticipantHandler := connect.NewUnaryHandler(
		GroupServiceRenameParticipantProcedure,
		svc.RenameParticipant,
		opts...,
	)
	removeParticipantHandler := connect.NewUnaryHandler(
		GroupServiceRemoveParticipantProcedure,
		svc.RemoveParticipant,
		opts...,
	)
	getStatisticsHandler := connect.NewUnaryHandler(
		GroupServiceGetStatisticsProcedure,
		svc.GetStatistics,
		opts...,
	)
	return "/splitledger.v1.GroupService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroupHandler.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroupHandler.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroupsHandler.ServeHTTP(w, r)
		case GroupServiceRenameGroupProcedure:
			renameGroupHandler.ServeHTTP(w, r)
		case GroupServiceDeleteGroupProcedure:
			deleteGroupHandler.ServeHTTP(w, r)
		case GroupServiceAddParticipantProcedure:
			addParticipantHandler.ServeHTTP(w, r)
		case GroupServiceListParticipantsProcedure:
			listParticipantsHandler.ServeHTTP(w, r)
		case GroupServiceRenameParticipantProcedure:
			renameParticipantHandler.ServeHTTP(w, r)
		case GroupServiceRemoveParticipantProcedure:
			removeParticipantHandler.ServeHTTP(w, r)
		case GroupServiceGetStatisticsProcedure:
			getStatisticsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
