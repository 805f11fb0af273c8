package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService: groups, their
// participants and group statistics.
type GroupService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService on top of the given ledger.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received", "name", req.Msg.Name)

	group, err := s.ledger.CreateGroup(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group with its active participants.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	participants, err := s.ledger.ListParticipants(ctx, group.ID, false)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:        groupToAPI(group),
		Participants: participantsToAPI(participants),
	}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.ledger.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// RenameGroup changes a group's name.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	if err := s.ledger.RenameGroup(ctx, req.Msg.GroupID, req.Msg.Name); err != nil {
		return nil, toConnectError("RenameGroup", err)
	}
	return connect.NewResponse(&api.RenameGroupResponse{}), nil
}

// DeleteGroup deletes a group and everything recorded in it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	if err := s.ledger.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddParticipant adds a participant to a group.
func (s *GroupService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	slog.Info("AddParticipant request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	p, err := s.ledger.AddParticipant(ctx, req.Msg.GroupID, req.Msg.Name, req.Msg.Email)
	if err != nil {
		return nil, toConnectError("AddParticipant", err)
	}

	return connect.NewResponse(&api.AddParticipantResponse{Participant: participantToAPI(p)}), nil
}

// ListParticipants lists a group's participants.
func (s *GroupService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	ps, err := s.ledger.ListParticipants(ctx, req.Msg.GroupID, req.Msg.IncludeRemoved)
	if err != nil {
		return nil, toConnectError("ListParticipants", err)
	}
	return connect.NewResponse(&api.ListParticipantsResponse{Participants: participantsToAPI(ps)}), nil
}

// RenameParticipant changes a participant's display name.
func (s *GroupService) RenameParticipant(ctx context.Context, req *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RenameParticipantResponse], error) {
	if err := s.ledger.RenameParticipant(ctx, req.Msg.ParticipantID, req.Msg.Name); err != nil {
		return nil, toConnectError("RenameParticipant", err)
	}
	return connect.NewResponse(&api.RenameParticipantResponse{}), nil
}

// RemoveParticipant retires a participant; their history is kept.
func (s *GroupService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	if err := s.ledger.RemoveParticipant(ctx, req.Msg.ParticipantID); err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}
	return connect.NewResponse(&api.RemoveParticipantResponse{}), nil
}

// GetStatistics summarises a group's activity.
func (s *GroupService) GetStatistics(ctx context.Context, req *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error) {
	stats, err := s.ledger.Statistics(ctx, req.Msg.GroupID, req.Msg.Currency)
	if err != nil {
		return nil, toConnectError("GetStatistics", err)
	}
	return connect.NewResponse(&api.GetStatisticsResponse{Statistics: statisticsToAPI(stats)}), nil
}
