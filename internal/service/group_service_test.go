package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/rates"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// setupTestServer creates a test server backed by a temporary SQLite database.
// EUR converts to SEK at 11.
func setupTestServer(t *testing.T) (apiconnect.GroupServiceClient, apiconnect.LedgerServiceClient, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	l := ledger.New(store, rates.Chain{
		rates.NewStoreProvider(store, 0),
		rates.Table{"EUR": {"SEK": 11}},
	})
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(), metrics.Interceptor())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(l), interceptors))

	server := httptest.NewServer(mux)

	groupClient := apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	ledgerClient := apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return groupClient, ledgerClient, cleanup
}

// createTrip creates the Trip group with Anna, Erik and Maja and returns the
// group ID and a name -> participant ID map.
func createTrip(t *testing.T, client apiconnect.GroupServiceClient) (string, map[string]string) {
	t.Helper()
	ctx := context.Background()

	resp, err := client.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := resp.Msg.Group.ID

	ids := make(map[string]string)
	for _, name := range []string{"Anna", "Erik", "Maja"} {
		p, err := client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{GroupID: groupID, Name: name}))
		if err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", name, err)
		}
		ids[name] = p.Msg.Participant.ID
	}
	return groupID, ids
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error with code %v, got %v", want, err)
	}
	if connectErr.Code() != want {
		t.Errorf("code = %v, want %v (%s)", connectErr.Code(), want, connectErr.Message())
	}
}

func TestCreateGroup(t *testing.T) {
	client, _, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := client.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Roommates"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if resp.Msg.Group.ID == "" {
		t.Error("Expected group ID to be generated")
	}
	if resp.Msg.Group.Name != "Roommates" {
		t.Errorf("Expected name Roommates, got %s", resp.Msg.Group.Name)
	}
	if resp.Msg.Group.CreatedAt == 0 {
		t.Error("Expected CreatedAt to be set")
	}

	_, err = client.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: ""}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetGroup(t *testing.T) {
	client, _, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := createTrip(t, client)

	resp, err := client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Trip" {
		t.Errorf("Expected name Trip, got %s", resp.Msg.Group.Name)
	}
	if len(resp.Msg.Participants) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(resp.Msg.Participants))
	}
	if resp.Msg.Participants[0].Name != "Anna" || resp.Msg.Participants[0].ID != ids["Anna"] {
		t.Errorf("Expected participants ordered by name, got %+v", resp.Msg.Participants[0])
	}

	_, err = client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListRenameDeleteGroup(t *testing.T) {
	client, _, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	groupID, _ := createTrip(t, client)
	if _, err := client.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Flat"})); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	list, err := client.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 2 {
		t.Errorf("Expected 2 groups, got %d", len(list.Msg.Groups))
	}

	if _, err := client.RenameGroup(ctx, connect.NewRequest(&api.RenameGroupRequest{GroupID: groupID, Name: "Trip 2026"})); err != nil {
		t.Fatalf("RenameGroup failed: %v", err)
	}
	got, err := client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.Name != "Trip 2026" {
		t.Errorf("Expected renamed group, got %s", got.Msg.Group.Name)
	}

	if _, err := client.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: groupID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	_, err = client.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestParticipants(t *testing.T) {
	client, _, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := createTrip(t, client)

	_, err := client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{GroupID: groupID, Name: "Anna"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{GroupID: "missing", Name: "Olof"}))
	assertCode(t, err, connect.CodeNotFound)

	if _, err := client.RenameParticipant(ctx, connect.NewRequest(&api.RenameParticipantRequest{ParticipantID: ids["Maja"], Name: "Maja L"})); err != nil {
		t.Fatalf("RenameParticipant failed: %v", err)
	}
	if _, err := client.RemoveParticipant(ctx, connect.NewRequest(&api.RemoveParticipantRequest{ParticipantID: ids["Erik"]})); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}

	active, err := client.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	if len(active.Msg.Participants) != 2 {
		t.Errorf("Expected 2 active participants, got %d", len(active.Msg.Participants))
	}

	all, err := client.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{GroupID: groupID, IncludeRemoved: true}))
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	var removed *api.Participant
	for _, p := range all.Msg.Participants {
		if p.ID == ids["Erik"] {
			removed = p
		}
	}
	if removed == nil || removed.RemovedAt == 0 {
		t.Errorf("Expected Erik to be listed as removed, got %+v", removed)
	}
}

func TestGetStatistics(t *testing.T) {
	groupClient, ledgerClient, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := createTrip(t, groupClient)
	for _, e := range []*api.AddExpenseRequest{
		{GroupID: groupID, Description: "Hotel", Amount: 900, Currency: "SEK", PayerID: ids["Anna"],
			Split: api.Split{Kind: "proportional", Entries: map[string]float64{ids["Anna"]: 0.5, ids["Erik"]: 0.5}}},
		{GroupID: groupID, Description: "Dinner", Amount: 50, Currency: "EUR", PayerID: ids["Erik"]},
	} {
		if _, err := ledgerClient.AddExpense(ctx, connect.NewRequest(e)); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	resp, err := groupClient.GetStatistics(ctx, connect.NewRequest(&api.GetStatisticsRequest{GroupID: groupID, Currency: "SEK"}))
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	stats := resp.Msg.Statistics
	if stats.ParticipantCount != 3 || stats.ExpenseCount != 2 || stats.UnallocatedCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if got := stats.Total.StringFixed(2); got != "1450.00" {
		t.Errorf("total = %s, want 1450.00", got)
	}

	_, err = groupClient.GetStatistics(ctx, connect.NewRequest(&api.GetStatisticsRequest{GroupID: groupID, Currency: "JPY"}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}
