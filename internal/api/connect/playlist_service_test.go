package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19box-playlist/internal/app/command"
	"github.com/osa030/19box-playlist/internal/app/library"
	"github.com/osa030/19box-playlist/internal/domain/playlist"
	"github.com/osa030/19box-playlist/internal/infra/config"
)

const testToken = "test-admin-token"

func newTestServer(t *testing.T) (*httptest.Server, *library.Store) {
	t.Helper()

	cfg, err := config.Parse([]byte("admin:\n  token: " + testToken + "\n"))
	require.NoError(t, err)
	cfg.Admin.Token = testToken

	store := library.New(library.Options{Dir: filepath.Join(t.TempDir(), "Playlists")})
	dispatcher := command.New(store, cfg)

	path, handler := NewPlaylistServiceHandler(
		NewPlaylistService(dispatcher),
		connect.WithInterceptors(NewAdminAuthInterceptor(cfg)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestPlaylistService_Execute(t *testing.T) {
	srv, store := newTestServer(t)
	client := NewPlaylistClient(srv.Client(), srv.URL+"/", testToken)
	ctx := context.Background()

	resp, err := client.Execute(ctx, &ExecuteRequest{Action: "make", Args: "road trip"})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "created", resp.Code)
	assert.Equal(t, "Successfully created playlist road_trip!", resp.Message)
	assert.NotEmpty(t, resp.RequestID)
	assert.True(t, store.Exists("road_trip"))

	resp, err = client.Execute(ctx, &ExecuteRequest{Action: "make", Args: "road trip"})
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "already_exists", resp.Code)

	resp, err = client.Execute(ctx, &ExecuteRequest{Action: "list"})
	require.NoError(t, err)
	assert.Equal(t, []string{"road_trip"}, resp.Names)
}

func TestPlaylistService_SaveQueue(t *testing.T) {
	srv, store := newTestServer(t)
	client := NewPlaylistClient(srv.Client(), srv.URL, testToken)

	resp, err := client.Execute(context.Background(), &ExecuteRequest{
		Action:     "savequeue",
		Args:       "party",
		NowPlaying: &QueueEntry{URL: "http://now", Title: "Now"},
		Queue: []QueueEntry{
			{URL: "http://p1", RequesterName: "alice"},
			{URL: "http://p2"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.Count)

	p, err := store.Read("party")
	require.NoError(t, err)
	assert.Equal(t, []playlist.Item{"http://now", "http://p1", "http://p2"}, p.Items)

	resp, err = client.Execute(context.Background(), &ExecuteRequest{Action: "save", Args: "empty"})
	require.NoError(t, err)
	assert.Equal(t, "warning", resp.Status)
	assert.Equal(t, "empty_snapshot", resp.Code)
}

func TestPlaylistService_RequestID(t *testing.T) {
	srv, _ := newTestServer(t)
	client := connect.NewClient[ExecuteRequest, ExecuteResponse](
		srv.Client(), srv.URL+ExecuteProcedure, connect.WithCodec(jsonCodec{}))

	req := connect.NewRequest(&ExecuteRequest{Action: "help"})
	req.Header().Set(AdminTokenHeader, testToken)
	req.Header().Set(RequestIDHeader, "req-123")

	resp, err := client.CallUnary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Msg.RequestID)
	assert.Equal(t, "req-123", resp.Header().Get(RequestIDHeader))
}

func TestPlaylistService_InvalidArgument(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewPlaylistClient(srv.Client(), srv.URL, testToken)

	_, err := client.Execute(context.Background(), &ExecuteRequest{Action: "  "})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestPlaylistService_ListActions(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewPlaylistClient(srv.Client(), srv.URL, testToken)

	resp, err := client.ListActions(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "make", resp.Actions[0].Name)
	assert.Equal(t, []string{"create"}, resp.Actions[0].Aliases)
}

func TestAdminAuthInterceptor(t *testing.T) {
	srv, store := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "wrong token", token: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewPlaylistClient(srv.Client(), srv.URL, tt.token)

			_, err := client.Execute(context.Background(), &ExecuteRequest{Action: "make", Args: "sneaky"})
			require.Error(t, err)
			assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
			assert.False(t, store.Exists("sneaky"))

			_, err = client.ListActions(context.Background())
			assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		})
	}
}

func TestToQueueState(t *testing.T) {
	state := toQueueState(nil, nil)
	assert.Nil(t, state.Current)
	assert.Empty(t, state.Pending)

	state = toQueueState(&QueueEntry{URL: "http://now", Title: "T", Author: "A"}, []QueueEntry{{URL: "http://p1", RequesterName: "bob"}})
	require.NotNil(t, state.Current)
	assert.Equal(t, "http://now", state.Current.URL())
	assert.Equal(t, "T", state.Current.Track.Title)
	assert.Equal(t, "bob", state.Pending[0].Requester.Name)
	assert.Equal(t, 2, state.Len())
}
