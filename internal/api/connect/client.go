package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// PlaylistClient calls PlaylistService with an admin token.
type PlaylistClient struct {
	execute     *connect.Client[ExecuteRequest, ExecuteResponse]
	listActions *connect.Client[ListActionsRequest, ListActionsResponse]
	token       string
}

// NewPlaylistClient creates a new PlaylistClient for the server at baseURL.
func NewPlaylistClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *PlaylistClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return &PlaylistClient{
		execute:     connect.NewClient[ExecuteRequest, ExecuteResponse](httpClient, baseURL+ExecuteProcedure, opts...),
		listActions: connect.NewClient[ListActionsRequest, ListActionsResponse](httpClient, baseURL+ListActionsProcedure, opts...),
		token:       token,
	}
}

// Execute runs one playlist command on the server.
func (c *PlaylistClient) Execute(ctx context.Context, msg *ExecuteRequest) (*ExecuteResponse, error) {
	req := connect.NewRequest(msg)
	req.Header().Set(AdminTokenHeader, c.token)
	resp, err := c.execute.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// ListActions returns the commands the server accepts.
func (c *PlaylistClient) ListActions(ctx context.Context) (*ListActionsResponse, error) {
	req := connect.NewRequest(&ListActionsRequest{})
	req.Header().Set(AdminTokenHeader, c.token)
	resp, err := c.listActions.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
