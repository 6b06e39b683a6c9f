package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/app/command"
	"github.com/osa030/19box-playlist/internal/domain/track"
)

const (
	// PlaylistServiceName is the fully-qualified name of the service.
	PlaylistServiceName = "box19.playlist.v1.PlaylistService"

	// ExecuteProcedure runs one playlist command.
	ExecuteProcedure = "/" + PlaylistServiceName + "/Execute"
	// ListActionsProcedure lists the accepted commands.
	ListActionsProcedure = "/" + PlaylistServiceName + "/ListActions"

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"
)

// QueueEntry is one track of the playback queue as sent by the player.
type QueueEntry struct {
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
}

// ExecuteRequest is the Execute request message.
type ExecuteRequest struct {
	Action     string       `json:"action"`
	Args       string       `json:"args,omitempty"`
	NowPlaying *QueueEntry  `json:"now_playing,omitempty"`
	Queue      []QueueEntry `json:"queue,omitempty"`
}

// ExecuteResponse is the Execute response message.
type ExecuteResponse struct {
	RequestID string   `json:"request_id"`
	Status    string   `json:"status"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Count     int      `json:"count"`
	Names     []string `json:"names,omitempty"`
	Items     []string `json:"items,omitempty"`
}

// ListActionsRequest is the ListActions request message.
type ListActionsRequest struct{}

// ActionInfo describes one command.
type ActionInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Usage       string   `json:"usage"`
	Description string   `json:"description"`
}

// ListActionsResponse is the ListActions response message.
type ListActionsResponse struct {
	Actions []ActionInfo `json:"actions"`
}

// Dispatcher runs playlist commands.
type Dispatcher interface {
	Execute(ctx context.Context, req command.Request) command.Reply
	Actions() []command.ActionInfo
}

// PlaylistService implements the PlaylistService RPC.
type PlaylistService struct {
	dispatcher Dispatcher
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(dispatcher Dispatcher) *PlaylistService {
	return &PlaylistService{
		dispatcher: dispatcher,
	}
}

// Execute runs a playlist command. Command failures are reported in the
// response status; only malformed requests fail the RPC.
func (s *PlaylistService) Execute(
	ctx context.Context,
	req *connect.Request[ExecuteRequest],
) (*connect.Response[ExecuteResponse], error) {
	msg := req.Msg
	if strings.TrimSpace(msg.Action) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("action is required"))
	}

	requestID := req.Header().Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	zlog.Debug().Msgf("rpc: execute: request_id=%s action=%s args=%q queue=%d", requestID, msg.Action, msg.Args, len(msg.Queue))

	reply := s.dispatcher.Execute(ctx, command.Request{
		Action: msg.Action,
		Args:   msg.Args,
		Queue:  toQueueState(msg.NowPlaying, msg.Queue),
	})

	resp := connect.NewResponse(&ExecuteResponse{
		RequestID: requestID,
		Status:    string(reply.Status),
		Code:      reply.Code,
		Message:   reply.Message,
		Count:     reply.Count,
		Names:     reply.Names,
		Items:     reply.Items,
	})
	resp.Header().Set(RequestIDHeader, requestID)
	return resp, nil
}

// ListActions returns the accepted commands.
func (s *PlaylistService) ListActions(
	ctx context.Context,
	req *connect.Request[ListActionsRequest],
) (*connect.Response[ListActionsResponse], error) {
	actions := s.dispatcher.Actions()
	infos := make([]ActionInfo, len(actions))
	for i, a := range actions {
		infos[i] = ActionInfo{
			Name:        a.Name,
			Aliases:     a.Aliases,
			Usage:       a.Usage,
			Description: a.Description,
		}
	}
	return connect.NewResponse(&ListActionsResponse{Actions: infos}), nil
}

// NewPlaylistServiceHandler builds an HTTP handler for the service and
// returns the path to mount it on.
func NewPlaylistServiceHandler(svc *PlaylistService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))

	mux := http.NewServeMux()
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, svc.Execute, opts...))
	mux.Handle(ListActionsProcedure, connect.NewUnaryHandler(ListActionsProcedure, svc.ListActions, opts...))
	return "/" + PlaylistServiceName + "/", mux
}

// toQueueState converts the player's queue view into the domain form.
func toQueueState(nowPlaying *QueueEntry, queue []QueueEntry) track.QueueState {
	state := track.QueueState{
		Pending: make([]track.QueuedTrack, 0, len(queue)),
	}
	if nowPlaying != nil {
		q := toQueuedTrack(*nowPlaying)
		state.Current = &q
	}
	for _, e := range queue {
		state.Pending = append(state.Pending, toQueuedTrack(e))
	}
	return state
}

func toQueuedTrack(e QueueEntry) track.QueuedTrack {
	return track.QueuedTrack{
		Track: track.Track{
			Title:  e.Title,
			Author: e.Author,
			URI:    e.URL,
		},
		Requester: track.Requester{Name: e.RequesterName},
	}
}
