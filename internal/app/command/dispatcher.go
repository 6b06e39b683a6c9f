// Package command maps playlist commands onto the playlist store.
package command

import (
	"context"
	"sort"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/app/snapshot"
	"github.com/osa030/19box-playlist/internal/domain/playlist"
)

// Status is the outcome class of a reply.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Request is one playlist command.
type Request struct {
	Action string             // Action name or alias
	Args   string             // Raw argument text
	Queue  snapshot.QueueView // Playback queue view, used by save
}

// Reply is the rendered outcome of a command.
type Reply struct {
	Status  Status
	Code    string   // Message code
	Message string   // Rendered message
	Count   int      // Affected items
	Names   []string // Playlist names (list)
	Items   []string // Playlist items (show) or usage lines (help)
}

// Store is the subset of the playlist store used by commands.
type Store interface {
	EnsureDirectory() bool
	Create(name string) error
	Delete(name string) error
	Read(name string) (*playlist.Playlist, error)
	ListNames() ([]string, error)
	Append(name string, items []playlist.Item) (int, error)
	Remove(name string, targets []playlist.Item) (int, error)
	SaveSnapshot(name string, items []playlist.Item) (int, error)
}

// Messages provides reply templates by code.
type Messages interface {
	GetMessage(code string) string
}

// TrackSource reads track URLs from an external playlist.
type TrackSource interface {
	GetPlaylistTrackURLs(ctx context.Context, playlistURL string) ([]string, error)
}

// Recorder observes command outcomes.
type Recorder interface {
	ObserveCommand(action, status string, elapsed time.Duration)
}

// ActionInfo describes a registered action.
type ActionInfo struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
}

type action struct {
	ActionInfo
	run func(ctx context.Context, req Request) Reply
	// needsDir actions abort with a warning when the playlists directory
	// is unusable.
	needsDir bool
}

// Dispatcher routes commands to their handlers.
type Dispatcher struct {
	store    Store
	messages Messages
	tracks   TrackSource
	recorder Recorder
	actions  []*action
	byName   map[string]*action
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTrackSource enables the import action.
func WithTrackSource(src TrackSource) Option {
	return func(d *Dispatcher) {
		d.tracks = src
	}
}

// WithRecorder reports every executed command to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// New creates a new Dispatcher.
func New(store Store, messages Messages, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		messages: messages,
		byName:   make(map[string]*action),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.register(ActionInfo{Name: "make", Aliases: []string{"create"}, Usage: "make <name>", Description: "makes a new playlist"}, d.handleCreate, true)
	d.register(ActionInfo{Name: "delete", Usage: "delete <name>", Description: "deletes an existing playlist"}, d.handleDelete, true)
	d.register(ActionInfo{Name: "append", Aliases: []string{"add"}, Usage: "append <name> <URL> | <URL> | ...", Description: "appends songs to an existing playlist"}, d.handleAppend, true)
	d.register(ActionInfo{Name: "remove", Usage: "remove <name> <URL> | <URL> | ...", Description: "removes songs from an existing playlist"}, d.handleRemove, true)
	d.register(ActionInfo{Name: "all", Aliases: []string{"available", "list"}, Usage: "all", Description: "lists all available playlists"}, d.handleList, true)
	d.register(ActionInfo{Name: "show", Usage: "show <name>", Description: "shows the items of a playlist"}, d.handleShow, true)
	d.register(ActionInfo{Name: "save", Aliases: []string{"savequeue"}, Usage: "save <name>", Description: "saves the current queue as a new playlist"}, d.handleSave, true)
	d.register(ActionInfo{Name: "import", Usage: "import <name> <Spotify playlist URL>", Description: "imports a Spotify playlist as a new playlist"}, d.handleImport, true)
	d.register(ActionInfo{Name: "help", Usage: "help", Description: "shows the playlist commands"}, d.handleHelp, false)

	return d
}

func (d *Dispatcher) register(info ActionInfo, run func(context.Context, Request) Reply, needsDir bool) {
	a := &action{ActionInfo: info, run: run, needsDir: needsDir}
	d.actions = append(d.actions, a)
	d.byName[info.Name] = a
	for _, alias := range info.Aliases {
		d.byName[alias] = a
	}
}

// Actions returns the registered actions in registration order.
func (d *Dispatcher) Actions() []ActionInfo {
	infos := make([]ActionInfo, len(d.actions))
	for i, a := range d.actions {
		infos[i] = a.ActionInfo
	}
	return infos
}

// ActionNames returns every accepted action name and alias, sorted.
func (d *Dispatcher) ActionNames() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a command and returns its reply. It never returns an error;
// every failure is reported in the reply.
func (d *Dispatcher) Execute(ctx context.Context, req Request) Reply {
	start := time.Now()
	name := strings.ToLower(strings.TrimSpace(req.Action))
	a, ok := d.byName[name]
	if !ok {
		zlog.Warn().Msgf("command: unknown action: action=%s", req.Action)
		r := d.reply(StatusError, "unknown_action", "", 0, req.Action)
		d.observe("unknown", r, start)
		return r
	}

	if a.needsDir && !d.store.EnsureDirectory() {
		zlog.Warn().Msgf("command: playlists directory unavailable: action=%s", a.Name)
		r := d.reply(StatusWarning, "directory_unavailable", "", 0, "")
		d.observe(a.Name, r, start)
		return r
	}

	req.Args = strings.TrimSpace(req.Args)
	r := a.run(ctx, req)
	zlog.Info().Msgf("command: executed: action=%s status=%s code=%s count=%d", a.Name, r.Status, r.Code, r.Count)
	d.observe(a.Name, r, start)
	return r
}

func (d *Dispatcher) observe(action string, r Reply, start time.Time) {
	if d.recorder != nil {
		d.recorder.ObserveCommand(action, string(r.Status), time.Since(start))
	}
}

func (d *Dispatcher) handleCreate(_ context.Context, req Request) Reply {
	if req.Args == "" {
		return d.usage("make")
	}
	name := displayName(req.Args)
	if err := d.store.Create(req.Args); err != nil {
		return d.failure(err, name)
	}
	return d.reply(StatusSuccess, "created", name, 0, "")
}

func (d *Dispatcher) handleDelete(_ context.Context, req Request) Reply {
	if req.Args == "" {
		return d.usage("delete")
	}
	name := displayName(req.Args)
	if err := d.store.Delete(req.Args); err != nil {
		return d.failure(err, name)
	}
	return d.reply(StatusSuccess, "deleted", name, 0, "")
}

func (d *Dispatcher) handleAppend(_ context.Context, req Request) Reply {
	name, rest, ok := splitNameAndRest(req.Args)
	if !ok {
		return d.usage("append")
	}
	added, err := d.store.Append(name, playlist.SplitItems(rest))
	if err != nil {
		return d.failure(err, displayName(name))
	}
	return d.reply(StatusSuccess, "appended", displayName(name), added, "")
}

func (d *Dispatcher) handleRemove(_ context.Context, req Request) Reply {
	name, rest, ok := splitNameAndRest(req.Args)
	if !ok {
		return d.usage("remove")
	}
	removed, err := d.store.Remove(name, playlist.SplitItems(rest))
	if err != nil {
		return d.failure(err, displayName(name))
	}
	return d.reply(StatusSuccess, "removed", displayName(name), removed, "")
}

func (d *Dispatcher) handleList(_ context.Context, _ Request) Reply {
	names, err := d.store.ListNames()
	if err != nil {
		zlog.Warn().Err(err).Msg("command: list failed")
		return d.reply(StatusError, "list_failed", "", 0, "")
	}
	if len(names) == 0 {
		r := d.reply(StatusWarning, "list_empty", "", 0, "")
		r.Names = []string{}
		return r
	}
	r := d.reply(StatusSuccess, "listed", "", len(names), "")
	r.Names = names
	return r
}

func (d *Dispatcher) handleShow(_ context.Context, req Request) Reply {
	if req.Args == "" {
		return d.usage("show")
	}
	p, err := d.store.Read(req.Args)
	if err != nil {
		return d.failure(err, displayName(req.Args))
	}
	r := d.reply(StatusSuccess, "shown", p.Name, p.Len(), "")
	r.Items = p.URLs()
	return r
}

func (d *Dispatcher) handleSave(_ context.Context, req Request) Reply {
	if req.Args == "" {
		return d.usage("save")
	}
	name := displayName(req.Args)
	items := snapshot.Capture(req.Queue)
	count, err := d.store.SaveSnapshot(req.Args, items)
	if err != nil {
		return d.failure(err, name)
	}
	return d.reply(StatusSuccess, "saved", name, count, "")
}

func (d *Dispatcher) handleImport(ctx context.Context, req Request) Reply {
	if d.tracks == nil {
		return d.reply(StatusWarning, "import_disabled", "", 0, "")
	}
	name, source, ok := splitNameAndRest(req.Args)
	if !ok {
		return d.usage("import")
	}
	source = strings.Trim(source, "<> ")

	urls, err := d.tracks.GetPlaylistTrackURLs(ctx, source)
	if err != nil {
		zlog.Warn().Err(err).Msgf("command: import source failed: source=%s", source)
		return d.reply(StatusError, "import_failed", displayName(name), 0, err.Error())
	}
	items := make([]playlist.Item, 0, len(urls))
	for _, u := range urls {
		items = append(items, playlist.Item(u))
	}

	count, err := d.store.SaveSnapshot(name, items)
	if err != nil {
		return d.failure(err, displayName(name))
	}
	return d.reply(StatusSuccess, "imported", displayName(name), count, "")
}

func (d *Dispatcher) handleHelp(_ context.Context, _ Request) Reply {
	lines := make([]string, 0, len(d.actions))
	for _, a := range d.actions {
		line := a.Usage + " - " + a.Description
		if len(a.Aliases) > 0 {
			line += " (aliases: " + strings.Join(a.Aliases, ", ") + ")"
		}
		lines = append(lines, line)
	}
	r := d.reply(StatusSuccess, "help", "", len(lines), "")
	r.Items = lines
	return r
}

func (d *Dispatcher) usage(actionName string) Reply {
	return d.reply(StatusError, "invalid_args", "", 0, d.byName[actionName].Usage)
}

// splitNameAndRest splits "<name> <rest>" at the first run of whitespace.
func splitNameAndRest(args string) (name, rest string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", false
	}
	name = fields[0]
	rest = strings.TrimSpace(strings.TrimPrefix(args, name))
	return name, rest, true
}

// displayName returns the stored form of a name, or the input if it is invalid.
func displayName(raw string) string {
	if name, err := playlist.NormalizeName(raw); err == nil {
		return name
	}
	return strings.TrimSpace(raw)
}
