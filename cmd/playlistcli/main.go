// Package main provides the playlist admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/19box-playlist/internal/api/connect"
)

var (
	app     = kingpin.New("19box-playlistcli", "19box playlist admin client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token   = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()
	timeout = app.Flag("timeout", "Request timeout").Default("10s").Duration()

	// make command
	makeCmd  = app.Command("make", "Make a new playlist").Alias("create")
	makeName = makeCmd.Arg("name", "Playlist name").Required().Strings()

	// delete command
	deleteCmd  = app.Command("delete", "Delete an existing playlist")
	deleteName = deleteCmd.Arg("name", "Playlist name").Required().Strings()

	// append command
	appendCmd  = app.Command("append", "Append songs to an existing playlist").Alias("add")
	appendName = appendCmd.Arg("name", "Playlist name").Required().String()
	appendURLs = appendCmd.Arg("url", "Song URLs").Required().Strings()

	// remove command
	removeCmd  = app.Command("remove", "Remove songs from an existing playlist")
	removeName = removeCmd.Arg("name", "Playlist name").Required().String()
	removeURLs = removeCmd.Arg("url", "Song URLs").Required().Strings()

	// list command
	listCmd = app.Command("list", "List all available playlists").Alias("all").Alias("available")

	// show command
	showCmd  = app.Command("show", "Show the items of a playlist")
	showName = showCmd.Arg("name", "Playlist name").Required().Strings()

	// save command
	saveCmd        = app.Command("save", "Save a queue as a new playlist").Alias("savequeue")
	saveName       = saveCmd.Arg("name", "Playlist name").Required().String()
	saveNowPlaying = saveCmd.Flag("now-playing", "URL of the currently playing track").String()
	saveQueue      = saveCmd.Flag("queue", "URL of a queued track (repeatable)").Strings()

	// import command
	importCmd    = app.Command("import", "Import a Spotify playlist as a new playlist")
	importName   = importCmd.Arg("name", "Playlist name").Required().String()
	importSource = importCmd.Arg("source", "Spotify playlist URL or URI").Required().String()

	// actions command
	actionsCmd = app.Command("actions", "List the commands the server accepts")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	selected := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Check admin token
	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	client := apiconnect.NewPlaylistClient(http.DefaultClient, *server, *token)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch selected {
	case makeCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "make", Args: strings.Join(*makeName, " ")})
	case deleteCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "delete", Args: strings.Join(*deleteName, " ")})
	case appendCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "append", Args: *appendName + " " + strings.Join(*appendURLs, " | ")})
	case removeCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "remove", Args: *removeName + " " + strings.Join(*removeURLs, " | ")})
	case listCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "list"})
	case showCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "show", Args: strings.Join(*showName, " ")})
	case saveCmd.FullCommand():
		execute(ctx, client, saveRequest(*saveName, *saveNowPlaying, *saveQueue))
	case importCmd.FullCommand():
		execute(ctx, client, &apiconnect.ExecuteRequest{Action: "import", Args: *importName + " " + *importSource})
	case actionsCmd.FullCommand():
		listActions(ctx, client)
	}
}

func saveRequest(name, nowPlaying string, queue []string) *apiconnect.ExecuteRequest {
	req := &apiconnect.ExecuteRequest{Action: "save", Args: name}
	if nowPlaying != "" {
		req.NowPlaying = &apiconnect.QueueEntry{URL: nowPlaying}
	}
	for _, u := range queue {
		req.Queue = append(req.Queue, apiconnect.QueueEntry{URL: u})
	}
	return req
}

func execute(ctx context.Context, client *apiconnect.PlaylistClient, req *apiconnect.ExecuteRequest) {
	resp, err := client.Execute(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", statusMark(resp.Status), resp.Message)
	for _, name := range resp.Names {
		fmt.Printf("  - %s\n", name)
	}
	for i, item := range resp.Items {
		fmt.Printf("  %3d. %s\n", i+1, item)
	}

	if resp.Status == "error" {
		os.Exit(2)
	}
}

func listActions(ctx context.Context, client *apiconnect.PlaylistClient) {
	resp, err := client.ListActions(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Actions (%d):\n", len(resp.Actions))
	for _, a := range resp.Actions {
		aliases := ""
		if len(a.Aliases) > 0 {
			aliases = " (aliases: " + strings.Join(a.Aliases, ", ") + ")"
		}
		fmt.Printf("  %-40s %s%s\n", a.Usage, a.Description, aliases)
	}
}

func statusMark(status string) string {
	switch status {
	case "success":
		return "[OK]"
	case "warning":
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}
