package command

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/app/library"
)

// failures maps store errors to reply codes, checked in order.
var failures = []struct {
	err    error
	status Status
	code   string
}{
	{library.ErrInvalidName, StatusError, "invalid_name"},
	{library.ErrAlreadyExists, StatusError, "already_exists"},
	{library.ErrNotFound, StatusError, "not_found"},
	{library.ErrDirectoryUnavailable, StatusWarning, "directory_unavailable"},
	{library.ErrNoMatchesRemoved, StatusWarning, "no_matches"},
	{library.ErrEmptySnapshot, StatusWarning, "empty_snapshot"},
	{library.ErrNoItems, StatusError, "no_items"},
	{library.ErrIOFailure, StatusError, "io_failure"},
}

func (d *Dispatcher) failure(err error, name string) Reply {
	for _, f := range failures {
		if errors.Is(err, f.err) {
			detail := name
			if f.code == "io_failure" {
				detail = errors.UnwrapAll(err).Error()
			}
			return d.reply(f.status, f.code, name, 0, detail)
		}
	}
	zlog.Error().Err(err).Msgf("command: unexpected store error: name=%s", name)
	return d.reply(StatusError, "default_error", name, 0, err.Error())
}

func (d *Dispatcher) reply(status Status, code, name string, count int, detail string) Reply {
	return Reply{
		Status:  status,
		Code:    code,
		Message: render(d.messages.GetMessage(code), name, count, detail),
		Count:   count,
	}
}

func render(template, name string, count int, detail string) string {
	return strings.NewReplacer(
		"{name}", name,
		"{count}", strconv.Itoa(count),
		"{detail}", detail,
	).Replace(template)
}
