package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/maruel/recdb/internal/config"
	"github.com/maruel/recdb/internal/dataset"
	"github.com/maruel/recdb/internal/recordstore"
)

// query runs one lookup command against q and writes matches as JSON lines.
func query(q recordstore.Querier, w io.Writer, args []string, limit int) error {
	enc := json.NewEncoder(w)
	var encErr error
	v := recordstore.Limit(limit, recordstore.VisitorFunc(func(rec recordstore.Record) bool {
		encErr = enc.Encode(rec)
		return encErr == nil
	}))

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: get <id>")
		}
		rec, ok := q.GetByID(rest[0])
		if !ok {
			return fmt.Errorf("get %q: %w", rest[0], recordstore.ErrNotFound)
		}
		v.Visit(rec)
	case "user":
		if len(rest) != 1 {
			return errors.New("usage: user <name>")
		}
		q.AllByUser(rest[0], v)
	case "timestamp", "karma":
		if len(rest) != 2 {
			return fmt.Errorf("usage: %s <low> <high>", cmd)
		}
		low, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid low bound: %w", cmd, err)
		}
		high, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid high bound: %w", cmd, err)
		}
		if cmd == "timestamp" {
			q.RangeByTimestamp(low, high, v)
		} else {
			q.RangeByKarma(low, high, v)
		}
	case "dump":
		if len(rest) != 0 {
			return errors.New("usage: dump")
		}
		for rec := range q.All() {
			if !v.Visit(rec) {
				break
			}
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return encErr
}

// watch keeps s up to date with its dataset file until ctx is done. Commands
// read from in, one per line, are answered meanwhile; reaching the end of in
// stops reading commands but not watching.
func watch(ctx context.Context, cfg config.Config, s *recordstore.Store, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	y := recordstore.NewSynced(s)
	w := dataset.NewWatcher(cfg.Data, y, cfg.ReloadInterval)
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	lineCh := make(chan string)
	go func() {
		defer close(lineCh)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lineCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var lines <-chan string = lineCh
	for {
		select {
		case <-ctx.Done():
			return <-runErr
		case err := <-runErr:
			return err
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			args := strings.Fields(line)
			if len(args) == 0 {
				continue
			}
			if err := query(y, out, args, cfg.Limit); err != nil {
				slog.WarnContext(ctx, "Query failed", "line", line, "err", err)
			}
		}
	}
}
