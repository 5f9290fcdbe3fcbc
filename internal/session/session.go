// Package session implements the line protocol used by the interactive
// mode and the TCP server.
//
// Every request is one line, either a JSON object
//
//	{"cmd":"insert","key":42}
//
// or the equivalent bare text form
//
//	insert 42
//
// and every request gets exactly one JSON response line. Commands are
// insert, remove, lookup (keyed) and state, verify, len (unkeyed); quit
// ends the session. A request that cannot be parsed is answered with
// {"ok":false,"error":...} and never reaches the tree.
package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bptree"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingKey     = errors.New("missing key")
	ErrBadRequest     = errors.New("bad request")
)

// maxLine bounds a single request line
const maxLine = 1 << 20

// Tree is the set of operations a session drives. Both bptree.Tree and
// bptree.SyncTree implement it; share a SyncTree between sessions.
type Tree interface {
	Insert(key uint64) bool
	Remove(key uint64) bool
	LookUp(key uint64) bptree.Record
	Snapshot() bptree.Snapshot
	Verify() error
	Len() int
	Height() int
}

// Request is one decoded command line
type Request struct {
	Cmd string  `json:"cmd"`
	Key *uint64 `json:"key,omitempty"`
}

// Response is written as one JSON line per request
type Response struct {
	OK      bool             `json:"ok"`
	Cmd     string           `json:"cmd,omitempty"`
	Key     *uint64          `json:"key,omitempty"`
	Changed *bool            `json:"changed,omitempty"` // insert, remove
	Found   *bool            `json:"found,omitempty"`   // lookup
	Len     *int             `json:"len,omitempty"`
	Height  *int             `json:"height,omitempty"`
	State   *bptree.Snapshot `json:"state,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Session serves requests against one tree
type Session struct {
	tree Tree
	log  bptree.Logger
}

// New creates a session over tree. A nil logger discards.
func New(tree Tree, log bptree.Logger) *Session {
	if log == nil {
		log = bptree.DiscardLogger{}
	}
	return &Session{tree: tree, log: log}
}

// Serve reads requests from r and writes responses to w until r is
// exhausted, a quit command arrives or ctx is cancelled. Blank lines are
// ignored.
//
// Cancellation does not wait for the next line: Serve returns ctx.Err()
// while a read is still pending. The pending read is abandoned; close r to
// release it.
func (s *Session) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(r, done)

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return <-readErr
			}
			line = l
		}

		// A line and the cancellation may arrive together
		if err := ctx.Err(); err != nil {
			return err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		req, err := Parse(line)
		var resp Response
		if err != nil {
			resp = Response{Error: err.Error()}
		} else if req.Cmd == "quit" {
			return bw.Flush()
		} else {
			resp = s.Do(req)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// readLines scans r on its own goroutine so a blocked read never holds up
// cancellation. Lines are copies. The lines channel closes when r is
// exhausted, after the scan error (nil at EOF) is sent on the error
// channel; the goroutine also stops once done is closed.
func readLines(r io.Reader, done <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 4096), maxLine)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// Do executes one request
func (s *Session) Do(req Request) Response {
	resp := Response{Cmd: req.Cmd, Key: req.Key}

	switch req.Cmd {
	case "insert", "remove", "lookup":
		if req.Key == nil {
			resp.Error = fmt.Sprintf("%s: %v", req.Cmd, ErrMissingKey)
			return resp
		}
	}

	switch req.Cmd {
	case "insert":
		changed := s.tree.Insert(*req.Key)
		resp.Changed = &changed
	case "remove":
		changed := s.tree.Remove(*req.Key)
		resp.Changed = &changed
	case "lookup":
		found := s.tree.LookUp(*req.Key).Valid
		resp.Found = &found
	case "state":
		snap := s.tree.Snapshot()
		resp.State = &snap
	case "verify":
		if err := s.tree.Verify(); err != nil {
			s.log.Error("verify failed", "error", err)
			resp.Error = err.Error()
			return resp
		}
	case "len":
		n, h := s.tree.Len(), s.tree.Height()
		resp.Len, resp.Height = &n, &h
	default:
		resp.Error = fmt.Sprintf("%v: %q", ErrUnknownCommand, req.Cmd)
		return resp
	}

	resp.OK = true
	return resp
}

// Parse decodes a JSON or bare text request line
func Parse(line []byte) (Request, error) {
	var req Request

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Request{}, fmt.Errorf("%w: empty line", ErrBadRequest)
	}

	if line[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		req.Cmd = strings.ToLower(req.Cmd)
		return req, nil
	}

	fields := strings.Fields(string(line))
	req.Cmd = strings.ToLower(fields[0])
	switch len(fields) {
	case 1:
	case 2:
		key, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return Request{}, fmt.Errorf("%w: key %q: %v", ErrBadRequest, fields[1], err)
		}
		req.Key = &key
	default:
		return Request{}, fmt.Errorf("%w: too many fields", ErrBadRequest)
	}
	return req, nil
}
