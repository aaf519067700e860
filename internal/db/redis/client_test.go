package redis

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/redis/rueidis"

	"github.com/mnesler/vector-mtg-sub000/internal/db"
)

func TestClassify_NetworkError(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := classify(dial)
	if !errors.Is(err, db.ErrUnavailable) {
		t.Fatalf("expected db.ErrUnavailable for a dial failure, got %v", err)
	}
}

func TestClassify_ClientClosing(t *testing.T) {
	err := classify(rueidis.ErrClosing)
	if !errors.Is(err, db.ErrUnavailable) {
		t.Fatalf("expected db.ErrUnavailable for a closed client, got %v", err)
	}
}

func TestClassify_ServerReplyPassesThrough(t *testing.T) {
	reply := errors.New("ERR syntax error")
	if got := classify(reply); got != reply {
		t.Fatalf("server reply error must pass through untouched, got %v", got)
	}
}

func TestClassify_ContextErrorsPassThrough(t *testing.T) {
	for _, err := range []error{context.Canceled, context.DeadlineExceeded} {
		got := classify(err)
		if got != err {
			t.Fatalf("%v must pass through untouched, got %v", err, got)
		}
		if errors.Is(got, db.ErrUnavailable) {
			t.Fatalf("%v must not read as an unreachable store", err)
		}
	}
}

func TestOpErr_KeepsOperationAndChain(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := opErr(db.OpHSet, dial)
	if err.Op != db.OpHSet {
		t.Fatalf("unexpected op: %q", err.Op)
	}
	if !errors.Is(err, db.ErrUnavailable) {
		t.Fatalf("expected db.ErrUnavailable in the chain, got %v", err)
	}
}
